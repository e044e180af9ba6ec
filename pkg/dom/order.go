package dom

// Precedes reports whether a comes before b in document order. Nodes in
// different trees, and a node compared with itself, report false. Anonymous
// subtrees sort after the host's regular children, in attach order.
func Precedes(a, b *Node) bool {
	if a == nil || b == nil || a == b {
		return false
	}
	pathA := ancestry(a)
	pathB := ancestry(b)
	if pathA[0] != pathB[0] {
		return false
	}
	i := 0
	for i < len(pathA) && i < len(pathB) && pathA[i] == pathB[i] {
		i++
	}
	switch {
	case i == len(pathA):
		// a is an ancestor of b.
		return true
	case i == len(pathB):
		return false
	}
	return siblingBefore(pathA[i], pathB[i])
}

// ancestry returns the chain from the top of the tree down to n.
func ancestry(n *Node) []*Node {
	depth := 0
	for cur := n; cur != nil; cur = cur.parent {
		depth++
	}
	path := make([]*Node, depth)
	for cur := n; cur != nil; cur = cur.parent {
		depth--
		path[depth] = cur
	}
	return path
}

// siblingBefore orders two distinct nodes sharing a parent.
func siblingBefore(a, b *Node) bool {
	switch {
	case a.anonymousRoot && !b.anonymousRoot:
		return false
	case !a.anonymousRoot && b.anonymousRoot:
		return true
	case a.anonymousRoot && b.anonymousRoot:
		for _, c := range a.parent.anonymous {
			if c == a {
				return true
			}
			if c == b {
				return false
			}
		}
		return false
	}
	for cur := a.next; cur != nil; cur = cur.next {
		if cur == b {
			return true
		}
	}
	return false
}

// AnonymousScope returns the nearest inclusive ancestor of n that roots an
// anonymous subtree, or nil when n lives in the regular tree.
func AnonymousScope(n *Node) *Node {
	for cur := n; cur != nil; cur = cur.parent {
		if cur.anonymousRoot {
			return cur
		}
	}
	return nil
}

// InSameAnonymousTree reports whether a and b share an anonymous scope.
func InSameAnonymousTree(a, b *Node) bool {
	return AnonymousScope(a) == AnonymousScope(b)
}
