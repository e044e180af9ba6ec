package dom

import "errors"

var (
	errNilNode        = errors.New("nil node")
	errHierarchy      = errors.New("node would become its own ancestor")
	errNotChild       = errors.New("reference node is not a child of this node")
	errDestroyed      = errors.New("node was destroyed")
	errDocumentChild  = errors.New("document node cannot be a child")
	errNotElementHost = errors.New("anonymous content host must be an element")
)

// AppendChild appends child to n and notifies ContentAppended.
func (n *Node) AppendChild(child *Node) error {
	return n.AppendChildren(child)
}

// AppendChildren appends children to n in order and sends a single
// ContentAppended notification naming the first of them.
func (n *Node) AppendChildren(children ...*Node) error {
	if len(children) == 0 {
		return nil
	}
	for _, child := range children {
		if err := n.checkInsert(child); err != nil {
			return err
		}
	}
	for _, child := range children {
		child.detach()
		n.link(child, nil)
	}
	first := children[0]
	notify(n, ContentAppendedEvent, func(o MutationObserver) { o.ContentAppended(first) })
	return nil
}

// InsertBefore inserts child before ref. A nil ref appends.
func (n *Node) InsertBefore(child, ref *Node) error {
	if ref == nil {
		return n.AppendChild(child)
	}
	if err := n.checkInsert(child); err != nil {
		return err
	}
	if ref.parent != n || ref.anonymousRoot {
		return errNotChild
	}
	if child == ref {
		return nil
	}
	child.detach()
	n.link(child, ref)
	notify(n, ContentInsertedEvent, func(o MutationObserver) { o.ContentInserted(child) })
	return nil
}

// RemoveChild detaches child from n after notifying ContentWillBeRemoved.
func (n *Node) RemoveChild(child *Node) error {
	if child == nil {
		return errNilNode
	}
	if child.parent != n || child.anonymousRoot {
		return errNotChild
	}
	child.detach()
	return nil
}

// Remove detaches n from its parent, if any.
func (n *Node) Remove() {
	if n == nil {
		return
	}
	n.detach()
}

func (n *Node) checkInsert(child *Node) error {
	if n == nil || child == nil {
		return errNilNode
	}
	if n.destroyed || child.destroyed {
		return errDestroyed
	}
	if child.typ == DocumentNode {
		return errDocumentChild
	}
	if child.Contains(n) {
		return errHierarchy
	}
	return nil
}

func (n *Node) link(child, ref *Node) {
	child.parent = n
	if ref == nil {
		child.prev = n.last
		if n.last != nil {
			n.last.next = child
		} else {
			n.first = child
		}
		n.last = child
		return
	}
	child.next = ref
	child.prev = ref.prev
	if ref.prev != nil {
		ref.prev.next = child
	} else {
		n.first = child
	}
	ref.prev = child
}

func (n *Node) detach() {
	parent := n.parent
	if parent == nil {
		return
	}
	if n.anonymousRoot {
		for i, c := range parent.anonymous {
			if c == n {
				parent.anonymous = append(parent.anonymous[:i], parent.anonymous[i+1:]...)
				break
			}
		}
		n.parent = nil
		n.anonymousRoot = false
		return
	}
	notify(parent, ContentWillBeRemovedEvent, func(o MutationObserver) { o.ContentWillBeRemoved(n) })
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		parent.first = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		parent.last = n.prev
	}
	n.parent, n.prev, n.next = nil, nil, nil
}

// SetAttribute sets a null-namespace attribute and notifies AttributeChanged.
func (n *Node) SetAttribute(name, value string) {
	if !n.IsElement() {
		return
	}
	n.setAttr(NamespaceNone, "", n.attrName(name), value)
}

// SetAttributeNS sets a namespaced attribute from a qualified name.
func (n *Node) SetAttributeNS(namespaceURI, qualifiedName, value string) {
	if !n.IsElement() {
		return
	}
	prefix, local := splitQName(qualifiedName)
	n.setAttr(RegisterNamespace(namespaceURI), prefix, local, value)
}

func (n *Node) setAttr(ns NamespaceID, prefix, local, value string) {
	old := ""
	found := false
	for i := range n.attrs {
		if n.attrs[i].Namespace == ns && n.attrs[i].Local == local {
			old = n.attrs[i].Value
			n.attrs[i].Value = value
			found = true
			break
		}
	}
	if !found {
		n.attrs = append(n.attrs, Attr{Namespace: ns, Prefix: prefix, Local: local, Value: value})
	}
	notify(n, AttributeChangedEvent, func(o MutationObserver) { o.AttributeChanged(n, ns, local, old) })
}

// RemoveAttribute removes a null-namespace attribute. Removing an absent
// attribute does not notify.
func (n *Node) RemoveAttribute(name string) {
	if !n.IsElement() {
		return
	}
	n.removeAttr(NamespaceNone, n.attrName(name))
}

// RemoveAttributeNS removes the attribute (namespaceURI, local).
func (n *Node) RemoveAttributeNS(namespaceURI, local string) {
	if !n.IsElement() {
		return
	}
	ns, ok := LookupNamespace(namespaceURI)
	if !ok {
		return
	}
	n.removeAttr(ns, local)
}

func (n *Node) removeAttr(ns NamespaceID, local string) {
	for i := range n.attrs {
		if n.attrs[i].Namespace == ns && n.attrs[i].Local == local {
			old := n.attrs[i].Value
			n.attrs = append(n.attrs[:i], n.attrs[i+1:]...)
			notify(n, AttributeChangedEvent, func(o MutationObserver) { o.AttributeChanged(n, ns, local, old) })
			return
		}
	}
}

// AttachAnonymous attaches root as anonymous content of host. The anonymous
// subtree reports host as its parent but is not one of host's children, so
// traversals from outside never enter it. No notification is sent.
func (n *Node) AttachAnonymous(root *Node) error {
	if !n.IsElement() {
		return errNotElementHost
	}
	if err := n.checkInsert(root); err != nil {
		return err
	}
	root.detach()
	root.parent = n
	root.anonymousRoot = true
	n.anonymous = append(n.anonymous, root)
	return nil
}

// AnonymousChildren returns a copy of the anonymous subtree roots attached to n.
func (n *Node) AnonymousChildren() []*Node {
	if n == nil {
		return nil
	}
	return append([]*Node(nil), n.anonymous...)
}

// Destroy detaches n and tears down its subtree. Observers registered on n
// or on any node under it receive NodeWillBeDestroyed for that node, and
// their registrations are dropped.
func (n *Node) Destroy() {
	if n == nil || n.destroyed {
		return
	}
	n.detach()
	n.destroySubtree()
}

func (n *Node) destroySubtree() {
	for c := n.first; c != nil; c = c.next {
		c.destroySubtree()
	}
	for _, a := range n.anonymous {
		a.destroySubtree()
	}
	entries := n.observers
	n.observers = nil
	for _, e := range entries {
		if e.mask&NodeWillBeDestroyedEvent != 0 {
			e.observer.NodeWillBeDestroyed(n)
		}
	}
	n.destroyed = true
}

// Close destroys the whole document tree.
func (d *Document) Close() {
	if d == nil {
		return
	}
	d.pending = nil
	d.node.Destroy()
}
