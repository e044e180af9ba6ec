package livelist

import (
	"log/slog"
	"slices"

	"github.com/jacoelho/contentlist/internal/telemetry"
	"github.com/jacoelho/contentlist/pkg/dom"
)

var _ dom.MutationObserver = (*List)(nil)

// mayContainRelevantNodes reports whether children of container can be
// candidates.
func (l *List) mayContainRelevantNodes(container *dom.Node) bool {
	return l.deep || container == l.root
}

// inScope reports whether a change to node under container can affect the list.
func (l *List) inScope(container, node *dom.Node) bool {
	return container != nil &&
		l.mayContainRelevantNodes(container) &&
		dom.InSameAnonymousTree(l.root, node)
}

// matchSelf reports whether n, or with a deep list anything under it, matches.
func (l *List) matchSelf(n *dom.Node) bool {
	if l.pred.Matches(n) {
		return true
	}
	if !l.deep {
		return false
	}
	for cur := n.NextNode(n); cur != nil; cur = cur.NextNode(n) {
		if l.pred.Matches(cur) {
			return true
		}
	}
	return false
}

// AttributeChanged implements dom.MutationObserver.
func (l *List) AttributeChanged(el *dom.Node, ns dom.NamespaceID, local, _ string) {
	if l.state == Dirty || el == l.root || !l.inScope(el.Parent(), el) {
		return
	}
	l.named.InvalidateForAttribute(el, ns, local)
	if !l.pred.DependsOnAttributes() {
		return
	}
	idx := slices.Index(l.elements, el)
	if l.pred.Matches(el) {
		if idx < 0 {
			// Positional insertion is not worth it; rebuild instead.
			l.invalidate(telemetry.ReasonAttribute)
		}
		return
	}
	if idx >= 0 {
		l.elements = slices.Delete(l.elements, idx, idx+1)
		l.named.InvalidateForRemoval(el)
	}
}

// ContentAppended implements dom.MutationObserver.
func (l *List) ContentAppended(firstNew *dom.Node) {
	container := firstNew.Parent()
	if l.state == Dirty || !l.inScope(container, container) {
		return
	}

	if !l.appendsAtEnd(container, firstNew) {
		for cur := firstNew; cur != nil; cur = cur.NextSibling() {
			if l.matchSelf(cur) {
				l.invalidate(telemetry.ReasonAppendMiddle)
				return
			}
		}
		return
	}

	// A lazy list finds the new content when it is asked for more.
	if l.state == Lazy {
		return
	}

	added := 0
	if l.deep {
		for cur := firstNew; cur != nil; cur = cur.NextNode(container) {
			if l.pred.Matches(cur) {
				l.elements = append(l.elements, cur)
				l.named.Add(cur)
				added++
			}
		}
	} else {
		for cur := firstNew; cur != nil; cur = cur.NextSibling() {
			if l.pred.Matches(cur) {
				l.elements = append(l.elements, cur)
				l.named.Add(cur)
				added++
			}
		}
	}
	if added > 0 {
		l.stats.FastAppends += added
		l.telemetry.FastAppended(added)
		l.telemetry.Logger().Debug("content list appended",
			slog.String("list", l.label),
			slog.Int("added", added))
	}
}

// appendsAtEnd reports whether content appended under container comes after
// every cached element in document order.
func (l *List) appendsAtEnd(container, firstNew *dom.Node) bool {
	if len(l.elements) == 0 || container == l.root {
		return true
	}
	return dom.Precedes(l.elements[len(l.elements)-1], firstNew)
}

// ContentInserted implements dom.MutationObserver.
func (l *List) ContentInserted(child *dom.Node) {
	if l.state != Dirty && l.inScope(child.Parent(), child) && l.matchSelf(child) {
		l.invalidate(telemetry.ReasonInsert)
	}
}

// ContentWillBeRemoved implements dom.MutationObserver.
func (l *List) ContentWillBeRemoved(child *dom.Node) {
	if l.state != Dirty && l.inScope(child.Parent(), child) && l.matchSelf(child) {
		l.invalidate(telemetry.ReasonRemove)
	}
}

// NodeWillBeDestroyed implements dom.MutationObserver. The list leaves its
// cache, forgets the root and stays dirty for good.
func (l *List) NodeWillBeDestroyed(n *dom.Node) {
	if n != l.root {
		return
	}
	l.removeFromCache()
	l.observing = false
	l.fullEvents = false
	l.root = nil
	l.invalidate(telemetry.ReasonRootDestroyed)
}
