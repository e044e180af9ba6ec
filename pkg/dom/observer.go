package dom

// EventMask selects which mutation callbacks an observer receives.
type EventMask uint8

const (
	// AttributeChangedEvent enables MutationObserver.AttributeChanged.
	AttributeChangedEvent EventMask = 1 << iota
	// ContentAppendedEvent enables MutationObserver.ContentAppended.
	ContentAppendedEvent
	// ContentInsertedEvent enables MutationObserver.ContentInserted.
	ContentInsertedEvent
	// ContentWillBeRemovedEvent enables MutationObserver.ContentWillBeRemoved.
	ContentWillBeRemovedEvent
	// NodeWillBeDestroyedEvent enables MutationObserver.NodeWillBeDestroyed.
	NodeWillBeDestroyedEvent

	// AllEvents enables every callback.
	AllEvents = AttributeChangedEvent | ContentAppendedEvent | ContentInsertedEvent |
		ContentWillBeRemovedEvent | NodeWillBeDestroyedEvent
)

// MutationObserver receives synchronous notifications about changes in the
// subtree of the node it is registered on. Notifications for a change are
// delivered to observers of the changed container and of every ancestor.
type MutationObserver interface {
	// AttributeChanged runs after an attribute of el was set or removed.
	AttributeChanged(el *Node, ns NamespaceID, local, oldValue string)
	// ContentAppended runs after firstNew and its following siblings were
	// appended to the end of their parent.
	ContentAppended(firstNew *Node)
	// ContentInserted runs after child was inserted before an existing child.
	ContentInserted(child *Node)
	// ContentWillBeRemoved runs before child is detached from its parent.
	ContentWillBeRemoved(child *Node)
	// NodeWillBeDestroyed runs when the node the observer is registered on
	// is destroyed. The registration is dropped afterwards.
	NodeWillBeDestroyed(n *Node)
}

type observerEntry struct {
	observer MutationObserver
	mask     EventMask
}

// AddObserver registers o on n. Registering the same observer again only
// updates its mask.
func (n *Node) AddObserver(o MutationObserver, mask EventMask) {
	if n == nil || o == nil || n.destroyed {
		return
	}
	for i := range n.observers {
		if n.observers[i].observer == o {
			n.observers[i].mask = mask
			return
		}
	}
	n.observers = append(n.observers, observerEntry{observer: o, mask: mask})
}

// SetObserverMask changes the callbacks o receives. It reports whether o was registered.
func (n *Node) SetObserverMask(o MutationObserver, mask EventMask) bool {
	if n == nil {
		return false
	}
	for i := range n.observers {
		if n.observers[i].observer == o {
			n.observers[i].mask = mask
			return true
		}
	}
	return false
}

// RemoveObserver unregisters o from n. It reports whether o was registered.
func (n *Node) RemoveObserver(o MutationObserver) bool {
	if n == nil {
		return false
	}
	for i := range n.observers {
		if n.observers[i].observer == o {
			n.observers = append(n.observers[:i], n.observers[i+1:]...)
			return true
		}
	}
	return false
}

// ObserverCount reports how many observers are registered on n.
func (n *Node) ObserverCount() int {
	if n == nil {
		return 0
	}
	return len(n.observers)
}

// notify walks from start up to the top of the tree. Each node's observer
// list is copied before dispatch so callbacks may register or unregister.
func notify(start *Node, event EventMask, call func(MutationObserver)) {
	for cur := start; cur != nil; cur = cur.parent {
		if len(cur.observers) == 0 {
			continue
		}
		entries := append([]observerEntry(nil), cur.observers...)
		for _, e := range entries {
			if e.mask&event == 0 || !cur.stillObserved(e.observer) {
				continue
			}
			call(e.observer)
		}
	}
}

func (n *Node) stillObserved(o MutationObserver) bool {
	for _, e := range n.observers {
		if e.observer == o {
			return true
		}
	}
	return false
}
