package contentlist

import (
	"iter"
	"log/slog"

	xerrors "github.com/jacoelho/contentlist/errors"
	"github.com/jacoelho/contentlist/internal/livelist"
	"github.com/jacoelho/contentlist/pkg/dom"
)

// Stats counts work done by a list.
type Stats = livelist.Stats

// List is a reference-counted handle to a live query result. All methods
// are safe on a nil list, which behaves as an empty one.
type List struct {
	engine *Engine
	impl   *livelist.List
	refs   int
}

// Retain adds a reference and returns l.
func (l *List) Retain() *List {
	if l == nil {
		return nil
	}
	l.refs++
	return l
}

// Release drops a reference. Dropping the last one destroys the list: it
// leaves the engine cache and stops observing its root. Releasing more than
// was retained panics with a list-refcount-underflow violation.
func (l *List) Release() {
	if l == nil {
		return
	}
	if l.refs <= 0 {
		panic(xerrors.NewViolation(xerrors.ErrRefcountUnderflow, "release without matching retain", l.impl.Label()))
	}
	l.refs--
	if l.refs > 0 {
		return
	}
	l.impl.Destroy()
	l.engine.telemetry.ListDestroyed()
	l.engine.telemetry.Logger().Debug("content list destroyed", slog.String("list", l.impl.Label()))
}

// Refs reports the current reference count.
func (l *List) Refs() int {
	if l == nil {
		return 0
	}
	return l.refs
}

// Length returns the number of matching elements.
func (l *List) Length() int {
	if l == nil {
		return 0
	}
	return l.impl.Length(l.engine.flushOnRead)
}

// LengthNoFlush is Length without flushing pending document changes.
func (l *List) LengthNoFlush() int {
	if l == nil {
		return 0
	}
	return l.impl.Length(false)
}

// Item returns the element at index, or nil when index is out of range.
func (l *List) Item(index int) *dom.Node {
	if l == nil {
		return nil
	}
	return l.impl.Item(index, l.engine.flushOnRead)
}

// ItemNoFlush is Item without flushing pending document changes.
func (l *List) ItemNoFlush(index int) *dom.Node {
	if l == nil {
		return nil
	}
	return l.impl.Item(index, false)
}

// NamedItem returns the first element whose id, or for HTML elements whose
// name attribute, equals name.
func (l *List) NamedItem(name string) *dom.Node {
	if l == nil {
		return nil
	}
	return l.impl.NamedItem(name, l.engine.flushOnRead)
}

// SupportedNames returns the distinct ids and HTML name values of the
// elements in first-seen order.
func (l *List) SupportedNames() []string {
	if l == nil {
		return nil
	}
	return l.impl.SupportedNames(l.engine.flushOnRead)
}

// IndexOf returns the position of node in the list, or -1.
func (l *List) IndexOf(node *dom.Node) int {
	if l == nil {
		return -1
	}
	return l.impl.IndexOf(node, l.engine.flushOnRead)
}

// All yields the elements of a fully populated snapshot of the list.
func (l *List) All() iter.Seq2[int, *dom.Node] {
	return func(yield func(int, *dom.Node) bool) {
		if l == nil {
			return
		}
		for i, el := range l.impl.Elements(l.engine.flushOnRead) {
			if !yield(i, el) {
				return
			}
		}
	}
}

// Root returns the root node, or nil once it was destroyed.
func (l *List) Root() *dom.Node {
	if l == nil {
		return nil
	}
	return l.impl.Root()
}

// Live reports whether the list follows mutations.
func (l *List) Live() bool {
	return l != nil && l.impl.Live()
}

// Shared reports whether the list is still registered in an engine cache.
func (l *List) Shared() bool {
	return l != nil && l.impl.Registered()
}

// Stats returns the work counters of the list.
func (l *List) Stats() Stats {
	if l == nil {
		return Stats{}
	}
	return l.impl.Stats()
}

// String describes the query.
func (l *List) String() string {
	if l == nil {
		return "<nil list>"
	}
	return l.impl.Label()
}
