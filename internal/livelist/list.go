// Package livelist implements the live, lazily populated list of elements
// matching a predicate under a root node.
package livelist

import (
	"log/slog"
	"math"

	"github.com/jacoelho/contentlist/internal/match"
	"github.com/jacoelho/contentlist/internal/namedindex"
	"github.com/jacoelho/contentlist/internal/telemetry"
	"github.com/jacoelho/contentlist/pkg/dom"
)

// State tracks how much of the cached element slice can be trusted.
type State uint8

const (
	// Dirty means the cached elements are meaningless and must be rebuilt.
	Dirty State = iota
	// Lazy means the cached elements are a correct prefix of the matches.
	Lazy
	// UpToDate means the cached elements are exactly the matches.
	UpToDate
)

func (s State) String() string {
	switch s {
	case Lazy:
		return "lazy"
	case UpToDate:
		return "up-to-date"
	default:
		return "dirty"
	}
}

const unbounded = math.MaxInt

// Config describes a list.
type Config struct {
	Root      *dom.Node
	Predicate match.Predicate
	Telemetry *telemetry.Set
	// Label names the list in logs.
	Label string
	// Deep selects all descendants; otherwise only children of Root are candidates.
	Deep bool
	// Live registers the list as a mutation observer of Root. A list that is
	// not live is a snapshot taken on first read.
	Live bool
}

// Stats counts work done by a list.
type Stats struct {
	NodesVisited int
	Rebuilds     int
	FastAppends  int
}

// List is a live query result. It is not safe for concurrent use; all calls
// must come from the goroutine that owns the document.
type List struct {
	root       *dom.Node
	pred       match.Predicate
	telemetry  *telemetry.Set
	deregister func()
	elements   []*dom.Node
	named      namedindex.Index
	label      string
	stats      Stats
	state      State
	deep       bool
	live       bool
	observing  bool
	fullEvents bool
	destroyed  bool
}

// New builds a dirty list and, when live, registers it on the root.
func New(cfg Config) *List {
	l := &List{
		root:      cfg.Root,
		pred:      cfg.Predicate,
		telemetry: cfg.Telemetry,
		label:     cfg.Label,
		deep:      cfg.Deep,
		live:      cfg.Live,
		state:     Dirty,
	}
	if l.live && l.root != nil && !l.root.Destroyed() {
		l.root.AddObserver(l, dom.NodeWillBeDestroyedEvent)
		l.observing = true
	}
	return l
}

// Root returns the root node, or nil once the root is gone or the list destroyed.
func (l *List) Root() *dom.Node { return l.root }

// State returns the cache state.
func (l *List) State() State { return l.state }

// Deep reports whether the list searches all descendants.
func (l *List) Deep() bool { return l.deep }

// Live reports whether the list observes mutations.
func (l *List) Live() bool { return l.live }

// Stats returns the work counters.
func (l *List) Stats() Stats { return l.stats }

// Label returns the description used in logs.
func (l *List) Label() string { return l.label }

// Predicate returns the membership test.
func (l *List) Predicate() match.Predicate { return l.pred }

// Cached returns a copy of the cached elements without populating.
func (l *List) Cached() []*dom.Node {
	return append([]*dom.Node(nil), l.elements...)
}

// SetDeregister installs the function that removes the list from its dedup
// cache. It runs at most once, from Destroy or root destruction.
func (l *List) SetDeregister(fn func()) {
	l.deregister = fn
}

// ClearDeregister forgets the cache registration without running it, for a
// cache that is being torn down as a whole.
func (l *List) ClearDeregister() {
	l.deregister = nil
}

// Registered reports whether the list still occupies a dedup cache entry.
func (l *List) Registered() bool {
	return l.deregister != nil
}

// Length returns the number of matches, bringing the list fully up to date.
func (l *List) Length(flush bool) int {
	l.BringFullyUpToDate(flush)
	return len(l.elements)
}

// Item returns the match at index, or nil when out of range. Only the
// first index+1 matches are populated.
func (l *List) Item(index int, flush bool) *dom.Node {
	if index < 0 {
		return nil
	}
	l.flush(flush)
	if l.state != UpToDate {
		needed := unbounded
		if index < unbounded {
			needed = index + 1
		}
		l.populate(needed)
	}
	if index >= len(l.elements) {
		return nil
	}
	return l.elements[index]
}

// NamedItem returns the first match whose id, or exposed name, equals name.
func (l *List) NamedItem(name string, flush bool) *dom.Node {
	l.BringFullyUpToDate(flush)
	if l.root == nil || name == "" {
		return nil
	}
	if !l.named.Valid() {
		l.named.Build(l.elements)
	}
	return l.named.Lookup(name)
}

// SupportedNames returns the distinct ids and exposed names of the matches
// in first-seen order.
func (l *List) SupportedNames(flush bool) []string {
	l.BringFullyUpToDate(flush)
	return namedindex.SupportedNames(l.elements)
}

// Elements returns a copy of all matches, bringing the list fully up to date.
func (l *List) Elements(flush bool) []*dom.Node {
	l.BringFullyUpToDate(flush)
	return l.Cached()
}

// IndexOf returns the position of node among the matches, or -1.
func (l *List) IndexOf(node *dom.Node, flush bool) int {
	l.BringFullyUpToDate(flush)
	for i, el := range l.elements {
		if el == node {
			return i
		}
	}
	return -1
}

// BringFullyUpToDate populates every remaining match.
func (l *List) BringFullyUpToDate(flush bool) {
	l.flush(flush)
	if l.state != UpToDate {
		l.populate(unbounded)
	}
}

// flush runs pending document changes; their notifications may dirty the
// list before it is read.
func (l *List) flush(enabled bool) {
	if !enabled || l.root == nil {
		return
	}
	l.root.OwnerDocument().Flush()
}

// populate appends matches after the last cached element until needed
// elements are cached or the candidates run out.
func (l *List) populate(needed int) {
	if l.root == nil || needed <= 0 {
		return
	}
	if l.state == Dirty {
		l.elements = l.elements[:0]
		l.named.Invalidate()
	}
	count := len(l.elements)
	if l.state == UpToDate || (l.state == Lazy && count >= needed) {
		return
	}
	if count == 0 {
		l.stats.Rebuilds++
		span := l.telemetry.StartRebuild(l.deep, needed)
		defer span.End()
	}

	remaining := needed - count
	visited := 0
	if l.deep {
		cur := l.root
		if count > 0 {
			cur = l.elements[count-1]
		}
		for remaining > 0 {
			cur = cur.NextNode(l.root)
			if cur == nil {
				break
			}
			visited++
			if l.pred.Matches(cur) {
				l.elements = append(l.elements, cur)
				remaining--
			}
		}
	} else {
		cur := l.root.FirstChild()
		if count > 0 {
			cur = l.elements[count-1].NextSibling()
		}
		for ; cur != nil && remaining > 0; cur = cur.NextSibling() {
			visited++
			if l.pred.Matches(cur) {
				l.elements = append(l.elements, cur)
				remaining--
			}
		}
	}
	l.stats.NodesVisited += visited
	l.telemetry.Visited(visited)

	if remaining > 0 {
		l.state = UpToDate
	} else {
		l.state = Lazy
	}
	l.enableEvents()
}

// enableEvents widens the observer mask once the list has content worth keeping.
func (l *List) enableEvents() {
	if !l.observing || l.fullEvents {
		return
	}
	l.root.SetObserverMask(l, dom.AllEvents)
	l.fullEvents = true
}

// SetDirty discards the cached elements. While dirty the list only listens
// for root destruction, since nothing else can make it dirtier.
func (l *List) SetDirty() {
	l.state = Dirty
	l.elements = l.elements[:0]
	l.named.Invalidate()
	if l.observing && l.fullEvents {
		l.root.SetObserverMask(l, dom.NodeWillBeDestroyedEvent)
		l.fullEvents = false
	}
}

func (l *List) invalidate(reason string) {
	l.SetDirty()
	l.telemetry.Invalidated(reason)
	l.telemetry.Logger().Debug("content list invalidated",
		slog.String("list", l.label),
		slog.String("reason", reason))
}

// Destroy releases the list: it leaves its dedup cache, stops observing the
// root and frees the predicate. Reads afterwards return empty results.
func (l *List) Destroy() {
	if l.destroyed {
		return
	}
	l.destroyed = true
	l.removeFromCache()
	if l.observing {
		l.root.RemoveObserver(l)
		l.observing = false
	}
	l.root = nil
	l.SetDirty()
	l.elements = nil
	if l.pred != nil {
		l.pred.Release()
	}
}

// Destroyed reports whether Destroy ran.
func (l *List) Destroyed() bool { return l.destroyed }

func (l *List) removeFromCache() {
	if l.deregister == nil {
		return
	}
	fn := l.deregister
	l.deregister = nil
	fn()
}
