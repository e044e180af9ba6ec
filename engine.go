package contentlist

import (
	"fmt"
	"log/slog"

	"github.com/jacoelho/contentlist/internal/dedup"
	"github.com/jacoelho/contentlist/internal/livelist"
	"github.com/jacoelho/contentlist/internal/match"
	"github.com/jacoelho/contentlist/internal/telemetry"
	"github.com/jacoelho/contentlist/pkg/dom"
)

// Engine owns the caches that share lists between equivalent queries.
type Engine struct {
	tags        *dedup.Cache[dedup.TagKey, *List]
	funcs       *dedup.Cache[dedup.FuncKey, *List]
	telemetry   *telemetry.Set
	flushOnRead bool
	closed      bool
}

// NewEngine builds an engine from opts.
func NewEngine(opts Options) (*Engine, error) {
	resolved, err := opts.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("new engine: %w", err)
	}
	return &Engine{
		tags:        dedup.NewTagCache[*List](resolved.recentSlots),
		funcs:       dedup.NewFuncCache[*List](),
		telemetry:   telemetry.New(resolved.registerer, resolved.logger, resolved.tracerProvider),
		flushOnRead: resolved.flushOnRead,
	}, nil
}

// Shutdown empties both caches. Lists handed out stay usable and keep
// observing their roots, but are no longer shared. Queries on a shut down
// engine return unshared lists.
func (e *Engine) Shutdown() {
	if e == nil || e.closed {
		return
	}
	e.closed = true
	n := 0
	for _, l := range e.tags.Drain() {
		l.impl.ClearDeregister()
		n++
	}
	for _, l := range e.funcs.Drain() {
		l.impl.ClearDeregister()
		n++
	}
	e.telemetry.Logger().Debug("content list engine shut down", slog.Int("unregistered", n))
}

// CachedLists reports how many lists the caches currently share.
func (e *Engine) CachedLists() int {
	if e == nil {
		return 0
	}
	return e.tags.Len() + e.funcs.Len()
}

func (e *Engine) newList(cfg livelist.Config) *List {
	cfg.Telemetry = e.telemetry
	l := &List{engine: e, impl: livelist.New(cfg)}
	e.telemetry.ListCreated()
	e.telemetry.Logger().Debug("content list created",
		slog.String("list", cfg.Label),
		slog.Bool("deep", cfg.Deep),
		slog.Bool("live", cfg.Live))
	return l
}

// usableRoot filters roots that can never produce results.
func usableRoot(root *dom.Node) bool {
	return root != nil && !root.Destroyed()
}

func (e *Engine) tagList(root *dom.Node, ns dom.NamespaceID, name string) *List {
	if e == nil || !usableRoot(root) {
		return nil
	}
	key := dedup.TagKey{Root: root, Namespace: ns, Tag: name, HTML: root.OwnerDocument().IsHTML()}
	create := func() *List {
		return e.newList(livelist.Config{
			Root:      root,
			Predicate: match.NewTag(ns, name, key.HTML),
			Label:     key.String(),
			Deep:      true,
			Live:      true,
		})
	}
	if e.closed {
		return create().Retain()
	}
	l, tier := e.tags.LookupOrCreate(key, create)
	if tier == dedup.Miss {
		l.impl.SetDeregister(func() { e.tags.Remove(key, l) })
	}
	e.telemetry.Lookup("tag", tier.String())
	return l.Retain()
}

func (e *Engine) funcList(root *dom.Node, kind *match.FuncKind, arg string) *List {
	if e == nil || kind == nil || !usableRoot(root) {
		return nil
	}
	key := dedup.FuncKey{Root: root, Kind: kind, Arg: arg}
	create := func() *List {
		return e.newList(livelist.Config{
			Root:      root,
			Predicate: match.NewFunc(kind, dom.NamespaceUnknown, "", arg),
			Label:     key.String(),
			Deep:      true,
			Live:      true,
		})
	}
	if e.closed {
		return create().Retain()
	}
	l, tier := e.funcs.LookupOrCreate(key, create)
	if tier == dedup.Miss {
		l.impl.SetDeregister(func() { e.funcs.Remove(key, l) })
	}
	e.telemetry.Lookup("func", tier.String())
	return l.Retain()
}
