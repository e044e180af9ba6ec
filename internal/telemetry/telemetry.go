// Package telemetry carries the logger, metrics and tracer shared by an
// engine and its lists. Every method is safe on a nil receiver.
package telemetry

import (
	"context"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// InstrumentationName names the tracer.
const InstrumentationName = "github.com/jacoelho/contentlist"

// Invalidation reasons.
const (
	ReasonAttribute     = "attribute"
	ReasonAppendMiddle  = "append_middle"
	ReasonInsert        = "insert"
	ReasonRemove        = "remove"
	ReasonRootDestroyed = "root_destroyed"
)

// Set is the telemetry bundle of one engine.
type Set struct {
	logger        *slog.Logger
	tracer        trace.Tracer
	lookups       *prometheus.CounterVec
	lists         prometheus.Gauge
	invalidations *prometheus.CounterVec
	visited       prometheus.Counter
	appended      prometheus.Counter
}

// New registers the metrics with reg. A nil reg keeps metrics unregistered;
// a nil logger discards records; a nil provider traces nothing.
func New(reg prometheus.Registerer, logger *slog.Logger, tp trace.TracerProvider) *Set {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if tp == nil {
		tp = noop.NewTracerProvider()
	}
	factory := promauto.With(reg)
	return &Set{
		logger: logger,
		tracer: tp.Tracer(InstrumentationName),
		lookups: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentlist_cache_lookups_total",
			Help: "Dedup cache lookups by cache and answering tier",
		}, []string{"cache", "tier"}),
		lists: factory.NewGauge(prometheus.GaugeOpts{
			Name: "contentlist_lists_live",
			Help: "Content lists currently alive",
		}),
		invalidations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "contentlist_invalidations_total",
			Help: "Lists marked dirty, by reason",
		}, []string{"reason"}),
		visited: factory.NewCounter(prometheus.CounterOpts{
			Name: "contentlist_nodes_visited_total",
			Help: "Nodes visited while populating lists",
		}),
		appended: factory.NewCounter(prometheus.CounterOpts{
			Name: "contentlist_fast_appends_total",
			Help: "Elements added to up-to-date lists without a rebuild",
		}),
	}
}

// Logger returns the logger; never nil.
func (s *Set) Logger() *slog.Logger {
	if s == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// Lookup counts one cache lookup.
func (s *Set) Lookup(cache, tier string) {
	if s == nil {
		return
	}
	s.lookups.WithLabelValues(cache, tier).Inc()
}

// ListCreated counts a new list.
func (s *Set) ListCreated() {
	if s == nil {
		return
	}
	s.lists.Inc()
}

// ListDestroyed counts a destroyed list.
func (s *Set) ListDestroyed() {
	if s == nil {
		return
	}
	s.lists.Dec()
}

// Invalidated counts a list going dirty.
func (s *Set) Invalidated(reason string) {
	if s == nil {
		return
	}
	s.invalidations.WithLabelValues(reason).Inc()
}

// Visited counts nodes walked by populate.
func (s *Set) Visited(n int) {
	if s == nil || n == 0 {
		return
	}
	s.visited.Add(float64(n))
}

// FastAppended counts elements added by the append fast path.
func (s *Set) FastAppended(n int) {
	if s == nil || n == 0 {
		return
	}
	s.appended.Add(float64(n))
}

// StartRebuild opens a span around a populate that starts from an empty cache.
func (s *Set) StartRebuild(deep bool, needed int) trace.Span {
	tracer := trace.Tracer(noop.Tracer{})
	if s != nil {
		tracer = s.tracer
	}
	_, span := tracer.Start(context.Background(), "contentlist.rebuild",
		trace.WithAttributes(
			attribute.Bool("contentlist.deep", deep),
			attribute.Int("contentlist.needed", needed),
		))
	return span
}
