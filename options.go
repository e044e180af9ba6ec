package contentlist

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	xerrors "github.com/jacoelho/contentlist/errors"
	"github.com/jacoelho/contentlist/internal/dedup"
)

type intOption struct {
	value int
	set   bool
}

func (o intOption) resolved(fallback int) int {
	if !o.set {
		return fallback
	}
	return o.value
}

type boolOption struct {
	value bool
	set   bool
}

func (o boolOption) resolved(fallback bool) bool {
	if !o.set {
		return fallback
	}
	return o.value
}

// Options configures an Engine.
type Options struct {
	logger         *slog.Logger
	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
	recentSlots    intOption
	flushOnRead    boolOption
}

type resolvedOptions struct {
	logger         *slog.Logger
	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
	recentSlots    int
	flushOnRead    bool
}

func (o Options) withDefaults() (resolvedOptions, error) {
	slots := o.recentSlots.resolved(dedup.DefaultRecentSlots)
	if slots < 0 {
		return resolvedOptions{}, xerrors.NewViolationf(xerrors.ErrInvalidOptions, "recent slots", "must be >= 0, got %d", slots)
	}
	return resolvedOptions{
		logger:         o.logger,
		registerer:     o.registerer,
		tracerProvider: o.tracerProvider,
		recentSlots:    slots,
		flushOnRead:    o.flushOnRead.resolved(true),
	}, nil
}
