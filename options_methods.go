package contentlist

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// NewOptions returns a default, valid options value.
func NewOptions() Options {
	return Options{}
}

// Validate validates option values.
func (o Options) Validate() error {
	_, err := o.withDefaults()
	return err
}

// WithRecentSlots sets how many recent slots sit in front of the tag-list
// table (0 disables the recent tier).
func (o Options) WithRecentSlots(value int) Options {
	o.recentSlots = intOption{value: value, set: true}
	return o
}

// WithFlushOnRead controls whether List reads flush pending document changes first (default true).
func (o Options) WithFlushOnRead(value bool) Options {
	o.flushOnRead = boolOption{value: value, set: true}
	return o
}

// WithLogger sets the structured logger (nil discards).
func (o Options) WithLogger(logger *slog.Logger) Options {
	o.logger = logger
	return o
}

// WithRegisterer registers the engine metrics with reg (nil leaves them unregistered).
func (o Options) WithRegisterer(reg prometheus.Registerer) Options {
	o.registerer = reg
	return o
}

// WithTracerProvider sets the provider for rebuild spans (nil disables tracing).
func (o Options) WithTracerProvider(tp trace.TracerProvider) Options {
	o.tracerProvider = tp
	return o
}
