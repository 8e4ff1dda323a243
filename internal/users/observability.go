package users

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName names the tracer and meter used for store telemetry.
const InstrumentationName = "github.com/alfagnish/simple-crud/internal/users"

// Publisher receives change notifications from the Store.
type Publisher interface {
	Publish(eventType string, data any)
}

// Event types emitted through the Publisher.
const (
	EventCreated = "user.created"
	EventUpdated = "user.updated"
	EventDeleted = "user.deleted"
	EventReset   = "store.reset"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for operation logs.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTracer enables a span per store operation.
func WithTracer(tracer trace.Tracer) Option {
	return func(s *Store) {
		s.obs.tracer = tracer
	}
}

// WithMeter enables operation counters and a latency histogram.
func WithMeter(meter metric.Meter) Option {
	return func(s *Store) {
		s.obs.metrics = initMetrics(meter)
	}
}

// WithPublisher sets the sink for change events.
func WithPublisher(p Publisher) Option {
	return func(s *Store) {
		s.pub = p
	}
}

// WithUniqueEmailOnUpdate makes Update reject an email already used by
// another record.
func WithUniqueEmailOnUpdate(enabled bool) Option {
	return func(s *Store) {
		s.uniqueEmailOnUpdate = enabled
	}
}

type storeMetrics struct {
	ops      metric.Int64Counter
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

func initMetrics(meter metric.Meter) *storeMetrics {
	if meter == nil {
		return nil
	}

	ops, _ := meter.Int64Counter("users.store.operations",
		metric.WithDescription("Total number of store operations"),
		metric.WithUnit("{operation}"),
	)

	duration, _ := meter.Float64Histogram("users.store.duration",
		metric.WithDescription("Store operation duration in milliseconds"),
		metric.WithUnit("ms"),
	)

	errs, _ := meter.Int64Counter("users.store.errors",
		metric.WithDescription("Total number of failed store operations"),
		metric.WithUnit("{error}"),
	)

	return &storeMetrics{ops: ops, duration: duration, errors: errs}
}

type observer struct {
	tracer  trace.Tracer
	metrics *storeMetrics
}

// start opens a span for op and returns a func that records the outcome.
func (o *observer) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	begin := time.Now()

	var span trace.Span
	if o.tracer != nil {
		ctx, span = o.tracer.Start(ctx, "users."+op, trace.WithAttributes(attrs...))
	}

	return ctx, func(err error) {
		if o.metrics != nil {
			opAttr := metric.WithAttributes(attribute.String("operation", op))
			elapsed := float64(time.Since(begin).Microseconds()) / 1000
			if o.metrics.ops != nil {
				o.metrics.ops.Add(ctx, 1, opAttr)
			}
			if o.metrics.duration != nil {
				o.metrics.duration.Record(ctx, elapsed, opAttr)
			}
			if err != nil && o.metrics.errors != nil {
				o.metrics.errors.Add(ctx, 1, opAttr)
			}
		}

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			} else {
				span.SetStatus(codes.Ok, "")
			}
			span.End()
		}
	}
}
