package sink

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

var _ autodiff.Publisher = (*Multi)(nil)

// Multi publishes every array to all of its sinks concurrently.
// The payload is shared read-only between the sinks.
type Multi struct {
	sinks []autodiff.Publisher
}

// NewMulti creates a fan-out over sinks.
func NewMulti(sinks ...autodiff.Publisher) *Multi {
	return &Multi{sinks: append([]autodiff.Publisher(nil), sinks...)}
}

// Len returns the number of sinks.
func (m *Multi) Len() int {
	return len(m.sinks)
}

// Publish forwards to every sink and returns the first error. The context
// passed to the sinks is cancelled once any of them fails.
func (m *Multi) Publish(ctx context.Context, name string, step int64, data *tensor.RawTensor) error {
	ctx, span := otel.Tracer("sink").Start(ctx, "sink.Multi.Publish",
		trace.WithAttributes(
			attribute.String("name", name),
			attribute.Int64("step", step),
			attribute.Int("sinks", len(m.sinks)),
		),
	)
	defer span.End()

	g, ctx := errgroup.WithContext(ctx)
	for _, s := range m.sinks {
		g.Go(func() error {
			return s.Publish(ctx, name, step, data)
		})
	}

	if err := g.Wait(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("publish %s@%d: %w", name, step, err)
	}
	return nil
}

// Close closes every sink that implements io.Closer and joins their errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if c, ok := s.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
