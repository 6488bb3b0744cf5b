package autodiff

import (
	"context"
	"fmt"
	"sort"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// Publisher is the narrow sink the engine reports to: a named numeric array
// at a given step. Implementations live in the sink package.
type Publisher interface {
	Publish(ctx context.Context, name string, step int64, data *tensor.RawTensor) error
}

// PublishValues publishes each Value's payload under its key and, when
// present, its gradient under key + ".grad". Keys are published in sorted
// order.
func PublishValues(ctx context.Context, p Publisher, step int64, values map[string]*Value) error {
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		v := values[name]
		if err := p.Publish(ctx, name, step, v.Data()); err != nil {
			return fmt.Errorf("publish %s: %w", name, err)
		}
		if v.Grad() == nil {
			continue
		}
		if err := p.Publish(ctx, name+".grad", step, v.Grad()); err != nil {
			return fmt.Errorf("publish %s.grad: %w", name, err)
		}
	}
	return nil
}
