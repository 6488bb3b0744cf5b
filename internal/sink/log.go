package sink

import (
	"context"
	"log"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

var _ autodiff.Publisher = (*LogPublisher)(nil)

// LogPublisher writes one summary line per published array.
type LogPublisher struct {
	logger *log.Logger
}

// NewLogPublisher creates a LogPublisher. A nil logger means log.Default().
func NewLogPublisher(logger *log.Logger) *LogPublisher {
	if logger == nil {
		logger = log.Default()
	}
	return &LogPublisher{logger: logger}
}

// Publish logs the array's shape and summary statistics.
func (p *LogPublisher) Publish(_ context.Context, name string, step int64, data *tensor.RawTensor) error {
	s := Summarize(data.Data())
	p.logger.Printf("step=%d %s shape=%s mean=%.6g min=%.6g max=%.6g norm=%.6g",
		step, name, data.Shape(), s.Mean, s.Min, s.Max, s.Norm)
	return nil
}
