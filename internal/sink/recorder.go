package sink

import (
	"context"
	"sync"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

var _ autodiff.Publisher = (*Recorder)(nil)

// Entry is one published array.
type Entry struct {
	Name    string
	Step    int64
	Data    *tensor.RawTensor // Private copy taken at publish time
	Summary Summary
}

// Recorder keeps every published array in memory, in publish order.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Publish stores a copy of data.
func (r *Recorder) Publish(_ context.Context, name string, step int64, data *tensor.RawTensor) error {
	e := Entry{
		Name:    name,
		Step:    step,
		Data:    data.Clone(),
		Summary: Summarize(data.Data()),
	}
	r.mu.Lock()
	r.entries = append(r.entries, e)
	r.mu.Unlock()
	return nil
}

// Entries returns a copy of the recorded history.
func (r *Recorder) Entries() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.entries...)
}

// Series returns the entries published under name, in publish order.
func (r *Recorder) Series(name string) []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Entry
	for _, e := range r.entries {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Latest returns the most recent entry published under name.
func (r *Recorder) Latest(name string) (Entry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].Name == name {
			return r.entries[i], true
		}
	}
	return Entry{}, false
}

// Len returns the number of recorded entries.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Reset drops the recorded history.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}
