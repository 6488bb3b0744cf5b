package sink

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/autodiff"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

// Validation limits for snapshot files.
const (
	MaxHeaderSize = 100 * 1024 * 1024 // 100MB
	MaxNameLen    = 4096
)

// Reserved metadata keys.
const (
	MetaCreatedAt = "created_at"
	MetaRunID     = "run_id"
	MetaChecksum  = "sha256"
	metadataKey   = "__metadata__"
	dtypeF64      = "F64"
	bytesPerElem  = 8
)

var _ autodiff.Publisher = (*SnapshotWriter)(nil)

// snapshotEntry represents an array in the SafeTensors header.
type snapshotEntry struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// SnapshotKey returns the file key for an array published at step.
func SnapshotKey(name string, step int64) string {
	return name + "@" + strconv.FormatInt(step, 10)
}

// SnapshotWriter buffers published arrays and writes them as one SafeTensors
// file when closed. Republishing a name at the same step overwrites it.
type SnapshotWriter struct {
	path     string
	metadata map[string]string

	mu      sync.Mutex
	tensors map[string]*tensor.RawTensor
	closed  bool
}

// NewSnapshotWriter creates a writer targeting path. metadata is copied into
// the file header together with a run id, creation time and data checksum.
func NewSnapshotWriter(path string, metadata map[string]string) *SnapshotWriter {
	meta := make(map[string]string, len(metadata)+1)
	for k, v := range metadata {
		meta[k] = v
	}
	if _, ok := meta[MetaRunID]; !ok {
		meta[MetaRunID] = uuid.NewString()
	}
	return &SnapshotWriter{
		path:     path,
		metadata: meta,
		tensors:  make(map[string]*tensor.RawTensor),
	}
}

// Path returns the target file path.
func (w *SnapshotWriter) Path() string {
	return w.path
}

// Publish buffers a copy of data under SnapshotKey(name, step).
func (w *SnapshotWriter) Publish(_ context.Context, name string, step int64, data *tensor.RawTensor) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}
	w.tensors[SnapshotKey(name, step)] = data.Clone()
	return nil
}

// Len returns the number of buffered arrays.
func (w *SnapshotWriter) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.tensors)
}

// Close writes the snapshot file. Later calls are no-ops.
func (w *SnapshotWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return WriteSnapshot(w.path, w.tensors, w.metadata)
}

// ValidateName rejects names that cannot round-trip through a snapshot key.
func ValidateName(name string) error {
	switch {
	case name == "":
		return &ValidationError{Type: "invalid_name", Details: "empty name"}
	case len(name) > MaxNameLen:
		return &ValidationError{
			Type:    "name_too_long",
			Key:     name,
			Details: fmt.Sprintf("length %d > max %d", len(name), MaxNameLen),
		}
	case strings.Contains(name, "@"):
		return &ValidationError{Type: "invalid_name", Key: name, Details: "contains '@' (step separator)"}
	case strings.Contains(name, ".."):
		return &ValidationError{Type: "invalid_name", Key: name, Details: "contains '..'"}
	case strings.ContainsAny(name, "/\\\x00"):
		return &ValidationError{Type: "invalid_name", Key: name, Details: "contains path separator or null byte"}
	}
	return nil
}

// WriteSnapshot writes arrays to a SafeTensors file.
//
// Arrays are stored as F64 in alphabetical key order. The header metadata
// receives the creation time (unless set) and the SHA-256 of the data
// section.
func WriteSnapshot(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	total := 0
	for name, raw := range tensors {
		names = append(names, name)
		total += raw.NumElements()
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	data := make([]byte, 0, total*bytesPerElem)
	for _, name := range names {
		raw := tensors[name]
		start := int64(len(data))
		for _, v := range raw.Data() {
			data = binary.LittleEndian.AppendUint64(data, math.Float64bits(v))
		}

		shape := make([]int64, len(raw.Shape()))
		for i, dim := range raw.Shape() {
			shape[i] = int64(dim)
		}
		header[name] = snapshotEntry{
			DType:       dtypeF64,
			Shape:       shape,
			DataOffsets: [2]int64{start, int64(len(data))},
		}
	}

	meta := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		meta[k] = v
	}
	if _, ok := meta[MetaCreatedAt]; !ok {
		meta[MetaCreatedAt] = time.Now().UTC().Format(time.RFC3339)
	}
	sum := sha256.Sum256(data)
	meta[MetaChecksum] = hex.EncodeToString(sum[:])
	header[metadataKey] = meta

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	//nolint:gosec // G304: snapshot path is chosen by the caller
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	defer func() {
		_ = file.Close() // Best effort close; Sync reports write errors
	}()

	if err := binary.Write(file, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := file.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync snapshot: %w", err)
	}
	return nil
}

// Snapshot is a loaded snapshot file.
type Snapshot struct {
	Metadata map[string]string
	Tensors  map[string]*tensor.RawTensor
}

// Keys returns the array keys in sorted order.
func (s *Snapshot) Keys() []string {
	keys := make([]string, 0, len(s.Tensors))
	for k := range s.Tensors {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the array published under name at step.
func (s *Snapshot) Get(name string, step int64) (*tensor.RawTensor, bool) {
	raw, ok := s.Tensors[SnapshotKey(name, step)]
	return raw, ok
}

// ReadSnapshot loads and validates a snapshot written by WriteSnapshot.
// A stored checksum that does not match the data yields ErrChecksumMismatch.
func ReadSnapshot(path string) (*Snapshot, error) {
	//nolint:gosec // G304: snapshot path is chosen by the caller
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if len(raw) < 8 {
		return nil, &ValidationError{Type: "truncated", Details: fmt.Sprintf("file has %d bytes", len(raw))}
	}

	headerSize := binary.LittleEndian.Uint64(raw[:8])
	if headerSize > MaxHeaderSize || headerSize > uint64(len(raw)-8) {
		return nil, &ValidationError{
			Type:    "header_too_large",
			Details: fmt.Sprintf("header size %d, file size %d", headerSize, len(raw)),
		}
	}
	headerEnd := 8 + int(headerSize)

	var header map[string]json.RawMessage
	if err := json.Unmarshal(raw[8:headerEnd], &header); err != nil {
		return nil, fmt.Errorf("failed to parse header: %w", err)
	}
	data := raw[headerEnd:]

	snap := &Snapshot{
		Metadata: map[string]string{},
		Tensors:  make(map[string]*tensor.RawTensor, len(header)),
	}
	if msg, ok := header[metadataKey]; ok {
		if err := json.Unmarshal(msg, &snap.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
		delete(header, metadataKey)
	}
	if stored, ok := snap.Metadata[MetaChecksum]; ok {
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != stored {
			return nil, ErrChecksumMismatch
		}
	}

	entries := make(map[string]snapshotEntry, len(header))
	for key, msg := range header {
		var e snapshotEntry
		if err := json.Unmarshal(msg, &e); err != nil {
			return nil, fmt.Errorf("failed to parse entry %q: %w", key, err)
		}
		if err := validateEntry(key, e, int64(len(data))); err != nil {
			return nil, err
		}
		entries[key] = e
	}
	if err := validateOffsets(entries); err != nil {
		return nil, err
	}

	for key, e := range entries {
		shape := make(tensor.Shape, len(e.Shape))
		for i, dim := range e.Shape {
			shape[i] = int(dim)
		}
		values := make([]float64, shape.NumElements())
		chunk := data[e.DataOffsets[0]:e.DataOffsets[1]]
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(chunk[i*bytesPerElem:]))
		}
		t, err := tensor.FromSlice(values, shape)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", key, err)
		}
		snap.Tensors[key] = t
	}
	return snap, nil
}

func validateEntry(key string, e snapshotEntry, dataSize int64) error {
	if e.DType != dtypeF64 {
		return &ValidationError{Type: "unsupported_dtype", Key: key, Details: e.DType}
	}
	n := int64(1)
	for _, dim := range e.Shape {
		if dim < 0 {
			return &ValidationError{Type: "invalid_shape", Key: key, Details: fmt.Sprintf("shape %v", e.Shape)}
		}
		n *= dim
	}
	start, end := e.DataOffsets[0], e.DataOffsets[1]
	if start < 0 || end < start {
		return &ValidationError{
			Type:    "negative_offset",
			Key:     key,
			Details: fmt.Sprintf("offsets [%d, %d]", start, end),
		}
	}
	if end > dataSize {
		return &ValidationError{
			Type:    "out_of_bounds",
			Key:     key,
			Details: fmt.Sprintf("end %d > data_size %d", end, dataSize),
		}
	}
	if end-start != n*bytesPerElem {
		return &ValidationError{
			Type:    "size_mismatch",
			Key:     key,
			Details: fmt.Sprintf("%d bytes for %d elements", end-start, n),
		}
	}
	return nil
}

func validateOffsets(entries map[string]snapshotEntry) error {
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return entries[keys[i]].DataOffsets[0] < entries[keys[j]].DataOffsets[0]
	})
	for i := 1; i < len(keys); i++ {
		prev, cur := entries[keys[i-1]], entries[keys[i]]
		if prev.DataOffsets[1] > cur.DataOffsets[0] {
			return &ValidationError{
				Type:    "offset_overlap",
				Key:     keys[i],
				Details: fmt.Sprintf("overlaps %q", keys[i-1]),
			}
		}
	}
	return nil
}
