// Package sink provides destinations for the arrays an autodiff run publishes:
// payloads and gradients reported by name at a training step.
//
// Every sink implements autodiff.Publisher and is safe for concurrent use:
//
//	Recorder             in-memory history with summary statistics
//	LogPublisher         one log line per array
//	SnapshotWriter       SafeTensors file written on Close
//	PrometheusPublisher  gauges and counters on a caller-supplied registry
//	Multi                concurrent fan-out to several sinks
//
// Snapshot format (SafeTensors):
//
//	[8 bytes: header size (uint64 LE)]
//	[header: JSON, keys "name@step" plus "__metadata__"]
//	[data: float64 LE, keys in sorted order]
//
// Example usage:
//
//	snap := sink.NewSnapshotWriter("run.safetensors", nil)
//	rec := sink.NewRecorder()
//	out := sink.NewMulti(rec, snap)
//	_ = autodiff.PublishValues(ctx, out, step, map[string]*autodiff.Value{"w": w})
//	if err := out.Close(); err != nil {
//	    log.Fatal(err)
//	}
package sink
