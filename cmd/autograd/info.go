package main

import (
	"fmt"
	"io"
	"runtime"
	"strings"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/config"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/parallel"
)

func runInfo(w io.Writer, cfg config.Config) error {
	features := strings.Join(parallel.Features(), " ")
	if features == "" {
		features = "none detected"
	}
	_, err := fmt.Fprintf(w,
		"autograd %s (%s, %s/%s)\nCPU: %s\nSIMD: %s\nParallel kernels: enabled=%t workers=%d min_chunk=%d\n",
		version, runtime.Version(), runtime.GOOS, runtime.GOARCH,
		parallel.Describe(), features,
		cfg.Parallel.Enabled, cfg.Parallel.NumWorkers, cfg.Parallel.MinChunkSize)
	return err
}
