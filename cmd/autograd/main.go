// Package main provides the autograd CLI: a guided tour of define-by-run
// differentiation and a small fitting demo that publishes to sinks.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/davecgh/go-spew/spew"

	"github.com/qpg93/DeepLearningWithPyTorch/internal/config"
	"github.com/qpg93/DeepLearningWithPyTorch/internal/tensor"
)

const version = "v0.1.0"

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintf(out, "Usage: autograd [flags] <command>\n\n")
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  tour       Walk through recording, backward, vector-Jacobian products, no-grad and detach")
	fmt.Fprintln(out, "  fit        Fit a linear model with the configured optimizer and publish to sinks")
	fmt.Fprintln(out, "  info       Show CPU and parallelism settings")
	fmt.Fprintln(out, "  version    Show version")
	fmt.Fprintln(out, "\nFlags:")
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	steps := flag.Int("steps", 0, "Number of fit steps (overrides config)")
	snapshot := flag.String("snapshot", "", "Write published arrays to this SafeTensors file")
	metrics := flag.String("metrics", "", "Write Prometheus metrics to this textfile")
	dump := flag.Bool("dump", false, "Dump the effective configuration and graph statistics")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if *steps > 0 {
		cfg.Steps = *steps
	}
	if *snapshot != "" {
		cfg.Sink.Snapshot = *snapshot
	}
	if *metrics != "" {
		cfg.Sink.Metrics = *metrics
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	tensor.SetParallelism(cfg.Parallel)

	if *dump {
		spew.Fdump(os.Stdout, cfg)
	}

	if err := run(context.Background(), os.Stdout, flag.Arg(0), cfg, *dump); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, w io.Writer, command string, cfg config.Config, dump bool) error {
	switch command {
	case "tour":
		stats, err := runTour(w, cfg)
		if dump {
			spew.Fdump(w, stats)
		}
		return err
	case "fit":
		res, err := runFit(ctx, w, cfg)
		if dump && res != nil {
			spew.Fdump(w, res.Stats)
		}
		return err
	case "info":
		return runInfo(w, cfg)
	case "version":
		_, err := fmt.Fprintf(w, "autograd %s\n", version)
		return err
	}
	return fmt.Errorf("unknown command %q (want tour, fit, info or version)", command)
}
