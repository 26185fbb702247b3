// Command bondgraph infers bonds for a particle scene described in YAML.
//
//	bondgraph -scene water.yaml -format yaml -molecules
//
// With no -scene the scene is read from stdin.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/TrevorS/bondgraph"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("bondgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)
	scenePath := fs.String("scene", "", "scene YAML file (default stdin)")
	policyPath := fs.String("policy", "", "policy YAML file, replacing the scene's policy")
	format := fs.String("format", "text", "output format: text or yaml")
	workers := fs.Int("workers", 0, "search goroutines, overriding the scene config")
	molecules := fs.Bool("molecules", false, "log a molecule summary")
	verbose := fs.Bool("v", false, "debug logging")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := bondgraph.NewTextLogger(stderr, level)

	if err := infer(ctx, logger, *scenePath, *policyPath, *format, *workers, *molecules, stdin, stdout); err != nil {
		logger.Error("bondgraph failed", "error", err)
		return 1
	}
	return 0
}

func infer(ctx context.Context, logger *bondgraph.Logger, scenePath, policyPath, format string, workers int, molecules bool, stdin io.Reader, stdout io.Writer) error {
	in := stdin
	if scenePath != "" {
		f, err := os.Open(scenePath)
		if err != nil {
			return fmt.Errorf("open scene: %w", err)
		}
		defer f.Close()
		in = f
	}
	scene, err := loadScene(in)
	if err != nil {
		return err
	}

	var policy *bondgraph.Policy
	if policyPath != "" {
		policy, err = bondgraph.LoadPolicyFile(policyPath)
	} else {
		policy, err = bondgraph.NewPolicy(scene.Policy)
	}
	if err != nil {
		return err
	}

	cfg := scene.BuildConfig()
	if workers > 0 {
		cfg.Workers = workers
	}
	cfg.Logger = logger

	frame := scene.Frame()
	bonds, err := bondgraph.BuildBonds(ctx, frame, policy, cfg)
	if err != nil {
		return err
	}
	logger.Info("bonds inferred", "particles", frame.NumParticles(), "bonds", len(bonds))

	if molecules {
		sizes := bondgraph.MoleculeSizes(bondgraph.Molecules(frame.NumParticles(), bonds))
		largest := 0
		for _, s := range sizes {
			largest = max(largest, s)
		}
		logger.Info("molecules", "count", len(sizes), "largest", largest)
	}

	return writeBonds(stdout, bonds, format)
}
