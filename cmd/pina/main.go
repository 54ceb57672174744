// Package main provides the pina command: it trains ready-made
// physics-informed problems from a YAML run file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/dario-coscia/PINA/backend/cpu"
	"github.com/dario-coscia/PINA/internal/config"
	"github.com/dario-coscia/PINA/internal/zoo"
)

const version = "v0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stdout)
		return 2
	}
	switch args[0] {
	case "version":
		fmt.Fprintf(stdout, "pina %s\n", version)
		fmt.Fprintf(stdout, "cpu: %s\n", cpu.New().Features())
		return 0
	case "problems":
		for _, name := range zoo.Names() {
			fmt.Fprintln(stdout, name)
		}
		return 0
	case "train":
		return trainCommand(ctx, args[1:], stdout, stderr)
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return 0
	}
	fmt.Fprintf(stderr, "pina: unknown command %q\n", args[0])
	usage(stderr)
	return 2
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "pina %s\n\n", version)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  version                 Show version and CPU features")
	fmt.Fprintln(w, "  problems                List available problems")
	fmt.Fprintln(w, "  train [flags]           Train a PINN (train -h for flags)")
}

func trainCommand(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("train", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "YAML run file (defaults apply when empty)")
	problemName := fs.String("problem", "", "problem to train, overrides the run file")
	epochs := fs.Int("epochs", 0, "number of epochs, overrides the run file")
	logFormat := fs.String("log-format", "text", "log format: text or json")
	load := fs.String("load", "", "warm start from a parameter checkpoint, overrides the run file")
	save := fs.String("save", "", "write the trained parameters, overrides the run file")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var handler slog.Handler
	switch *logFormat {
	case "text":
		handler = slog.NewTextHandler(stderr, nil)
	case "json":
		handler = slog.NewJSONHandler(stderr, nil)
	default:
		fmt.Fprintf(stderr, "pina: unknown log format %q\n", *logFormat)
		return 2
	}
	logger := slog.New(handler)

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			logger.Error("loading run file", "path", *configPath, "err", err)
			return 1
		}
		cfg = *loaded
	}
	if *problemName != "" {
		cfg.Problem = *problemName
	}
	if *epochs != 0 {
		cfg.Epochs = *epochs
	}
	if *load != "" {
		cfg.Checkpoint.Load = *load
	}
	if *save != "" {
		cfg.Checkpoint.Save = *save
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid run", "err", err)
		return 1
	}

	report, err := train(ctx, &cfg, logger)
	if err != nil {
		logger.Error("training failed", "problem", cfg.Problem, "err", err)
		return 1
	}
	report.write(stdout)
	return 0
}
