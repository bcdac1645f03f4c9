package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/markchap/internal/config"
	"github.com/dgallion1/markchap/internal/pipeline"
)

const (
	exitOK    = 0
	exitFatal = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("markchap", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath string
		outputDir  string
		dryRun     bool
		verbose    bool
		logFormat  string
	)
	fs.StringVar(&configPath, "c", config.DefaultPath, "path to the JSON config file")
	fs.StringVar(&configPath, "config", config.DefaultPath, "path to the JSON config file")
	fs.StringVar(&outputDir, "o", "", "output directory (overrides output_directory)")
	fs.StringVar(&outputDir, "output", "", "output directory (overrides output_directory)")
	fs.BoolVar(&dryRun, "n", false, "print unified diffs instead of writing files")
	fs.BoolVar(&dryRun, "dry-run", false, "print unified diffs instead of writing files")
	fs.BoolVar(&verbose, "v", false, "debug logging")
	fs.BoolVar(&verbose, "verbose", false, "debug logging")
	fs.StringVar(&logFormat, "log-format", "text", "log output format: text or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: markchap [flags] <input-dir>\n\n")
		fs.PrintDefaults()
	}

	// flag stops at the first positional argument; keep parsing after each
	// one so flags may follow the input directory.
	var inputs []string
	for {
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, flag.ErrHelp) {
				return exitOK
			}
			return exitUsage
		}
		if fs.NArg() == 0 {
			break
		}
		inputs = append(inputs, fs.Arg(0))
		args = fs.Args()[1:]
	}
	if len(inputs) != 1 {
		fs.Usage()
		return exitUsage
	}
	inputDir := inputs[0]

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var log *slog.Logger
	switch logFormat {
	case "text":
		log = slog.New(slog.NewTextHandler(stderr, opts))
	case "json":
		log = slog.New(slog.NewJSONHandler(stderr, opts))
	default:
		fmt.Fprintf(stderr, "invalid -log-format %q: want text or json\n", logFormat)
		return exitUsage
	}

	explicit := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "c" || f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := config.Load(configPath, explicit)
	if err != nil {
		log.Error("invalid configuration", "path", configPath, "error", err)
		return exitFatal
	}
	if outputDir != "" {
		cfg.OutputDirectory = outputDir
	}

	orch, err := pipeline.NewOrchestrator(cfg, log)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		return exitFatal
	}
	if dryRun {
		orch.DryRun(stdout)
	}

	if _, err := orch.Run(ctx, inputDir); err != nil {
		log.Error("run failed", "input", inputDir, "error", err)
		return exitFatal
	}
	return exitOK
}
