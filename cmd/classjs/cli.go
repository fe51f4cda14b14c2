// # cmd/classjs/cli.go
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
	"time"

	"classjs/internal/app"
	"classjs/internal/config"
	"classjs/internal/shared/observability"
)

const versionString = "1.0.0"

type cliOptions struct {
	configPath string
	verbose    bool
	version    bool
	command    string
	args       []string

	// trace
	root string
	sep  string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("classjs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.configPath, "config", config.DefaultFile, "Path to config file")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: classjs [flags] build|watch [paths...]")
		fmt.Fprintln(stderr, "       classjs [flags] trace [-root dir] [-sep separator] < trace.txt")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}
	if opts.version {
		return opts, nil
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return cliOptions{}, fmt.Errorf("missing command")
	}

	opts.command = fs.Arg(0)
	rest := fs.Args()[1:]
	switch opts.command {
	case "build", "watch":
		opts.args = rest
	case "trace":
		tfs := flag.NewFlagSet("trace", flag.ContinueOnError)
		tfs.SetOutput(stderr)
		tfs.StringVar(&opts.root, "root", "", "Directory holding the generated artifacts (overrides trace.root)")
		tfs.StringVar(&opts.sep, "sep", "", "Line separator of the trace (default newline)")
		if err := tfs.Parse(rest); err != nil {
			return cliOptions{}, err
		}
		if tfs.NArg() > 0 {
			return cliOptions{}, fmt.Errorf("trace reads the stack trace from stdin, unexpected arguments %v", tfs.Args())
		}
	default:
		fs.Usage()
		return cliOptions{}, fmt.Errorf("unknown command %q", opts.command)
	}
	return opts, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		fmt.Fprintln(stderr, err.Error())
		return 2
	}
	if opts.version {
		fmt.Fprintf(stdout, "classjs v%s\n", versionString)
		return 0
	}

	configureLogging(stderr, opts.verbose)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		slog.Error("failed to load config", "path", opts.configPath, "error", err)
		return 1
	}
	if opts.root != "" {
		cfg.Trace.Root = opts.root
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint, "classjs")
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(flushCtx); err != nil {
			slog.Warn("failed to flush traces", "error", err)
		}
	}()

	if cfg.Observability.MetricsAddr != "" {
		srv := observability.NewServer(cfg.Observability.MetricsAddr)
		if err := srv.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return 1
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Stop(stopCtx)
		}()
	}

	if opts.command == "trace" {
		return runTrace(ctx, cfg, opts, stdin, stdout)
	}

	a, err := app.New(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return 1
	}
	defer a.Close()

	switch opts.command {
	case "watch":
		a.SetReportHandler(func(r *app.Report) {
			fmt.Fprint(stdout, renderReport(r))
		})
		if err := a.Watch(ctx, opts.args); err != nil {
			slog.Error("watch failed", "error", err)
			return 1
		}
		return 0
	default:
		report, err := a.Build(ctx, opts.args)
		if err != nil {
			slog.Error("build failed", "error", err)
			return 1
		}
		fmt.Fprint(stdout, renderReport(report))
		if report.Failed > 0 {
			return 1
		}
		return 0
	}
}

func runTrace(ctx context.Context, cfg *config.Config, opts cliOptions, stdin io.Reader, stdout io.Writer) int {
	data, err := io.ReadAll(stdin)
	if err != nil {
		slog.Error("failed to read stack trace", "error", err)
		return 1
	}
	frames, err := app.Reconstruct(ctx, cfg.Trace.Root, string(data), opts.sep)
	if err != nil {
		slog.Error("failed to reconstruct stack trace", "error", err)
		return 1
	}
	fmt.Fprint(stdout, renderFrames(frames))
	return 0
}

func configureLogging(w io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}

// loadConfig falls back to defaults only when the default file is absent;
// an explicitly named file must exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err == nil {
		return cfg, nil
	}
	if os.IsNotExist(err) && path == config.DefaultFile {
		slog.Debug("no config file, using defaults", "path", path)
		return config.Parse(nil)
	}
	return nil, err
}
