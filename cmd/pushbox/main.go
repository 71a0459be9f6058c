package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/neox5/pushbox/internal/app"
	"github.com/neox5/pushbox/internal/config"
	"github.com/neox5/pushbox/internal/record"
	"github.com/neox5/pushbox/internal/version"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cmd := &cli.Command{
		Name:    "pushbox",
		Usage:   "Turn records into labeled gauges and push them to a Pushgateway or OTLP collector",
		Version: version.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "path to configuration file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "consume records from the configured sources",
				Action: run,
			},
			{
				Name:   "validate",
				Usage:  "check the configuration and print every problem found",
				Action: validate,
			},
			{
				Name:   "push",
				Usage:  "build and push the gauges for a single record",
				Flags:  pushFlags,
				Action: push,
			},
		},
		DefaultCommand: "run",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var pushFlags = []cli.Flag{
	&cli.StringSliceFlag{
		Name:    "attr",
		Aliases: []string{"a"},
		Usage:   "record attribute as name=value (repeatable)",
	},
	&cli.StringFlag{
		Name:  "body",
		Usage: "record body",
	},
	&cli.StringFlag{
		Name:  "body-file",
		Usage: "read the record body from a file (- for stdin)",
	},
}

func setupLogging(cmd *cli.Command) *slog.Logger {
	logLevel := slog.LevelInfo
	if cmd.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

func run(ctx context.Context, cmd *cli.Command) error {
	logger := setupLogging(cmd)
	configPath := cmd.String("config")

	slog.Info("starting pushbox", "version", version.String(), "config", configPath)

	slog.Debug("--- Configuration Loading ---")
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if diags := config.ValidateSources(cfg); len(diags) > 0 {
		return &config.ValidationError{Diagnostics: diags}
	}

	// Setup graceful shutdown
	shutdownCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Debug("--- Application Setup ---")
	application, err := app.New(shutdownCtx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer closeApp(application)

	if err := application.Run(shutdownCtx); err != nil {
		return err
	}

	slog.Info("shutdown complete")
	return nil
}

func validate(_ context.Context, cmd *cli.Command) error {
	setupLogging(cmd)
	configPath := cmd.String("config")

	cfg, err := config.Load(configPath)
	var verr *config.ValidationError
	if errors.As(err, &verr) {
		printDiagnostics(verr.Diagnostics)
		return fmt.Errorf("%s: %d problem(s)", configPath, len(verr.Diagnostics))
	}
	if err != nil {
		return err
	}

	if diags := config.ValidateSources(cfg); len(diags) > 0 {
		fmt.Println("warning: `run` needs at least one source:")
		printDiagnostics(diags)
	}

	fmt.Printf("%s: configuration valid (%d gauge(s), transport %s)\n", configPath, len(cfg.Gauges), cfg.Export.Transport)
	return nil
}

func printDiagnostics(diags []config.Diagnostic) {
	for _, d := range diags {
		fmt.Printf("  [%s] %s: %s\n", d.Kind, d.Subject, d.Explanation)
	}
}

func push(ctx context.Context, cmd *cli.Command) error {
	logger := setupLogging(cmd)

	rec, err := recordFromFlags(cmd)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	defer closeApp(application)

	if err := application.Push(ctx, rec); err != nil {
		return err
	}

	slog.Info("record pushed", "gauges", len(cfg.Gauges))
	return nil
}

func recordFromFlags(cmd *cli.Command) (record.Record, error) {
	rec := record.Record{Attributes: make(map[string]string)}

	for _, attr := range cmd.StringSlice("attr") {
		name, value, ok := strings.Cut(attr, "=")
		if !ok || name == "" {
			return record.Record{}, fmt.Errorf("invalid attribute %q (want name=value)", attr)
		}
		rec.Attributes[name] = value
	}

	body, bodyFile := cmd.String("body"), cmd.String("body-file")
	switch {
	case body != "" && bodyFile != "":
		return record.Record{}, errors.New("--body and --body-file are mutually exclusive")
	case body != "":
		rec.Body = []byte(body)
	case bodyFile == "-":
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return record.Record{}, fmt.Errorf("failed to read body from stdin: %w", err)
		}
		rec.Body = data
	case bodyFile != "":
		data, err := os.ReadFile(bodyFile)
		if err != nil {
			return record.Record{}, fmt.Errorf("failed to read body file: %w", err)
		}
		rec.Body = data
	}

	return rec, nil
}

func closeApp(a *app.App) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.Close(ctx); err != nil {
		slog.Warn("failed to close push transport", "error", err)
	}
}
