package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pdfpress/internal/config"
	"pdfpress/internal/engine"
	"pdfpress/internal/event"
	"pdfpress/internal/gs"
	"pdfpress/internal/stats"
	"pdfpress/internal/ui"
)

var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	var (
		trackingFile   string
		qualityStr     string
		workers        int
		dryRun         bool
		minSavings     float64
		maxAgeHours    float64
		toolTimeoutSec int
		toolPath       string
		extension      string
		strictTracking bool
		verbose        bool
		quiet          bool
		logFile        string
		showVersion    bool
	)

	rootCmd := &cobra.Command{
		Use:   "pdfpress [flags] <directory>...",
		Short: "Incrementally re-compress a PDF corpus with Ghostscript",
		Args: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				return nil
			}
			return cobra.MinimumNArgs(1)(cmd, args)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showVersion {
				fmt.Fprintf(os.Stdout, "pdfpress %s\n", version)
				return nil
			}

			// Load optional config file.
			cfg, err := config.Load()
			if err != nil {
				slog.Warn("failed to load config", "error", err)
			}
			applyConfigDefaults(cmd.Flags(), cfg.Defaults,
				&qualityStr, &workers, &minSavings, &maxAgeHours, &toolPath, &toolTimeoutSec)

			quality, err := gs.ParseQuality(qualityStr)
			if err != nil {
				return err
			}

			if minSavings < 0 || minSavings > 100 {
				return fmt.Errorf("--min-savings must be between 0 and 100, got %v", minSavings)
			}

			// Configure logging.
			logLevel := slog.LevelWarn
			if verbose {
				logLevel = slog.LevelDebug
			} else if !quiet {
				logLevel = slog.LevelInfo
			}
			textHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: logLevel,
			})
			var logHandler slog.Handler = textHandler
			if logFile != "" {
				lf, lfErr := os.Create(logFile)
				if lfErr != nil {
					return fmt.Errorf("open log file: %w", lfErr)
				}
				defer lf.Close()
				jsonHandler := slog.NewJSONHandler(lf, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})
				logHandler = ui.NewMultiHandler(textHandler, jsonHandler)
			}
			slog.SetDefault(slog.New(logHandler))

			if dryRun {
				slog.Info("dry run mode")
			}

			if workers <= 0 {
				workers = runtime.NumCPU()
			}

			roots := make([]string, 0, len(args))
			for _, root := range args {
				info, statErr := os.Stat(root)
				if statErr != nil || !info.IsDir() {
					slog.Warn("directory not found, skipping", "path", root)
					continue
				}
				roots = append(roots, root)
			}
			if len(roots) == 0 {
				return fmt.Errorf("no usable directories among %v", args)
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			collector := stats.NewCollector()
			events := make(chan event.Event, 256)

			// When --log is set, tee events through a logging goroutine
			// that writes structured records before forwarding.
			presenterEvents := (<-chan event.Event)(events)
			if logFile != "" {
				teed := make(chan event.Event, 256)
				go func() {
					for ev := range events {
						attrs := []slog.Attr{
							slog.String("type", ev.Type.String()),
							slog.String("path", ev.Path),
							slog.Int64("original_size", ev.OriginalSize),
							slog.Int64("compressed_size", ev.CompressedSize),
						}
						if ev.Reason != "" {
							attrs = append(attrs, slog.String("reason", ev.Reason))
						}
						slog.LogAttrs(context.Background(), slog.LevelInfo, "pdfpress.event", attrs...)
						teed <- ev
					}
					close(teed)
				}()
				presenterEvents = teed
			}

			presenter := ui.NewPresenter(ui.Config{
				Writer:    os.Stdout,
				ErrWriter: os.Stderr,
				Stats:     collector,
				Quiet:     quiet,
				Verbose:   verbose,
				DryRun:    dryRun,
			})

			engineCfg := engine.Config{
				Roots:             roots,
				TrackingFile:      trackingFile,
				StrictTracking:    strictTracking,
				Tool:              toolPath,
				Quality:           quality,
				Workers:           workers,
				DryRun:            dryRun,
				MinSavingsPercent: minSavings,
				MaxAge:            time.Duration(maxAgeHours * float64(time.Hour)),
				ToolTimeout:       time.Duration(toolTimeoutSec) * time.Second,
				Extension:         extension,
				Events:            events,
				Stats:             collector,
			}

			slog.Debug("starting compression run",
				"roots", roots,
				"tracking", trackingFile,
				"quality", quality,
				"workers", workers,
				"min_savings", minSavings,
				"max_age_hours", maxAgeHours,
			)

			var presenterErr error
			var presenterWg sync.WaitGroup
			presenterWg.Add(1)
			go func() {
				defer presenterWg.Done()
				presenterErr = presenter.Run(presenterEvents)
			}()

			result := engine.Run(ctx, engineCfg)
			stop()
			close(events)
			presenterWg.Wait()
			if presenterErr != nil {
				fmt.Fprintf(os.Stderr, "presenter: %v\n", presenterErr)
			}

			if !quiet {
				if summary := presenter.Summary(); summary != "" {
					fmt.Fprintln(os.Stderr, summary)
				}
			}

			// Per-file failures are tallied, not fatal. Only a tracking
			// store catastrophe produces a non-zero exit.
			if result.Err != nil {
				slog.Error("run failed", "error", result.Err)
				return &exitError{code: 1}
			}
			if result.Stats.Failed > 0 {
				slog.Warn("run completed with per-file errors", "failed", result.Stats.Failed)
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&showVersion, "version", false, "print version and exit")
	rootCmd.Flags().
		StringVarP(&trackingFile, "tracking-file", "t", "compression-tracking.json", "JSON file recording per-file compression outcomes")
	rootCmd.Flags().
		StringVar(&qualityStr, "quality", "ebook", "compression quality (screen, ebook, printer, prepress)")
	rootCmd.Flags().
		IntVarP(&workers, "workers", "n", 0, "number of compression workers (default: number of CPUs)")
	rootCmd.Flags().BoolVar(&dryRun, "dry-run", false, "report what would be compressed without modifying anything")
	rootCmd.Flags().
		Float64Var(&minSavings, "min-savings", 5.0, "minimum percentage savings required to keep a compressed version")
	rootCmd.Flags().
		Float64Var(&maxAgeHours, "max-age", 24, "skip files checked within this many hours (0 re-checks everything)")
	rootCmd.Flags().
		IntVar(&toolTimeoutSec, "tool-timeout", 0, "per-file compressor timeout in seconds (0: no limit)")
	rootCmd.Flags().StringVar(&toolPath, "gs", "gs", "path to the Ghostscript binary")
	rootCmd.Flags().StringVar(&extension, "ext", ".pdf", "file extension to scan for")
	rootCmd.Flags().
		BoolVar(&strictTracking, "strict-tracking", false, "fail on a malformed tracking file instead of starting fresh")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.Flags().StringVar(&logFile, "log", "", "write structured JSON log to FILE")

	if err := rootCmd.Execute(); err != nil {
		if exitErr, ok := err.(*exitError); ok {
			return exitErr.code
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	return 0
}

// applyConfigDefaults applies config file defaults for flags not explicitly
// set on the CLI.
func applyConfigDefaults(
	flags *pflag.FlagSet,
	defaults config.DefaultsConfig,
	quality *string,
	workers *int,
	minSavings *float64,
	maxAgeHours *float64,
	tool *string,
	toolTimeoutSec *int,
) {
	if !flags.Changed("quality") && defaults.Quality != nil {
		*quality = *defaults.Quality
	}
	if !flags.Changed("workers") && defaults.Workers != nil {
		*workers = *defaults.Workers
	}
	if !flags.Changed("min-savings") && defaults.MinSavings != nil {
		*minSavings = *defaults.MinSavings
	}
	if !flags.Changed("max-age") && defaults.MaxAgeHours != nil {
		*maxAgeHours = *defaults.MaxAgeHours
	}
	if !flags.Changed("gs") && defaults.Tool != nil {
		*tool = *defaults.Tool
	}
	if !flags.Changed("tool-timeout") && defaults.ToolTimeoutSec != nil {
		*toolTimeoutSec = *defaults.ToolTimeoutSec
	}
}

type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit code %d", e.code)
}
