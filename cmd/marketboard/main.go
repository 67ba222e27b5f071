// Command marketboard is the backend entry point for the prediction-market
// dashboard. It loads configuration, validates it, wires dependencies, and
// either serves the HTTP API or runs a single feed fetch.
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

	"github.com/spf13/cobra"

	"github.com/alanyoungcy/marketboard/internal/app"
	"github.com/alanyoungcy/marketboard/internal/config"
	"github.com/alanyoungcy/marketboard/internal/domain"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
var version = "dev"

// fetchFlags holds the parsed flags for the fetch command.
type fetchFlags struct {
	source        string
	cursor        string
	page          int
	limit         int
	categories    []string
	endingWithin  time.Duration
	sort          string
	includeSports bool
	output        string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// cobra already printed the error
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "marketboard",
		Short:        "Prediction-market feed backend",
		Long:         "marketboard fetches Kalshi and Polymarket markets, normalizes, filters and ranks them, and serves the feed to the dashboard.",
		Version:      version,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML configuration file (defaults and environment only when empty)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), configPath)
		},
	}

	var flags fetchFlags
	fetchCmd := &cobra.Command{
		Use:   "fetch",
		Short: "Run one feed fetch and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd.Context(), configPath, flags, cmd.OutOrStdout())
		},
	}
	f := fetchCmd.Flags()
	f.StringVar(&flags.source, "source", "", "kalshi, polymarket, polymarket_events or all (config default when empty)")
	f.StringVar(&flags.cursor, "cursor", "", "upstream cursor from a previous fetch")
	f.IntVar(&flags.page, "page", 1, "1-based page number")
	f.IntVar(&flags.limit, "limit", 0, "page size (config default when zero)")
	f.StringSliceVar(&flags.categories, "category", nil, "restrict to these categories (repeatable or comma-separated)")
	f.DurationVar(&flags.endingWithin, "ending-within", 0, "only markets ending within this window, e.g. 72h")
	f.StringVar(&flags.sort, "sort", "", "rank, volume24h, volume, liquidity, ending or change")
	f.BoolVar(&flags.includeSports, "include-sports", false, "keep sports markets")
	f.StringVarP(&flags.output, "output", "o", "table", "output format: table or json")

	root.AddCommand(serveCmd, fetchCmd)
	return root
}

// loadConfig loads and validates configuration and builds the process logger.
func loadConfig(path string, logOut io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	logger := newLogger(logOut, cfg.LogLevel)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: l}))
}

func runServe(ctx context.Context, configPath string) error {
	cfg, logger, err := loadConfig(configPath, os.Stdout)
	if err != nil {
		return err
	}
	logger.Info("marketboard starting",
		slog.String("version", version),
		slog.String("config", configPath),
		slog.Any("settings", config.RedactedConfig(cfg)),
	)

	application := app.New(cfg, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application exited with error", slog.String("error", err.Error()))
		return err
	}
	logger.Info("marketboard stopped")
	return nil
}

func runFetch(ctx context.Context, configPath string, flags fetchFlags, out io.Writer) error {
	if flags.output != "table" && flags.output != "json" {
		return fmt.Errorf("unknown output %q (valid: table, json)", flags.output)
	}
	// Logs go to stderr so stdout carries only the result.
	cfg, logger, err := loadConfig(configPath, os.Stderr)
	if err != nil {
		return err
	}

	application := app.New(cfg, logger)
	defer application.Close()

	q := flags.query()
	res, err := application.Fetch(ctx, q)
	if err != nil {
		return err
	}
	if flags.output == "json" {
		return writeJSON(out, res, time.Now())
	}
	return writeTable(out, res, time.Now())
}

func (f fetchFlags) query() domain.FeedQuery {
	sort := domain.SortField(strings.ToLower(f.sort))
	if sort == "rank" {
		sort = domain.SortRank
	}
	return domain.FeedQuery{
		Source:        domain.FeedSource(strings.ToLower(f.source)),
		Cursor:        f.cursor,
		Page:          f.page,
		Limit:         f.limit,
		Categories:    f.categories,
		EndingWithin:  f.endingWithin,
		Sort:          sort,
		IncludeSports: f.includeSports,
	}
}
