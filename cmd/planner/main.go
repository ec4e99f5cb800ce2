package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/spice-planner/internal/advisor"
	"github.com/tatianab/spice-planner/internal/catalog"
	"github.com/tatianab/spice-planner/internal/config"
	"github.com/tatianab/spice-planner/internal/share"
	"github.com/tatianab/spice-planner/internal/share/shortlink"
	"github.com/tatianab/spice-planner/internal/storage"
	"github.com/tatianab/spice-planner/internal/storage/file"
	"github.com/tatianab/spice-planner/internal/storage/sqlite"
	"github.com/tatianab/spice-planner/internal/store"
	"github.com/tatianab/spice-planner/internal/tui"
)

func main() {
	shared := flag.String("share", "", "share link or token to open")
	flag.Parse()

	if err := run(*shared); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(sharedLink string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logFile, err := tea.LogToFile(cfg.LogFile, "planner")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.Level()}))
	slog.SetDefault(logger)

	var st storage.Storage
	switch cfg.Storage {
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return fmt.Errorf("opening sqlite storage: %w", err)
		}
		defer db.Close()
		st = db
	default:
		st = file.New(cfg.SaveDir)
	}

	cat, err := catalog.Load()
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	s := store.Open(ctx, st,
		store.WithLogger(logger),
		store.WithUnitCost(cat.UnitCost),
	)

	if sharedLink != "" {
		b, ok := share.Decode(sharedLink)
		if !ok || !s.LoadSharedBuild(b) {
			logger.Warn("ignoring unreadable share link", "link", sharedLink)
		}
	}

	opts := tui.Options{
		Store:        s,
		Catalog:      cat,
		ShareBaseURL: cfg.ShareBaseURL,
		Logger:       logger,
	}
	if cfg.ShortlinkURL != "" {
		opts.Shortener = shortlink.New(cfg.ShortlinkURL)
	}
	if cfg.AdvisorEnabled() {
		adv, err := advisor.NewAdvisor(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return fmt.Errorf("creating advisor: %w", err)
		}
		defer adv.Close()
		opts.Advisor = adv
	}

	return tui.Run(opts)
}
