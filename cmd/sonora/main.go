package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/wbell/sonora/internal/artwork"
	"github.com/wbell/sonora/internal/assetcache"
	"github.com/wbell/sonora/internal/config"
	"github.com/wbell/sonora/internal/importer"
	"github.com/wbell/sonora/internal/library"
	"github.com/wbell/sonora/internal/log"
	"github.com/wbell/sonora/internal/mediasession"
	"github.com/wbell/sonora/internal/notify"
	"github.com/wbell/sonora/internal/player"
	"github.com/wbell/sonora/internal/radio"
	"github.com/wbell/sonora/internal/store"
	"github.com/wbell/sonora/internal/tui"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("sonora %s\n", Version)
		return
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := log.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = log.NullLogger()
	}
	slog.SetDefault(logger)

	logger.Info("starting sonora", "version", Version)

	// Write the effective configuration out: sonora config
	if len(args) > 0 && args[0] == "config" {
		if err := config.SaveConfig(cfg); err != nil {
			return err
		}
		fmt.Println("Configuration written; edit it under ~/.config/sonora")
		return nil
	}

	st, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	// Headless import: sonora import <paths...>
	if len(args) > 0 && args[0] == "import" {
		return runImport(st, args[1:], logger)
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return fmt.Errorf("sonora is a terminal application; run it in an interactive shell")
	}

	art, err := artwork.NewCache(filepath.Join(config.LeasePath(), "art"), logger)
	if err != nil {
		return fmt.Errorf("failed to create artwork cache: %w", err)
	}

	cache := library.NewCache(st, logger)
	lib := library.NewService(st, art, logger)
	imp := importer.NewService(importer.TagExtractor{}, st, logger)
	center := notify.NewCenter(logger)
	probe := radio.NewProbe("", logger)
	out := player.NewMPVOutput(cfg.Player.Command, nil, logger)

	ctl, err := player.NewController(st, cache, out, mediasession.Null{},
		center, art, probe.Online, filepath.Join(config.LeasePath(), "audio"), logger)
	if err != nil {
		return fmt.Errorf("failed to create player: %w", err)
	}
	defer ctl.Close()

	// The OS media surface is optional; without a session bus the
	// app runs with in-terminal controls only.
	if session, err := mediasession.NewMPRIS(ctl, logger); err != nil {
		logger.Warn("media session unavailable", "error", err)
	} else {
		ctl.SetSession(session)
		defer session.Close()
	}

	startAssetCache(cfg, logger)

	app := tui.NewApp(cfg, lib, cache, imp, ctl, center, logger)

	p := tea.NewProgram(app, tea.WithAltScreen())
	app.SetSender(p.Send)
	center.SetListener(func(n notify.Notification) {
		p.Send(tui.NotificationMsg{Notification: n})
	})
	out.OnEnded = func() {
		p.Send(tui.TrackEndedMsg{})
	}

	logger.Info("starting TUI")

	if _, err := p.Run(); err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	logger.Info("shutting down")
	return nil
}

// openStore opens the track store, falling back to a throwaway
// database when the configured one cannot be opened. The library
// then reads as empty instead of the app refusing to start.
func openStore(cfg *config.Config, logger *slog.Logger) (*store.TrackStore, error) {
	st, err := store.Open(cfg.Storage.Path, logger)
	if err == nil {
		return st, nil
	}
	logger.Error("storage unavailable, starting with an empty library",
		"path", cfg.Storage.Path, "error", err)

	fallback := filepath.Join(os.TempDir(), "sonora-fallback.db")
	st, ferr := store.Open(fallback, logger)
	if ferr != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return st, nil
}

// runImport imports the given paths without starting the TUI.
func runImport(st *store.TrackStore, paths []string, logger *slog.Logger) error {
	if len(paths) == 0 {
		return fmt.Errorf("usage: sonora import <files...>")
	}

	imp := importer.NewService(importer.TagExtractor{}, st, logger)
	tracks, err := imp.ImportFiles(paths, func(phase importer.Phase, done, total int) {
		fmt.Printf("\r%-8s %d/%d", capitalize(string(phase)), done, total)
	})
	fmt.Println()
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	fmt.Printf("Imported %d tracks\n", len(tracks))
	return nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// assetPlan derives the prefetch manifest and the skip list from the
// config. Station artwork is cacheable; stream and embed URLs are
// live surfaces and must never enter the cache.
func assetPlan(cfg *config.Config) (manifest []string, skip func(url string) bool) {
	skipped := make(map[string]bool)
	manifest = append(manifest, cfg.Assets.Manifest...)
	for _, s := range cfg.Radios {
		if s.StreamURL != "" {
			skipped[s.StreamURL] = true
		}
		if s.EmbedURL != "" {
			skipped[s.EmbedURL] = true
		}
		if s.Art != "" {
			manifest = append(manifest, s.Art)
		}
	}
	return manifest, func(url string) bool { return skipped[url] }
}

// startAssetCache activates the offline asset cache in the
// background: station artwork gets prefetched, live streams and
// embed pages never enter the cache.
func startAssetCache(cfg *config.Config, logger *slog.Logger) {
	manifest, skip := assetPlan(cfg)

	ac, err := assetcache.New(config.AssetCachePath(), cfg.Assets.Version,
		skip, logger)
	if err != nil {
		logger.Warn("asset cache unavailable", "error", err)
		return
	}

	go func() {
		if err := ac.Activate(manifest); err != nil {
			logger.Warn("asset cache activation failed", "error", err)
		}
	}()
}
