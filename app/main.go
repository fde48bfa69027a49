package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/lysyi3m/news-browser/app/api"
	"github.com/lysyi3m/news-browser/app/archive"
	"github.com/lysyi3m/news-browser/app/cfg"
	"github.com/lysyi3m/news-browser/app/curation"
	"github.com/lysyi3m/news-browser/app/database"
	"github.com/lysyi3m/news-browser/app/digest"
	"github.com/lysyi3m/news-browser/app/feed"
	"github.com/lysyi3m/news-browser/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		os.Exit(1)
	}
	if appCfg == nil {
		return
	}

	cfg.SetupLogger(os.Stderr, appCfg.Debug)

	switch appCfg.Command() {
	case "serve":
		err = serve(appCfg)
	case "normalize":
		err = normalize(appCfg, os.Stdout)
	case "dates":
		err = listDates(appCfg, os.Stdout)
	default:
		err = fmt.Errorf("unknown command %q", appCfg.Command())
	}

	if err != nil {
		slog.Error("Command failed", "command", appCfg.Command(), "error", err)
		os.Exit(1)
	}
}

func newFetcher(appCfg *cfg.Cfg) *feed.Fetcher {
	return feed.NewFetcher(&http.Client{}, appCfg.UserAgent, appCfg.FetchTimeoutDuration(), appCfg.MaxBodySize)
}

// normalize prints the canonical form of a feed document read from a file
// or, with "-", from stdin.
func normalize(appCfg *cfg.Cfg, out io.Writer) error {
	if len(appCfg.Args) < 2 {
		return fmt.Errorf("usage: normalize <file|->")
	}

	var data []byte
	var err error
	if path := appCfg.Args[1]; path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	doc, err := digest.ParseDocument(data)
	if err != nil {
		return err
	}

	normalized := digest.Normalize(doc)
	slog.Debug("Document normalized", "categories", len(normalized.Categories()), "display_date", digest.DisplayDate(normalized, time.Now()))

	encoded, err := json.MarshalIndent(normalized, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	_, err = fmt.Fprintln(out, string(encoded))
	return err
}

func listDates(appCfg *cfg.Cfg, out io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), appCfg.FetchTimeoutDuration())
	defer cancel()

	lister := archive.NewLister(newFetcher(appCfg), appCfg.ArchiveListingURL, appCfg.ArchiveBaseURL)
	dates, err := lister.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "today\t%s\t%s\n", archive.CurrentDate(time.Now(), appCfg.DayOffset), appCfg.FeedURL)
	for _, entry := range dates {
		fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Date, archive.FormatShort(entry.Date), entry.URL)
	}
	return w.Flush()
}

func serve(appCfg *cfg.Cfg) error {
	slog.Info("Starting News Browser", "version", appCfg.Version, "timezone", appCfg.Timezone)

	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	schema, err := database.RunMigrations(db)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "schema_version", schema.Version)

	configCache := feed.NewConfigCache(appCfg.SourcesDir)
	if err := configCache.Run(); err != nil {
		return fmt.Errorf("failed to load source configurations: %w", err)
	}
	slog.Info("Source configurations loaded", "dir", appCfg.SourcesDir, "count", configCache.GetConfigCount())

	curationRepo := database.NewCurationRepository(db)
	archiveRepo := database.NewArchiveRepository(db)
	snapshotRepo := database.NewSnapshotRepository(db)
	sourceRepo := database.NewSourceRepository(db)

	initial := curation.NewState()
	saved, err := curationRepo.LoadItems(curation.StorageKey)
	if err != nil {
		// a broken saved selection must not keep the browser down
		slog.Warn("Failed to load saved curated items, starting empty", "error", err)
	} else {
		initial.Items = saved
	}
	store := curation.NewStore(initial)
	api.TrackCuratedItems(store)
	slog.Info("Curated items restored", "count", len(initial.Items))

	fetcher := newFetcher(appCfg)
	lister := archive.NewLister(fetcher, appCfg.ArchiveListingURL, appCfg.ArchiveBaseURL)

	scheduler := tasks.NewScheduler(tasks.Dependencies{
		ConfigCache:  configCache,
		Fetcher:      fetcher,
		Parser:       feed.NewParser(),
		Filterer:     feed.NewFilterer(),
		Lister:       lister,
		ArchiveRepo:  archiveRepo,
		SnapshotRepo: snapshotRepo,
		SourceRepo:   sourceRepo,
	}, tasks.Options{
		Interval:    appCfg.SchedulerIntervalDuration(),
		WorkerCount: appCfg.WorkerCount,
		SnapshotTTL: appCfg.SnapshotTTLDuration(),
		TodayURL:    appCfg.FeedURL,
	})
	slog.Info("Starting background scheduler", "workers", appCfg.WorkerCount, "interval", appCfg.SchedulerIntervalDuration())
	scheduler.Start()
	defer scheduler.Stop()

	// preview URLs come from users, so they may only reach public hosts
	previewer := feed.NewPreviewer(feed.NewFetcher(feed.NewPublicClient(), appCfg.UserAgent, appCfg.FetchTimeoutDuration(), appCfg.MaxBodySize))

	handler := api.NewHandler(api.Dependencies{
		Store:        store,
		Fetcher:      fetcher,
		Previewer:    previewer,
		Generator:    feed.NewGenerator(appCfg.Version),
		Lister:       lister,
		ConfigCache:  configCache,
		Scheduler:    scheduler,
		CurationRepo: curationRepo,
		ArchiveRepo:  archiveRepo,
		SnapshotRepo: snapshotRepo,
		SourceRepo:   sourceRepo,
	}, api.Options{
		FeedURL:        appCfg.FeedURL,
		ArchiveBaseURL: appCfg.ArchiveBaseURL,
		DayOffset:      appCfg.DayOffset,
		BaseURL:        appCfg.BaseUrl,
		Version:        appCfg.Version,
		APIAccessKey:   appCfg.APIAccessKey,
	})

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var serveErr error
	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case serveErr = <-serverErrChan:
	}

	slog.Info("Shutting down server gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	} else {
		slog.Info("HTTP server stopped")
	}

	return serveErr
}
