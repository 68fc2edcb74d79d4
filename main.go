package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mw_harvester/api"
	"mw_harvester/config"
	"mw_harvester/httputil"
	"mw_harvester/logging"
	"mw_harvester/scheduler"
	"mw_harvester/scraper"
	"mw_harvester/services"
	"mw_harvester/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var pages int
	cmd := &cobra.Command{
		Use:   "mw_harvester [pages]",
		Short: "Harvest Malawi property listings into a CSV export",
		Long: "Scrapes every configured listing site in order and writes one CSV.\n" +
			"The optional page cap bounds pagination per site; 0 means no cap.\n" +
			"Set SCRAPE_CRON or SCRAPE_INTERVAL to run as a daemon.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if cmd.Flags().Changed("pages") {
					return errors.New("page cap given both as argument and --pages")
				}
				n, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid page cap %q: %w", args[0], err)
				}
				pages = n
			}
			if pages < 0 {
				return fmt.Errorf("page cap must not be negative, got %d", pages)
			}
			return run(cmd.Context(), pages)
		},
	}
	cmd.Flags().IntVar(&pages, "pages", 0, "maximum pages per paginated site (0 = no cap)")
	return cmd
}

func run(ctx context.Context, maxPages int) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer := logging.Setup(cfg.Log)
	defer closer.Close()
	defer logger.Sync() //nolint:errcheck

	logger.Info("starting mw_harvester", zap.Int("max_pages", maxPages), zap.Int("sites", len(cfg.Sites)))
	for _, site := range cfg.Sites {
		logger.Info("site profile", zap.String("site", site.ID), zap.String("name", site.Name))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := httputil.NewScrapingClient(cfg.Proxy)
	if err != nil {
		return fmt.Errorf("http client: %w", err)
	}
	if cfg.Proxy.URL != "" {
		logger.Info("using proxy", zap.String("proxy", maskConnectionString(cfg.Proxy.URL)))
	}
	fetcher := httputil.NewFetcher(client, cfg.Fetch)

	handlers, err := scraper.NewHandlers(cfg.Sites, fetcher, logger)
	if err != nil {
		return fmt.Errorf("build handlers: %w", err)
	}
	orchestrator := scraper.NewOrchestrator(handlers, logger)

	var mirrors []services.Mirror
	var history *storage.SQLiteStore
	if cfg.DBPath != "" {
		history, err = storage.NewSQLiteStore(cfg.DBPath)
		if err != nil {
			logger.Warn("run history disabled", zap.String("path", cfg.DBPath), zap.Error(err))
			history = nil
		} else {
			defer history.Close()
			orchestrator.SetRecorder(history)
			mirrors = append(mirrors, services.Mirror{Name: "sqlite", Sink: history})
			logger.Info("SQLite database", zap.String("path", cfg.DBPath))
		}
	}

	if cfg.DatabaseURL != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Warn("postgres export disabled", zap.String("db", maskConnectionString(cfg.DatabaseURL)), zap.Error(err))
		} else {
			defer pg.Close()
			mirrors = append(mirrors, services.Mirror{Name: "postgres", Sink: pg})
			logger.Info("connected to Postgres", zap.String("db", maskConnectionString(cfg.DatabaseURL)))
		}
	}

	if cfg.S3.Enabled() {
		uploader, err := storage.NewS3Uploader(ctx, cfg.S3)
		if err != nil {
			logger.Warn("S3 upload disabled", zap.Error(err))
		} else {
			mirrors = append(mirrors, services.Mirror{Name: "s3", Sink: uploader})
			logger.Info("uploading exports", zap.String("bucket", cfg.S3.Bucket), zap.String("prefix", cfg.S3.Prefix))
		}
	}

	export := services.NewExportService(orchestrator, storage.NewCSVSink(cfg.OutputPath), logger, mirrors...)

	if !cfg.Scheduler.Daemon() {
		res, err := export.Run(ctx, maxPages)
		if err != nil {
			logger.Error("export failed", zap.Error(err))
			return err
		}
		logger.Info("harvest complete", zap.Int("records", res.Records), zap.String("output", cfg.OutputPath))
		return nil
	}

	sched := scheduler.New(cfg.Scheduler, export, maxPages, logger)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	if cfg.HTTPAddr != "" {
		var store api.Store
		if history != nil {
			store = history
		}
		srv := api.NewServer(store, orchestrator.SiteIDs(), export, logger)
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
				logger.Error("status API stopped", zap.Error(err))
			}
		}()
	}

	logger.Info("daemon running, press Ctrl+C to stop")
	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// maskConnectionString masks the password in a URL-style connection string.
func maskConnectionString(connStr string) string {
	start := 0
	for i := 0; i < len(connStr)-3; i++ {
		if connStr[i:i+3] == "://" {
			start = i + 3
			break
		}
	}
	if start == 0 {
		return connStr
	}

	colonIdx := -1
	atIdx := -1
	for i := start; i < len(connStr); i++ {
		if connStr[i] == ':' && colonIdx == -1 {
			colonIdx = i
		}
		if connStr[i] == '@' {
			atIdx = i
			break
		}
	}

	if colonIdx > 0 && atIdx > colonIdx {
		return connStr[:colonIdx+1] + "****" + connStr[atIdx:]
	}
	return connStr
}
