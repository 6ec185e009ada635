package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	redisstorage "github.com/gofiber/storage/redis/v3"

	"einnames/internal/cache"
	"einnames/internal/config"
	"einnames/internal/jobs"
	"einnames/internal/metrics"
	"einnames/internal/persist"
	"einnames/internal/seed"
	"einnames/internal/server"
	"einnames/internal/store"
	"einnames/internal/suggest"
)

func main() {
	ctx := context.Background()
	cfg := config.Load()

	if err := os.MkdirAll(cfg.StorageDir, 0o755); err != nil {
		log.Fatalf("Failed to create storage dir: %v", err)
	}

	// Snapshot store: Postgres when configured, working file otherwise
	var snap persist.Snapshotter
	workingPath := ""
	if cfg.UsePostgres() {
		pg, err := persist.NewPostgresStore(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pg.Close()

		if err := pg.RunMigrations(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Migrations completed successfully")
		snap = pg
	} else {
		fs := persist.NewFileStore(cfg.WorkingFile)
		workingPath = fs.WorkingPath()
		snap = fs
	}

	// View cache: Redis when configured, in-process map otherwise
	var viewCache *cache.ViewCache
	if cfg.RedisURL != "" {
		viewCache = cache.New(redisstorage.New(redisstorage.Config{URL: cfg.RedisURL}))
		log.Println("Using Redis view cache")
	} else {
		viewCache = cache.NewMemory()
	}

	st := store.New(snap, viewCache)

	seeder := seed.New(cfg.SourceFile)
	if err := st.Load(ctx, seeder); err != nil {
		log.Fatalf("Failed to load data: %v", err)
	}
	log.Printf("Loaded %d EIN records", st.Len())

	// Name suggestion client
	suggestCfg := suggest.Config{APIKey: cfg.AnthropicAPIKey}
	if tuning, err := config.LoadSuggestConfig(cfg.SuggestConfigFile); err != nil {
		log.Printf("Warning: Failed to load suggest config: %v", err)
	} else if tuning != nil {
		suggestCfg.Model = tuning.Model
		suggestCfg.MaxTokens = tuning.MaxTokens
		suggestCfg.Temperature = tuning.Temperature
		suggestCfg.Guidance = tuning.Guidance
	}
	suggester := suggest.New(suggestCfg)
	if !suggester.Configured() {
		log.Println("API_KEY not set. AI suggestion feature will not work.")
	}

	metrics.Init(st, viewCache)

	srv := server.New(cfg)
	deps := server.Deps{
		Store:       st,
		Snapshotter: snap,
		Seeder:      seeder,
		Suggester:   suggester,
		Cache:       viewCache,
		WorkingPath: workingPath,
	}
	if err := srv.RegisterRoutes(ctx, deps); err != nil {
		log.Fatalf("Failed to register routes: %v", err)
	}

	// Periodic working-file backups (file mode only)
	jobCtx, cancelJobs := context.WithCancel(ctx)
	defer cancelJobs()
	if !cfg.UsePostgres() && cfg.BackupInterval > 0 {
		rotator := jobs.NewBackupRotator(workingPath, filepath.Join(cfg.StorageDir, "backups"), cfg.BackupInterval, cfg.BackupKeep)
		go rotator.Start(jobCtx)
	}

	// Graceful shutdown
	go func() {
		if err := srv.Start(); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	cancelJobs()
	if err := srv.Shutdown(); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exited")
}
