package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	staticcatalog "loopplanner/internal/adapter/catalog/static"
	httpadapter "loopplanner/internal/adapter/http"
	"loopplanner/internal/adapter/learningcsv"
	metricsinmem "loopplanner/internal/adapter/metrics/inmemory"
	gormrepo "loopplanner/internal/adapter/repo/gorm"
	"loopplanner/internal/adapter/repo/memory"
	sqliterepo "loopplanner/internal/adapter/repo/sqlite"
	"loopplanner/internal/app/learning"
	"loopplanner/internal/app/plan"
	"loopplanner/internal/app/ports"
	"loopplanner/internal/app/predict"
	"loopplanner/internal/config"

	"github.com/charmbracelet/log"
	"github.com/cloudwego/hertz/pkg/app/server"
)

type repos struct {
	learning ports.LearningRepository
	plans    ports.PlanRepository
	tx       ports.TxManager
}

func main() {
	cfg := config.FromEnv()
	logger := newLogger(cfg.LogLevel)

	dataDir := resolveDataDir(cfg.DataDir)
	catalog := staticcatalog.NewProvider(dataDir)
	if _, err := catalog.Catalog(context.Background()); err != nil {
		logger.Fatal("load catalog", "dir", dataDir, "err", err)
	}

	r := mustBuildRepos(cfg, logger)
	kpiRecorder := metricsinmem.NewRecorder()

	h := httpadapter.Handler{
		PredictUC: predict.UseCase{
			Catalog:      catalog,
			LearningRepo: r.learning,
			Metrics:      kpiRecorder,
			Logger:       logger.WithPrefix("engine"),
			MaxActions:   cfg.MaxActions,
		},
		LearningUC: learning.UseCase{
			TxManager:    r.tx,
			LearningRepo: r.learning,
			Catalog:      catalog,
			Codec:        learningcsv.Codec{},
			Logger:       logger.WithPrefix("engine"),
		},
		PlanUC: plan.UseCase{
			TxManager:  r.tx,
			PlanRepo:   r.plans,
			MaxActions: cfg.MaxActions,
			Now:        time.Now,
		},
		Catalog:   catalog,
		DataFiles: catalog,
		KPI:       kpiRecorder,
	}

	s := server.Default(server.WithHostPorts(cfg.HTTPAddr))
	h.RegisterRoutes(s)

	logger.Info("loopplanner listening", "addr", cfg.HTTPAddr, "data", dataDir, "storage", cfg.Storage())
	s.Spin()
}

func newLogger(level string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "loopplanner",
	})
	if lvl, err := log.ParseLevel(level); err == nil {
		logger.SetLevel(lvl)
	}
	return logger
}

func mustBuildRepos(cfg config.Config, logger *log.Logger) repos {
	ctx := context.Background()
	switch cfg.Storage() {
	case config.StoragePostgres:
		db, err := gormrepo.OpenPostgres(cfg.DBDSN)
		if err != nil {
			logger.Fatal("open postgres", "err", err)
		}
		if err := gormrepo.ApplyMigrations(ctx, db, cfg.MigrationsDir); err != nil {
			logger.Fatal("apply migrations", "dir", cfg.MigrationsDir, "err", err)
		}
		return repos{
			learning: gormrepo.NewLearningRepo(db),
			plans:    gormrepo.NewPlanRepo(db),
			tx:       gormrepo.NewTxManager(db),
		}
	case config.StorageSQLite:
		db, err := sqliterepo.Open(ctx, cfg.SQLitePath)
		if err != nil {
			logger.Fatal("open sqlite", "path", cfg.SQLitePath, "err", err)
		}
		return sqliteRepos(db)
	default:
		logger.Warn("no database configured, learning and plans are kept in memory")
		store := memory.NewStore()
		return repos{
			learning: memory.NewLearningRepo(store),
			plans:    memory.NewPlanRepo(store),
			tx:       memory.NewTxManager(store),
		}
	}
}

func sqliteRepos(db *sql.DB) repos {
	return repos{
		learning: sqliterepo.NewLearningRepo(db),
		plans:    sqliterepo.NewPlanRepo(db),
		tx:       sqliterepo.NewTxManager(db),
	}
}

// resolveDataDir falls back to the repository's data directory when the
// configured one has no action catalog, so `go run ./cmd/server` works from
// the module root or from cmd/server.
func resolveDataDir(configured string) string {
	candidates := []string{configured, "./data", "../../data"}
	for _, dir := range candidates {
		if _, err := os.Stat(filepath.Join(dir, staticcatalog.ActionsFile)); err == nil {
			return dir
		}
	}
	return configured
}
