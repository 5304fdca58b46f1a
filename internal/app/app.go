// Package app wires the application together: configuration, logging, the
// SQLite store, repositories and services. CLI entry points and the HTTP
// server both start from App.
package app

import (
	"github.com/hepworth/owlmap/internal/db"
	"github.com/hepworth/owlmap/internal/logger"
	"github.com/hepworth/owlmap/internal/repos"
	"github.com/hepworth/owlmap/internal/services"
)

type App struct {
	Config *Config
	Log    *logger.Logger
	DB     *db.SQLiteService

	Concepts    repos.ConceptRepo
	Occurrences repos.OccurrenceRepo
	Edges       repos.EdgeRepo

	Extraction *services.ExtractionService
	Cleanup    *services.CleanupService
	Chapters   *services.ChapterRepairService
	Audit      *services.AuditService
	Review     *services.ReviewService
	Graph      *services.GraphService
}

// StorePath resolves the database path the configuration names without
// opening the store. Commands that only make sense over an existing database
// must check this path before New, because opening the store creates the
// file.
func StorePath(configPath string) (string, error) {
	bootLog, err := logger.New("dev")
	if err != nil {
		return "", err
	}
	cfg, err := LoadConfig(configPath, bootLog)
	if err != nil {
		return "", err
	}
	return cfg.DatabasePath, nil
}

// New builds the full application from the config file at configPath ("" for
// defaults plus environment overrides).
func New(configPath string) (*App, error) {
	bootLog, err := logger.New("dev")
	if err != nil {
		return nil, err
	}
	cfg, err := LoadConfig(configPath, bootLog)
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, err
	}

	sqlite, err := db.NewSQLiteService(cfg.DatabasePath, log)
	if err != nil {
		return nil, err
	}
	if err := sqlite.AutoMigrateAll(); err != nil {
		return nil, err
	}
	gdb := sqlite.DB()

	concepts := repos.NewConceptRepo(gdb, log)
	occurrences := repos.NewOccurrenceRepo(gdb, log)
	edges := repos.NewEdgeRepo(gdb, log)

	return &App{
		Config:      cfg,
		Log:         log,
		DB:          sqlite,
		Concepts:    concepts,
		Occurrences: occurrences,
		Edges:       edges,
		Extraction:  services.NewExtractionService(gdb, concepts, occurrences, log),
		Cleanup:     services.NewCleanupService(gdb, concepts, occurrences, log),
		Chapters:    services.NewChapterRepairService(gdb, occurrences, log),
		Audit:       services.NewAuditService(gdb, concepts, occurrences, log),
		Review:      services.NewReviewService(gdb, concepts, occurrences, edges, log),
		Graph:       services.NewGraphService(gdb, concepts, occurrences, edges, log),
	}, nil
}

func (a *App) Close() {
	if sqlDB, err := a.DB.DB().DB(); err == nil {
		_ = sqlDB.Close()
	}
	a.Log.Sync()
}
