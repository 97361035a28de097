// Package app wires the record store and tracker shared by the server and the CLI.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/chipchip/sgl-tracker/internal/config"
	"github.com/chipchip/sgl-tracker/internal/database"
	"github.com/chipchip/sgl-tracker/internal/services"
	"github.com/chipchip/sgl-tracker/pkg/validator"
	"github.com/sirupsen/logrus"
)

// App holds the long-lived dependencies
type App struct {
	Config  *config.Config
	Logger  *logrus.Logger
	Store   database.RecordStore
	DB      database.DB // nil for the memory store
	Tracker *services.TrackerService
}

// NewLogger builds the JSON logger. An invalid level falls back to info.
func NewLogger(level string, out io.Writer) *logrus.Logger {
	if out == nil {
		out = os.Stdout
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(out)

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logger.WithField("level", level).Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	return logger
}

// New opens the configured record store and builds the tracker
func New(cfg *config.Config, logger *logrus.Logger, recorder services.EventRecorder) (*App, error) {
	logger.WithField("driver", cfg.Database.Driver).Info("Opening record store...")
	store, db, err := database.OpenRecordStore(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open record store: %w", err)
	}
	logger.Info("Record store ready")

	tracker := services.NewTrackerService(
		store,
		validator.NewPhoneNormalizer(logger),
		recorder,
		logger,
		services.TrackerOptions{
			WeeklyTarget:      cfg.Tracker.WeeklyTarget,
			FollowUpAfterDays: cfg.Tracker.FollowUpAfterDays,
			RecentWeeks:       cfg.Tracker.RecentWeeks,
			Location:          cfg.Location(),
		},
	)

	return &App{
		Config:  cfg,
		Logger:  logger,
		Store:   store,
		DB:      db,
		Tracker: tracker,
	}, nil
}

// Close releases the database connection, if any
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

// Ping checks the store's database; the memory store is always healthy
func (a *App) Ping() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Ping()
}
