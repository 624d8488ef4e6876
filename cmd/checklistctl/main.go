// checklistctl administers businesses and document definitions directly
// against the checklist database.
package main

import (
	"fmt"
	"os"

	"github.com/gartstein/compliance/internal/checklist/config"
	"github.com/gartstein/compliance/internal/checklist/controller"
	"github.com/gartstein/compliance/internal/checklist/db"
	"github.com/gartstein/compliance/internal/checklist/events"
	"github.com/gartstein/compliance/internal/checklist/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	if err := newRootCmd(openService, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openService builds a checklist service over the configured database.
// Refresh requests are only logged.
func openService(configPath string) (*controller.ChecklistService, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return nil, nil, err
	}

	dbCfg := cfg.Database()
	repo, err := db.NewRepository(&dbCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	svc := controller.NewChecklistService(
		repo,
		events.NewLogRefresher(logger),
		metrics.New(prometheus.NewRegistry()),
		logger,
		cfg.MaxPageSize,
	)
	return svc, func() {
		_ = repo.Close()
		_ = logger.Sync()
	}, nil
}
