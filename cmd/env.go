package main

import (
	"github.com/gridsight/site-scorer/internal/db"
	"github.com/gridsight/site-scorer/internal/scoring"
	"github.com/gridsight/site-scorer/internal/spatial"
	"github.com/gridsight/site-scorer/pkg/places"
	"github.com/gridsight/site-scorer/pkg/traffic"
)

// env bundles the long-lived dependencies a command needs.
type env struct {
	pool *db.RefreshingPool
	svc  *scoring.Service
}

func (e *env) Close() {
	e.pool.Close()
}

// initEnv builds the connection pool, data clients, and scoring service
// from the loaded configuration.
func initEnv() *env {
	pool := db.NewRefreshingPool(
		db.NewPgxFactory(cfg.Store),
		db.WithRefreshInterval(cfg.Store.RefreshInterval),
	)
	store := spatial.NewPostgresStore(pool)

	placesOpts := []places.Option{}
	if cfg.Places.UserID != "" {
		placesOpts = append(placesOpts, places.WithUserID(cfg.Places.UserID))
	}
	if cfg.Places.RPS > 0 {
		placesOpts = append(placesOpts, places.WithRateLimit(cfg.Places.RPS))
	}
	placesClient := places.NewClient(cfg.Places.BaseURL, cfg.Places.Email, cfg.Places.Password, placesOpts...)

	trafficClient := traffic.NewClient(cfg.Traffic.BaseURL, cfg.Traffic.Username, cfg.Traffic.Password)

	svc := scoring.NewService(store, placesClient, trafficClient,
		scoring.WithPollOptions(
			traffic.WithPollInterval(cfg.Traffic.PollInterval),
			traffic.WithMaxAttempts(cfg.Traffic.PollMaxAttempts),
		),
	)

	return &env{pool: pool, svc: svc}
}
