package service

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/aquametrics/pluviometro/internal/domain"
	"github.com/aquametrics/pluviometro/internal/repository"
)

// ErrNotFound signals a non-fatal miss: the caller gets a warning, not a
// hard failure.
var ErrNotFound = errors.New("not found")

// ErrHasReadings restricts station deletion while readings still
// reference the row.
var ErrHasReadings = errors.New("station has readings")

// Enricher pulls external weather data for a coordinate. Nil disables
// enrichment entirely.
type Enricher interface {
	Enrich(ctx context.Context, lat, lon float64) (*domain.Enrichment, error)
}

// Alerter publishes rainfall alerts. Nil disables alerts.
type Alerter interface {
	SendRainAlert(station *domain.Station, chuva float64, at time.Time) error
}

type Options struct {
	Location      *time.Location // day boundary for today-grouping; nil means time.Local
	Enricher      Enricher
	Alerts        Alerter
	RainThreshold float64 // mm; alerts fire at or above this value
}

type Services struct {
	Repos       *repository.Repos
	Stations    *StationService
	Readings    *IngestService
	Aggregation *AggregationService
}

func New(db *sqlx.DB, opts Options) *Services {
	repos := repository.New(db)
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	return &Services{
		Repos:    repos,
		Stations: &StationService{repos: repos},
		Readings: &IngestService{
			repos:     repos,
			alerts:    opts.Alerts,
			threshold: opts.RainThreshold,
		},
		Aggregation: &AggregationService{
			repos:    repos,
			loc:      loc,
			enricher: opts.Enricher,
		},
	}
}
