package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aquametrics/pluviometro/internal/domain"
	"github.com/aquametrics/pluviometro/internal/repository"
)

// ReadingFeed is the chronological history plus whatever enrichment was
// fetched, keyed by station id. Enrichment is nil when disabled.
type ReadingFeed struct {
	Items      []domain.ReadingWithStation
	Enrichment map[int64]*domain.Enrichment
}

type AggregationService struct {
	repos    *repository.Repos
	loc      *time.Location
	enricher Enricher
}

// LatestPerStation returns all stations merged with their newest
// reading. Empty result sets are empty slices, never errors.
func (a *AggregationService) LatestPerStation(ctx context.Context) ([]domain.StationLatest, error) {
	out, err := a.repos.LatestPerStation(ctx)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.StationLatest{}
	}
	return out, nil
}

// AllReadingsChronological returns every reading joined with station
// metadata, oldest first. When an enricher is configured it is consulted
// once per station; enrichment failures degrade to the placeholder
// fields rather than failing the feed.
func (a *AggregationService) AllReadingsChronological(ctx context.Context) (*ReadingFeed, error) {
	items, err := a.repos.AllReadingsWithStations(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.ReadingWithStation{}
	}
	feed := &ReadingFeed{Items: items}
	if a.enricher == nil {
		return feed, nil
	}

	feed.Enrichment = make(map[int64]*domain.Enrichment)
	for _, it := range items {
		if _, done := feed.Enrichment[it.StationID]; done {
			continue
		}
		enr, err := a.enricher.Enrich(ctx, it.Latitude, it.Longitude)
		if err != nil {
			log.Error().Err(err).Int64("id_pluviometro", it.StationID).Msg("weather enrichment failed")
			feed.Enrichment[it.StationID] = nil
			continue
		}
		feed.Enrichment[it.StationID] = enr
	}
	return feed, nil
}

// TodayGroupedByStation groups readings taken since local midnight per
// station. Stations without a reading today do not appear at all.
func (a *AggregationService) TodayGroupedByStation(ctx context.Context) ([]domain.StationDay, error) {
	now := time.Now().In(a.loc)
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, a.loc)

	readings, err := a.repos.ReadingsSince(ctx, midnight)
	if err != nil {
		return nil, err
	}
	if len(readings) == 0 {
		return []domain.StationDay{}, nil
	}

	stations, err := a.repos.ListStations(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Station, len(stations))
	for _, st := range stations {
		byID[st.ID] = st
	}

	// Readings arrive ordered by station then time, so groups can be
	// built in a single pass.
	var out []domain.StationDay
	for _, rd := range readings {
		st, ok := byID[rd.StationID]
		if !ok {
			continue
		}
		sample := domain.ReadingSample{
			Umidade:     rd.Umidade,
			Temperatura: rd.Temperatura,
			Chuva:       rd.Chuva,
			DataHora:    rd.DataHora,
		}
		if n := len(out); n > 0 && out[n-1].ID == rd.StationID {
			out[n-1].Dados = append(out[n-1].Dados, sample)
			continue
		}
		out = append(out, domain.StationDay{Station: st, Dados: []domain.ReadingSample{sample}})
	}
	return out, nil
}
