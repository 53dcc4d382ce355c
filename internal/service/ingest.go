package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/aquametrics/pluviometro/internal/domain"
	"github.com/aquametrics/pluviometro/internal/repository"
)

// EventTime accepts the timestamp formats field devices actually send:
// RFC3339 and zoneless "2006-01-02T15:04:05" variants.
type EventTime struct {
	time.Time
}

func (t *EventTime) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			t.Time = ts
			return nil
		}
	}
	return fmt.Errorf("unrecognized data_hora %q", s)
}

// ReadingSubmission is one entry of an ingestion batch. Stations are
// addressed by serial code; the internal id never crosses the wire.
type ReadingSubmission struct {
	NumeroSerie string     `json:"numero_serie"`
	Temperatura *float64   `json:"temperatura"`
	Umidade     *float64   `json:"umidade"`
	Chuva       *float64   `json:"chuva"`
	DataHora    *EventTime `json:"data_hora"`
}

// ItemResult reports the fate of a single submission. Skips were silent
// in the legacy system; they are itemized here so callers can tell
// "all accepted" from "some dropped".
type ItemResult struct {
	NumeroSerie string `json:"numero_serie"`
	Status      string `json:"status"` // accepted, skipped or failed
	Reason      string `json:"reason,omitempty"`
}

type IngestService struct {
	repos     *repository.Repos
	alerts    Alerter
	threshold float64
}

// IngestBatch appends each submission whose serial resolves to a
// station. Unknown serials are skipped without aborting the batch, and
// missing fields default to zero values with data_hora falling back to
// the insertion time. Resubmitting a batch creates duplicate rows;
// there is no idempotency key.
func (s *IngestService) IngestBatch(ctx context.Context, items []ReadingSubmission) []ItemResult {
	results := make([]ItemResult, 0, len(items))
	for _, item := range items {
		results = append(results, s.ingestOne(ctx, item))
	}
	return results
}

func (s *IngestService) ingestOne(ctx context.Context, item ReadingSubmission) ItemResult {
	station, err := s.repos.FindStationBySerial(ctx, item.NumeroSerie)
	if err == repository.ErrNotFound {
		log.Warn().Str("numero_serie", item.NumeroSerie).Msg("reading for unknown serial skipped")
		return ItemResult{NumeroSerie: item.NumeroSerie, Status: "skipped", Reason: "unknown numero_serie"}
	}
	if err != nil {
		log.Error().Err(err).Str("numero_serie", item.NumeroSerie).Msg("serial lookup failed")
		return ItemResult{NumeroSerie: item.NumeroSerie, Status: "failed", Reason: "lookup error"}
	}

	rd := &domain.Reading{
		StationID:   station.ID,
		Umidade:     deref(item.Umidade),
		Chuva:       deref(item.Chuva),
		Temperatura: deref(item.Temperatura),
		DataHora:    time.Now(),
	}
	if item.DataHora != nil && !item.DataHora.IsZero() {
		rd.DataHora = item.DataHora.Time
	}

	if err := s.repos.InsertReading(ctx, rd); err != nil {
		log.Error().Err(err).
			Str("numero_serie", item.NumeroSerie).
			Interface("dados", item).
			Msg("reading insert failed")
		return ItemResult{NumeroSerie: item.NumeroSerie, Status: "failed", Reason: "insert error"}
	}

	if s.alerts != nil && rd.Chuva >= s.threshold {
		// Best effort: an unreachable topic must not fail the batch.
		if err := s.alerts.SendRainAlert(station, rd.Chuva, rd.DataHora); err != nil {
			log.Error().Err(err).Str("numero_serie", station.NumeroSerie).Msg("rain alert failed")
		}
	}

	return ItemResult{NumeroSerie: item.NumeroSerie, Status: "accepted"}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
