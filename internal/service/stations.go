package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/aquametrics/pluviometro/internal/domain"
	"github.com/aquametrics/pluviometro/internal/repository"
)

// StationForm is the payload of the create and edit forms. The serial
// code travels as "codigo" on the wire, matching the legacy form field.
type StationForm struct {
	Nome      string   `json:"nome" validate:"required,max=255"`
	Codigo    string   `json:"codigo" validate:"required,max=100"`
	Latitude  *float64 `json:"latitude" validate:"required"`
	Longitude *float64 `json:"longitude" validate:"required"`
	Cidade    string   `json:"cidade" validate:"required,max=255"`
	Estado    string   `json:"estado" validate:"required,len=2"`
	Endereco  string   `json:"endereco" validate:"omitempty,max=255"`
	Numero    string   `json:"numero" validate:"omitempty,max=20"`
	CEP       string   `json:"cep" validate:"omitempty,max=20"`
}

type StationService struct {
	repos *repository.Repos
}

func (s *StationService) List(ctx context.Context) ([]domain.Station, error) {
	return s.repos.ListStations(ctx)
}

func (s *StationService) Get(ctx context.Context, id int64) (*domain.Station, error) {
	st, err := s.repos.GetStation(ctx, id)
	if err == repository.ErrNotFound {
		return nil, ErrNotFound
	}
	return st, err
}

// Create validates the form, checks serial uniqueness and persists the
// station. Nothing is written when validation fails.
func (s *StationService) Create(ctx context.Context, actor string, form StationForm) (*domain.Station, error) {
	if verrs := s.validateForm(ctx, form, 0); verrs != nil {
		return nil, verrs
	}

	st := formToStation(form)
	if err := s.repos.InsertStation(ctx, st); err != nil {
		s.auditError(actor, "criação", form, err)
		return nil, fmt.Errorf("insert station: %w", err)
	}

	s.auditInfo(actor, "criação", st)
	return st, nil
}

// Update re-runs the create validation, including the uniqueness rule
// with the target row excluded.
func (s *StationService) Update(ctx context.Context, actor string, id int64, form StationForm) (*domain.Station, error) {
	existing, err := s.repos.GetStation(ctx, id)
	if err == repository.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		s.auditError(actor, "atualização", form, err)
		return nil, fmt.Errorf("load station %d: %w", id, err)
	}

	if verrs := s.validateForm(ctx, form, id); verrs != nil {
		return nil, verrs
	}

	st := formToStation(form)
	st.ID = existing.ID
	st.CreatedAt = existing.CreatedAt
	if err := s.repos.UpdateStation(ctx, st); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNotFound
		}
		s.auditError(actor, "atualização", form, err)
		return nil, fmt.Errorf("update station %d: %w", id, err)
	}

	s.auditInfo(actor, "atualização", st)
	return st, nil
}

// Delete removes a station. Missing ids surface as ErrNotFound and
// stations with readings as ErrHasReadings; both are non-fatal to the
// caller. The pre-delete snapshot goes to the audit log.
func (s *StationService) Delete(ctx context.Context, actor string, id int64) (*domain.Station, error) {
	st, err := s.repos.GetStation(ctx, id)
	if err == repository.ErrNotFound {
		log.Warn().
			Str("actor", actor).
			Str("tabela", "pluviometros").
			Str("acao", "exclusão").
			Int64("id_pluviometro", id).
			Msg("station not found for deletion")
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load station %d: %w", id, err)
	}

	n, err := s.repos.CountReadings(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count readings for station %d: %w", id, err)
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: %d readings reference station %d", ErrHasReadings, n, id)
	}

	if err := s.repos.DeleteStation(ctx, id); err != nil {
		if err == repository.ErrNotFound {
			return nil, ErrNotFound
		}
		s.auditError(actor, "exclusão", st, err)
		return nil, fmt.Errorf("delete station %d: %w", id, err)
	}

	log.Info().
		Str("actor", actor).
		Str("tabela", "pluviometros").
		Str("acao", "exclusão").
		Interface("dados_antigos", st).
		Msg("station deleted")
	return st, nil
}

func (s *StationService) validateForm(ctx context.Context, form StationForm, excludeID int64) error {
	verrs := validateStruct(form)
	if verrs == nil && form.Codigo != "" {
		inUse, err := s.repos.SerialInUse(ctx, form.Codigo, excludeID)
		if err != nil {
			return fmt.Errorf("check serial uniqueness: %w", err)
		}
		if inUse {
			verrs = append(verrs, FieldError{Field: "codigo", Message: "is already in use"})
		}
	}
	if verrs != nil {
		return verrs
	}
	return nil
}

func formToStation(form StationForm) *domain.Station {
	return &domain.Station{
		NumeroSerie: form.Codigo,
		Nome:        form.Nome,
		Endereco:    optional(form.Endereco),
		Numero:      optional(form.Numero),
		Cidade:      form.Cidade,
		CEP:         optional(form.CEP),
		Estado:      form.Estado,
		Latitude:    *form.Latitude,
		Longitude:   *form.Longitude,
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (s *StationService) auditInfo(actor, action string, st *domain.Station) {
	log.Info().
		Str("actor", actor).
		Str("tabela", "pluviometros").
		Str("acao", action).
		Interface("dados", st).
		Msg("station saved")
}

func (s *StationService) auditError(actor, action string, payload any, err error) {
	log.Error().
		Err(err).
		Str("actor", actor).
		Str("tabela", "pluviometros").
		Str("acao", action).
		Interface("dados", payload).
		Msg("station persistence failed")
}
