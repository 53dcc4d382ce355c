package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/aquametrics/pluviometro/internal/domain"
)

const stationColumns = `id_pluviometro, numero_serie, nome, endereco, numero, cidade, cep, estado, latitude, longitude, created_at, updated_at`

func (r *Repos) ListStations(ctx context.Context) ([]domain.Station, error) {
	var out []domain.Station
	err := r.db.SelectContext(ctx, &out,
		`SELECT `+stationColumns+` FROM pluviometros ORDER BY id_pluviometro`)
	return out, err
}

func (r *Repos) GetStation(ctx context.Context, id int64) (*domain.Station, error) {
	var s domain.Station
	err := r.db.GetContext(ctx, &s,
		r.q(`SELECT `+stationColumns+` FROM pluviometros WHERE id_pluviometro = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repos) FindStationBySerial(ctx context.Context, serial string) (*domain.Station, error) {
	var s domain.Station
	err := r.db.GetContext(ctx, &s,
		r.q(`SELECT `+stationColumns+` FROM pluviometros WHERE numero_serie = ?`), serial)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SerialInUse reports whether another station already holds the serial
// code. Pass excludeID = 0 on create.
func (r *Repos) SerialInUse(ctx context.Context, serial string, excludeID int64) (bool, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		r.q(`SELECT COUNT(*) FROM pluviometros WHERE numero_serie = ? AND id_pluviometro <> ?`),
		serial, excludeID)
	return n > 0, err
}

func (r *Repos) InsertStation(ctx context.Context, s *domain.Station) error {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
	return r.db.QueryRowxContext(ctx, r.q(
		`INSERT INTO pluviometros (numero_serie, nome, endereco, numero, cidade, cep, estado, latitude, longitude, created_at, updated_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?) RETURNING id_pluviometro`),
		s.NumeroSerie, s.Nome, s.Endereco, s.Numero, s.Cidade, s.CEP, s.Estado,
		s.Latitude, s.Longitude, s.CreatedAt, s.UpdatedAt,
	).Scan(&s.ID)
}

func (r *Repos) UpdateStation(ctx context.Context, s *domain.Station) error {
	s.UpdatedAt = time.Now()
	res, err := r.db.ExecContext(ctx, r.q(
		`UPDATE pluviometros
		 SET numero_serie = ?, nome = ?, endereco = ?, numero = ?, cidade = ?, cep = ?, estado = ?,
		     latitude = ?, longitude = ?, updated_at = ?
		 WHERE id_pluviometro = ?`),
		s.NumeroSerie, s.Nome, s.Endereco, s.Numero, s.Cidade, s.CEP, s.Estado,
		s.Latitude, s.Longitude, s.UpdatedAt, s.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repos) DeleteStation(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		r.q(`DELETE FROM pluviometros WHERE id_pluviometro = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repos) CountReadings(ctx context.Context, stationID int64) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n,
		r.q(`SELECT COUNT(*) FROM dados_pluviometros WHERE id_pluviometro = ?`), stationID)
	return n, err
}
