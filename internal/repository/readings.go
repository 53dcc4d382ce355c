package repository

import (
	"context"
	"time"

	"github.com/aquametrics/pluviometro/internal/domain"
)

func (r *Repos) InsertReading(ctx context.Context, rd *domain.Reading) error {
	return r.db.QueryRowxContext(ctx, r.q(
		`INSERT INTO dados_pluviometros (id_pluviometro, umidade, chuva, temperatura, data_hora)
		 VALUES (?,?,?,?,?) RETURNING id_dados`),
		rd.StationID, rd.Umidade, rd.Chuva, rd.Temperatura, rd.DataHora,
	).Scan(&rd.ID)
}

// LatestPerStation returns every station joined with its most recent
// reading. Ties on data_hora resolve to the lowest reading id, so the
// result is stable across calls. Stations without readings keep nil
// reading fields.
func (r *Repos) LatestPerStation(ctx context.Context) ([]domain.StationLatest, error) {
	var out []domain.StationLatest
	err := r.db.SelectContext(ctx, &out, `
		SELECT p.id_pluviometro, p.numero_serie, p.nome, p.endereco, p.numero, p.cidade, p.cep, p.estado,
		       p.latitude, p.longitude, p.created_at, p.updated_at,
		       d.umidade, d.temperatura, d.data_hora
		FROM pluviometros p
		LEFT JOIN dados_pluviometros d ON d.id_dados = (
			SELECT d2.id_dados FROM dados_pluviometros d2
			WHERE d2.id_pluviometro = p.id_pluviometro
			ORDER BY d2.data_hora DESC, d2.id_dados ASC
			LIMIT 1
		)
		ORDER BY p.id_pluviometro`)
	return out, err
}

// AllReadingsWithStations returns every reading joined with its station,
// oldest first.
func (r *Repos) AllReadingsWithStations(ctx context.Context) ([]domain.ReadingWithStation, error) {
	var out []domain.ReadingWithStation
	err := r.db.SelectContext(ctx, &out, `
		SELECT d.id_dados, p.id_pluviometro, p.nome, p.numero_serie, p.cidade, p.latitude, p.longitude,
		       d.umidade, d.chuva, d.temperatura, d.data_hora
		FROM dados_pluviometros d
		JOIN pluviometros p ON p.id_pluviometro = d.id_pluviometro
		ORDER BY d.data_hora ASC, d.id_dados ASC`)
	return out, err
}

// ReadingsSince returns readings at or after the cutoff, grouped-friendly:
// ordered by station then time.
func (r *Repos) ReadingsSince(ctx context.Context, since time.Time) ([]domain.Reading, error) {
	var out []domain.Reading
	err := r.db.SelectContext(ctx, &out, r.q(`
		SELECT id_dados, id_pluviometro, umidade, chuva, temperatura, data_hora
		FROM dados_pluviometros
		WHERE data_hora >= ?
		ORDER BY id_pluviometro ASC, data_hora ASC, id_dados ASC`), since)
	return out, err
}
