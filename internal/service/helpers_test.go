package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/aquametrics/pluviometro/internal/domain"
)

const testSchema = `
CREATE TABLE pluviometros (
	id_pluviometro INTEGER PRIMARY KEY AUTOINCREMENT,
	numero_serie   TEXT NOT NULL UNIQUE,
	nome           TEXT NOT NULL,
	endereco       TEXT,
	numero         TEXT,
	cidade         TEXT NOT NULL,
	cep            TEXT,
	estado         TEXT NOT NULL,
	latitude       REAL NOT NULL,
	longitude      REAL NOT NULL,
	created_at     TIMESTAMP NOT NULL,
	updated_at     TIMESTAMP NOT NULL
);

CREATE TABLE dados_pluviometros (
	id_dados       INTEGER PRIMARY KEY AUTOINCREMENT,
	id_pluviometro INTEGER NOT NULL REFERENCES pluviometros(id_pluviometro),
	umidade        REAL NOT NULL DEFAULT 0,
	chuva          REAL NOT NULL DEFAULT 0,
	temperatura    REAL NOT NULL DEFAULT 0,
	data_hora      TIMESTAMP NOT NULL,
	created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

func newTestServices(t *testing.T, opts Options) *Services {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return New(db, opts)
}

func validForm(serial string) StationForm {
	lat, lon := -22.9056391, -47.0608464
	return StationForm{
		Nome:      "Estação " + serial,
		Codigo:    serial,
		Latitude:  &lat,
		Longitude: &lon,
		Cidade:    "Campinas",
		Estado:    "SP",
	}
}

func mustCreateStation(t *testing.T, svcs *Services, serial string) *domain.Station {
	t.Helper()
	st, err := svcs.Stations.Create(context.Background(), "tester", validForm(serial))
	if err != nil {
		t.Fatalf("create station %q: %v", serial, err)
	}
	return st
}
