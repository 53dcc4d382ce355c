package database

import "github.com/jmoiron/sqlx"

// Statements mirror the original pluviometro migrations. They run one at
// a time because pgx's extended protocol rejects multi-statement Exec.
// Station deletion is restricted while readings still reference the row.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS pluviometros (
		id_pluviometro BIGSERIAL PRIMARY KEY,
		numero_serie   VARCHAR(100) NOT NULL UNIQUE,
		nome           VARCHAR(255) NOT NULL,
		endereco       VARCHAR(255),
		numero         VARCHAR(20),
		cidade         VARCHAR(255) NOT NULL,
		cep            VARCHAR(20),
		estado         CHAR(2)      NOT NULL,
		latitude       DECIMAL(10,7) NOT NULL,
		longitude      DECIMAL(10,7) NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS dados_pluviometros (
		id_dados       BIGSERIAL PRIMARY KEY,
		id_pluviometro BIGINT NOT NULL REFERENCES pluviometros(id_pluviometro) ON DELETE RESTRICT,
		umidade        DECIMAL(5,2) NOT NULL DEFAULT 0,
		chuva          DECIMAL(6,2) NOT NULL DEFAULT 0,
		temperatura    DECIMAL(6,2) NOT NULL DEFAULT 0,
		data_hora      TIMESTAMP NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_dados_pluviometro_data_hora
		ON dados_pluviometros(id_pluviometro, data_hora)`,
}

func Migrate(db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
