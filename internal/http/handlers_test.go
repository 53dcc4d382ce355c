package http

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"

	"github.com/aquametrics/pluviometro/internal/service"
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

func setupApp(t *testing.T) (*fiber.App, *service.Services) {
	t.Helper()
	db, err := sqlx.Connect("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("exec schema: %v", err)
	}
	svcs := service.New(db, service.Options{Location: time.UTC})
	app := fiber.New()
	Register(app, svcs)
	return app, svcs
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return resp.StatusCode, out
}

func stationBody(serial string) map[string]any {
	return map[string]any{
		"nome":      "Estação " + serial,
		"codigo":    serial,
		"latitude":  -22.9056391,
		"longitude": -47.0608464,
		"cidade":    "Campinas",
		"estado":    "SP",
	}
}

func TestCreateStationEndpoint(t *testing.T) {
	app, _ := setupApp(t)

	status, body := doJSON(t, app, "POST", "/pluviometros", stationBody("X123"))
	if status != fiber.StatusCreated {
		t.Fatalf("create: got status %d, body %v", status, body)
	}
	if body["status"] != "success" {
		t.Errorf("create: got %v", body)
	}

	status, body = doJSON(t, app, "GET", "/pluviometros", nil)
	if status != fiber.StatusOK {
		t.Fatalf("list: got status %d", status)
	}
	items := body["pluviometros"].([]any)
	if len(items) != 1 {
		t.Fatalf("list after create: got %d items", len(items))
	}
}

func TestCreateStationEndpoint_ValidationFailure(t *testing.T) {
	app, _ := setupApp(t)

	payload := stationBody("V1")
	delete(payload, "nome")
	payload["estado"] = "ABC"

	status, body := doJSON(t, app, "POST", "/pluviometros", payload)
	if status != fiber.StatusUnprocessableEntity {
		t.Fatalf("invalid create: got status %d, body %v", status, body)
	}
	fields := body["errors"].(map[string]any)
	if fields["nome"] == nil || fields["estado"] == nil {
		t.Errorf("field errors: got %v", fields)
	}
}

func TestIngestEndpoint(t *testing.T) {
	app, _ := setupApp(t)
	doJSON(t, app, "POST", "/pluviometros", stationBody("X123"))

	batch := []map[string]any{
		{"numero_serie": "X123", "temperatura": 22.5, "umidade": 60, "chuva": 0, "data_hora": "2024-01-01T10:00:00"},
		{"numero_serie": "ZZZZ", "temperatura": 1.0},
	}
	status, body := doJSON(t, app, "POST", "/dados_pluviometros", batch)
	if status != fiber.StatusOK {
		t.Fatalf("ingest: got status %d, body %v", status, body)
	}
	if body["status"] != "ok" {
		t.Fatalf("ingest status: got %v, want ok even with skips", body["status"])
	}
	results := body["results"].([]any)
	if len(results) != 2 {
		t.Fatalf("ingest results: got %d, want 2", len(results))
	}
	first := results[0].(map[string]any)
	second := results[1].(map[string]any)
	if first["status"] != "accepted" || second["status"] != "skipped" {
		t.Errorf("ingest results: got %v / %v", first, second)
	}
}

func TestDeleteEndpoint_NotFound(t *testing.T) {
	app, _ := setupApp(t)

	status, body := doJSON(t, app, "DELETE", "/pluviometros/404", nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("delete missing: got status %d", status)
	}
	if body["status"] != "warning" {
		t.Errorf("delete missing: got %v, want warning outcome", body)
	}
}

func TestUpdateEndpoint_RoundTrip(t *testing.T) {
	app, _ := setupApp(t)
	doJSON(t, app, "POST", "/pluviometros", stationBody("RT1"))

	payload := stationBody("RT2")
	payload["nome"] = "Atualizada"
	status, body := doJSON(t, app, "PUT", "/pluviometros/1", payload)
	if status != fiber.StatusOK {
		t.Fatalf("update: got status %d, body %v", status, body)
	}

	status, body = doJSON(t, app, "GET", "/pluviometros/1/edit", nil)
	if status != fiber.StatusOK {
		t.Fatalf("edit form: got status %d", status)
	}
	st := body["pluviometro"].(map[string]any)
	if st["nome"] != "Atualizada" || st["numero_serie"] != "RT2" {
		t.Errorf("edit form after update: got %v", st)
	}
}

func TestFeedEndpoint_Placeholders(t *testing.T) {
	app, _ := setupApp(t)
	doJSON(t, app, "POST", "/pluviometros", stationBody("F1"))
	doJSON(t, app, "POST", "/dados_pluviometros", []map[string]any{
		{"numero_serie": "F1", "umidade": 70, "data_hora": "2024-01-01T10:00:00"},
	})

	status, body := doJSON(t, app, "GET", "/pluviometros/dados", nil)
	if status != fiber.StatusOK {
		t.Fatalf("feed: got status %d", status)
	}
	data := body["data"].([]any)
	if len(data) != 1 {
		t.Fatalf("feed items: got %d, want 1", len(data))
	}
	item := data[0].(map[string]any)
	if item["umidade_api"] != nil || item["temperatura_api"] != nil {
		t.Errorf("enrichment placeholders: got %v / %v, want nulls", item["umidade_api"], item["temperatura_api"])
	}
	if raw, ok := item["api_bruta"].([]any); !ok || len(raw) != 0 {
		t.Errorf("api_bruta placeholder: got %v, want []", item["api_bruta"])
	}
	if daily, ok := item["daily"].([]any); !ok || len(daily) != 0 {
		t.Errorf("daily placeholder: got %v, want []", item["daily"])
	}
}

func TestTodayEndpoint(t *testing.T) {
	app, _ := setupApp(t)
	doJSON(t, app, "POST", "/pluviometros", stationBody("T1"))

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 1, 0, 0, 0, time.UTC)
	doJSON(t, app, "POST", "/dados_pluviometros", []map[string]any{
		{"numero_serie": "T1", "chuva": 2.5, "data_hora": today.Format("2006-01-02T15:04:05")},
	})

	status, body := doJSON(t, app, "GET", "/", nil)
	if status != fiber.StatusOK {
		t.Fatalf("dashboard: got status %d", status)
	}
	groups := body["dados_pluviometros"].([]any)
	if len(groups) != 1 {
		t.Fatalf("dashboard groups: got %d, want 1", len(groups))
	}
}

func TestTokenGuard(t *testing.T) {
	viper.Set("API_TOKEN", "sesame")
	t.Cleanup(func() { viper.Set("API_TOKEN", "") })

	app, _ := setupApp(t)

	req := httptest.NewRequest("GET", "/pluviometros", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("guarded request: %v", err)
	}
	if resp.StatusCode != fiber.StatusUnauthorized {
		t.Fatalf("without token: got status %d, want 401", resp.StatusCode)
	}

	req = httptest.NewRequest("GET", "/pluviometros", nil)
	req.Header.Set("Authorization", "Bearer sesame")
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("authorized request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("with token: got status %d, want 200", resp.StatusCode)
	}

	// Public routes stay open.
	req = httptest.NewRequest("GET", "/pluviometro", nil)
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatalf("public request: %v", err)
	}
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("public route with guard active: got status %d, want 200", resp.StatusCode)
	}
}
