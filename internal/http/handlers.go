package http

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/aquametrics/pluviometro/internal/service"
)

func Register(app *fiber.App, svcs *service.Services) {
	// Public surface
	app.Get("/", handleToday(svcs))
	app.Get("/pluviometro", handleLatest(svcs))
	app.Get("/pluviometros/dados", handleFeed(svcs))
	app.Post("/dados_pluviometros", handleIngest(svcs))

	// Management surface
	g := app.Group("/pluviometros", TokenGuard())
	g.Get("/", handleLatest(svcs))
	g.Get("/create", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"pluviometro": nil})
	})
	g.Post("/", handleCreate(svcs))
	g.Get("/:id/edit", handleEdit(svcs))
	g.Put("/:id", handleUpdate(svcs))
	g.Delete("/:id", handleDelete(svcs))
}

func handleToday(svcs *service.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		groups, err := svcs.Aggregation.TodayGroupedByStation(c.Context())
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(fiber.Map{"dados_pluviometros": groups})
	}
}

func handleLatest(svcs *service.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svcs.Aggregation.LatestPerStation(c.Context())
		if err != nil {
			return internalError(c, err)
		}
		return c.JSON(fiber.Map{"pluviometros": items})
	}
}

// feedItem keeps the legacy feed shape: enrichment fields are null/empty
// placeholders unless the weather client is enabled.
type feedItem struct {
	ID             int64     `json:"id"`
	Nome           string    `json:"nome"`
	NumeroSerie    string    `json:"numero_serie"`
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	Umidade        float64   `json:"umidade"`
	Chuva          float64   `json:"chuva"`
	Temperatura    float64   `json:"temperatura"`
	DataHora       time.Time `json:"data_hora"`
	UmidadeAPI     *float64  `json:"umidade_api"`
	TemperaturaAPI *float64  `json:"temperatura_api"`
	APIBruta       any       `json:"api_bruta"`
	Daily          any       `json:"daily"`
}

func handleFeed(svcs *service.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		feed, err := svcs.Aggregation.AllReadingsChronological(c.Context())
		if err != nil {
			return internalError(c, err)
		}
		items := make([]feedItem, 0, len(feed.Items))
		for _, it := range feed.Items {
			fi := feedItem{
				ID:          it.StationID,
				Nome:        it.Nome,
				NumeroSerie: it.NumeroSerie,
				Latitude:    it.Latitude,
				Longitude:   it.Longitude,
				Umidade:     it.Umidade,
				Chuva:       it.Chuva,
				Temperatura: it.Temperatura,
				DataHora:    it.DataHora,
				APIBruta:    []any{},
				Daily:       []any{},
			}
			if enr := feed.Enrichment[it.StationID]; enr != nil {
				fi.UmidadeAPI = enr.Umidade
				fi.TemperaturaAPI = enr.Temperatura
				if enr.Current != nil {
					fi.APIBruta = enr.Current
				}
				if enr.Daily != nil {
					fi.Daily = enr.Daily
				}
			}
			items = append(items, fi)
		}
		return c.JSON(fiber.Map{"status": "success", "data": items})
	}
}

func handleIngest(svcs *service.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var items []service.ReadingSubmission
		if err := c.BodyParser(&items); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"status":  "error",
				"message": "corpo inválido: esperado um array de leituras",
			})
		}
		results := svcs.Readings.IngestBatch(c.Context(), items)
		// Legacy contract: status is "ok" no matter how many entries
		// were skipped. The per-item results let callers tell.
		return c.JSON(fiber.Map{"status": "ok", "results": results})
	}
}

func handleCreate(svcs *service.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var form service.StationForm
		if err := c.BodyParser(&form); err != nil {
			return badBody(c)
		}
		st, err := svcs.Stations.Create(c.Context(), Actor(c), form)
		if err != nil {
			return crudError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"status":      "success",
			"message":     "Pluviômetro salvo com sucesso.",
			"pluviometro": st,
		})
	}
}

func handleEdit(svcs *service.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return badID(c)
		}
		st, err := svcs.Stations.Get(c.Context(), int64(id))
		if err != nil {
			return crudError(c, err)
		}
		return c.JSON(fiber.Map{"pluviometro": st})
	}
}

func handleUpdate(svcs *service.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return badID(c)
		}
		var form service.StationForm
		if err := c.BodyParser(&form); err != nil {
			return badBody(c)
		}
		st, err := svcs.Stations.Update(c.Context(), Actor(c), int64(id), form)
		if err != nil {
			return crudError(c, err)
		}
		return c.JSON(fiber.Map{
			"status":      "success",
			"message":     "Pluviômetro atualizado com sucesso.",
			"pluviometro": st,
		})
	}
}

func handleDelete(svcs *service.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := c.ParamsInt("id")
		if err != nil {
			return badID(c)
		}
		if _, err := svcs.Stations.Delete(c.Context(), Actor(c), int64(id)); err != nil {
			return crudError(c, err)
		}
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Pluviômetro excluído com sucesso.",
		})
	}
}

func crudError(c *fiber.Ctx, err error) error {
	var verrs service.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		fields := fiber.Map{}
		for _, fe := range verrs {
			fields[fe.Field] = fe.Message
		}
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"status": "error",
			"errors": fields,
		})
	case errors.Is(err, service.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"status":  "warning",
			"message": "Pluviômetro não encontrado.",
		})
	case errors.Is(err, service.ErrHasReadings):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":  "warning",
			"message": "Pluviômetro possui leituras registradas e não pode ser excluído.",
		})
	default:
		return internalError(c, err)
	}
}

func internalError(c *fiber.Ctx, err error) error {
	// Details stay in the audit log; the caller gets a generic failure.
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  "error",
		"message": "Ocorreu um erro ao processar a requisição.",
	})
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": "corpo da requisição inválido",
	})
}

func badID(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  "error",
		"message": "id inválido",
	})
}
