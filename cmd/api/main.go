package main

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/aquametrics/pluviometro/internal/cloud"
	"github.com/aquametrics/pluviometro/internal/config"
	"github.com/aquametrics/pluviometro/internal/database"
	httpHandlers "github.com/aquametrics/pluviometro/internal/http"
	"github.com/aquametrics/pluviometro/internal/service"
	"github.com/aquametrics/pluviometro/internal/weather"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("schema migration failed")
	}

	loc, err := time.LoadLocation(config.Timezone())
	if err != nil {
		log.Fatal().Err(err).Str("timezone", config.Timezone()).Msg("invalid timezone")
	}

	opts := service.Options{
		Location:      loc,
		RainThreshold: config.RainAlertThreshold(),
	}
	if config.WeatherEnrichment() {
		opts.Enricher = weather.New(config.WeatherAPIURL(), config.Timezone())
		log.Info().Str("url", config.WeatherAPIURL()).Msg("weather enrichment enabled")
	}
	if config.UseCloudAlerts() {
		alerts, err := cloud.NewSNSClient(config.AWSRegion(), config.SNSTopicArn())
		if err != nil {
			log.Fatal().Err(err).Msg("sns client failed")
		}
		opts.Alerts = alerts
		log.Info().Msg("rainfall alerts enabled")
	}

	svcs := service.New(db, opts)
	app := fiber.New()

	app.Get("/health", func(c *fiber.Ctx) error { return c.SendString("ok") })

	httpHandlers.Register(app, svcs)

	addr := config.APIAddr()
	if addr == "" {
		addr = ":8080"
	}
	log.Info().Str("addr", addr).Msg("api listening")
	log.Fatal().Err(app.Listen(addr)).Msg("server exit")
}
