package main

import (
	"context"
	"encoding/json"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/aquametrics/pluviometro/internal/config"
	"github.com/aquametrics/pluviometro/internal/database"
	"github.com/aquametrics/pluviometro/internal/service"
)

// Bridges field devices that report over MQTT into the same batch
// ingestion path as the HTTP endpoint.
func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	db, err := database.Connect()
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	defer db.Close()

	svcs := service.New(db, service.Options{})

	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		var items []service.ReadingSubmission
		if err := json.Unmarshal(msg.Payload(), &items); err != nil {
			log.Error().Err(err).Str("topic", msg.Topic()).Msg("bad batch payload")
			return
		}
		results := svcs.Readings.IngestBatch(context.Background(), items)
		accepted := 0
		for _, r := range results {
			if r.Status == "accepted" {
				accepted++
			}
		}
		log.Info().Int("total", len(results)).Int("accepted", accepted).Msg("batch ingested")
	}

	if token := client.Subscribe(config.MQTTTopic(), 0, handler); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("subscribe failed")
	}

	log.Info().Str("topic", config.MQTTTopic()).Msg("ingestor running; Ctrl+C to stop")
	for {
		time.Sleep(10 * time.Second)
	}
}
