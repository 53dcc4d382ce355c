package main

import (
	"encoding/json"
	"math/rand"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/aquametrics/pluviometro/internal/config"
)

type reading struct {
	NumeroSerie string    `json:"numero_serie"`
	Temperatura float64   `json:"temperatura"`
	Umidade     float64   `json:"umidade"`
	Chuva       float64   `json:"chuva"`
	DataHora    time.Time `json:"data_hora"`
}

func main() {
	if err := config.Load(); err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}
	opts := mqtt.NewClientOptions().AddBroker(config.MQTTBroker())
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal().Err(token.Error()).Msg("mqtt connect")
	}
	defer client.Disconnect(250)

	for i := 0; i < 100; i++ {
		batch := []reading{{
			NumeroSerie: "PLV-001",
			Temperatura: 18 + rand.Float64()*12,
			Umidade:     50 + rand.Float64()*40,
			Chuva:       rand.Float64() * 5,
			DataHora:    time.Now(),
		}}
		payload, _ := json.Marshal(batch)
		token := client.Publish(config.MQTTTopic(), 0, false, payload)
		token.Wait()
		time.Sleep(500 * time.Millisecond)
	}
	log.Info().Msg("simulation done")
}
