package domain

import "time"

type Station struct {
	ID          int64     `db:"id_pluviometro" json:"id"`
	NumeroSerie string    `db:"numero_serie" json:"numero_serie"`
	Nome        string    `db:"nome" json:"nome"`
	Endereco    *string   `db:"endereco" json:"endereco"`
	Numero      *string   `db:"numero" json:"numero"`
	Cidade      string    `db:"cidade" json:"cidade"`
	CEP         *string   `db:"cep" json:"cep"`
	Estado      string    `db:"estado" json:"estado"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

type Reading struct {
	ID          int64     `db:"id_dados" json:"id"`
	StationID   int64     `db:"id_pluviometro" json:"id_pluviometro"`
	Umidade     float64   `db:"umidade" json:"umidade"`
	Chuva       float64   `db:"chuva" json:"chuva"`
	Temperatura float64   `db:"temperatura" json:"temperatura"`
	DataHora    time.Time `db:"data_hora" json:"data_hora"`
}

// StationLatest is a station merged with its most recent reading.
// Reading fields are nil for stations that never reported.
type StationLatest struct {
	Station
	Umidade     *float64   `db:"umidade" json:"umidade"`
	Temperatura *float64   `db:"temperatura" json:"temperatura"`
	DataHora    *time.Time `db:"data_hora" json:"data_hora"`
}

// ReadingWithStation is one reading row joined with the descriptive
// fields of its owning station, used by the chronological feed.
type ReadingWithStation struct {
	ReadingID   int64     `db:"id_dados" json:"id_dados"`
	StationID   int64     `db:"id_pluviometro" json:"id"`
	Nome        string    `db:"nome" json:"nome"`
	NumeroSerie string    `db:"numero_serie" json:"numero_serie"`
	Cidade      string    `db:"cidade" json:"cidade"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	Umidade     float64   `db:"umidade" json:"umidade"`
	Chuva       float64   `db:"chuva" json:"chuva"`
	Temperatura float64   `db:"temperatura" json:"temperatura"`
	DataHora    time.Time `db:"data_hora" json:"data_hora"`
}

// ReadingSample is a single measurement inside a per-day station group.
type ReadingSample struct {
	Umidade     float64   `json:"umidade"`
	Temperatura float64   `json:"temperatura"`
	Chuva       float64   `json:"chuva"`
	DataHora    time.Time `json:"data_hora"`
}

// StationDay groups one station's readings for the current day.
type StationDay struct {
	Station
	Dados []ReadingSample `json:"dados"`
}

// CurrentWeather is the current_weather block of the forecast API.
type CurrentWeather struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
	Time        string  `json:"time"`
}

// DailyForecast is the daily min/max/weather-code block of the forecast API.
type DailyForecast struct {
	Time           []string  `json:"time"`
	TemperatureMax []float64 `json:"temperature_2m_max"`
	TemperatureMin []float64 `json:"temperature_2m_min"`
	WeatherCode    []int     `json:"weathercode"`
}

// Enrichment carries external weather data for one station. A nil
// *Enrichment means the external service was not consulted; the feed
// then emits the legacy null/empty placeholders.
type Enrichment struct {
	Umidade     *float64
	Temperatura *float64
	Current     *CurrentWeather
	Daily       *DailyForecast
}
