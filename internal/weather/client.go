package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/aquametrics/pluviometro/internal/domain"
)

// Client queries an open-meteo style forecast API by coordinate. It is
// the optional enrichment backend; the rest of the system never depends
// on it being configured.
type Client struct {
	baseURL  string
	timezone string
	http     *http.Client
}

func New(baseURL, timezone string) *Client {
	return &Client{
		baseURL:  baseURL,
		timezone: timezone,
		http:     &http.Client{Timeout: 10 * time.Second},
	}
}

type forecastResponse struct {
	CurrentWeather *domain.CurrentWeather `json:"current_weather"`
	Hourly         struct {
		Temperature []float64 `json:"temperature_2m"`
		Humidity    []float64 `json:"relative_humidity_2m"`
	} `json:"hourly"`
	Daily *domain.DailyForecast `json:"daily"`
}

// Enrich fetches current conditions, the hourly temperature/humidity
// series and the daily forecast for a coordinate. The first hourly
// sample backs the umidade_api/temperatura_api feed fields.
func (c *Client) Enrich(ctx context.Context, lat, lon float64) (*domain.Enrichment, error) {
	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(lat, 'f', 7, 64))
	q.Set("longitude", strconv.FormatFloat(lon, 'f', 7, 64))
	q.Set("current_weather", "true")
	q.Set("hourly", "temperature_2m,relative_humidity_2m")
	q.Set("daily", "temperature_2m_max,temperature_2m_min,weathercode")
	q.Set("timezone", c.timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("forecast request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast request: status %d", resp.StatusCode)
	}

	var body forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	enr := &domain.Enrichment{
		Current: body.CurrentWeather,
		Daily:   body.Daily,
	}
	if len(body.Hourly.Humidity) > 0 {
		enr.Umidade = &body.Hourly.Humidity[0]
	}
	if len(body.Hourly.Temperature) > 0 {
		enr.Temperatura = &body.Hourly.Temperature[0]
	}
	return enr, nil
}
