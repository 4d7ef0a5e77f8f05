// Package noaa implements the forecast provider against the National Weather
// Service API (api.weather.gov). A forecast lookup is a two-step fetch: the
// grid point for a coordinate pair, then the hourly forecast that grid point
// links to.
package noaa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nagavaishak/Celsius/internal/domain"
	"github.com/nagavaishak/Celsius/internal/forecast"
)

// modelConfidence is the fixed confidence attached to every estimate; the
// NWS hourly feed carries no calibrated uncertainty of its own.
const modelConfidence = 0.95

// Coordinates locates a city for the NWS grid-point lookup.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Client is the REST client for the NWS forecast API. It satisfies
// domain.ForecastProvider.
type Client struct {
	baseURL    string
	userAgent  string
	coords     map[string]Coordinates
	sigma      float64
	httpClient *http.Client
}

// NewClient creates a Client. baseURL is the API root, e.g.
// "https://api.weather.gov"; the NWS requires a descriptive User-Agent.
// coords maps target city names to their lookup coordinates; sigma <= 0
// falls back to the model default.
func NewClient(baseURL, userAgent string, coords map[string]Coordinates, sigma float64) *Client {
	if sigma <= 0 {
		sigma = forecast.DefaultSigma
	}
	cs := make(map[string]Coordinates, len(coords))
	for name, c := range coords {
		cs[name] = c
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		coords:    cs,
		sigma:     sigma,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// GetForecast returns the exceedance probability estimate for a city. A city
// without configured coordinates, or a forecast feed with no periods, is
// absent (ok=false, nil error) rather than an error.
func (c *Client) GetForecast(ctx context.Context, city string, thresholdC float64) (domain.ForecastEstimate, bool, error) {
	coord, ok := c.coords[city]
	if !ok {
		return domain.ForecastEstimate{}, false, nil
	}

	grid, err := c.getGridPoint(ctx, coord)
	if err != nil {
		return domain.ForecastEstimate{}, false, fmt.Errorf("noaa: grid point for %s: %w", city, err)
	}
	if grid.Properties.ForecastHourly == "" {
		return domain.ForecastEstimate{}, false, nil
	}

	hourly, err := c.getHourly(ctx, grid.Properties.ForecastHourly)
	if err != nil {
		return domain.ForecastEstimate{}, false, fmt.Errorf("noaa: hourly forecast for %s: %w", city, err)
	}
	if len(hourly.Properties.Periods) == 0 {
		return domain.ForecastEstimate{}, false, nil
	}

	period := hourly.Properties.Periods[0]
	tempC := period.Temperature
	if period.TemperatureUnit != "C" {
		tempC = FahrenheitToCelsius(period.Temperature)
	}

	prob, err := forecast.ExceedanceProbability(tempC, thresholdC, c.sigma)
	if err != nil {
		return domain.ForecastEstimate{}, false, fmt.Errorf("noaa: estimate for %s: %w", city, err)
	}

	return domain.ForecastEstimate{
		Probability:     prob,
		MeanTempC:       tempC,
		ModelConfidence: modelConfidence,
	}, true, nil
}

// FahrenheitToCelsius converts a temperature from °F to °C.
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32.0) * 5.0 / 9.0
}

func (c *Client) getGridPoint(ctx context.Context, coord Coordinates) (gridPointResponse, error) {
	path := fmt.Sprintf("%s/points/%.4f,%.4f", c.baseURL, coord.Lat, coord.Lon)

	body, err := c.doGet(ctx, path)
	if err != nil {
		return gridPointResponse{}, err
	}

	var grid gridPointResponse
	if err := json.Unmarshal(body, &grid); err != nil {
		return gridPointResponse{}, fmt.Errorf("decode grid point: %w", err)
	}
	return grid, nil
}

func (c *Client) getHourly(ctx context.Context, url string) (hourlyForecastResponse, error) {
	body, err := c.doGet(ctx, url)
	if err != nil {
		return hourlyForecastResponse{}, err
	}

	var hourly hourlyForecastResponse
	if err := json.Unmarshal(body, &hourly); err != nil {
		return hourlyForecastResponse{}, fmt.Errorf("decode hourly forecast: %w", err)
	}
	return hourly, nil
}

// doGet sends a GET request with the required NWS headers.
func (c *Client) doGet(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(body, 256))
	}
	return body, nil
}

func truncate(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
