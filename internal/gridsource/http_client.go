package gridsource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/ngmaloney/marine-overlay/internal/models"
)

const defaultUserAgent = "MarineOverlay/1.0 (github.com/ngmaloney/marine-overlay)"

// HTTPClient implements WeatherClient and WaterClient against the grid
// service's JSON API.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	breaker    *gobreaker.CircuitBreaker
}

// NewHTTPClient creates a grid-source client for the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "gridsource",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 4
		},
	})
	return &HTTPClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		userAgent: defaultUserAgent,
		breaker:   breaker,
	}
}

// FetchGrid retrieves forecast samples for the bounds at the given
// resolution and forecast hour.
func (c *HTTPClient) FetchGrid(ctx context.Context, bounds models.GridBounds, resolution float64, forecastHour int) (*GridResponse, error) {
	query := url.Values{}
	query.Set("south", formatDegrees(bounds.South))
	query.Set("north", formatDegrees(bounds.North))
	query.Set("west", formatDegrees(bounds.West))
	query.Set("east", formatDegrees(bounds.East))
	query.Set("resolution", formatDegrees(resolution))
	query.Set("hour", strconv.Itoa(forecastHour))

	var resp GridResponse
	if err := c.getJSON(ctx, "/v1/grid", query, &resp); err != nil {
		return nil, fmt.Errorf("fetching forecast grid: %w", err)
	}
	return &resp, nil
}

// FetchWaterGrid retrieves the land/water classification lattice for the
// bounds at the given spacing.
func (c *HTTPClient) FetchWaterGrid(ctx context.Context, south, north, west, east, spacing float64) ([]models.WaterGridPoint, error) {
	query := url.Values{}
	query.Set("south", formatDegrees(south))
	query.Set("north", formatDegrees(north))
	query.Set("west", formatDegrees(west))
	query.Set("east", formatDegrees(east))
	query.Set("spacing", formatDegrees(spacing))

	var resp struct {
		Grid []models.WaterGridPoint `json:"grid"`
	}
	if err := c.getJSON(ctx, "/v1/watergrid", query, &resp); err != nil {
		return nil, fmt.Errorf("fetching water grid: %w", err)
	}
	return resp.Grid, nil
}

// getJSON issues a GET through the circuit breaker and decodes the JSON
// body, classifying failures into the error taxonomy.
func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, out interface{}) error {
	reqURL := c.baseURL + path + "?" + query.Encode()

	_, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if err := classifyStatus(resp.StatusCode); err != nil {
			return nil, err
		}

		body := json.NewDecoder(resp.Body)
		if err := body.Decode(out); err != nil {
			return nil, fmt.Errorf("decoding response: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return classifyTransportError(err)
	}
	return nil
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
