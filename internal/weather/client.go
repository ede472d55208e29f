// Package weather fetches current conditions and short-range forecasts
// from the OpenWeatherMap API.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidAPIKey is returned on a 401 from the API. Retrying cannot help.
var ErrInvalidAPIKey = errors.New("weather API error: invalid API key")

// Current holds a snapshot of current conditions. Temperatures are in
// Fahrenheit at whatever precision the API returns; rounding for display
// happens downstream.
type Current struct {
	Temperature float64
	TempMin     float64
	TempMax     float64
	Condition   string
	Description string
}

// Slot is one forecast period (roughly 3-hour intervals). Temperature is a
// pointer so a missing reading is distinguishable from zero degrees.
type Slot struct {
	Time        string // display label, e.g. "3PM"
	Hour        int
	Temperature *float64
	RainChance  int // percent
	Condition   string
	Icon        string
}

// Client talks to OpenWeatherMap.
type Client struct {
	apiKey     string
	baseURL    string
	units      string
	httpClient *http.Client
	maxRetries int
	backoffBase time.Duration
	log        *zap.Logger
}

// NewClient creates a weather client with production defaults.
func NewClient(apiKey string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		apiKey:      apiKey,
		baseURL:     "https://api.openweathermap.org/data/2.5",
		units:       "imperial",
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		maxRetries:  3,
		backoffBase: time.Second,
		log:         log,
	}
}

type owmWeather struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type owmCurrentResponse struct {
	Main struct {
		Temp    float64 `json:"temp"`
		TempMin float64 `json:"temp_min"`
		TempMax float64 `json:"temp_max"`
	} `json:"main"`
	Weather []owmWeather `json:"weather"`
}

type owmForecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp float64 `json:"temp"`
		} `json:"main"`
		Weather []owmWeather `json:"weather"`
		Pop     float64      `json:"pop"`
	} `json:"list"`
}

// Current fetches current conditions for a city.
func (c *Client) Current(ctx context.Context, city, countryCode string) (*Current, error) {
	body, err := c.get(ctx, "/weather", city, countryCode, nil)
	if err != nil {
		return nil, err
	}

	var resp owmCurrentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode weather response: %w", err)
	}
	if len(resp.Weather) == 0 {
		return nil, fmt.Errorf("malformed weather response: missing conditions")
	}

	return &Current{
		Temperature: resp.Main.Temp,
		TempMin:     resp.Main.TempMin,
		TempMax:     resp.Main.TempMax,
		Condition:   resp.Weather[0].Main,
		Description: resp.Weather[0].Description,
	}, nil
}

// HourlyForecast returns the next four forecast periods for a city.
func (c *Client) HourlyForecast(ctx context.Context, city, countryCode string) ([]Slot, error) {
	body, err := c.get(ctx, "/forecast", city, countryCode, url.Values{"cnt": {"40"}})
	if err != nil {
		return nil, err
	}

	var resp owmForecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode forecast response: %w", err)
	}

	entries := resp.List
	if len(entries) > 4 {
		entries = entries[:4]
	}

	slots := make([]Slot, 0, len(entries))
	for _, entry := range entries {
		at := time.Unix(entry.Dt, 0)
		temp := math.Round(entry.Main.Temp)
		slot := Slot{
			Time:        at.Format("3PM"),
			Hour:        at.Hour(),
			Temperature: &temp,
			RainChance:  int(entry.Pop * 100),
		}
		if len(entry.Weather) > 0 {
			slot.Condition = entry.Weather[0].Main
			slot.Icon = entry.Weather[0].Icon
		}
		slots = append(slots, slot)
	}

	return slots, nil
}

// get performs a GET against the API with retry on transport failures.
// HTTP-level errors are not retried: a 401 means a bad key and anything
// else non-200 means the request itself is wrong.
func (c *Client) get(ctx context.Context, path, city, countryCode string, extra url.Values) ([]byte, error) {
	params := url.Values{}
	params.Set("q", fmt.Sprintf("%s,%s", city, countryCode))
	params.Set("appid", c.apiKey)
	params.Set("units", c.units)
	for k, vs := range extra {
		for _, v := range vs {
			params.Add(k, v)
		}
	}
	reqURL := c.baseURL + path + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.backoffBase << (attempt - 1)
			c.log.Debug("retrying weather request",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		switch resp.StatusCode {
		case http.StatusOK:
			return body, nil
		case http.StatusUnauthorized:
			return nil, ErrInvalidAPIKey
		default:
			return nil, fmt.Errorf("weather API error: status code %d", resp.StatusCode)
		}
	}

	return nil, fmt.Errorf("failed to fetch weather: %w", lastErr)
}
