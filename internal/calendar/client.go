// Package calendar fetches today's events from Google Calendar.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Event is one calendar entry in the shape the briefing consumes.
// StartTime and EndTime are RFC 3339 timestamps for timed events and bare
// dates (YYYY-MM-DD) for all-day events.
type Event struct {
	Title     string
	StartTime string
	EndTime   string
	Location  string
	AllDay    bool
}

// Client wraps an authenticated Google Calendar service.
type Client struct {
	svc *calendar.Service
	log *zap.Logger
}

// NewClient builds a calendar client from an OAuth installed-app credentials
// file and a cached token file. When no cached token exists it prints an
// authorization URL and reads the verification code from stdin, then saves
// the token for subsequent runs.
func NewClient(ctx context.Context, credentialsFile, tokenFile string, log *zap.Logger) (*Client, error) {
	if log == nil {
		log = zap.NewNop()
	}

	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("read credentials file: %w", err)
	}

	oauthCfg, err := google.ConfigFromJSON(creds, calendar.CalendarReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse credentials file: %w", err)
	}

	tok, err := tokenFromFile(tokenFile)
	if err != nil {
		tok, err = tokenFromPrompt(ctx, oauthCfg)
		if err != nil {
			return nil, err
		}
		if err := saveToken(tokenFile, tok); err != nil {
			log.Warn("failed to cache oauth token", zap.Error(err))
		}
	}

	svc, err := calendar.NewService(ctx, option.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("build calendar service: %w", err)
	}

	return &Client{svc: svc, log: log}, nil
}

// TodayEvents returns the events on the primary calendar for the local day
// containing now, in start-time order.
func (c *Client) TodayEvents(ctx context.Context, now time.Time) ([]Event, error) {
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	endOfDay := startOfDay.Add(24 * time.Hour)

	result, err := c.svc.Events.List("primary").
		TimeMin(startOfDay.Format(time.RFC3339)).
		TimeMax(endOfDay.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("fetch calendar events: %w", err)
	}

	return convertEvents(result.Items), nil
}

// convertEvents maps API items to briefing events. An all-day event is one
// whose start carries a date rather than a dateTime.
func convertEvents(items []*calendar.Event) []Event {
	events := make([]Event, 0, len(items))
	for _, item := range items {
		if item == nil || item.Start == nil {
			continue
		}

		title := item.Summary
		if title == "" {
			title = "No Title"
		}

		event := Event{
			Title:    title,
			Location: item.Location,
			AllDay:   item.Start.Date != "",
		}

		if event.AllDay {
			event.StartTime = item.Start.Date
		} else {
			event.StartTime = item.Start.DateTime
		}
		if item.End != nil {
			if item.End.Date != "" {
				event.EndTime = item.End.Date
			} else {
				event.EndTime = item.End.DateTime
			}
		}

		events = append(events, event)
	}
	return events
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, err
	}
	return tok, nil
}

func tokenFromPrompt(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Visit this URL to authorize calendar access, then paste the code:\n%v\n> ", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return nil, fmt.Errorf("read authorization code: %w", err)
	}

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
