// Package delivery sends the rendered briefing, either by email through
// the SparkPost transmissions API or to a local file for dry runs.
package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Mailer sends HTML email via SparkPost.
type Mailer struct {
	apiKey      string
	baseURL     string
	httpClient  *http.Client
	maxRetries  int
	backoffBase time.Duration
	log         *zap.Logger
}

// NewMailer creates a SparkPost mailer with production defaults.
func NewMailer(apiKey string, log *zap.Logger) *Mailer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Mailer{
		apiKey:      apiKey,
		baseURL:     "https://api.sparkpost.com",
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		maxRetries:  3,
		backoffBase: time.Second,
		log:         log,
	}
}

type transmission struct {
	Recipients []recipient         `json:"recipients"`
	Content    transmissionContent `json:"content"`
}

type recipient struct {
	Address string `json:"address"`
}

type transmissionContent struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
}

type transmissionResponse struct {
	Results struct {
		TotalAcceptedRecipients int `json:"total_accepted_recipients"`
	} `json:"results"`
}

// Send delivers an HTML email, retrying with exponential backoff. It fails
// if SparkPost accepts zero recipients.
func (m *Mailer) Send(ctx context.Context, from, to, subject, htmlContent string) error {
	payload, err := json.Marshal(transmission{
		Recipients: []recipient{{Address: to}},
		Content: transmissionContent{
			From:    from,
			Subject: subject,
			HTML:    htmlContent,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal transmission: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt < m.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := m.backoffBase << (attempt - 1)
			m.log.Debug("retrying email send",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", backoff))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		if err := m.sendOnce(ctx, payload); err != nil {
			lastErr = err
			continue
		}
		return nil
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", m.maxRetries, lastErr)
}

func (m *Mailer) sendOnce(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+"/api/v1/transmissions", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sparkpost error: status code %d", resp.StatusCode)
	}

	var parsed transmissionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return fmt.Errorf("decode sparkpost response: %w", err)
	}
	if parsed.Results.TotalAcceptedRecipients == 0 {
		return fmt.Errorf("failed to send email: no recipients accepted")
	}
	return nil
}
