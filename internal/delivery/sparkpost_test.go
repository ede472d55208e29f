package delivery

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
	)
}

func newTestMailer(baseURL string) *Mailer {
	m := NewMailer("test-key", nil)
	m.baseURL = baseURL
	m.backoffBase = time.Millisecond
	return m
}

func TestMailer_Send(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/transmissions" {
			t.Errorf("expected transmissions path, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "test-key" {
			t.Error("expected API key in Authorization header")
		}

		var body transmission
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(body.Recipients) != 1 || body.Recipients[0].Address != "to@example.com" {
			t.Errorf("unexpected recipients: %+v", body.Recipients)
		}
		if body.Content.From != "from@example.com" || body.Content.Subject != "Morning Briefing" {
			t.Errorf("unexpected content header: %+v", body.Content)
		}
		if body.Content.HTML != "<html>hi</html>" {
			t.Errorf("unexpected html: %q", body.Content.HTML)
		}

		w.Write([]byte(`{"results": {"total_accepted_recipients": 1}}`))
	}))
	defer server.Close()

	m := newTestMailer(server.URL)
	err := m.Send(context.Background(), "from@example.com", "to@example.com", "Morning Briefing", "<html>hi</html>")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
}

func TestMailer_Send_NoAcceptedRecipients(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results": {"total_accepted_recipients": 0}}`))
	}))
	defer server.Close()

	m := newTestMailer(server.URL)
	err := m.Send(context.Background(), "from@example.com", "to@example.com", "s", "h")
	if err == nil {
		t.Fatal("expected error when no recipients accepted")
	}
}

func TestMailer_Send_RetriesServerError(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"results": {"total_accepted_recipients": 1}}`))
	}))
	defer server.Close()

	m := newTestMailer(server.URL)
	err := m.Send(context.Background(), "f@example.com", "t@example.com", "s", "h")
	if err != nil {
		t.Fatalf("Send failed after retries: %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

func TestMailer_Send_ExhaustsRetries(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	m := newTestMailer(server.URL)
	err := m.Send(context.Background(), "f@example.com", "t@example.com", "s", "h")
	if err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}
