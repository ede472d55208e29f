package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_ConsoleOnly(t *testing.T) {
	log, err := New("debug", "")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Debug("console only")
	log.Sync()
}

func TestNew_WritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	log, err := New("info", dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Info("hello")
	log.Sync()

	name := fmt.Sprintf("briefing_%s.log", time.Now().Format("2006-01-02"))
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(data, &entry); err != nil {
		t.Fatalf("log file is not JSON: %v\n%s", err, data)
	}
	if entry["msg"] != "hello" {
		t.Errorf("unexpected log entry: %v", entry)
	}
}

func TestNew_BadLevelFallsBackToInfo(t *testing.T) {
	dir := t.TempDir()
	log, err := New("loud", dir)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	log.Debug("suppressed at info level")
	log.Sync()

	name := fmt.Sprintf("briefing_%s.log", time.Now().Format("2006-01-02"))
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("debug output should be suppressed, got %q", data)
	}
}

func TestNew_BadDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := New("info", filepath.Join(blocker, "logs")); err == nil {
		t.Fatal("expected error when log directory cannot be created")
	}
}
