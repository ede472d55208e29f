package delivery

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	now := time.Date(2026, 8, 26, 7, 5, 9, 0, time.UTC)

	path, err := WriteFile(dir, "<html>briefing</html>", now)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if filepath.Base(path) != "briefing_20260826_070509.html" {
		t.Errorf("unexpected file name: %s", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written file: %v", err)
	}
	if string(data) != "<html>briefing</html>" {
		t.Errorf("unexpected file content: %q", data)
	}
}

func TestWriteFile_BadDirectory(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	if err := os.WriteFile(blocker, nil, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := WriteFile(filepath.Join(blocker, "out"), "x", time.Now()); err == nil {
		t.Fatal("expected error when directory cannot be created")
	}
}
