package delivery

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// WriteFile persists a rendered briefing under dir with a timestamped name
// and returns the written path. Used for dry runs instead of sending email.
func WriteFile(dir, htmlContent string, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("briefing_%s.html", now.Format("20060102_150405")))
	if err := os.WriteFile(path, []byte(htmlContent), 0644); err != nil {
		return "", fmt.Errorf("write briefing file: %w", err)
	}
	return path, nil
}
