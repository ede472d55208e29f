package briefing

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"daybrief/internal/calendar"
	"daybrief/internal/news"
	"daybrief/internal/weather"
)

// Builder assembles the briefing document from formatted data and the
// template file on disk.
type Builder struct {
	templatePath string
	log          *zap.Logger
}

// NewBuilder creates a Builder reading its template from templatePath.
func NewBuilder(templatePath string, log *zap.Logger) *Builder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Builder{templatePath: templatePath, log: log}
}

// Build formats all inputs, merges them with the current date and time, and
// renders the briefing template. Missing upstream data (nil weather, empty
// slices) degrades to hidden sections; a missing or malformed template is
// an error.
func (b *Builder) Build(current *weather.Current, hourly []weather.Slot, events []calendar.Event, articles []news.Article, now time.Time) (string, error) {
	raw, err := os.ReadFile(b.templatePath)
	if err != nil {
		return "", fmt.Errorf("load briefing template: %w", err)
	}

	ctx := Context{
		"date": now.Format("Monday, January 02, 2006"),
		"time": now.Format("03:04 PM"),
	}
	merge(ctx, FormatWeather(current))
	merge(ctx, FormatHourlyForecast(hourly))
	merge(ctx, FormatCalendarEvents(events))
	merge(ctx, FormatArticles(articles))

	doc, err := Render(string(raw), ctx)
	if err != nil {
		return "", fmt.Errorf("render briefing template: %w", err)
	}

	b.log.Debug("briefing rendered",
		zap.Int("template_bytes", len(raw)),
		zap.Int("document_bytes", len(doc)))
	return doc, nil
}

func merge(dst, src Context) {
	for k, v := range src {
		dst[k] = v
	}
}
