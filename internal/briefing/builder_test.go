package briefing

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"daybrief/internal/calendar"
	"daybrief/internal/news"
	"daybrief/internal/weather"
)

func writeTemplate(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "briefing.html")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestBuilder_Build(t *testing.T) {
	now := time.Date(2026, time.August, 26, 7, 5, 0, 0, time.UTC)

	t.Run("renders the full document", func(t *testing.T) {
		path := writeTemplate(t, `<h1>{{date}} {{time}}</h1>
{{#weather_available}}<p>{{weather_icon}} {{temperature}} {{description}}</p>{{/weather_available}}
{{#has_events}}{{#events}}<li>{{time}} {{title}}</li>{{/events}}{{/has_events}}
{{#has_articles}}{{#articles}}<a href="{{link}}">{{title}}</a>{{/articles}}{{/has_articles}}`)

		b := NewBuilder(path, nil)
		temp := 58.0
		doc, err := b.Build(
			&weather.Current{Temperature: 61.4, TempMin: 55, TempMax: 66, Condition: "Rain", Description: "light rain"},
			[]weather.Slot{{Time: "9AM", Temperature: &temp, RainChance: 80, Condition: "Rain"}},
			[]calendar.Event{{Title: "Standup", StartTime: "2026-08-26T09:30:00Z"}},
			[]news.Article{{Title: "Headline", Link: "https://example.com/a"}},
			now,
		)
		require.NoError(t, err)

		assert.Contains(t, doc, "Wednesday, August 26, 2026 07:05 AM")
		assert.Contains(t, doc, "🌧️ 61 Light rain")
		assert.Contains(t, doc, "<li>09:30 AM Standup</li>")
		assert.Contains(t, doc, `<a href="https://example.com/a">Headline</a>`)
	})

	t.Run("missing data hides sections instead of failing", func(t *testing.T) {
		path := writeTemplate(t, `{{#weather_available}}W{{/weather_available}}{{^weather_available}}no weather{{/weather_available}}|{{^has_events}}no events{{/has_events}}|{{^has_articles}}no news{{/has_articles}}`)

		b := NewBuilder(path, nil)
		doc, err := b.Build(nil, nil, nil, nil, now)
		require.NoError(t, err)
		assert.Equal(t, "no weather|no events|no news", doc)
	})

	t.Run("missing template file is fatal", func(t *testing.T) {
		b := NewBuilder(filepath.Join(t.TempDir(), "absent.html"), nil)
		_, err := b.Build(nil, nil, nil, nil, now)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "load briefing template")
	})

	t.Run("malformed template is fatal", func(t *testing.T) {
		path := writeTemplate(t, "{{#weather_available}}never closed")
		b := NewBuilder(path, nil)
		_, err := b.Build(nil, nil, nil, nil, now)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedTemplate)
	})

	t.Run("inputs are not mutated", func(t *testing.T) {
		path := writeTemplate(t, "{{#has_articles}}{{#articles}}{{title}}{{/articles}}{{/has_articles}}")
		articles := []news.Article{{Title: "A"}, {Title: "B"}}

		b := NewBuilder(path, nil)
		_, err := b.Build(nil, nil, nil, articles, now)
		require.NoError(t, err)
		assert.Equal(t, "A", articles[0].Title)
		assert.Equal(t, "B", articles[1].Title)
	})
}

func TestBuilder_ShippedTemplate(t *testing.T) {
	// The repository template must render cleanly against both a full and
	// an empty context.
	path := filepath.Join("..", "..", "templates", "briefing.html")
	if _, err := os.Stat(path); err != nil {
		t.Skipf("shipped template not present: %v", err)
	}

	now := time.Date(2026, time.August, 26, 7, 5, 0, 0, time.UTC)
	b := NewBuilder(path, nil)

	t.Run("empty context", func(t *testing.T) {
		doc, err := b.Build(nil, nil, nil, nil, now)
		require.NoError(t, err)
		assert.Contains(t, doc, "Weather data is unavailable today.")
		assert.Contains(t, doc, "No events scheduled for today.")
		assert.Contains(t, doc, "No news articles available today.")
	})

	t.Run("full context", func(t *testing.T) {
		temp := 58.0
		doc, err := b.Build(
			&weather.Current{Temperature: 61.4, TempMin: 55, TempMax: 66, Condition: "Clear", Description: "clear sky"},
			[]weather.Slot{{Time: "9AM", Temperature: &temp, RainChance: 10, Condition: "Clear"}},
			[]calendar.Event{{Title: "Standup", StartTime: "2026-08-26T09:30:00Z", Location: "Room 4"}},
			[]news.Article{{Title: "Headline", Link: "https://example.com/a", Source: "Example", AISummary: "Summary."}},
			now,
		)
		require.NoError(t, err)
		assert.Contains(t, doc, "☀️ 61°F")
		assert.Contains(t, doc, "Standup")
		assert.Contains(t, doc, "Headline")
		assert.NotContains(t, doc, "{{")
	})
}
