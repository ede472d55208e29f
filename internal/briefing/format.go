package briefing

import (
	"math"
	"strings"
	"time"

	"daybrief/internal/calendar"
	"daybrief/internal/news"
	"daybrief/internal/weather"
)

// weatherIcons maps condition keywords to display icons. Order matters:
// the first keyword found in the condition wins.
var weatherIcons = []struct {
	keyword string
	icon    string
}{
	{"clear", "☀️"},
	{"rain", "🌧️"},
	{"drizzle", "🌧️"},
	{"clouds", "⛅"},
	{"cloud", "⛅"},
	{"partly", "🌤️"},
	{"thunderstorm", "⛈️"},
	{"snow", "❄️"},
	{"mist", "🌫️"},
	{"fog", "🌫️"},
	{"haze", "🌫️"},
}

const defaultWeatherIcon = "🌤️"

// WeatherIcon picks a display icon for a weather condition by
// case-insensitive substring match, falling back to a neutral icon.
func WeatherIcon(condition string) string {
	lower := strings.ToLower(condition)
	for _, entry := range weatherIcons {
		if strings.Contains(lower, entry.keyword) {
			return entry.icon
		}
	}
	return defaultWeatherIcon
}

// FormatWeather builds the weather sub-context. A nil snapshot yields only
// a false availability flag so the template skips the section.
func FormatWeather(w *weather.Current) Context {
	if w == nil {
		return Context{"weather_available": false}
	}
	return Context{
		"weather_available": true,
		"weather_icon":      WeatherIcon(w.Condition),
		"temperature":       int(math.Round(w.Temperature)),
		"temp_min":          int(math.Round(w.TempMin)),
		"temp_max":          int(math.Round(w.TempMax)),
		"condition":         w.Condition,
		"description":       capitalize(w.Description),
	}
}

// FormatHourlyForecast builds the hourly sub-context, dropping slots with
// no temperature reading. The availability flag reflects what survives the
// filter, not what came in.
func FormatHourlyForecast(slots []weather.Slot) Context {
	hourly := make([]Context, 0, len(slots))
	for _, slot := range slots {
		if slot.Temperature == nil {
			continue
		}
		hourly = append(hourly, Context{
			"time":        slot.Time,
			"icon":        WeatherIcon(slot.Condition),
			"rain_chance": slot.RainChance,
			"temperature": *slot.Temperature,
		})
	}
	return Context{
		"has_hourly_forecast": len(hourly) > 0,
		"hourly":              hourly,
	}
}

// FormatCalendarEvents builds the events sub-context.
func FormatCalendarEvents(events []calendar.Event) Context {
	if len(events) == 0 {
		return Context{"has_events": false, "events": []Context{}}
	}

	items := make([]Context, 0, len(events))
	for _, event := range events {
		title := event.Title
		if title == "" {
			title = "Untitled Event"
		}
		items = append(items, Context{
			"title":    title,
			"time":     formatEventTime(event.StartTime, event.AllDay),
			"location": event.Location,
		})
	}
	return Context{"has_events": true, "events": items}
}

// eventTimeLayouts are tried in order when parsing an event start time.
var eventTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// formatEventTime derives the display label for an event. All-day events
// are labeled literally; timed events show a 12-hour clock. A start time
// that fails to parse is shown as-is rather than failing the render.
func formatEventTime(startTime string, allDay bool) string {
	if allDay {
		return "All Day"
	}
	for _, layout := range eventTimeLayouts {
		if t, err := time.Parse(layout, startTime); err == nil {
			return t.Format("03:04 PM")
		}
	}
	return startTime
}

// FormatArticles builds the articles sub-context. Articles pass through
// unchanged apart from the availability flag.
func FormatArticles(articles []news.Article) Context {
	if len(articles) == 0 {
		return Context{"has_articles": false, "articles": []Context{}}
	}

	items := make([]Context, 0, len(articles))
	for _, article := range articles {
		items = append(items, Context{
			"title":      article.Title,
			"link":       article.Link,
			"published":  article.Published,
			"summary":    article.Summary,
			"source":     article.Source,
			"ai_summary": article.AISummary,
		})
	}
	return Context{"has_articles": true, "articles": items}
}

// capitalize uppercases the first rune and lowercases the rest.
func capitalize(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	return strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
}
