package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"daybrief/internal/briefing"
	"daybrief/internal/calendar"
	"daybrief/internal/config"
	"daybrief/internal/delivery"
	"daybrief/internal/logging"
	"daybrief/internal/news"
	"daybrief/internal/summarizer"
	"daybrief/internal/weather"
)

// runBriefing executes the full pipeline: fetch everything, summarize,
// render, deliver. Every fetch failure degrades to a warning so a single
// dead upstream never kills the whole briefing; only configuration,
// document assembly, and delivery are fatal.
func runBriefing(cmd *cobra.Command, args []string) error {
	runID := uuid.NewString()
	log := logger.With(zap.String("run_id", runID))
	log.Info("starting morning briefing", zap.String("config", configPath))

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error("configuration error", zap.Error(err))
		return err
	}

	// The bootstrap logger only knows the flags; once the config is loaded,
	// rebuild with the configured level and directory. --debug wins.
	if !debug && (cfg.Logging.Level != "info" || cfg.Logging.Dir != "logs") {
		rebuilt, err := logging.New(cfg.Logging.Level, cfg.Logging.Dir)
		if err != nil {
			log.Error("logging configuration error", zap.Error(err))
			return err
		}
		logger = rebuilt
		log = logger.With(zap.String("run_id", runID))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		current  *weather.Current
		hourly   []weather.Slot
		events   []calendar.Event
		articles []news.Article
	)

	weatherClient := weather.NewClient(cfg.APIs.OpenWeatherKey, log)
	fetcher := news.NewFetcher(log)

	// The four upstreams are independent; fetch them concurrently. Each
	// goroutine swallows its own failure after logging it.
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		w, err := weatherClient.Current(gctx, cfg.Location.City, cfg.Location.CountryCode)
		if err != nil {
			log.Warn("weather fetch failed", zap.Error(err))
			return nil
		}
		current = w
		log.Info("weather fetched",
			zap.String("condition", w.Condition),
			zap.Float64("temperature", w.Temperature))
		return nil
	})

	g.Go(func() error {
		slots, err := weatherClient.HourlyForecast(gctx, cfg.Location.City, cfg.Location.CountryCode)
		if err != nil {
			log.Warn("hourly forecast fetch failed", zap.Error(err))
			return nil
		}
		hourly = slots
		log.Info("hourly forecast fetched", zap.Int("slots", len(slots)))
		return nil
	})

	g.Go(func() error {
		if _, err := os.Stat(cfg.Calendar.CredentialsFile); err != nil {
			log.Warn("calendar credentials file not found",
				zap.String("path", cfg.Calendar.CredentialsFile))
			return nil
		}
		client, err := calendar.NewClient(gctx, cfg.Calendar.CredentialsFile, cfg.Calendar.TokenFile, log)
		if err != nil {
			log.Warn("calendar auth failed", zap.Error(err))
			return nil
		}
		evs, err := client.TodayEvents(gctx, time.Now())
		if err != nil {
			log.Warn("calendar fetch failed", zap.Error(err))
			return nil
		}
		events = evs
		log.Info("calendar events fetched", zap.Int("events", len(evs)))
		return nil
	})

	g.Go(func() error {
		feeds := make(map[string]news.Feed, len(cfg.News.Feeds))
		for key, feed := range cfg.News.Feeds {
			feeds[key] = news.Feed{Title: feed.Title, URL: feed.URL}
		}
		arts, err := fetcher.Fetch(gctx, feeds, cfg.News.MaxArticles)
		if err != nil {
			log.Warn("news fetch failed", zap.Error(err))
			return nil
		}
		articles = arts
		log.Info("news articles fetched", zap.Int("articles", len(arts)))
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	// Fill in page content for each article so summaries see the full text,
	// falling back to the feed summary.
	for i := range articles {
		content, err := fetcher.Extract(ctx, articles[i].Link)
		if err != nil {
			log.Warn("content extraction failed",
				zap.String("link", articles[i].Link),
				zap.Error(err))
			articles[i].Content = articles[i].Summary
			continue
		}
		articles[i].Content = content
	}

	if len(articles) > 0 {
		summ, err := summarizer.New(ctx, cfg.APIs.GeminiKey, cfg.News.SummaryModel, cfg.News.SummarySentences, log)
		if err != nil {
			log.Warn("summarizer unavailable", zap.Error(err))
		} else {
			articles = summ.SummarizeAll(ctx, articles)
			log.Info("summaries generated", zap.Int("articles", len(articles)))
		}
	}

	builder := briefing.NewBuilder(cfg.Template.Path, log)
	doc, err := builder.Build(current, hourly, events, articles, time.Now())
	if err != nil {
		log.Error("failed to build briefing", zap.Error(err))
		return err
	}

	if dryRun {
		path, err := delivery.WriteFile(outputDir, doc, time.Now())
		if err != nil {
			log.Error("failed to save briefing", zap.Error(err))
			return err
		}
		log.Info("dry run: briefing saved", zap.String("path", path))
		return nil
	}

	mailer := delivery.NewMailer(cfg.APIs.SparkPostKey, log)
	if err := mailer.Send(ctx, cfg.Email.FromAddress, cfg.Email.Recipient, cfg.Email.Subject, doc); err != nil {
		log.Error("failed to send briefing", zap.Error(err))
		return err
	}
	log.Info("briefing sent", zap.String("recipient", cfg.Email.Recipient))
	return nil
}
