// Package news fetches articles from RSS feeds and extracts readable
// text from article pages.
package news

import (
	"context"
	"sort"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"
)

// Feed identifies one RSS source.
type Feed struct {
	Title string
	URL   string
}

// Article is one feed entry, optionally enriched with extracted page
// content and an AI-generated summary.
type Article struct {
	Title       string
	Link        string
	Published   string
	PublishedAt time.Time
	Summary     string
	Source      string
	Content     string
	AISummary   string
}

// Fetcher pulls articles from a set of RSS feeds.
type Fetcher struct {
	parser      *gofeed.Parser
	feedDelay   time.Duration
	userAgent   string
	httpTimeout time.Duration
	maxRetries  int
	backoffBase time.Duration
	log         *zap.Logger
}

// NewFetcher creates a Fetcher with production defaults.
func NewFetcher(log *zap.Logger) *Fetcher {
	if log == nil {
		log = zap.NewNop()
	}
	parser := gofeed.NewParser()
	parser.UserAgent = userAgent
	return &Fetcher{
		parser:      parser,
		feedDelay:   500 * time.Millisecond,
		userAgent:   userAgent,
		httpTimeout: 10 * time.Second,
		maxRetries:  3,
		backoffBase: time.Second,
		log:         log,
	}
}

const userAgent = "Mozilla/5.0 (compatible; daybrief/1.0)"

// Fetch reads every configured feed and returns up to maxArticles entries,
// newest first. A feed that fails to parse is logged and skipped; one bad
// source never hides the others.
func (f *Fetcher) Fetch(ctx context.Context, feeds map[string]Feed, maxArticles int) ([]Article, error) {
	// Map order is random; iterate by key so runs are reproducible.
	keys := make([]string, 0, len(feeds))
	for k := range feeds {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var articles []Article
	for i, key := range keys {
		feed := feeds[key]

		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.feedDelay):
			}
		}

		parsed, err := f.parser.ParseURLWithContext(feed.URL, ctx)
		if err != nil {
			f.log.Warn("failed to fetch feed",
				zap.String("feed", feed.URL),
				zap.Error(err))
			continue
		}

		for _, item := range parsed.Items {
			if item == nil {
				continue
			}
			article := Article{
				Title:     item.Title,
				Link:      item.Link,
				Published: item.Published,
				Summary:   item.Description,
				Source:    feed.Title,
			}
			if item.PublishedParsed != nil {
				article.PublishedAt = *item.PublishedParsed
			}
			articles = append(articles, article)
		}
	}

	sort.SliceStable(articles, func(i, j int) bool {
		return articles[i].PublishedAt.After(articles[j].PublishedAt)
	})

	if maxArticles > 0 && len(articles) > maxArticles {
		articles = articles[:maxArticles]
	}
	return articles, nil
}
