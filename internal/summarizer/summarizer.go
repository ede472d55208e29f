// Package summarizer generates short article summaries via Google's
// Gemini API.
package summarizer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"daybrief/internal/news"
)

const systemPrompt = "You are a helpful assistant that creates concise article summaries."

// generator is satisfied by the real Gemini-backed implementation and by
// test stubs.
type generator interface {
	generate(ctx context.Context, prompt string) (string, error)
}

// Summarizer produces per-article summaries.
type Summarizer struct {
	gen          generator
	numSentences int
	maxRetries   int
	backoffBase  time.Duration
	pace         time.Duration
	log          *zap.Logger
}

// New creates a Summarizer backed by the Gemini API.
func New(ctx context.Context, apiKey, model string, numSentences int, log *zap.Logger) (*Summarizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("summarizer API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if numSentences <= 0 {
		numSentences = 3
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &Summarizer{
		gen:          &genaiGenerator{client: client, model: model},
		numSentences: numSentences,
		maxRetries:   3,
		backoffBase:  2 * time.Second,
		pace:         time.Second,
		log:          log,
	}, nil
}

// SummarizeArticle summarizes one piece of article text, retrying transient
// API failures with exponential backoff.
func (s *Summarizer) SummarizeArticle(ctx context.Context, articleText string) (string, error) {
	prompt := fmt.Sprintf("Summarize the following article in exactly %d sentences:\n\n%s",
		s.numSentences, articleText)

	var lastErr error
	for attempt := 0; attempt < s.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(s.backoffBase << (attempt - 1)):
			}
		}

		summary, err := s.gen.generate(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}
		return strings.TrimSpace(summary), nil
	}

	return "", fmt.Errorf("failed to summarize article after %d attempts: %w", s.maxRetries, lastErr)
}

// SummarizeAll fills in AISummary for every article. A failure on one
// article degrades to an error-text summary and never stops the batch.
func (s *Summarizer) SummarizeAll(ctx context.Context, articles []news.Article) []news.Article {
	out := make([]news.Article, len(articles))
	for i, article := range articles {
		out[i] = article

		text := article.Content
		if text == "" {
			text = article.Summary
		}
		if text == "" {
			text = article.Title
		}
		if text == "" {
			out[i].AISummary = "No content available for summarization."
			continue
		}

		summary, err := s.SummarizeArticle(ctx, text)
		if err != nil {
			s.log.Warn("summarization failed",
				zap.String("title", article.Title),
				zap.Error(err))
			out[i].AISummary = fmt.Sprintf("Error: %v", err)
			continue
		}
		out[i].AISummary = summary

		// Pace requests to stay under API rate limits.
		if i < len(articles)-1 && s.pace > 0 {
			select {
			case <-ctx.Done():
				return out
			case <-time.After(s.pace):
			}
		}
	}
	return out
}

// genaiGenerator calls Gemini's generateContent endpoint.
type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.3),
			MaxOutputTokens:   150,
		},
	)
	if err != nil {
		return "", fmt.Errorf("genai generate failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no summary returned")
	}
	return text, nil
}
