package news

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/html"
)

const maxContentChars = 5000

// skipTags are stripped wholesale before text extraction: they carry
// chrome and code, not article prose.
var skipTags = map[string]bool{
	"script": true,
	"style":  true,
	"nav":    true,
	"header": true,
	"footer": true,
}

// Extract fetches an article page and returns its readable text, capped at
// 5000 characters. It prefers the content of an <article> element, falling
// back to <body>, then the whole document. Transient failures are retried
// with exponential backoff.
func (f *Fetcher) Extract(ctx context.Context, pageURL string) (string, error) {
	client := &http.Client{Timeout: f.httpTimeout}

	var lastErr error
	for attempt := 0; attempt < f.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := f.backoffBase << (attempt - 1)
			f.log.Debug("retrying article extraction",
				zap.String("url", pageURL),
				zap.Int("attempt", attempt))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		content, err := f.extractOnce(ctx, client, pageURL)
		if err != nil {
			lastErr = err
			continue
		}
		return content, nil
	}

	return "", fmt.Errorf("failed to extract content from %s: %w", pageURL, lastErr)
}

func (f *Fetcher) extractOnce(ctx context.Context, client *http.Client, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)) // 1MB limit
	if err != nil {
		return "", err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}

	root := findElement(doc, "article")
	if root == nil {
		root = findElement(doc, "body")
	}
	if root == nil {
		root = doc
	}

	content := extractText(root)
	if len(content) > maxContentChars {
		content = content[:maxContentChars]
	}
	return content, nil
}

// findElement returns the first element with the given tag name, skipping
// stripped subtrees.
func findElement(doc *html.Node, tag string) *html.Node {
	var found *html.Node
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode {
			if skipTags[n.Data] {
				return
			}
			if n.Data == tag {
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return found
}

// extractText collects text nodes beneath n, drops stripped subtrees, and
// collapses all whitespace runs to single spaces.
func extractText(n *html.Node) string {
	var sb strings.Builder
	var traverse func(*html.Node)
	traverse = func(node *html.Node) {
		if node.Type == html.ElementNode && skipTags[node.Data] {
			return
		}
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
			sb.WriteString(" ")
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
