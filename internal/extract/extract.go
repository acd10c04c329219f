// Package extract turns a publisher URL into readable plain article text.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"timeliner/internal/logger"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
)

type Extractor struct {
	client  *http.Client
	timeout time.Duration
}

func NewExtractor(timeout time.Duration) *Extractor {
	return &Extractor{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Text fetches url and extracts the article body as plain text. Readability
// runs first; a generic paragraph cascade covers pages it cannot parse.
// Returns an error for paywalled, non-HTML or empty pages; callers skip the
// article rather than abort the run.
func (e *Extractor) Text(ctx context.Context, url string) (string, error) {
	art, err := readability.FromURL(url, e.timeout)
	if err == nil {
		if text := normalize(art.TextContent); text != "" {
			return text, nil
		}
	}

	text, ferr := e.fallbackText(ctx, url)
	if ferr != nil {
		if err != nil {
			return "", fmt.Errorf("readability extraction failed: %w", err)
		}
		return "", ferr
	}
	return text, nil
}

// fallbackText is a selector cascade over common article markup.
func (e *Extractor) fallbackText(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("error loading page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP error: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("error parsing HTML: %w", err)
	}

	selectors := []string{
		"article p",
		".article-body p",
		".post-content p",
		".entry-content p",
		".content p",
		"main p",
		"#content p",
		"p",
	}

	var best []string
	for _, selector := range selectors {
		var paragraphs []string
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			best = paragraphs
			break
		}
		if best == nil && len(paragraphs) > 0 {
			best = paragraphs
		}
	}

	text := normalize(strings.Join(best, "\n\n"))
	if text == "" {
		logger.Debug("no extractable paragraphs", "url", url)
		return "", fmt.Errorf("can't get content")
	}
	return text, nil
}

// normalize collapses runaway whitespace while keeping paragraph breaks.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	paragraphs := strings.Split(s, "\n\n")
	var kept []string
	for _, p := range paragraphs {
		p = strings.Join(strings.Fields(p), " ")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.TrimSpace(strings.Join(kept, "\n\n"))
}
