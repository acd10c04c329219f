// Package resolve follows aggregator redirect links to publisher URLs.
package resolve

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"timeliner/internal/logger"

	"github.com/PuerkitoBio/goquery"
)

type Resolver struct {
	client *http.Client
}

func NewResolver(timeout time.Duration) *Resolver {
	return &Resolver{
		client: &http.Client{Timeout: timeout},
	}
}

// Resolve follows HTTP redirects from an aggregator link and, when the final
// page is still a Google News interstitial, scrapes the destination from it.
// On any failure the input URL is returned unchanged; resolution never
// surfaces an error upward.
func (r *Resolver) Resolve(ctx context.Context, rawURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return rawURL
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; timeliner/1.0)")

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Warn("redirect resolution failed", "url", rawURL, "error", err)
		return rawURL
	}
	defer resp.Body.Close()

	final := resp.Request.URL.String()
	if !isAggregatorHost(resp.Request.URL) {
		return final
	}

	// Interstitial page: the destination is the first external anchor.
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return rawURL
	}
	if dest := findExternalLink(doc); dest != "" {
		return dest
	}

	logger.Debug("no external link found on interstitial", "url", rawURL)
	return rawURL
}

func isAggregatorHost(u *url.URL) bool {
	host := strings.ToLower(u.Hostname())
	return host == "news.google.com" || strings.HasSuffix(host, ".news.google.com")
}

func findExternalLink(doc *goquery.Document) string {
	var dest string

	// data-n-au carries the article URL on Google News article shells.
	doc.Find("[data-n-au]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if v, ok := s.Attr("data-n-au"); ok && strings.HasPrefix(v, "http") {
			dest = v
			return false
		}
		return true
	})
	if dest != "" {
		return dest
	}

	doc.Find("a[href]").EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, "http") {
			return true
		}
		if u, err := url.Parse(href); err == nil && !isAggregatorHost(u) && !strings.Contains(u.Hostname(), "google.") {
			dest = href
			return false
		}
		return true
	})
	return dest
}
