// Package gnews searches the Google News RSS feed for a topic.
package gnews

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"timeliner/internal/article"
	"timeliner/internal/logger"
	"timeliner/internal/retry"

	"github.com/mmcdole/gofeed"
)

// Entry is one aggregator search result. Link is usually a Google News
// redirect URL, not the publisher's own.
type Entry struct {
	Title           string
	Link            string
	Published       string
	PublishedParsed *time.Time
	Publisher       string
}

type Searcher struct {
	parser  *gofeed.Parser
	baseURL string
	retry   retry.Config
}

func NewSearcher(timeout time.Duration, retryCfg retry.Config) *Searcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &Searcher{
		parser:  parser,
		baseURL: "https://news.google.com/rss/search",
		retry:   retryCfg,
	}
}

// WithBaseURL overrides the search feed endpoint. Used by tests.
func (s *Searcher) WithBaseURL(base string) *Searcher {
	s.baseURL = base
	return s
}

// BuildURL assembles the search feed URL for a query and locale codes.
func (s *Searcher) BuildURL(query, region, lang string) string {
	v := url.Values{}
	v.Set("q", query)
	v.Set("hl", lang)
	v.Set("gl", region)
	v.Set("ceid", region+":en")
	return s.baseURL + "?" + v.Encode()
}

// Search fetches and parses the search feed, returning entries in aggregator
// order. Transient fetch errors are retried.
func (s *Searcher) Search(ctx context.Context, query, region, lang string) ([]Entry, error) {
	feedURL := s.BuildURL(query, region, lang)
	logger.Debug("searching news feed", "url", feedURL)

	var feed *gofeed.Feed
	err := retry.Do(ctx, s.retry, func() error {
		var ferr error
		feed, ferr = s.parser.ParseURLWithContext(feedURL, ctx)
		return ferr
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch search feed: %w", err)
	}

	entries := make([]Entry, 0, len(feed.Items))
	for _, item := range feed.Items {
		entries = append(entries, fromItem(item))
	}

	logger.Info("search feed fetched", "query", query, "entries", len(entries))
	return entries, nil
}

func fromItem(item *gofeed.Item) Entry {
	e := Entry{
		Title:           item.Title,
		Link:            item.Link,
		Published:       item.Published,
		PublishedParsed: item.PublishedParsed,
	}
	if e.PublishedParsed == nil && item.UpdatedParsed != nil {
		e.PublishedParsed = item.UpdatedParsed
	}
	e.Title, e.Publisher = splitTitlePublisher(item.Title)
	if e.Publisher == "" {
		e.Publisher = article.PublisherUnknown
	}
	return e
}

// splitTitlePublisher separates a Google News headline from its trailing
// publisher name ("Headline - Publisher"). gofeed does not surface the RSS
// <source> element, so the title suffix is the reliable carrier.
func splitTitlePublisher(title string) (string, string) {
	idx := strings.LastIndex(title, " - ")
	if idx <= 0 || idx+3 >= len(title) {
		return title, ""
	}
	return strings.TrimSpace(title[:idx]), strings.TrimSpace(title[idx+3:])
}
