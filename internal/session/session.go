// Package session orchestrates one news-timeline session: search, per-article
// fetch and event extraction, the single merge, and derived operations over
// the stored timeline.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"timeliner/internal/article"
	"timeliner/internal/cache"
	"timeliner/internal/chunk"
	"timeliner/internal/credibility"
	"timeliner/internal/events"
	"timeliner/internal/gnews"
	"timeliner/internal/logger"
	"timeliner/internal/metrics"
	"timeliner/internal/timeline"
)

// ErrNoResults is the terminal condition for a run with nothing extractable:
// no feed entries, or every candidate article failed extraction. No merge is
// attempted on an empty event set.
var ErrNoResults = errors.New("no extractable articles for query")

// Searcher returns aggregator entries for a topic query.
type Searcher interface {
	Search(ctx context.Context, query, region, lang string) ([]gnews.Entry, error)
}

// Resolver maps an aggregator redirect link to the publisher URL. It returns
// the input unchanged on failure.
type Resolver interface {
	Resolve(ctx context.Context, url string) string
}

// Extractor fetches readable article text from a publisher URL.
type Extractor interface {
	Text(ctx context.Context, url string) (string, error)
}

// Options bound a session's resource use.
type Options struct {
	MaxArticles   int
	ChunkMaxWords int
	ChunkPolicy   chunk.Policy
	Concurrency   int
	ArtifactTTL   time.Duration
	Region        string
	Language      string
}

// Session owns all per-run state: fetched articles, raw event records, the
// merged timeline and cached derived artifacts. It is created empty, becomes
// populated by a successful Run, and never reverts to empty except through a
// new Run, which resets everything first.
type Session struct {
	searcher  Searcher
	resolver  Resolver
	extractor Extractor
	eventsEx  *events.Extractor
	merger    *timeline.Merger
	scorer    *credibility.Scorer
	opts      Options

	mu        sync.RWMutex
	articles  []*article.Article
	records   []events.RawEventRecord
	timeline  *timeline.MergedTimeline
	warnings  []string
	artifacts *cache.Cache
}

func New(searcher Searcher, resolver Resolver, extractor Extractor,
	eventsEx *events.Extractor, merger *timeline.Merger, scorer *credibility.Scorer,
	opts Options) *Session {

	if opts.MaxArticles <= 0 {
		opts.MaxArticles = 10
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.ArtifactTTL <= 0 {
		opts.ArtifactTTL = 2 * time.Hour
	}

	return &Session{
		searcher:  searcher,
		resolver:  resolver,
		extractor: extractor,
		eventsEx:  eventsEx,
		merger:    merger,
		scorer:    scorer,
		opts:      opts,
		artifacts: cache.New(),
	}
}

// articleResult keeps one article's pipeline output so the flatten step can
// preserve article order regardless of completion order.
type articleResult struct {
	art     *article.Article
	records []events.RawEventRecord
	warning string
}

// Run executes the full pipeline for query. Per-article failures are
// absorbed as warnings; only feed failure, cancellation, an empty result set
// or a merge failure surface as errors.
func (s *Session) Run(ctx context.Context, query string) error {
	start := time.Now()
	s.reset()
	metrics.Global.IncrementSearches()

	entries, err := s.searcher.Search(ctx, query, s.opts.Region, s.opts.Language)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("search failed: %w", err)
	}
	if len(entries) == 0 {
		return ErrNoResults
	}

	if len(entries) > s.opts.MaxArticles {
		entries = entries[:s.opts.MaxArticles]
	}
	metrics.Global.AddArticlesFetched(len(entries))

	results := make([]*articleResult, len(entries))

	// Article pipelines are independent until the merge barrier; fan out
	// with bounded concurrency. Chunk-level model calls stay sequential
	// within each article.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = s.processArticle(gctx, entry)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		metrics.Global.SetError(err.Error())
		return fmt.Errorf("run aborted: %w", err)
	}

	// Flatten in article order, then chunk order within each article.
	var articles []*article.Article
	var records []events.RawEventRecord
	var warnings []string
	for _, r := range results {
		if r == nil {
			continue
		}
		if r.warning != "" {
			warnings = append(warnings, r.warning)
			continue
		}
		articles = append(articles, r.art)
		records = append(records, r.records...)
	}

	s.mu.Lock()
	s.articles = articles
	s.records = records
	s.warnings = warnings
	s.mu.Unlock()

	if len(articles) == 0 || len(records) == 0 {
		logger.Warn("nothing extractable", "query", query, "skipped", len(warnings))
		return ErrNoResults
	}

	// Merge barrier: requires the complete event set for correct
	// deduplication, so it runs exactly once, after all extraction.
	tl, err := s.merger.Merge(ctx, records)
	if err != nil {
		metrics.Global.SetError(err.Error())
		return err
	}

	s.mu.Lock()
	s.timeline = tl
	s.mu.Unlock()

	metrics.Global.SetLastRun()
	metrics.Global.RecordRunDuration(time.Since(start))
	logger.Info("timeline generated",
		"query", query, "articles", len(articles), "records", len(records))
	return nil
}

func (s *Session) processArticle(ctx context.Context, entry gnews.Entry) *articleResult {
	realURL := s.resolver.Resolve(ctx, entry.Link)

	text, err := s.extractor.Text(ctx, realURL)
	if err != nil {
		metrics.Global.IncrementArticlesSkipped()
		logger.Warn("skipping article", "url", realURL, "error", err)
		return &articleResult{warning: fmt.Sprintf("could not extract %q (%s)", entry.Title, entry.Publisher)}
	}

	meta := article.Metadata{
		Title:     entry.Title,
		Publisher: entry.Publisher,
		Published: article.FormatPublished(entry.PublishedParsed, entry.Published),
		URL:       realURL,
	}
	art := &article.Article{Meta: meta, Content: text}

	if s.scorer != nil {
		art.Credibility = s.scorer.Score(ctx, art)
	}

	chunks := chunk.Split(text, s.opts.ChunkMaxWords, s.opts.ChunkPolicy, &art.Meta)

	recs := make([]events.RawEventRecord, 0, len(chunks))
	for _, c := range chunks {
		if ctx.Err() != nil {
			break
		}
		recs = append(recs, s.eventsEx.Extract(ctx, c))
		metrics.Global.IncrementChunksProcessed()
	}

	return &articleResult{art: art, records: recs}
}

// reset clears all session state ahead of a new run. Derived artifacts are
// invalidated wholesale.
func (s *Session) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = nil
	s.records = nil
	s.timeline = nil
	s.warnings = nil
	s.artifacts.Clear()
}

// HasTimeline reports whether a merged timeline is stored.
func (s *Session) HasTimeline() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeline != nil
}

// Timeline returns the stored merged timeline, or nil before a successful run.
func (s *Session) Timeline() *timeline.MergedTimeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.timeline
}

// Articles returns the session's fetched articles in pipeline order.
func (s *Session) Articles() []*article.Article {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.articles
}

// Records returns the flattened raw event records fed to the merge.
func (s *Session) Records() []events.RawEventRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Warnings lists per-article failures from the last run.
func (s *Session) Warnings() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.warnings
}
