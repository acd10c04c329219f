package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeliner/internal/chunk"
	"timeliner/internal/events"
	"timeliner/internal/gnews"
	"timeliner/internal/timeline"
)

// routingCompleter answers extraction, merge and derived prompts differently
// and counts calls per prompt family.
type routingCompleter struct {
	mu       sync.Mutex
	counts   map[string]int
	prompts  map[string][]string
	mergeErr error
}

func newRoutingCompleter() *routingCompleter {
	return &routingCompleter{
		counts:  map[string]int{},
		prompts: map[string][]string{},
	}
}

func (f *routingCompleter) kind(prompt string) string {
	switch {
	case strings.Contains(prompt, "Extract factual events"):
		return "extract"
	case strings.Contains(prompt, "came from multiple articles"):
		return "merge"
	case strings.Contains(prompt, "Translate the timeline"):
		return "translate"
	case strings.Contains(prompt, "5 most important events"):
		return "highlights"
	case strings.Contains(prompt, "Compare these articles"):
		return "compare"
	default:
		return "other"
	}
}

func (f *routingCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	k := f.kind(prompt)
	f.counts[k]++
	f.prompts[k] = append(f.prompts[k], prompt)

	switch k {
	case "extract":
		// Echo back a bullet carrying the publisher for provenance checks.
		publisher := "unknown"
		for _, line := range strings.Split(prompt, "\n") {
			if strings.HasPrefix(line, "Publisher: ") {
				publisher = strings.TrimPrefix(line, "Publisher: ")
			}
		}
		return fmt.Sprintf("- [day 1] incident reported (source: %s)", publisher), nil
	case "merge":
		if f.mergeErr != nil {
			return "", f.mergeErr
		}
		return "- [day 1] incident reported (sources: P1, P3)\n- [day 2] follow-up (source: P2)", nil
	case "translate":
		return "translated timeline", nil
	case "highlights":
		return "- h1\n- h2\n- h3\n- h4\n- h5", nil
	case "compare":
		return "AGREEMENTS: all agree", nil
	}
	return "", errors.New("unexpected prompt")
}

func (f *routingCompleter) count(kind string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[kind]
}

type fakeSearcher struct {
	entries []gnews.Entry
	err     error
}

func (f *fakeSearcher) Search(ctx context.Context, query, region, lang string) ([]gnews.Entry, error) {
	return f.entries, f.err
}

type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, url string) string {
	return strings.Replace(url, "aggregator.test/rd", "publisher.test/story", 1)
}

type fakeExtractor struct {
	texts map[string]string // resolved URL -> body; missing means failure
}

func (f *fakeExtractor) Text(ctx context.Context, url string) (string, error) {
	if text, ok := f.texts[url]; ok {
		return text, nil
	}
	return "", errors.New("can't get content")
}

func day(n int) *time.Time {
	t := time.Date(2025, 11, n, 9, 0, 0, 0, time.UTC)
	return &t
}

func threeEntries() []gnews.Entry {
	return []gnews.Entry{
		{Title: "Incident at metro site", Link: "https://aggregator.test/rd/1", Publisher: "P1", PublishedParsed: day(1)},
		{Title: "Metro incident follow-up", Link: "https://aggregator.test/rd/2", Publisher: "P2", PublishedParsed: day(2)},
		{Title: "Metro site: what we know", Link: "https://aggregator.test/rd/3", Publisher: "P3", PublishedParsed: day(1)},
	}
}

func bodies(urls ...string) map[string]string {
	m := make(map[string]string, len(urls))
	for _, u := range urls {
		m[u] = "A crane collapsed at the metro site. Two workers were hurt. Authorities opened an inquiry."
	}
	return m
}

func newTestSession(searcher Searcher, extractor Extractor, completer *routingCompleter) *Session {
	return New(
		searcher,
		fakeResolver{},
		extractor,
		events.NewExtractor(completer, nil),
		timeline.NewMerger(completer),
		nil, // credibility scoring not under test
		Options{MaxArticles: 10, ChunkMaxWords: 300, ChunkPolicy: chunk.PolicySentence, Concurrency: 2},
	)
}

func TestRunEndToEnd(t *testing.T) {
	completer := newRoutingCompleter()
	sess := newTestSession(
		&fakeSearcher{entries: threeEntries()},
		&fakeExtractor{texts: bodies(
			"https://publisher.test/story/1",
			"https://publisher.test/story/2",
			"https://publisher.test/story/3",
		)},
		completer,
	)

	require.NoError(t, sess.Run(context.Background(), "metro incident"))

	// One chunk per article: flattened record count equals total chunks.
	records := sess.Records()
	require.Len(t, records, 3)

	// Article order preserved through the flatten.
	assert.Equal(t, "P1", records[0].Meta.Publisher)
	assert.Equal(t, "P2", records[1].Meta.Publisher)
	assert.Equal(t, "P3", records[2].Meta.Publisher)

	// Single merge call with joint visibility over all three sources.
	require.Equal(t, 1, completer.count("merge"))
	mergePrompt := completer.prompts["merge"][0]
	assert.Contains(t, mergePrompt, "(source: P1)")
	assert.Contains(t, mergePrompt, "(source: P2)")
	assert.Contains(t, mergePrompt, "(source: P3)")

	require.True(t, sess.HasTimeline())
	assert.Contains(t, sess.Timeline().Text, "day 1")
	assert.Empty(t, sess.Warnings())
	assert.Len(t, sess.Articles(), 3)
}

func TestRunSkipsFailedArticles(t *testing.T) {
	completer := newRoutingCompleter()
	// Article 2 has no extractable body.
	sess := newTestSession(
		&fakeSearcher{entries: threeEntries()},
		&fakeExtractor{texts: bodies(
			"https://publisher.test/story/1",
			"https://publisher.test/story/3",
		)},
		completer,
	)

	require.NoError(t, sess.Run(context.Background(), "metro incident"))

	assert.Len(t, sess.Records(), 2)
	assert.Len(t, sess.Articles(), 2)
	require.Len(t, sess.Warnings(), 1)
	assert.Contains(t, sess.Warnings()[0], "P2")
	assert.True(t, sess.HasTimeline(), "one bad article must not fail the run")
}

func TestRunNoExtractableArticles(t *testing.T) {
	completer := newRoutingCompleter()
	sess := newTestSession(
		&fakeSearcher{entries: threeEntries()},
		&fakeExtractor{texts: nil},
		completer,
	)

	err := sess.Run(context.Background(), "metro incident")

	require.ErrorIs(t, err, ErrNoResults)
	assert.Equal(t, 0, completer.count("merge"), "no merge on an empty event set")
	assert.False(t, sess.HasTimeline())
}

func TestRunEmptyFeed(t *testing.T) {
	completer := newRoutingCompleter()
	sess := newTestSession(&fakeSearcher{entries: nil}, &fakeExtractor{}, completer)

	require.ErrorIs(t, sess.Run(context.Background(), "obscure topic"), ErrNoResults)
}

func TestRunSearchFailure(t *testing.T) {
	completer := newRoutingCompleter()
	sess := newTestSession(&fakeSearcher{err: errors.New("feed unavailable")}, &fakeExtractor{}, completer)

	err := sess.Run(context.Background(), "metro incident")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoResults)
}

func TestRunMergeFailureSurfaces(t *testing.T) {
	completer := newRoutingCompleter()
	completer.mergeErr = errors.New("quota exhausted")
	sess := newTestSession(
		&fakeSearcher{entries: threeEntries()},
		&fakeExtractor{texts: bodies(
			"https://publisher.test/story/1",
			"https://publisher.test/story/2",
			"https://publisher.test/story/3",
		)},
		completer,
	)

	err := sess.Run(context.Background(), "metro incident")

	require.Error(t, err)
	assert.False(t, sess.HasTimeline(), "a failed merge must never leave a partial timeline")
}

func TestRunCapsArticles(t *testing.T) {
	var entries []gnews.Entry
	texts := map[string]string{}
	for i := 0; i < 15; i++ {
		url := fmt.Sprintf("https://aggregator.test/rd/%d", i)
		entries = append(entries, gnews.Entry{
			Title: fmt.Sprintf("Story %d", i), Link: url,
			Publisher: fmt.Sprintf("P%d", i), PublishedParsed: day(1),
		})
		texts[fmt.Sprintf("https://publisher.test/story/%d", i)] = "Something happened today. More details followed."
	}

	completer := newRoutingCompleter()
	sess := newTestSession(&fakeSearcher{entries: entries}, &fakeExtractor{texts: texts}, completer)

	require.NoError(t, sess.Run(context.Background(), "metro incident"))
	assert.Len(t, sess.Articles(), 10, "candidate articles are capped per search")
}

func TestDerivedOpsCachedAndIdempotent(t *testing.T) {
	completer := newRoutingCompleter()
	sess := newTestSession(
		&fakeSearcher{entries: threeEntries()},
		&fakeExtractor{texts: bodies(
			"https://publisher.test/story/1",
			"https://publisher.test/story/2",
			"https://publisher.test/story/3",
		)},
		completer,
	)
	require.NoError(t, sess.Run(context.Background(), "metro incident"))
	before := sess.Timeline().Text

	out1, err := sess.Translate(context.Background(), "Tamil")
	require.NoError(t, err)
	out2, err := sess.Translate(context.Background(), "Tamil")
	require.NoError(t, err)

	assert.Equal(t, out1, out2)
	assert.Equal(t, 1, completer.count("translate"), "repeat translate is served from cache")
	assert.Equal(t, before, sess.Timeline().Text, "derived ops never mutate the timeline")

	_, err = sess.Highlights(context.Background())
	require.NoError(t, err)
	_, err = sess.Highlights(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, completer.count("highlights"))

	_, err = sess.CompareSources(context.Background())
	require.NoError(t, err)
	_, err = sess.CompareSources(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, completer.count("compare"))
}

func TestNewSearchResetsDerivedArtifacts(t *testing.T) {
	completer := newRoutingCompleter()
	sess := newTestSession(
		&fakeSearcher{entries: threeEntries()},
		&fakeExtractor{texts: bodies(
			"https://publisher.test/story/1",
			"https://publisher.test/story/2",
			"https://publisher.test/story/3",
		)},
		completer,
	)

	require.NoError(t, sess.Run(context.Background(), "metro incident"))
	_, err := sess.Translate(context.Background(), "Tamil")
	require.NoError(t, err)
	require.Equal(t, 1, completer.count("translate"))

	require.NoError(t, sess.Run(context.Background(), "metro incident update"))
	_, err = sess.Translate(context.Background(), "Tamil")
	require.NoError(t, err)
	assert.Equal(t, 2, completer.count("translate"), "new search invalidates cached artifacts")
}

func TestDerivedOpsRequireTimeline(t *testing.T) {
	completer := newRoutingCompleter()
	sess := newTestSession(&fakeSearcher{}, &fakeExtractor{}, completer)

	_, err := sess.Translate(context.Background(), "Tamil")
	assert.ErrorIs(t, err, ErrNoTimeline)
	_, err = sess.Highlights(context.Background())
	assert.ErrorIs(t, err, ErrNoTimeline)
	_, err = sess.CompareSources(context.Background())
	assert.ErrorIs(t, err, ErrNoTimeline)
	assert.ErrorIs(t, sess.Export("x.txt"), ErrNoTimeline)
}

func TestExportWritesTimelineFile(t *testing.T) {
	completer := newRoutingCompleter()
	sess := newTestSession(
		&fakeSearcher{entries: threeEntries()},
		&fakeExtractor{texts: bodies(
			"https://publisher.test/story/1",
			"https://publisher.test/story/2",
			"https://publisher.test/story/3",
		)},
		completer,
	)
	require.NoError(t, sess.Run(context.Background(), "metro incident"))

	path := filepath.Join(t.TempDir(), "timeline.txt")
	require.NoError(t, sess.Export(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "incident reported")
}
