// Package timeline merges extracted events into one chronological narrative
// and derives translations, highlights and source comparisons from it.
package timeline

import (
	"context"
	"fmt"
	"strings"

	"timeliner/internal/article"
	"timeliner/internal/events"
	"timeliner/internal/llm"
	"timeliner/internal/metrics"
)

// MergedTimeline is the final ordered event narrative for a topic. It is a
// derived artifact, recomputed wholesale on each run.
type MergedTimeline struct {
	Text    string
	Sources int // articles that contributed events
}

type Merger struct {
	completer llm.Completer
}

func NewMerger(completer llm.Completer) *Merger {
	return &Merger{completer: completer}
}

// Merge combines every raw event record across all chunks of all articles
// into one deduplicated, conflict-resolved, chronologically ordered timeline.
//
// Merge is a single completion call over the full record set, never a
// piecewise reduce: deduplication needs joint visibility over all events.
// A merge failure propagates as an error; a partial timeline is never
// returned.
func (m *Merger) Merge(ctx context.Context, records []events.RawEventRecord) (*MergedTimeline, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no event records to merge")
	}

	joined := make([]string, 0, len(records))
	contributors := map[string]bool{}
	for _, r := range records {
		joined = append(joined, r.Text)
		if !r.Failed() {
			contributors[r.Meta.URL] = true
		}
	}

	prompt := buildMergePrompt(strings.Join(joined, "\n"))

	metrics.Global.IncrementModelCalls()
	out, err := m.completer.Complete(ctx, prompt)
	if err != nil {
		metrics.Global.IncrementFailedModelCalls()
		metrics.Global.IncrementMergesFailed()
		return nil, fmt.Errorf("timeline merge failed: %w", err)
	}

	metrics.Global.IncrementMergesCompleted()
	return &MergedTimeline{Text: Sanitize(out), Sources: len(contributors)}, nil
}

// buildMergePrompt carries the numbered merge instructions: merge, dedupe,
// resolve conflicts by published date, order chronologically.
func buildMergePrompt(eventsText string) string {
	return fmt.Sprintf(`The following events came from multiple articles about the same incident.

Your tasks:
1. Merge them
2. Remove duplicates
3. Resolve conflicts using published dates
4. Arrange in chronological order

Ignore any nonsensical lines such as error placeholders.

### EVENTS:
%s
`, eventsText)
}

// Translate renders the timeline in the target language. Read-only on the
// input; the caller owns caching.
func (m *Merger) Translate(ctx context.Context, tl *MergedTimeline, targetLang string) (string, error) {
	prompt := fmt.Sprintf(`Translate the timeline into **%s**:

### TIMELINE:
%s
`, targetLang, tl.Text)

	metrics.Global.IncrementModelCalls()
	out, err := m.completer.Complete(ctx, prompt)
	if err != nil {
		metrics.Global.IncrementFailedModelCalls()
		return "", fmt.Errorf("timeline translation failed: %w", err)
	}
	return Sanitize(out), nil
}

// Highlights extracts the five most important events from the timeline.
func (m *Merger) Highlights(ctx context.Context, tl *MergedTimeline) (string, error) {
	prompt := fmt.Sprintf(`Extract the **5 most important events** from this timeline.

### TIMELINE:
%s

### Output:
## Key Highlights
- Bullet points
`, tl.Text)

	metrics.Global.IncrementModelCalls()
	out, err := m.completer.Complete(ctx, prompt)
	if err != nil {
		metrics.Global.IncrementFailedModelCalls()
		return "", fmt.Errorf("highlight extraction failed: %w", err)
	}
	return Sanitize(out), nil
}

// compareContentLimit truncates each article body in the comparison prompt.
const compareContentLimit = 1500

// CompareSources contrasts how the publishers reported the same event set.
func (m *Merger) CompareSources(ctx context.Context, articles []*article.Article) (string, error) {
	if len(articles) == 0 {
		return "", fmt.Errorf("no articles to compare")
	}

	var formatted strings.Builder
	for _, a := range articles {
		content := a.Content
		if len(content) > compareContentLimit {
			content = content[:compareContentLimit]
		}
		fmt.Fprintf(&formatted, `
### Source: %s
Title: %s
Content:
%s
`, a.Meta.Publisher, a.Meta.Title, content)
	}

	prompt := fmt.Sprintf(`Compare these articles:

### ARTICLES:
%s

### Output:
- AGREEMENTS:
- DIFFERENCES:
- UNIQUE DETAILS:
`, formatted.String())

	metrics.Global.IncrementModelCalls()
	out, err := m.completer.Complete(ctx, prompt)
	if err != nil {
		metrics.Global.IncrementFailedModelCalls()
		return "", fmt.Errorf("source comparison failed: %w", err)
	}
	return Sanitize(out), nil
}
