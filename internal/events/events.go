// Package events extracts discrete dated events from article chunks.
package events

import (
	"context"
	"fmt"

	"timeliner/internal/article"
	"timeliner/internal/chunk"
	"timeliner/internal/llm"
	"timeliner/internal/logger"
	"timeliner/internal/metrics"
	"timeliner/internal/ratelimit"
)

// ErrorMarker prefixes every failure placeholder so broken model output is
// recognizable in the merged text and is never mistaken for extracted events.
const ErrorMarker = "[model error]"

// RawEventRecord is the unparsed model output for one chunk: a block of
// "- [time or date] description (source: publisher)" lines. It stays opaque
// until merge time and is always attributable to one (article, chunk) pair.
type RawEventRecord struct {
	Meta       *article.Metadata
	ChunkIndex int
	Text       string
}

// Failed reports whether the record is a failure placeholder rather than
// extracted content.
func (r RawEventRecord) Failed() bool {
	return len(r.Text) >= len(ErrorMarker) && r.Text[:len(ErrorMarker)] == ErrorMarker
}

type Extractor struct {
	completer llm.Completer
	limiter   *ratelimit.ModelLimiter
}

func NewExtractor(completer llm.Completer, limiter *ratelimit.ModelLimiter) *Extractor {
	return &Extractor{completer: completer, limiter: limiter}
}

// Extract issues one completion call for the chunk and returns the raw model
// output. Model failures never propagate: they are absorbed into a marked
// placeholder record, with no retry, so per-article latency stays bounded.
func (e *Extractor) Extract(ctx context.Context, c chunk.Chunk) RawEventRecord {
	rec := RawEventRecord{Meta: c.Meta, ChunkIndex: c.Index}

	if e.limiter != nil && !e.limiter.Allow() {
		rec.Text = fmt.Sprintf("%s budget exhausted for chunk %d of %q", ErrorMarker, c.Index, c.Meta.Title)
		metrics.Global.IncrementFailedModelCalls()
		return rec
	}

	prompt := buildExtractionPrompt(c)

	if e.limiter != nil {
		if err := e.limiter.Use(); err != nil {
			rec.Text = fmt.Sprintf("%s %v", ErrorMarker, err)
			metrics.Global.IncrementFailedModelCalls()
			return rec
		}
	}

	metrics.Global.IncrementModelCalls()
	out, err := e.completer.Complete(ctx, prompt)
	if err != nil {
		logger.Warn("event extraction call failed",
			"publisher", c.Meta.Publisher, "chunk", c.Index, "kind", llm.KindOf(err))
		metrics.Global.IncrementFailedModelCalls()
		rec.Text = fmt.Sprintf("%s %v", ErrorMarker, err)
		return rec
	}

	rec.Text = out
	return rec
}

// buildExtractionPrompt reproduces the fixed instruction template: article
// metadata header, the chunk body, and the requested bullet-line format
// attributing each event to the publisher.
func buildExtractionPrompt(c chunk.Chunk) string {
	return fmt.Sprintf(`Extract factual events from the article chunk.

### Metadata
Title: %s
Publisher: %s
Published: %s
URL: %s

### Chunk:
%s

### Output:
- [time or date if known] Event description (source: %s)
`, c.Meta.Title, c.Meta.Publisher, c.Meta.Published, c.Meta.URL, c.Text, c.Meta.Publisher)
}
