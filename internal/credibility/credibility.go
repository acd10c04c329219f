// Package credibility assigns a best-effort trustworthiness score to an
// article. The score is presentational and never gates the pipeline.
package credibility

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"timeliner/internal/article"
	"timeliner/internal/llm"
	"timeliner/internal/logger"
	"timeliner/internal/metrics"
)

const contentLimit = 1200

// fallback is used whenever scoring fails; a neutral score keeps rendering
// uniform without implying trust either way.
var fallback = article.Credibility{Score: 50, Reason: "Unable to calculate"}

type Scorer struct {
	completer llm.Completer
}

func NewScorer(completer llm.Completer) *Scorer {
	return &Scorer{completer: completer}
}

// Score asks the model for a strict-JSON credibility verdict. Any failure
// (call error, malformed JSON, out-of-range score) degrades to the neutral
// fallback; scoring never returns an error.
func (s *Scorer) Score(ctx context.Context, a *article.Article) article.Credibility {
	content := a.Content
	if len(content) > contentLimit {
		content = content[:contentLimit]
	}

	prompt := fmt.Sprintf(`Analyze the credibility of this news article and give a score (0-100).

### Criteria:
- Reputed publisher
- Specific details (names, dates, numbers)
- Direct quotes
- Neutral language
- Internal consistency
- Avoids vague claims
- Completeness

### Article:
Title: %s
Publisher: %s
Published: %s

Content:
%s

### Output strictly in JSON:
{
  "score": number,
  "reason": "short explanation"
}
`, a.Meta.Title, a.Meta.Publisher, a.Meta.Published, content)

	metrics.Global.IncrementModelCalls()
	out, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		metrics.Global.IncrementFailedModelCalls()
		logger.Debug("credibility call failed", "publisher", a.Meta.Publisher, "error", err)
		return fallback
	}

	return Parse(out)
}

// Parse decodes the model's JSON verdict, tolerating code fences and
// surrounding prose. Malformed output yields the neutral fallback.
func Parse(raw string) article.Credibility {
	raw = strings.TrimSpace(raw)
	if start := strings.Index(raw, "{"); start >= 0 {
		if end := strings.LastIndex(raw, "}"); end > start {
			raw = raw[start : end+1]
		}
	}

	var payload struct {
		Score  float64 `json:"score"`
		Reason string  `json:"reason"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return fallback
	}

	score := int(payload.Score)
	if score < 0 || score > 100 {
		return fallback
	}

	reason := strings.TrimSpace(payload.Reason)
	if reason == "" {
		reason = "No explanation given."
	}
	return article.Credibility{Score: score, Reason: reason}
}
