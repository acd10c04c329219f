// Package article holds the shared article model flowing through the pipeline.
package article

import "time"

// Metadata identifies one fetched article. Immutable after fetch; attached
// to every event extracted from the article for provenance.
type Metadata struct {
	Title     string
	Publisher string
	Published string // publisher-reported publish time, "Unknown" when absent
	URL       string // resolved destination URL
}

// Article is metadata plus extracted body text and supplemental scoring.
type Article struct {
	Meta        Metadata
	Content     string
	Credibility Credibility
}

// Credibility is a secondary trustworthiness assessment of one article.
type Credibility struct {
	Score  int
	Reason string
}

// PublishedUnknown marks an absent publish timestamp.
const PublishedUnknown = "Unknown"

// PublisherUnknown marks an article whose outlet could not be identified.
const PublisherUnknown = "Unknown"

// FormatPublished renders a feed timestamp for prompts and display.
func FormatPublished(t *time.Time, raw string) string {
	if t != nil {
		return t.Format("Mon, 02 Jan 2006 15:04:05 MST")
	}
	if raw != "" {
		return raw
	}
	return PublishedUnknown
}
