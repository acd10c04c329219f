// Package ui renders pipeline output for the terminal.
package ui

import (
	"fmt"
	"strings"

	"timeliner/internal/article"
	"timeliner/internal/timeline"
)

// ArticleCard renders one fetched article with its credibility verdict.
func ArticleCard(idx int, a *article.Article) string {
	var b strings.Builder

	b.WriteString(TitleStyle.Render(fmt.Sprintf("%d. %s", idx, a.Meta.Title)))
	b.WriteString("\n")
	b.WriteString(SourceStyle.Render(a.Meta.Publisher))
	b.WriteString(DimStyle.Render(" | "))
	b.WriteString(DateStyle.Render(a.Meta.Published))
	b.WriteString("\n")
	b.WriteString(DimStyle.Render(a.Meta.URL))
	b.WriteString("\n")
	score := ScoreStyle(a.Credibility.Score).Render(fmt.Sprintf("%d/100", a.Credibility.Score))
	b.WriteString(fmt.Sprintf("Credibility: %s %s\n", score, DimStyle.Render(a.Credibility.Reason)))

	return b.String()
}

// Timeline renders the merged timeline in a bordered block.
func Timeline(tl *timeline.MergedTimeline) string {
	header := HeaderStyle.Render("Final Chronological Timeline")
	body := TimelineStyle.Render(tl.Text)
	footer := DimStyle.Render(fmt.Sprintf("%d contributing source(s)", tl.Sources))
	return header + "\n" + body + "\n" + footer + "\n"
}

// Warnings renders per-article failures; they never stop the batch.
func Warnings(warnings []string) string {
	if len(warnings) == 0 {
		return ""
	}
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(WarningStyle.Render("warning: " + w))
		b.WriteString("\n")
	}
	return b.String()
}
