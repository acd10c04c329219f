package ui

import "github.com/charmbracelet/lipgloss"

var (
	primaryColor = lipgloss.Color("#0969DA") // blue
	accentColor  = lipgloss.Color("#2DA44E") // green
	warningColor = lipgloss.Color("#D29922") // orange
	errorColor   = lipgloss.Color("#CF222E") // red
	dimColor     = lipgloss.Color("#6E7681") // gray
	titleColor   = lipgloss.Color("#39D353") // bright green
	dateColor    = lipgloss.Color("#A371F7") // light purple
	sourceColor  = lipgloss.Color("#FFA657") // light orange

	HeaderStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(1, 0).
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(accentColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	TitleStyle = lipgloss.NewStyle().
			Foreground(titleColor).
			Bold(true)

	DateStyle = lipgloss.NewStyle().
			Foreground(dateColor).
			Italic(true)

	SourceStyle = lipgloss.NewStyle().
			Foreground(sourceColor).
			Bold(true)

	TimelineStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(primaryColor).
			Padding(0, 1)

	scoreHigh = lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	scoreMid  = lipgloss.NewStyle().Foreground(warningColor).Bold(true)
	scoreLow  = lipgloss.NewStyle().Foreground(errorColor).Bold(true)
)

// ScoreStyle picks a color band for a 0-100 credibility score.
func ScoreStyle(score int) lipgloss.Style {
	switch {
	case score >= 75:
		return scoreHigh
	case score >= 50:
		return scoreMid
	default:
		return scoreLow
	}
}
