package timeline

import (
	"regexp"
	"strings"
)

// Models occasionally prepend disclaimers to completions. They are noise in
// a timeline and are stripped before the text is stored or displayed.
var (
	inlineNoteRe    = regexp.MustCompile(`(?i)\((?:note|disclaimer)[^)]*\)`)
	bracketedNoteRe = regexp.MustCompile(`(?i)\[(?:note|disclaimer)[^\]]*\]`)
	fullLineNoteRe  = regexp.MustCompile(`(?i)^(?:note|disclaimer)\s*:`)
)

// Sanitize removes model-generated disclaimer notes while preserving the
// surrounding content and line structure.
func Sanitize(text string) string {
	lines := strings.Split(text, "\n")
	var kept []string

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if fullLineNoteRe.MatchString(trimmed) {
			continue
		}
		line = inlineNoteRe.ReplaceAllString(line, "")
		line = bracketedNoteRe.ReplaceAllString(line, "")
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" && trimmed != "" {
			// Line was nothing but a disclaimer
			continue
		}
		kept = append(kept, line)
	}

	out := strings.Join(kept, "\n")
	// Collapse doubled spaces left by inline removals.
	for strings.Contains(out, "  ") {
		out = strings.ReplaceAll(out, "  ", " ")
	}
	return strings.TrimSpace(out)
}
