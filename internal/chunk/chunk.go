// Package chunk splits article text into bounded-size segments for model
// context windows.
package chunk

import (
	"strings"

	"timeliner/internal/article"
)

// DefaultMaxWords bounds chunk size when no explicit bound is configured.
const DefaultMaxWords = 300

// Policy selects the splitting strategy.
type Policy int

const (
	// PolicySentence accumulates whole sentences up to the word bound.
	// Chunks never split mid-sentence at the cost of variable size.
	// This is the default policy.
	PolicySentence Policy = iota
	// PolicyWords slices the word sequence into fixed-size windows.
	PolicyWords
)

// Chunk is a bounded substring of one article's body, with the owning
// article's metadata attached by reference.
type Chunk struct {
	Text  string
	Meta  *article.Metadata
	Index int
}

// Split partitions text into ordered chunks. The chunks reconstruct the
// source text word-for-word with no loss and no overlap. Empty text yields
// zero chunks; a single atomic unit longer than maxWords becomes its own
// oversized chunk.
func Split(text string, maxWords int, policy Policy, meta *article.Metadata) []Chunk {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}

	var parts []string
	switch policy {
	case PolicyWords:
		parts = splitWords(text, maxWords)
	default:
		parts = splitSentences(text, maxWords)
	}

	chunks := make([]Chunk, 0, len(parts))
	for i, p := range parts {
		chunks = append(chunks, Chunk{Text: p, Meta: meta, Index: i})
	}
	return chunks
}

// splitWords groups the word sequence into consecutive windows of exactly
// maxWords words; the last window may be shorter.
func splitWords(text string, maxWords int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var parts []string
	for i := 0; i < len(words); i += maxWords {
		end := i + maxWords
		if end > len(words) {
			end = len(words)
		}
		parts = append(parts, strings.Join(words[i:end], " "))
	}
	return parts
}

// splitSentences accumulates whole sentences until adding the next one would
// exceed the word bound. A sentence alone above the bound is emitted as its
// own oversized part, never dropped.
func splitSentences(text string, maxWords int) []string {
	sentences := sentenceSplit(text)
	if len(sentences) == 0 {
		return nil
	}

	var parts []string
	var current []string
	currentWords := 0

	for _, s := range sentences {
		n := len(strings.Fields(s))
		if currentWords > 0 && currentWords+n > maxWords {
			parts = append(parts, strings.Join(current, " "))
			current = current[:0]
			currentWords = 0
		}
		current = append(current, s)
		currentWords += n
	}
	if len(current) > 0 {
		parts = append(parts, strings.Join(current, " "))
	}
	return parts
}

// sentenceSplit cuts normalized text at terminal punctuation. Trailing text
// without a terminator still forms a final sentence.
func sentenceSplit(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var sentences []string
	var current []string

	for _, w := range words {
		current = append(current, w)
		if endsSentence(w) {
			sentences = append(sentences, strings.Join(current, " "))
			current = current[:0]
		}
	}
	if len(current) > 0 {
		sentences = append(sentences, strings.Join(current, " "))
	}
	return sentences
}

func endsSentence(word string) bool {
	w := strings.TrimRight(word, `"')]`)
	return strings.HasSuffix(w, ".") || strings.HasSuffix(w, "!") || strings.HasSuffix(w, "?")
}
