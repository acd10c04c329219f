package session

import (
	"context"
	"errors"
	"fmt"
	"os"

	"timeliner/internal/metrics"
)

// ErrNoTimeline is returned when a derived operation runs before a
// successful search.
var ErrNoTimeline = errors.New("no timeline: run a search first")

// Translate returns the stored timeline rendered in targetLang. The result
// is cached per language; repeat calls are served from cache and never
// mutate the underlying timeline.
func (s *Session) Translate(ctx context.Context, targetLang string) (string, error) {
	tl := s.Timeline()
	if tl == nil {
		return "", ErrNoTimeline
	}

	key := s.artifacts.GenerateKey("translate", targetLang)
	if v, ok := s.artifacts.Get(key); ok {
		return v.(string), nil
	}

	out, err := s.merger.Translate(ctx, tl, targetLang)
	if err != nil {
		return "", err
	}
	s.artifacts.Set(key, out, s.opts.ArtifactTTL)
	return out, nil
}

// Highlights returns the five key events of the stored timeline, cached.
func (s *Session) Highlights(ctx context.Context) (string, error) {
	tl := s.Timeline()
	if tl == nil {
		return "", ErrNoTimeline
	}

	key := s.artifacts.GenerateKey("highlights", "")
	if v, ok := s.artifacts.Get(key); ok {
		return v.(string), nil
	}

	out, err := s.merger.Highlights(ctx, tl)
	if err != nil {
		return "", err
	}
	s.artifacts.Set(key, out, s.opts.ArtifactTTL)
	return out, nil
}

// CompareSources contrasts the stored articles' accounts, cached. It reads
// the per-article contents captured during the run; nothing is refetched.
func (s *Session) CompareSources(ctx context.Context) (string, error) {
	if !s.HasTimeline() {
		return "", ErrNoTimeline
	}

	key := s.artifacts.GenerateKey("compare", "")
	if v, ok := s.artifacts.Get(key); ok {
		return v.(string), nil
	}

	out, err := s.merger.CompareSources(ctx, s.Articles())
	if err != nil {
		return "", err
	}
	s.artifacts.Set(key, out, s.opts.ArtifactTTL)
	return out, nil
}

// Export writes the current timeline to a plain-text file.
func (s *Session) Export(path string) error {
	tl := s.Timeline()
	if tl == nil {
		return ErrNoTimeline
	}

	if err := os.WriteFile(path, []byte(tl.Text+"\n"), 0o644); err != nil {
		return fmt.Errorf("failed to write timeline file: %w", err)
	}
	metrics.Global.IncrementTimelinesExported()
	return nil
}
