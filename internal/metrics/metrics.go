package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu sync.RWMutex

	// Counters
	SearchesRun       int64
	ArticlesFetched   int64
	ArticlesSkipped   int64
	ChunksProcessed   int64
	ModelCalls        int64
	FailedModelCalls  int64
	MergesCompleted   int64
	MergesFailed      int64
	TimelinesExported int64

	// Timings
	LastRunDuration    time.Duration
	AverageRunDuration time.Duration
	TotalRunDuration   time.Duration
	RunCount           int64

	// Status
	LastRunTime   time.Time
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) IncrementSearches() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchesRun++
}

func (m *Metrics) AddArticlesFetched(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesFetched += int64(n)
}

func (m *Metrics) IncrementArticlesSkipped() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArticlesSkipped++
}

func (m *Metrics) IncrementChunksProcessed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChunksProcessed++
}

func (m *Metrics) IncrementModelCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ModelCalls++
}

func (m *Metrics) IncrementFailedModelCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailedModelCalls++
}

func (m *Metrics) IncrementMergesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MergesCompleted++
}

func (m *Metrics) IncrementMergesFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MergesFailed++
}

func (m *Metrics) IncrementTimelinesExported() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TimelinesExported++
}

func (m *Metrics) RecordRunDuration(duration time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.LastRunDuration = duration
	m.TotalRunDuration += duration
	m.RunCount++

	if m.RunCount > 0 {
		m.AverageRunDuration = m.TotalRunDuration / time.Duration(m.RunCount)
	}
}

func (m *Metrics) SetLastRun() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastRunTime = time.Now()
	m.IsHealthy = true
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"searches_run":            m.SearchesRun,
		"articles_fetched":        m.ArticlesFetched,
		"articles_skipped":        m.ArticlesSkipped,
		"chunks_processed":        m.ChunksProcessed,
		"model_calls":             m.ModelCalls,
		"failed_model_calls":      m.FailedModelCalls,
		"merges_completed":        m.MergesCompleted,
		"merges_failed":           m.MergesFailed,
		"timelines_exported":      m.TimelinesExported,
		"last_run_duration_ms":    m.LastRunDuration.Milliseconds(),
		"average_run_duration_ms": m.AverageRunDuration.Milliseconds(),
		"last_run_time":           m.LastRunTime.Format(time.RFC3339),
		"last_error_time":         m.LastErrorTime.Format(time.RFC3339),
		"last_error":              m.LastError,
		"is_healthy":              m.IsHealthy,
	}
}
