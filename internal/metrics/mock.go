package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It counts calls instead of exporting them.
type Mock struct {
	mu sync.Mutex

	MatchesCompletedCount      int
	RatingsAppliedCount        int
	RatingSkipsByReason        map[string]int
	ConfirmationsRecordedCount int
	AutoConfirmsCount          int
	CacheInvalidationsCount    int
	ReplayRunsCount            int
	PipelineDurations          []float64
	NotifSentCount             int
	NotifFailedCount           int
	StartupTimes               []float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{RatingSkipsByReason: make(map[string]int)}
}

func (m *Mock) IncMatchesCompleted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MatchesCompletedCount++
}

func (m *Mock) IncRatingsApplied() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RatingsAppliedCount++
}

func (m *Mock) IncRatingSkipped(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RatingSkipsByReason[reason]++
}

func (m *Mock) IncConfirmationsRecorded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmationsRecordedCount++
}

func (m *Mock) IncAutoConfirms() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AutoConfirmsCount++
}

func (m *Mock) IncCacheInvalidations() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheInvalidationsCount++
}

func (m *Mock) IncReplayRuns() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReplayRunsCount++
}

func (m *Mock) ObservePipelineDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PipelineDurations = append(m.PipelineDurations, duration)
}

func (m *Mock) IncNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifSentCount++
}

func (m *Mock) IncNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.NotifFailedCount++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTimes = append(m.StartupTimes, duration)
}

var _ Metrics = (*Mock)(nil)
