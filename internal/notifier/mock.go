package notifier

import (
	"sync"

	"github.com/mvoss/ttstats/internal/league"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendConfirmationNeededFunc func(match *league.Match, player league.PlayerInfo, dryRun bool) error
	SendResultNotificationFunc func(match *league.Match, dryRun bool) error

	// Call records
	ConfirmationNeededCalls []ConfirmationNeededCall
	ResultNotificationCalls []*league.Match
}

type ConfirmationNeededCall struct {
	Match  *league.Match
	Player league.PlayerInfo
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmationNeededCalls = nil
	m.ResultNotificationCalls = nil
}

func (m *Mock) SendConfirmationNeeded(match *league.Match, player league.PlayerInfo, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ConfirmationNeededCalls = append(m.ConfirmationNeededCalls, ConfirmationNeededCall{Match: match, Player: player})
	if m.SendConfirmationNeededFunc != nil {
		return m.SendConfirmationNeededFunc(match, player, dryRun)
	}
	return nil
}

func (m *Mock) SendResultNotification(match *league.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultNotificationCalls = append(m.ResultNotificationCalls, match)
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(match, dryRun)
	}
	return nil
}

var _ Notifier = (*Mock)(nil)
