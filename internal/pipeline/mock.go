package pipeline

import "github.com/mvoss/ttstats/internal/league"

// ProcessGameSavedCall records the arguments of a ProcessGameSaved call.
type ProcessGameSavedCall struct {
	MatchID string
	DryRun  bool
}

// ProcessConfirmationCall records the arguments of a ProcessConfirmation call.
type ProcessConfirmationCall struct {
	MatchID  string
	PlayerID string
	DryRun   bool
}

// Mock is a mock implementation of the MatchPipeline interface for testing.
type Mock struct {
	ProcessGameSavedFunc    func(matchID string, dryRun bool) error
	ProcessConfirmationFunc func(matchID, playerID string, dryRun bool) error
	RecalculateFunc         func(dryRun bool) (league.ReplaySummary, error)

	ProcessGameSavedCalls    []ProcessGameSavedCall
	ProcessConfirmationCalls []ProcessConfirmationCall
	RecalculateCalls         []bool
}

var _ MatchPipeline = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) ProcessGameSaved(matchID string, dryRun bool) error {
	m.ProcessGameSavedCalls = append(m.ProcessGameSavedCalls, ProcessGameSavedCall{MatchID: matchID, DryRun: dryRun})
	if m.ProcessGameSavedFunc != nil {
		return m.ProcessGameSavedFunc(matchID, dryRun)
	}
	return nil
}

func (m *Mock) ProcessConfirmation(matchID, playerID string, dryRun bool) error {
	m.ProcessConfirmationCalls = append(m.ProcessConfirmationCalls, ProcessConfirmationCall{MatchID: matchID, PlayerID: playerID, DryRun: dryRun})
	if m.ProcessConfirmationFunc != nil {
		return m.ProcessConfirmationFunc(matchID, playerID, dryRun)
	}
	return nil
}

func (m *Mock) Recalculate(dryRun bool) (league.ReplaySummary, error) {
	m.RecalculateCalls = append(m.RecalculateCalls, dryRun)
	if m.RecalculateFunc != nil {
		return m.RecalculateFunc(dryRun)
	}
	return league.ReplaySummary{DryRun: dryRun}, nil
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.ProcessGameSavedCalls = nil
	m.ProcessConfirmationCalls = nil
	m.RecalculateCalls = nil
}
