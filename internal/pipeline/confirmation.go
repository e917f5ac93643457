package pipeline

import "github.com/mvoss/ttstats/internal/league"

// ConfirmationState is the evaluated confirmation status of a match.
type ConfirmationState struct {
	SideAConfirmed    bool
	SideBConfirmed    bool
	ShouldAutoConfirm bool
}

// FullyConfirmed reports whether the match counts as confirmed by both sides.
// Only meaningful once the match has a winner.
func (c ConfirmationState) FullyConfirmed() bool {
	return c.SideAConfirmed && c.SideBConfirmed
}

// EvaluateConfirmation decides, from the stored confirmation rows and each
// participant's verification status, whether each side has confirmed the
// result. A side is confirmed when every verified member has a confirmation
// row; a side with no verified members is trivially confirmed, since nobody
// on it can be asked. ShouldAutoConfirm is true exactly when the match has a
// winner, is not yet fully confirmed, and at least one side is entirely
// unverified. Pure function.
func EvaluateConfirmation(match *league.Match, confirmations []league.Confirmation) ConfirmationState {
	confirmed := make(map[string]bool, len(confirmations))
	for _, c := range confirmations {
		confirmed[c.PlayerID] = true
	}

	sideConfirmed := func(side league.Side) (ok bool, anyVerified bool) {
		ok = true
		for _, p := range side.Players {
			if !p.EmailVerified {
				continue
			}
			anyVerified = true
			if !confirmed[p.ID] {
				ok = false
			}
		}
		return ok, anyVerified
	}

	var state ConfirmationState
	var aVerified, bVerified bool
	state.SideAConfirmed, aVerified = sideConfirmed(match.SideA)
	state.SideBConfirmed, bVerified = sideConfirmed(match.SideB)

	state.ShouldAutoConfirm = match.WinnerSideID != nil &&
		!match.IsFullyConfirmed &&
		(!aVerified || !bVerified)

	return state
}
