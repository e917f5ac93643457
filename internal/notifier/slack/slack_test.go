package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mvoss/ttstats/internal/league"
	"github.com/mvoss/ttstats/internal/metrics"
	slackapi "github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockSlackAPI is a mock implementation of the parts of the slack.Client that we use.
type mockSlackAPI struct {
	postMessageContextFunc func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error)
}

func (m *mockSlackAPI) PostMessageContext(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
	if m.postMessageContextFunc != nil {
		return m.postMessageContextFunc(ctx, channelID, options...)
	}
	return "C12345", "123456789.12345", nil
}

func singlesMatch() *league.Match {
	winner := "side-a"
	return &league.Match{
		ID: "m1",
		SideA: league.Side{ID: "side-a", Players: []league.PlayerInfo{
			{ID: "p1", Name: "Alice", EmailVerified: true},
		}},
		SideB: league.Side{ID: "side-b", Players: []league.PlayerInfo{
			{ID: "p2", Name: "Bob", EmailVerified: true},
		}},
		BestOf:       5,
		Kind:         league.KindCasual,
		WinnerSideID: &winner,
		ScoreA:       3,
		ScoreB:       1,
		DatePlayed:   time.Date(2025, 7, 9, 20, 0, 0, 0, time.Local).Unix(),
	}
}

func TestSendMessage_DryRun(t *testing.T) {
	metrics := metrics.NewMock()
	// Pass nil for the api, as it shouldn't be called in dry-run mode.
	notifier := NewNotifierWithAPI(nil, "C123", metrics)

	err := notifier.sendMessage(slackapi.NewBlockMessage(), true)
	require.NoError(t, err)
	assert.Equal(t, 0, metrics.NotifSentCount)
}

func TestSendMessage_Success(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			assert.Equal(t, "C123", channelID)
			return "C123", "ts123", nil
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	message := slackapi.NewBlockMessage(slackapi.NewSectionBlock(slackapi.NewTextBlockObject("plain_text", "hello", false, false), nil, nil))
	err := notifier.sendMessage(message, false)

	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called")
	assert.Equal(t, 1, metrics.NotifSentCount)
	assert.Equal(t, 0, metrics.NotifFailedCount)
}

func TestSendMessage_Failure(t *testing.T) {
	expectedErr := errors.New("slack API is down")
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			return "", "", expectedErr
		},
	}

	metrics := metrics.NewMock()
	notifier := NewNotifierWithAPI(api, "C123", metrics)

	err := notifier.sendMessage(slackapi.NewBlockMessage(), false)

	require.Error(t, err)
	assert.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 0, metrics.NotifSentCount)
	assert.Equal(t, 1, metrics.NotifFailedCount)
}

func TestSendConfirmationNeeded_CallsSender(t *testing.T) {
	postMessageCalled := false
	api := &mockSlackAPI{
		postMessageContextFunc: func(ctx context.Context, channelID string, options ...slackapi.MsgOption) (string, string, error) {
			postMessageCalled = true
			return "C123", "ts123", nil
		},
	}

	notifier := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	match := singlesMatch()
	err := notifier.SendConfirmationNeeded(match, match.SideA.Players[0], false)
	require.NoError(t, err)
	assert.True(t, postMessageCalled, "PostMessageContext should have been called via SendConfirmationNeeded")
}

func TestFormatConfirmationNeeded(t *testing.T) {
	match := singlesMatch()
	client := &Notifier{channelID: "C123"}

	msg := client.formatConfirmationNeeded(match, match.SideA.Players[0])
	require.Len(t, msg.Blocks.BlockSet, 3, "Expected 3 blocks")

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok, "First block should be a HeaderBlock")
	assert.Equal(t, "🏓 Match complete - please confirm", header.Text.Text)
	assert.True(t, *header.Text.Emoji)

	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok, "Second block should be a SectionBlock")
	expectedDetails := "Alice, your match against Bob is complete.\nScore: 3-1 (best of 5)\nPlayed: Wednesday 09 Jul, 20:00"
	assert.Equal(t, expectedDetails, details.Text.Text)

	contextBlock, ok := msg.Blocks.BlockSet[2].(*slackapi.ContextBlock)
	require.True(t, ok, "Third block should be a ContextBlock")
	require.Len(t, contextBlock.ContextElements.Elements, 1)
}

func TestFormatConfirmationNeededFlipsScoreForSideB(t *testing.T) {
	match := singlesMatch()
	client := &Notifier{channelID: "C123"}

	msg := client.formatConfirmationNeeded(match, match.SideB.Players[0])

	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Contains(t, details.Text.Text, "Bob, your match against Alice is complete.")
	assert.Contains(t, details.Text.Text, "Score: 1-3", "the score reads from the recipient's perspective")
}

func TestFormatResultNotification(t *testing.T) {
	match := singlesMatch()
	client := &Notifier{channelID: "C123"}

	msg := client.formatResultNotification(match)
	require.Len(t, msg.Blocks.BlockSet, 2, "Expected 2 blocks")

	header, ok := msg.Blocks.BlockSet[0].(*slackapi.HeaderBlock)
	require.True(t, ok)
	assert.Equal(t, "🏓 Match finished!", header.Text.Text)

	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Alice vs Bob\nAlice wins 3-1 (best of 5)", details.Text.Text)
}

func TestFormatResultNotificationDoubles(t *testing.T) {
	winner := "side-b"
	match := &league.Match{
		ID: "m2",
		SideA: league.Side{ID: "side-a", Players: []league.PlayerInfo{
			{ID: "p1", Name: "Alice"}, {ID: "p2", Name: "Bob"},
		}},
		SideB: league.Side{ID: "side-b", Players: []league.PlayerInfo{
			{ID: "p3", Name: "Carol"}, {ID: "p4", Name: "Dave"},
		}},
		BestOf:       3,
		WinnerSideID: &winner,
		ScoreA:       1,
		ScoreB:       2,
	}
	client := &Notifier{channelID: "C123"}

	msg := client.formatResultNotification(match)

	details, ok := msg.Blocks.BlockSet[1].(*slackapi.SectionBlock)
	require.True(t, ok)
	assert.Equal(t, "Alice / Bob vs Carol / Dave\nCarol / Dave wins 1-2 (best of 3)", details.Text.Text)
}
