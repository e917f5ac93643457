package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mvoss/ttstats/internal/league"
	"github.com/mvoss/ttstats/internal/metrics"
	"github.com/mvoss/ttstats/internal/notifier"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client
// that we use. This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) error {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return nil
}

// SendConfirmationNeeded asks one player to confirm a finished match.
func (s *Notifier) SendConfirmationNeeded(match *league.Match, player league.PlayerInfo, dryRun bool) error {
	msg := s.formatConfirmationNeeded(match, player)
	return s.sendMessage(msg, dryRun)
}

// SendResultNotification announces a completed match to the club channel.
func (s *Notifier) SendResultNotification(match *league.Match, dryRun bool) error {
	msg := s.formatResultNotification(match)
	return s.sendMessage(msg, dryRun)
}

func sideName(side league.Side) string {
	switch len(side.Players) {
	case 1:
		return side.Players[0].Name
	case 2:
		return side.Players[0].Name + " / " + side.Players[1].Name
	default:
		return "?"
	}
}

// formatConfirmationNeeded creates the Slack message asking a player to
// confirm a match result, using Block Kit.
func (s *Notifier) formatConfirmationNeeded(match *league.Match, player league.PlayerInfo) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏓 Match complete - please confirm", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	// Score is shown from the player's perspective.
	playerScore, opponentScore := match.ScoreA, match.ScoreB
	if match.SideB.Contains(player.ID) {
		playerScore, opponentScore = opponentScore, playerScore
	}
	detailsText := fmt.Sprintf("%s, your match against %s is complete.\nScore: %d-%d (best of %d)\nPlayed: %s",
		player.Name,
		opponentName(match, player.ID),
		playerScore, opponentScore, match.BestOf,
		time.Unix(match.DatePlayed, 0).Format("Monday 02 Jan, 15:04"))
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	contextText := slack.NewTextBlockObject("plain_text",
		"Once both sides confirm, the match counts toward ratings and statistics.", true, false)
	blocks = append(blocks, slack.NewContextBlock("", contextText))

	return slack.NewBlockMessage(blocks...)
}

// formatResultNotification creates the Slack message for a finished match.
func (s *Notifier) formatResultNotification(match *league.Match) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := slack.NewTextBlockObject("plain_text", "🏓 Match finished!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	winner := "undecided"
	if match.WinnerSideID != nil {
		if *match.WinnerSideID == match.SideA.ID {
			winner = sideName(match.SideA)
		} else {
			winner = sideName(match.SideB)
		}
	}
	detailsText := fmt.Sprintf("%s vs %s\n%s wins %d-%d (best of %d)",
		sideName(match.SideA), sideName(match.SideB),
		winner, match.ScoreA, match.ScoreB, match.BestOf)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

func opponentName(match *league.Match, playerID string) string {
	if match.SideA.Contains(playerID) {
		return sideName(match.SideB)
	}
	return sideName(match.SideA)
}
