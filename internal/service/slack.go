package service

import (
	"context"
	"fmt"

	"github.com/slack-go/slack"

	"muds-matching-backend/internal/domain"
	"muds-matching-backend/internal/logger"
)

// AcceptActionID is the action identifier on the offer message's accept
// button; the interaction webhook matches on it.
const AcceptActionID = "accept_offer"

type slackNotifier struct {
	client         *slack.Client
	adminChannelID string
}

// NewSlackNotifier builds the production notifier. Offer messages are
// DMs to the mentor's workspace user carrying an accept button.
func NewSlackNotifier(botToken, adminChannelID string) Notifier {
	return &slackNotifier{
		client:         slack.New(botToken),
		adminChannelID: adminChannelID,
	}
}

func (n *slackNotifier) PostOffer(ctx context.Context, senior *domain.Senior, junior *domain.Junior, sessionID int32, score float64) (string, string, error) {
	logger.ExternalServiceCall("slack", "PostOffer", "session_id", sessionID, "senior_id", senior.ID)
	if senior.SlackUserID == "" {
		return "", "", fmt.Errorf("senior %d has no slack user id", senior.ID)
	}

	header := slack.NewHeaderBlock(
		slack.NewTextBlockObject(slack.PlainTextType, "相談のお願いが届いています", false, false))
	body := slack.NewSectionBlock(
		slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf(
			"*相談タイトル:* %s\n*相談分野:* %s\n*学年:* %s\n\n対応いただける場合は下のボタンを押してください。先に受諾した方が担当になります。",
			junior.ConsultationTitle, junior.ConsultationCategory, junior.Grade,
		), false, false), nil, nil)
	accept := slack.NewActionBlock("offer_actions",
		slack.NewButtonBlockElement(AcceptActionID, fmt.Sprintf("accept_%d", sessionID),
			slack.NewTextBlockObject(slack.PlainTextType, "受諾する", false, false)).
			WithStyle(slack.StylePrimary))

	channelID, messageTS, err := n.client.PostMessageContext(ctx, senior.SlackUserID,
		slack.MsgOptionBlocks(header, body, accept))
	logger.ExternalServiceResult("slack", "PostOffer", err)
	return channelID, messageTS, err
}

func (n *slackNotifier) UpdateToCancelled(ctx context.Context, channelID, messageTS string, reason string) error {
	text := fmt.Sprintf("この相談のお願いは終了しました。%s", reason)
	_, _, _, err := n.client.UpdateMessageContext(ctx, channelID, messageTS,
		slack.MsgOptionBlocks(slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)))
	logger.ExternalServiceResult("slack", "UpdateToCancelled", err)
	return err
}

func (n *slackNotifier) UpdateToAccepted(ctx context.Context, channelID, messageTS string) error {
	_, _, _, err := n.client.UpdateMessageContext(ctx, channelID, messageTS,
		slack.MsgOptionBlocks(slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType,
				":white_check_mark: 受諾ありがとうございます。この相談はあなたが担当になりました。", false, false), nil, nil)))
	logger.ExternalServiceResult("slack", "UpdateToAccepted", err)
	return err
}

func (n *slackNotifier) PostWinnerDetail(ctx context.Context, senior *domain.Senior, junior *domain.Junior) error {
	if senior.SlackUserID == "" {
		return fmt.Errorf("senior %d has no slack user id", senior.ID)
	}
	text := fmt.Sprintf(
		"*相談の詳細*\n*相談者:* %s（%s）\n*タイトル:* %s\n*内容:*\n%s\n\n<@%s> さんに連絡して日程を調整してください。",
		junior.FullName(), junior.Grade, junior.ConsultationTitle, junior.ConsultationContent, junior.SlackUserID)
	_, _, err := n.client.PostMessageContext(ctx, senior.SlackUserID,
		slack.MsgOptionBlocks(slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false), nil, nil)))
	logger.ExternalServiceResult("slack", "PostWinnerDetail", err)
	return err
}

func (n *slackNotifier) PostJuniorConfirmation(ctx context.Context, junior *domain.Junior, senior *domain.Senior) error {
	if junior.SlackUserID == "" {
		return fmt.Errorf("junior %d has no slack user id", junior.ID)
	}
	text := fmt.Sprintf(
		"相談「%s」に <@%s> さんが対応してくださることになりました。連絡をお待ちください。",
		junior.ConsultationTitle, senior.SlackUserID)
	_, _, err := n.client.PostMessageContext(ctx, junior.SlackUserID, slack.MsgOptionText(text, false))
	logger.ExternalServiceResult("slack", "PostJuniorConfirmation", err)
	return err
}

func (n *slackNotifier) PostFeedbackRequest(ctx context.Context, junior *domain.Junior, sessionID int32) error {
	if junior.SlackUserID == "" {
		return fmt.Errorf("junior %d has no slack user id", junior.ID)
	}
	text := fmt.Sprintf(
		"相談「%s」はいかがでしたか？5段階の評価とコメントをお寄せください（セッション番号: %d）。",
		junior.ConsultationTitle, sessionID)
	_, _, err := n.client.PostMessageContext(ctx, junior.SlackUserID, slack.MsgOptionText(text, false))
	logger.ExternalServiceResult("slack", "PostFeedbackRequest", err)
	return err
}

func (n *slackNotifier) ResolveUserID(ctx context.Context, email string) (string, error) {
	user, err := n.client.GetUserByEmailContext(ctx, email)
	if err != nil {
		// users_not_found is a steady state during roster sync: the
		// student has not joined the workspace yet.
		if err.Error() == "users_not_found" {
			return "", nil
		}
		return "", err
	}
	return user.ID, nil
}

// noopNotifier is used when Slack is disabled in config. Message handles
// come back empty, so nothing downstream tries to edit messages.
type noopNotifier struct{}

func NewNoopNotifier() Notifier { return noopNotifier{} }

func (noopNotifier) PostOffer(context.Context, *domain.Senior, *domain.Junior, int32, float64) (string, string, error) {
	return "", "", nil
}
func (noopNotifier) UpdateToCancelled(context.Context, string, string, string) error { return nil }
func (noopNotifier) UpdateToAccepted(context.Context, string, string) error          { return nil }
func (noopNotifier) PostWinnerDetail(context.Context, *domain.Senior, *domain.Junior) error {
	return nil
}
func (noopNotifier) PostJuniorConfirmation(context.Context, *domain.Junior, *domain.Senior) error {
	return nil
}
func (noopNotifier) PostFeedbackRequest(context.Context, *domain.Junior, int32) error { return nil }
func (noopNotifier) ResolveUserID(context.Context, string) (string, error)            { return "", nil }
