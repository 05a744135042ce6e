package bot

import (
	"context"
	"errors"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"insta_saver_bot/internal/pkg/instagram"
	"insta_saver_bot/internal/pkg/media"
)

const (
	invalidURLText  = "❌ Invalid Instagram URL."
	fetchingText    = "⏳ Fetching media..."
	fetchFailedText = "❌ Failed to fetch media. Make sure it is public."
	sendFailedText  = "❌ Failed to send media."
)

// handleDownload is the default text handler: validate the URL, show a
// progress message, resolve the media and relay it. Every failure
// class maps to exactly one user-facing text; causes stay in the log.
func (b *Bot) handleDownload(msg *tgbotapi.Message) {
	b.recordUser(msg.From)

	postURL := strings.TrimSpace(msg.Text)
	if !instagram.IsValidURL(postURL) {
		failuresTotal.WithLabelValues("validate").Inc()
		b.reply(msg.Chat.ID, invalidURLText)
		return
	}

	if _, err := b.api.Request(tgbotapi.NewChatAction(msg.Chat.ID, tgbotapi.ChatTyping)); err != nil {
		b.logger.Debug().Err(err).Msg("send chat action")
	}

	progress, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, fetchingText))
	if err != nil {
		b.logger.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("send progress message")
		return
	}

	mediaURL, err := b.resolver.Resolve(context.Background(), postURL)
	if err != nil {
		failuresTotal.WithLabelValues("resolve").Inc()
		b.editMessage(msg.Chat.ID, progress.MessageID, fetchFailedText)
		return
	}

	if err := b.relay.Send(msg.Chat.ID, mediaURL); err != nil {
		stage := "send"
		if errors.Is(err, media.ErrDownload) {
			stage = "download"
		}
		failuresTotal.WithLabelValues(stage).Inc()
		b.logger.Error().Err(err).Int64("chat_id", msg.Chat.ID).Msg("relay media")
		b.editMessage(msg.Chat.ID, progress.MessageID, sendFailedText)
		return
	}

	kind := "photo"
	if media.IsVideoURL(mediaURL) {
		kind = "video"
	}
	downloadsTotal.WithLabelValues(kind).Inc()

	if _, err := b.api.Request(tgbotapi.NewDeleteMessage(msg.Chat.ID, progress.MessageID)); err != nil {
		b.logger.Debug().Err(err).Msg("delete progress message")
	}
}
