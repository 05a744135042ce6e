package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const welcomeText = "👋 Welcome to the Instagram Saver Bot!\n\n" +
	"📩 Send me any **public** Instagram link (post, reel, or IGTV), and I'll fetch the media for you.\n" +
	"⚠️ Make sure the post is **public** and not private.\n\n" +
	"Happy downloading! 🎉"

const adminClaimedText = "👑 You have been set as the admin!"

// handleStart records the user, claims the admin slot for the first
// user ever seen, and sends the static welcome.
func (b *Bot) handleStart(msg *tgbotapi.Message) {
	b.recordUser(msg.From)

	if msg.From != nil {
		admin, err := b.storage.GetAdmin()
		if err != nil {
			b.logger.Error().Err(err).Msg("read admin record")
		} else if admin == 0 {
			if err := b.storage.SetAdmin(msg.From.ID); err != nil {
				b.logger.Error().Err(err).Int64("user_id", msg.From.ID).Msg("set admin")
			} else {
				b.reply(msg.Chat.ID, adminClaimedText)
			}
		}
	}

	b.reply(msg.Chat.ID, welcomeText)
}
