package bot

import (
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"insta_saver_bot/internal/pkg/users/domain"
)

const (
	permissionDeniedText = "❌ You don't have permission to use this command."
	noUsersText          = "No users found."
	userLogErrorText     = "⚠️ An error occurred while retrieving user data."
)

// handleUsers replies with the activity log summary. Admin only.
func (b *Bot) handleUsers(msg *tgbotapi.Message) {
	admin, err := b.storage.GetAdmin()
	if err != nil {
		b.logger.Error().Err(err).Msg("read admin record")
		b.reply(msg.Chat.ID, userLogErrorText)
		return
	}
	if msg.From == nil || admin == 0 || msg.From.ID != admin {
		b.reply(msg.Chat.ID, permissionDeniedText)
		return
	}

	records, err := b.storage.ListUsers()
	if err != nil {
		b.logger.Error().Err(err).Msg("read user activity log")
		b.reply(msg.Chat.ID, userLogErrorText)
		return
	}
	if len(records) == 0 {
		b.reply(msg.Chat.ID, noUsersText)
		return
	}

	summary := domain.Summarize(records, time.Now(), b.loc)

	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 Total users: %d\n🌍 Used today: %d\n\n", summary.Total, summary.Today)
	for _, r := range records {
		username := r.Username
		if username == "" {
			username = "N/A"
		}
		fmt.Fprintf(&sb, "👤 User ID: %d\n   Username: @%s\n   First Name: %s\n   Last Active: %s\n\n",
			r.UserID, username, r.FirstName, r.Timestamp)
	}

	b.reply(msg.Chat.ID, sb.String())
}
