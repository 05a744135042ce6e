package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"insta_saver_bot/internal/pkg/users/domain"
	"insta_saver_bot/internal/pkg/users/repository"
)

type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
}

type Resolver interface {
	Resolve(ctx context.Context, url string) (string, error)
}

type MediaRelay interface {
	Send(chatID int64, mediaURL string) error
}

type Bot struct {
	api      API
	storage  repository.Storage
	resolver Resolver
	relay    MediaRelay
	logger   zerolog.Logger
	loc      *time.Location
}

func New(api API, storage repository.Storage, resolver Resolver, relay MediaRelay, logger zerolog.Logger, loc *time.Location) *Bot {
	return &Bot{
		api:      api,
		storage:  storage,
		resolver: resolver,
		relay:    relay,
		logger:   logger,
		loc:      loc,
	}
}

func (b *Bot) Start() {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info().Msg("bot started and polling")

	// Each update runs in its own goroutine so a hung provider stalls
	// only that request.
	for update := range updates {
		if update.Message == nil {
			continue
		}
		go b.dispatch(update.Message)
	}
}

func (b *Bot) dispatch(msg *tgbotapi.Message) {
	if msg.IsCommand() {
		switch msg.Command() {
		case "start":
			b.handleStart(msg)
		case "users":
			b.handleUsers(msg)
		default:
			b.logger.Debug().Str("command", msg.Command()).Msg("unknown command ignored")
		}
		return
	}

	if msg.Text != "" {
		b.handleDownload(msg)
	}
}

// recordUser is best-effort telemetry; failures are logged and never
// block the main flow.
func (b *Bot) recordUser(user *tgbotapi.User) {
	if user == nil {
		return
	}

	rec := domain.UserRecord{
		UserID:    user.ID,
		Username:  user.UserName,
		FirstName: user.FirstName,
		Timestamp: time.Now().In(b.loc).Format(domain.TimestampLayout),
	}
	if err := b.storage.RecordUser(rec); err != nil {
		b.logger.Error().Err(err).Int64("user_id", user.ID).Msg("record user activity")
		return
	}
	usersSeenTotal.Inc()
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("send message")
	}
}

func (b *Bot) editMessage(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("edit message")
	}
}
