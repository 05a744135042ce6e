package bot

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insta_saver_bot/internal/pkg/instagram"
	"insta_saver_bot/internal/pkg/media"
	"insta_saver_bot/internal/pkg/users/file_storage"
)

type fakeAPI struct {
	sent      []tgbotapi.Chattable
	requested []tgbotapi.Chattable
	nextID    int
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.requested = append(f.requested, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	ch := make(chan tgbotapi.Update)
	close(ch)
	return ch
}

func (f *fakeAPI) sentTexts() []string {
	var texts []string
	for _, c := range f.sent {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			texts = append(texts, m.Text)
		case tgbotapi.EditMessageTextConfig:
			texts = append(texts, m.Text)
		}
	}
	return texts
}

func (f *fakeAPI) deletedProgress() bool {
	for _, c := range f.requested {
		if _, ok := c.(tgbotapi.DeleteMessageConfig); ok {
			return true
		}
	}
	return false
}

type fakeResolver struct {
	url    string
	err    error
	called bool
}

func (f *fakeResolver) Resolve(ctx context.Context, url string) (string, error) {
	f.called = true
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeRelay struct {
	chatID   int64
	mediaURL string
	err      error
	called   bool
}

func (f *fakeRelay) Send(chatID int64, mediaURL string) error {
	f.called = true
	f.chatID = chatID
	f.mediaURL = mediaURL
	return f.err
}

func newTestBot(t *testing.T, api *fakeAPI, resolver *fakeResolver, relay *fakeRelay) *Bot {
	t.Helper()
	dir := t.TempDir()
	storage := file_storage.NewFileStorage(
		filepath.Join(dir, "users.log"),
		filepath.Join(dir, "admin.json"),
	)
	return New(api, storage, resolver, relay, zerolog.Nop(), time.UTC)
}

func message(userID, chatID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 1,
		From:      &tgbotapi.User{ID: userID, UserName: "alice", FirstName: "Alice"},
		Chat:      &tgbotapi.Chat{ID: chatID},
		Text:      text,
	}
}

func TestHandleStart_FirstUserBecomesAdmin(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(t, api, &fakeResolver{}, &fakeRelay{})

	b.handleStart(message(42, 100, "/start"))

	texts := api.sentTexts()
	require.Len(t, texts, 2)
	assert.Equal(t, adminClaimedText, texts[0])
	assert.Equal(t, welcomeText, texts[1])

	admin, err := b.storage.GetAdmin()
	require.NoError(t, err)
	assert.Equal(t, int64(42), admin)
}

func TestHandleStart_SecondUserGetsNoAdminClaim(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(t, api, &fakeResolver{}, &fakeRelay{})

	b.handleStart(message(42, 100, "/start"))
	api.sent = nil

	b.handleStart(message(43, 101, "/start"))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Equal(t, welcomeText, texts[0])

	admin, err := b.storage.GetAdmin()
	require.NoError(t, err)
	assert.Equal(t, int64(42), admin)
}

func TestHandleStart_RecordsUser(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(t, api, &fakeResolver{}, &fakeRelay{})

	b.handleStart(message(42, 100, "/start"))

	users, err := b.storage.ListUsers()
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, int64(42), users[0].UserID)
	assert.Equal(t, "alice", users[0].Username)
}

func TestHandleUsers_NonAdminRejected(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(t, api, &fakeResolver{}, &fakeRelay{})
	require.NoError(t, b.storage.SetAdmin(1))

	b.handleUsers(message(2, 100, "/users"))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Equal(t, permissionDeniedText, texts[0])
}

func TestHandleUsers_AdminGetsSummary(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(t, api, &fakeResolver{}, &fakeRelay{})
	require.NoError(t, b.storage.SetAdmin(1))

	b.handleDownload(message(42, 100, "not a url")) // records the user
	api.sent = nil

	b.handleUsers(message(1, 100, "/users"))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Contains(t, texts[0], "📊 Total users: 1")
	assert.Contains(t, texts[0], "User ID: 42")
}

func TestHandleUsers_EmptyLog(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(t, api, &fakeResolver{}, &fakeRelay{})
	require.NoError(t, b.storage.SetAdmin(1))

	b.handleUsers(message(1, 100, "/users"))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Equal(t, noUsersText, texts[0])
}

func TestHandleDownload_InvalidURL(t *testing.T) {
	api := &fakeAPI{}
	resolver := &fakeResolver{}
	relay := &fakeRelay{}
	b := newTestBot(t, api, resolver, relay)

	b.handleDownload(message(42, 100, "not a url"))

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Equal(t, invalidURLText, texts[0])
	assert.False(t, resolver.called, "resolver must not run for invalid input")
	assert.False(t, relay.called)
}

func TestHandleDownload_ResolveFailureEditsProgress(t *testing.T) {
	api := &fakeAPI{}
	resolver := &fakeResolver{err: instagram.ErrUnavailable}
	relay := &fakeRelay{}
	b := newTestBot(t, api, resolver, relay)

	b.handleDownload(message(42, 100, "https://www.instagram.com/reel/Cx1234/"))

	texts := api.sentTexts()
	require.Len(t, texts, 2)
	assert.Equal(t, fetchingText, texts[0])
	assert.Equal(t, fetchFailedText, texts[1])
	assert.False(t, relay.called, "relay must not run when resolution fails")
}

func TestHandleDownload_SuccessRelaysAndDeletesProgress(t *testing.T) {
	api := &fakeAPI{}
	resolver := &fakeResolver{url: "https://cdn.example.com/video/abc.mp4"}
	relay := &fakeRelay{}
	b := newTestBot(t, api, resolver, relay)

	b.handleDownload(message(42, 100, "https://www.instagram.com/reel/Cx1234/"))

	assert.True(t, relay.called)
	assert.Equal(t, int64(100), relay.chatID)
	assert.Equal(t, "https://cdn.example.com/video/abc.mp4", relay.mediaURL)
	assert.True(t, api.deletedProgress(), "progress message must be deleted on success")

	texts := api.sentTexts()
	require.Len(t, texts, 1)
	assert.Equal(t, fetchingText, texts[0])
}

func TestHandleDownload_RelayFailureEditsProgress(t *testing.T) {
	api := &fakeAPI{}
	resolver := &fakeResolver{url: "https://cdn.example.com/video/abc.mp4"}
	relay := &fakeRelay{err: fmt.Errorf("%w: upload boom", media.ErrSend)}
	b := newTestBot(t, api, resolver, relay)

	b.handleDownload(message(42, 100, "https://www.instagram.com/reel/Cx1234/"))

	texts := api.sentTexts()
	require.Len(t, texts, 2)
	assert.Equal(t, fetchingText, texts[0])
	assert.Equal(t, sendFailedText, texts[1])
	assert.False(t, api.deletedProgress())
}

func TestDispatch_IgnoresUnknownCommand(t *testing.T) {
	api := &fakeAPI{}
	b := newTestBot(t, api, &fakeResolver{}, &fakeRelay{})

	msg := message(42, 100, "/ping")
	msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 5}}
	b.dispatch(msg)

	assert.Empty(t, api.sent)
}
