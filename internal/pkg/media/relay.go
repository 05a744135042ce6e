package media

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Caption is attached to every relayed photo and video.
const Caption = "👾 Powered by @Instasave_downloader_bot"

var (
	ErrDownload = errors.New("download media")
	ErrSend     = errors.New("send media")
)

type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Relay streams a resolved media URL to a temp file and re-uploads it
// to a chat as a video or photo. The temp file is removed on every
// exit path.
type Relay struct {
	api        Sender
	client     *http.Client
	bufferPath string
	logger     zerolog.Logger
}

func NewRelay(api Sender, bufferPath string, logger zerolog.Logger) *Relay {
	return &Relay{
		api: api,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		bufferPath: bufferPath,
		logger:     logger,
	}
}

// IsVideoURL infers the media kind from the URL string itself.
func IsVideoURL(mediaURL string) bool {
	return strings.Contains(mediaURL, "video")
}

// TempFileName names the per-chat temp file by inferred media kind.
func TempFileName(chatID int64, mediaURL string) string {
	if IsVideoURL(mediaURL) {
		return fmt.Sprintf("temp_%d.mp4", chatID)
	}
	return fmt.Sprintf("temp_%d.jpg", chatID)
}

func (r *Relay) Send(chatID int64, mediaURL string) error {
	fileName := filepath.Join(r.bufferPath, TempFileName(chatID, mediaURL))

	defer func() {
		if err := os.Remove(fileName); err != nil && !os.IsNotExist(err) {
			r.logger.Error().Err(err).Str("file", fileName).Msg("remove temp file")
		}
	}()

	if err := r.downloadToFile(mediaURL, fileName); err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}

	var upload tgbotapi.Chattable
	if IsVideoURL(mediaURL) {
		video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(fileName))
		video.Caption = Caption
		upload = video
	} else {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(fileName))
		photo.Caption = Caption
		upload = photo
	}

	if _, err := r.api.Send(upload); err != nil {
		return fmt.Errorf("%w: %v", ErrSend, err)
	}
	return nil
}

func (r *Relay) downloadToFile(mediaURL, fileName string) error {
	resp, err := r.client.Get(mediaURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	out, err := os.Create(fileName)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
