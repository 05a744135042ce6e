package instagram

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

const (
	defaultBaseURL   = "https://www.instagram.com"
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// Post is the resolved media reference for one shortcode. It lives for
// the duration of a single request and is never persisted.
type Post struct {
	Shortcode  string
	IsVideo    bool
	VideoURL   string
	DisplayURL string
}

// Client talks to the Instagram web API with one authenticated session
// per process. EnsureSession must succeed before any lookup.
type Client struct {
	username    string
	password    string
	baseURL     string
	sessionFile string
	client      *http.Client
	logger      zerolog.Logger

	mu      sync.Mutex
	session *sessionState
}

func NewClient(username, password string, logger zerolog.Logger) *Client {
	return &Client{
		username:    username,
		password:    password,
		baseURL:     defaultBaseURL,
		sessionFile: fmt.Sprintf("session-%s", username),
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// PostByShortcode looks up a post through the web JSON endpoint and
// falls back to the post page's Open Graph metadata when that endpoint
// is rejected or returns an unexpected payload.
func (c *Client) PostByShortcode(ctx context.Context, shortcode string) (*Post, error) {
	post, err := c.postFromJSON(ctx, shortcode)
	if err == nil {
		return post, nil
	}
	c.logger.Debug().Err(err).Str("shortcode", shortcode).Msg("json endpoint failed, trying page metadata")

	return c.postFromPage(ctx, shortcode)
}

func (c *Client) postFromJSON(ctx context.Context, shortcode string) (*Post, error) {
	req, err := c.newSessionRequest(ctx, "/p/"+shortcode+"/?__a=1&__d=dis")
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("post lookup for %s: status %d", shortcode, resp.StatusCode)
	}

	var payload struct {
		Graphql struct {
			ShortcodeMedia struct {
				IsVideo    bool   `json:"is_video"`
				VideoURL   string `json:"video_url"`
				DisplayURL string `json:"display_url"`
			} `json:"shortcode_media"`
		} `json:"graphql"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode post %s: %w", shortcode, err)
	}

	media := payload.Graphql.ShortcodeMedia
	if media.DisplayURL == "" && media.VideoURL == "" {
		return nil, fmt.Errorf("post %s: empty media payload", shortcode)
	}

	return &Post{
		Shortcode:  shortcode,
		IsVideo:    media.IsVideo,
		VideoURL:   media.VideoURL,
		DisplayURL: media.DisplayURL,
	}, nil
}

func (c *Client) postFromPage(ctx context.Context, shortcode string) (*Post, error) {
	req, err := c.newSessionRequest(ctx, "/p/"+shortcode+"/")
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("post page for %s: status %d", shortcode, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse post page for %s: %w", shortcode, err)
	}

	if videoURL, ok := doc.Find(`meta[property="og:video"]`).Attr("content"); ok && videoURL != "" {
		return &Post{Shortcode: shortcode, IsVideo: true, VideoURL: videoURL}, nil
	}
	if imageURL, ok := doc.Find(`meta[property="og:image"]`).Attr("content"); ok && imageURL != "" {
		return &Post{Shortcode: shortcode, DisplayURL: imageURL}, nil
	}

	return nil, fmt.Errorf("post page for %s carried no media metadata", shortcode)
}

func (c *Client) newSessionRequest(ctx context.Context, path string) (*http.Request, error) {
	c.mu.Lock()
	state := c.session
	c.mu.Unlock()

	if state == nil {
		return nil, fmt.Errorf("no instagram session established")
	}

	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", state.UserAgent)
	req.AddCookie(&http.Cookie{Name: "sessionid", Value: state.SessionID})
	req.AddCookie(&http.Cookie{Name: "csrftoken", Value: state.CSRFToken})
	if state.DSUserID != "" {
		req.AddCookie(&http.Cookie{Name: "ds_user_id", Value: state.DSUserID})
	}
	return req, nil
}
