package instagram

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	json "github.com/goccy/go-json"
)

// sessionState is the cookie state persisted to the session file.
type sessionState struct {
	Username  string `json:"username"`
	UserAgent string `json:"user_agent"`
	CSRFToken string `json:"csrftoken"`
	SessionID string `json:"sessionid"`
	DSUserID  string `json:"ds_user_id"`
}

// EnsureSession establishes the account session exactly once. The
// whole load-or-login sequence runs under the client mutex, so callers
// racing the first invocation all observe the established session.
func (c *Client) EnsureSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return nil
	}

	state, err := c.loadSession()
	if err == nil {
		c.logger.Info().Str("account", c.username).Msg("loaded instagram session from file")
		c.session = state
		return nil
	}
	if !os.IsNotExist(err) {
		return err
	}

	state, err = c.login()
	if err != nil {
		return err
	}
	c.session = state

	if err := c.saveSession(state); err != nil {
		return fmt.Errorf("save session file: %w", err)
	}
	c.logger.Info().Str("account", c.username).Msg("logged in to instagram, session saved")
	return nil
}

func (c *Client) loadSession() (*sessionState, error) {
	data, err := os.ReadFile(c.sessionFile)
	if err != nil {
		return nil, err
	}

	var state sessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parse session file %s: %w", c.sessionFile, err)
	}
	if state.SessionID == "" {
		return nil, fmt.Errorf("session file %s carries no session cookie", c.sessionFile)
	}
	return &state, nil
}

func (c *Client) saveSession(state *sessionState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(c.sessionFile, data, 0600)
}

func (c *Client) login() (*sessionState, error) {
	csrfToken, err := c.fetchCSRFToken()
	if err != nil {
		return nil, fmt.Errorf("fetch csrf token: %w", err)
	}

	form := url.Values{}
	form.Set("username", c.username)
	form.Set("enc_password", fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", time.Now().Unix(), c.password))
	form.Set("queryParams", "{}")
	form.Set("optIntoOneTap", "false")

	req, err := http.NewRequest("POST", c.baseURL+"/accounts/login/ajax/", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", defaultUserAgent)
	req.Header.Set("X-CSRFToken", csrfToken)
	req.Header.Set("Referer", c.baseURL+"/accounts/login/")
	req.AddCookie(&http.Cookie{Name: "csrftoken", Value: csrfToken})

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("login error: %s", string(body))
	}

	var loginResp struct {
		Authenticated bool   `json:"authenticated"`
		Status        string `json:"status"`
	}
	if err := json.Unmarshal(body, &loginResp); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if !loginResp.Authenticated {
		return nil, fmt.Errorf("login rejected for %s: status=%s", c.username, loginResp.Status)
	}

	state := &sessionState{
		Username:  c.username,
		UserAgent: defaultUserAgent,
		CSRFToken: csrfToken,
	}
	for _, cookie := range resp.Cookies() {
		switch cookie.Name {
		case "sessionid":
			state.SessionID = cookie.Value
		case "csrftoken":
			state.CSRFToken = cookie.Value
		case "ds_user_id":
			state.DSUserID = cookie.Value
		}
	}
	if state.SessionID == "" {
		return nil, fmt.Errorf("login response carried no session cookie")
	}
	return state, nil
}

func (c *Client) fetchCSRFToken() (string, error) {
	req, err := http.NewRequest("GET", c.baseURL+"/accounts/login/", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", defaultUserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "csrftoken" {
			return cookie.Value, nil
		}
	}
	return "", fmt.Errorf("no csrf cookie in login page response")
}
