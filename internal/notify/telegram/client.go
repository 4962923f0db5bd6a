// Package telegram is a minimal Telegram Bot API client: outbound sendMessage
// plus the inbound webhook payload types.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL = "https://api.telegram.org"
	defaultTimeout = 15 * time.Second
)

// Client calls the Telegram Bot API over HTTP.
type Client struct {
	Token      string
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient returns a client for the given bot token and optional base URL
// (tests point it at a local server).
func NewClient(token, baseURL string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		Token:      token,
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// SendMessage sends text to the given chat. Does not log message content.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	if c.Token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	raw, err := json.Marshal(sendMessageRequest{ChatID: chatID, Text: text})
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/bot%s/sendMessage", c.BaseURL, c.Token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram: sendMessage failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}

// Update is an inbound webhook payload from the Bot API.
type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message"`
}

// Message is an inbound chat message.
type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	Text      string `json:"text"`
}

// Chat identifies the conversation the message arrived from. The chat ID is
// the sender identity checked against the admin allowlist.
type Chat struct {
	ID int64 `json:"id"`
}
