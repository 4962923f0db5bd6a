// Package mail sends buyer-facing email (verification codes, receipts) via an
// HTTP mail API.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client sends email through a JSON mail API endpoint.
type Client struct {
	APIKey     string
	BaseURL    string
	From       string
	HTTPClient *http.Client
}

// NewClient returns a mail client for the given API key, endpoint URL, and
// sender address.
func NewClient(apiKey, baseURL, from string) *Client {
	return &Client{
		APIKey:     apiKey,
		BaseURL:    baseURL,
		From:       from,
		HTTPClient: &http.Client{Timeout: defaultTimeout},
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

// Send delivers a plain-text email to the given address. Does not log the body
// (it may contain a one-time code).
func (c *Client) Send(ctx context.Context, to, subject, text string) error {
	if c.APIKey == "" || c.BaseURL == "" {
		return fmt.Errorf("mail: API key or URL not configured")
	}
	raw, err := json.Marshal(sendRequest{From: c.From, To: to, Subject: subject, Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL, bytes.NewReader(raw))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mail: send failed status=%d body=%s", resp.StatusCode, string(b))
	}
	return nil
}
