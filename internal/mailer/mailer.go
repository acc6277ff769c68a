// Package mailer sends report emails through the Resend HTTP API.
// Attachments are base64-encoded into the request body as the API expects.
package mailer

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.resend.com/emails"

// ErrNotConfigured is returned when no API key or sender address is set.
var ErrNotConfigured = errors.New("email service not configured")

// Attachment is a file attached to an outgoing email. Content must be
// base64-encoded; EncodeAttachment handles that for raw bytes.
type Attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// EncodeAttachment wraps raw file bytes into a base64 attachment.
func EncodeAttachment(filename string, data []byte) Attachment {
	return Attachment{
		Filename: filename,
		Content:  base64.StdEncoding.EncodeToString(data),
	}
}

type sendRequest struct {
	From        string       `json:"from"`
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	HTML        string       `json:"html"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Client is a minimal Resend API client.
type Client struct {
	APIKey   string
	From     string
	Endpoint string
	HTTPC    *http.Client
}

// New returns a Client with the production endpoint and a request timeout.
func New(apiKey, from string) *Client {
	return &Client{
		APIKey:   apiKey,
		From:     from,
		Endpoint: defaultEndpoint,
		HTTPC:    &http.Client{Timeout: 15 * time.Second},
	}
}

// Configured reports whether the client has credentials and a sender.
func (c *Client) Configured() bool { return c.APIKey != "" && c.From != "" }

// Send delivers one email and returns the provider's message id.
func (c *Client) Send(ctx context.Context, to, subject, html string, attachments ...Attachment) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	payload := sendRequest{
		From:        c.From,
		To:          to,
		Subject:     subject,
		HTML:        html,
		Attachments: attachments,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPC.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return "", fmt.Errorf("resend: status %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("resend: decode response: %w", err)
	}
	return out.ID, nil
}
