package line

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const pushEndpoint = "https://api.line.me/v2/bot/message/push"

// Client delivers push messages via the LINE Messaging API.
type Client struct {
	httpClient  *http.Client
	accessToken string
}

// NewClient creates a Client with the given channel access token.
// PRE: accessToken is a valid LINE channel access token
// POST: Returns a ready-to-use client
func NewClient(accessToken string) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		accessToken: accessToken,
	}
}

type pushBody struct {
	To       string        `json:"to"`
	Messages []pushMessage `json:"messages"`
}

type pushMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Push delivers a single text message to a LINE user.
// PRE: req.To and req.Text are non-empty
// POST: Message accepted by LINE, or an error describing the rejection
func (c *Client) Push(ctx context.Context, req PushRequest) error {
	body, err := json.Marshal(pushBody{
		To:       req.To,
		Messages: []pushMessage{{Type: "text", Text: req.Text}},
	})
	if err != nil {
		return fmt.Errorf("failed to encode push body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, pushEndpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.accessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		slog.Error("line_push_failed", "error", err, "to", req.To)
		return fmt.Errorf("line push failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		slog.Error("line_push_rejected", "status", resp.StatusCode, "to", req.To, "body", string(detail))
		return fmt.Errorf("line push rejected with status %d", resp.StatusCode)
	}

	slog.Info("line_push_sent", "to", req.To)
	return nil
}
