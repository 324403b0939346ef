package line

import (
	"context"
	"log/slog"
)

// NoopPusher logs pushes without delivering them. Used in development and
// when no channel access token is configured.
type NoopPusher struct{}

// NewNoopPusher creates a new NoopPusher.
func NewNoopPusher() *NoopPusher {
	return &NoopPusher{}
}

// Push logs the message but does not deliver it.
// PRE: req is a valid PushRequest
// POST: Returns nil without actual delivery
func (p *NoopPusher) Push(_ context.Context, req PushRequest) error {
	slog.Info("noop_line_push", "to", req.To, "text", req.Text)
	return nil
}
