package line

import "context"

// PushRequest is one outbound LINE message addressed to a linked user.
type PushRequest struct {
	To   string // LINE user ID
	Text string
}

// Pusher is the interface for delivering push messages to LINE users.
type Pusher interface {
	Push(ctx context.Context, req PushRequest) error
}
