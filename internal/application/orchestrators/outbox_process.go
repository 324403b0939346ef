package orchestrators

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"stella/internal/adapters/email"
	"stella/internal/adapters/line"
	outboxStore "stella/internal/adapters/storage/outbox"
	domainOutbox "stella/internal/domain/outbox"
)

// OutboxProcessDeps provides the dependencies for delivering outbox entries.
type OutboxProcessDeps struct {
	OutboxStore outboxStore.Store
	LinePusher  line.Pusher
	EmailSender email.Sender
	EmailFrom   string
	Now         func() time.Time
}

// ExecuteOutboxProcess delivers pending and retryable outbox entries with
// exponential backoff between attempts.
// PRE: Deps are valid and store is connected
// POST: All eligible entries are attempted once, results persisted
func ExecuteOutboxProcess(ctx context.Context, deps OutboxProcessDeps) error {
	entries, err := deps.OutboxStore.ListPending(ctx, 100)
	if err != nil {
		return fmt.Errorf("failed to list pending outbox entries: %w", err)
	}
	if len(entries) == 0 {
		return nil
	}

	slog.Info("outbox_event", "event", "process_start", "count", len(entries))

	var succeeded, failed int
	baseDelay := 1 * time.Minute
	maxDelay := 1 * time.Hour
	now := deps.Now()

	for _, entry := range entries {
		if !entry.LastAttemptedAt.IsZero() {
			nextRetry := entry.LastAttemptedAt.Add(entry.NextRetryDelay(baseDelay, maxDelay))
			if now.Before(nextRetry) {
				slog.Debug("outbox_event", "event", "skipped_backoff", "entry_id", entry.ID, "next_retry", nextRetry)
				continue
			}
		}

		entry.MarkAttempt()

		var externalID string
		var err error
		switch entry.ActionType {
		case domainOutbox.ActionTypeLinePush:
			err = deliverLinePush(ctx, entry, deps.LinePusher)
		case domainOutbox.ActionTypeEmail:
			externalID, err = deliverEmail(ctx, entry, deps.EmailSender, deps.EmailFrom)
		default:
			err = fmt.Errorf("unknown action type: %s", entry.ActionType)
		}

		if err != nil {
			entry.MarkFailed(err)
			failed++
			slog.Error("outbox_event", "event", "delivery_failed", "entry_id", entry.ID, "action", entry.ActionType, "attempt", entry.Attempts, "error", err)
		} else {
			entry.MarkSuccess(externalID)
			succeeded++
			slog.Info("outbox_event", "event", "delivered", "entry_id", entry.ID, "action", entry.ActionType, "attempt", entry.Attempts)
		}

		if saveErr := deps.OutboxStore.Save(ctx, entry); saveErr != nil {
			slog.Error("outbox_event", "event", "save_failed", "entry_id", entry.ID, "error", saveErr)
		}
	}

	slog.Info("outbox_event", "event", "process_complete", "succeeded", succeeded, "failed", failed)
	return nil
}

// deliverLinePush sends one queued LINE message.
// PRE: Entry payload contains line_user_id and text
// POST: Message pushed or error returned
func deliverLinePush(ctx context.Context, entry domainOutbox.Entry, pusher line.Pusher) error {
	if pusher == nil {
		return fmt.Errorf("no line pusher configured")
	}
	var payload struct {
		LineUserID string `json:"line_user_id"`
		Text       string `json:"text"`
	}
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal line push payload: %w", err)
	}
	return pusher.Push(ctx, line.PushRequest{To: payload.LineUserID, Text: payload.Text})
}

// deliverEmail sends one queued email.
// PRE: Entry payload contains to, subject, html
// POST: Email accepted by the provider or error returned
func deliverEmail(ctx context.Context, entry domainOutbox.Entry, sender email.Sender, from string) (string, error) {
	if sender == nil {
		return "", fmt.Errorf("no email sender configured")
	}
	var payload struct {
		To      []string `json:"to"`
		Subject string   `json:"subject"`
		HTML    string   `json:"html"`
	}
	if err := json.Unmarshal([]byte(entry.Payload), &payload); err != nil {
		return "", fmt.Errorf("failed to unmarshal email payload: %w", err)
	}
	result, err := sender.Send(ctx, email.SendRequest{
		To:      payload.To,
		From:    from,
		Subject: payload.Subject,
		HTML:    payload.HTML,
	})
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}

// OutboxWorkerConfig holds configuration for the delivery scheduler.
type OutboxWorkerConfig struct {
	Interval time.Duration
	Enabled  bool
}

// DefaultOutboxWorkerConfig returns sensible defaults.
func DefaultOutboxWorkerConfig() OutboxWorkerConfig {
	return OutboxWorkerConfig{
		Interval: 1 * time.Minute,
		Enabled:  true,
	}
}

// StartOutboxWorker starts a background goroutine that periodically
// delivers outbox entries. Returns a cancel function.
// PRE: Context is valid, deps are initialized
// POST: Goroutine started, returns cancel function
func StartOutboxWorker(ctx context.Context, deps OutboxProcessDeps, cfg OutboxWorkerConfig) func() {
	if !cfg.Enabled {
		return func() {}
	}

	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := ExecuteOutboxProcess(ctx, deps); err != nil {
					slog.Error("outbox_event", "event", "worker_error", "error", err)
				}
			}
		}
	}()

	return cancel
}
