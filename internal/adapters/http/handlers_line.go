package web

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
)

// lineEvent is the subset of the webhook event payload this service reads.
type lineEvent struct {
	Type    string `json:"type"`
	Message struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"message"`
	Source struct {
		UserID string `json:"userId"`
	} `json:"source"`
}

// handleLineWebhook handles POST /api/line/webhook. The signature is
// HMAC-SHA256 of the raw body with the channel secret, base64-encoded, and
// must match the X-Line-Signature header byte for byte.
func handleLineWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if lineChannelSecret == "" {
		writeError(w, http.StatusInternalServerError, "webhook not configured")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "cannot read body")
		return
	}

	sig := r.Header.Get("X-Line-Signature")
	if sig == "" {
		writeError(w, http.StatusUnauthorized, "missing signature")
		return
	}
	mac := hmac.New(sha256.New, []byte(lineChannelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		writeError(w, http.StatusUnauthorized, "signature mismatch")
		return
	}

	var payload struct {
		Events []lineEvent `json:"events"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx := r.Context()
	for _, ev := range payload.Events {
		switch ev.Type {
		case "message":
			// A member links their chat account by messaging their
			// active verification code to the bot.
			if ev.Message.Type != "text" || ev.Source.UserID == "" {
				continue
			}
			code, err := stores.CodeStore.GetActiveByCode(ctx, ev.Message.Text, timeNow())
			if err != nil {
				continue
			}
			p, err := stores.ProfileStore.GetByID(ctx, code.ProfileID)
			if err != nil {
				continue
			}
			p.LineUserID = ev.Source.UserID
			if err := stores.ProfileStore.Save(ctx, p); err != nil {
				slog.Warn("line_link_failed", "profile_id", p.ID, "error", err.Error())
				continue
			}
			if err := code.Consume(timeNow()); err == nil {
				if err := stores.CodeStore.Save(ctx, code); err != nil {
					slog.Warn("line_link_code_save_failed", "code_id", code.ID, "error", err.Error())
				}
			}
			slog.Info("line_event", "event", "profile_linked", "profile_id", p.ID)

		case "unfollow":
			// Blocking the bot unlinks the profile so pushes stop.
			if ev.Source.UserID == "" {
				continue
			}
			p, err := stores.ProfileStore.GetByLineUserID(ctx, ev.Source.UserID)
			if err != nil {
				continue
			}
			p.LineUserID = ""
			if err := stores.ProfileStore.Save(ctx, p); err != nil {
				slog.Warn("line_unlink_failed", "profile_id", p.ID, "error", err.Error())
				continue
			}
			slog.Info("line_event", "event", "profile_unlinked", "profile_id", p.ID)

		default:
			slog.Info("line_event", "event", "ignored", "type", ev.Type)
		}
	}

	w.WriteHeader(http.StatusOK)
}
