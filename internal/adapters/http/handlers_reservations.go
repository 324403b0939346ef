package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"stella/internal/application/orchestrators"
	"stella/internal/application/projections"
	auditDomain "stella/internal/domain/audit"
	coinDomain "stella/internal/domain/coin"
	reservationDomain "stella/internal/domain/reservation"
	settingsDomain "stella/internal/domain/settings"
	shiftDomain "stella/internal/domain/shift"
)

// sessionCosts maps a bookable session type to its coin price.
var sessionCosts = map[string]int{
	"mentor":  500,
	"trainer": 300,
}

// handleReservations handles GET (list own) and POST (book) for /api/reservations
func handleReservations(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		profileID := r.URL.Query().Get("profile_id")
		if profileID == "" {
			profileID = sess.ProfileID
		}
		if !canAccessProfile(sess, profileID) {
			writeError(w, http.StatusForbidden, "cannot read another member's reservations")
			return
		}
		list, err := stores.ReservationStore.ListByProfileID(r.Context(), profileID)
		if err != nil {
			internalError(w, err)
			return
		}
		if list == nil {
			list = []reservationDomain.Reservation{}
		}
		writeJSON(w, http.StatusOK, list)

	case "POST":
		if sess.ProfileID == "" {
			writeError(w, http.StatusForbidden, "a member profile is required to book")
			return
		}
		var body struct {
			MentorID    string    `json:"mentorId"`
			ReservedAt  time.Time `json:"reservedAt"`
			SessionType string    `json:"sessionType"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		cost, ok := sessionCosts[body.SessionType]
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown session type")
			return
		}

		result, err := orchestrators.ExecuteReserve(r.Context(), orchestrators.ReserveInput{
			ProfileID:  sess.ProfileID,
			MentorID:   body.MentorID,
			ReservedAt: body.ReservedAt,
			CoinCost:   cost,
		}, orchestrators.ReserveDeps{
			ReservationStore: stores.ReservationStore,
			LedgerStore:      stores.LedgerStore,
			ProfileStore:     stores.ProfileStore,
			AccountStore:     stores.AccountStore,
			TransactionStore: stores.TransactionStore,
			OutboxStore:      stores.OutboxStore,
			GenerateID:       generateID,
			Now:              timeNow,
		})
		if err != nil {
			switch {
			case errors.Is(err, coinDomain.ErrInsufficientBalance):
				writeReject(w, http.StatusOK, "not enough coins for this session")
			case errors.Is(err, orchestrators.ErrSlotTaken):
				writeReject(w, http.StatusOK, "that slot is no longer available")
			case errors.Is(err, orchestrators.ErrMentorNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			default:
				writeError(w, http.StatusBadRequest, err.Error())
			}
			return
		}

		recordAudit(r, auditEvent(sess, auditDomain.CategoryReservation, auditDomain.ActionCreate).
			WithResource("reservation", result.ReservationID))
		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"reservation_id": result.ReservationID,
			"coins_held":     result.CoinsHeld,
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleReservationByID dispatches /api/reservations/{id}/cancel and
// /api/reservations/{id}/complete.
func handleReservationByID(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/reservations/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id, action := parts[0], parts[1]

	switch action {
	case "cancel":
		handleReservationCancel(w, r, sess.ProfileID, sess.Role, id)
	case "complete":
		if _, ok := requireStaff(w, r); !ok {
			return
		}
		if r.Method != "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		err := orchestrators.ExecuteCompleteReservation(r.Context(), orchestrators.CompleteReservationInput{
			ReservationID: id,
			ExecutorID:    sess.AccountID,
		}, orchestrators.CompleteReservationDeps{
			ReservationStore: stores.ReservationStore,
			LedgerStore:      stores.LedgerStore,
			TransactionStore: stores.TransactionStore,
			Now:              timeNow,
		})
		if err != nil {
			if errors.Is(err, orchestrators.ErrReservationNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func handleReservationCancel(w http.ResponseWriter, r *http.Request, profileID, role, id string) {
	ctx := r.Context()
	isStaff := role != "user"

	if r.Method == "GET" {
		// Dry-run: report whether the reservation can still be cancelled.
		res, err := stores.ReservationStore.GetByID(ctx, id)
		if err != nil {
			writeError(w, http.StatusNotFound, "reservation not found")
			return
		}
		if !isStaff && res.ProfileID != profileID {
			writeError(w, http.StatusForbidden, "reservation belongs to another member")
			return
		}
		cutoff := cancelCutoff(ctx)
		writeJSON(w, http.StatusOK, map[string]any{
			"can_cancel":   res.CanCancel(timeNow(), cutoff) || isStaff,
			"cutoff_hours": int(cutoff / time.Hour),
		})
		return
	}
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	if r.ContentLength > 0 {
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
	}

	input := orchestrators.CancelReservationInput{
		ReservationID: id,
		Reason:        body.Reason,
	}
	if isStaff {
		input.Force = true
	} else {
		input.ProfileID = profileID
	}

	result, err := orchestrators.ExecuteCancelReservation(ctx, input, orchestrators.CancelReservationDeps{
		ReservationStore: stores.ReservationStore,
		LedgerStore:      stores.LedgerStore,
		TransactionStore: stores.TransactionStore,
		SettingsStore:    stores.SettingsStore,
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		switch {
		case errors.Is(err, reservationDomain.ErrCutoffPassed):
			writeReject(w, http.StatusOK, "the cancellation window for this reservation has closed")
		case errors.Is(err, orchestrators.ErrReservationNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, orchestrators.ErrNotYourReservation):
			writeError(w, http.StatusForbidden, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"message":        "reservation cancelled",
		"coins_refunded": result.CoinsRefunded,
	})
}

// cancelCutoff reads the configured cancellation window. The same setting
// read backs the cancel orchestrator, so the dry-run and the cancel agree.
func cancelCutoff(ctx context.Context) time.Duration {
	hours := settingsDomain.DefaultCancelCutoffHours
	if s, err := stores.SettingsStore.GetSetting(ctx, settingsDomain.KeyCancelCutoffHours); err == nil {
		hours = s.IntValue(settingsDomain.DefaultCancelCutoffHours)
	}
	return time.Duration(hours) * time.Hour
}

// handleAdminBlocks handles POST and DELETE for /api/admin/blocks
func handleAdminBlocks(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "POST":
		var body struct {
			MentorID   string    `json:"mentorId"`
			ReservedAt time.Time `json:"reservedAt"`
			AllDay     bool      `json:"allDay"`
			Reason     string    `json:"reason"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}
		id, err := orchestrators.ExecuteCreateBlock(r.Context(), orchestrators.CreateBlockInput{
			MentorID:   body.MentorID,
			ReservedAt: body.ReservedAt,
			AllDay:     body.AllDay,
			Reason:     body.Reason,
		}, orchestrators.CreateBlockDeps{
			ReservationStore: stores.ReservationStore,
			GenerateID:       generateID,
			Now:              timeNow,
		})
		if err != nil {
			if errors.Is(err, orchestrators.ErrSlotTaken) {
				writeReject(w, http.StatusOK, "that slot already has a booking")
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategoryReservation, auditDomain.ActionCreate).
			WithResource("block", id))
		writeJSON(w, http.StatusOK, map[string]string{"block_id": id})

	case "DELETE":
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		err := orchestrators.ExecuteRemoveBlock(r.Context(), id, orchestrators.RemoveBlockDeps{
			ReservationStore: stores.ReservationStore,
		})
		if err != nil {
			if errors.Is(err, reservationDomain.ErrNotBlocked) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusNotFound, "block not found")
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategoryReservation, auditDomain.ActionDelete).
			WithResource("block", id))
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAvailability handles GET /api/mentors/available and
// GET /api/trainers/available.
func handleAvailability(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != "GET" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if _, ok := requireSession(w, r); !ok {
			return
		}

		result, err := projections.QueryGetAvailability(r.Context(), projections.GetAvailabilityQuery{
			Date:     r.URL.Query().Get("date"),
			RoleKind: kind,
		}, projections.GetAvailabilityDeps{
			SettingsStore:    stores.SettingsStore,
			ShiftStore:       stores.ShiftStore,
			ReservationStore: stores.ReservationStore,
			AccountStore:     stores.AccountStore,
		})
		if err != nil {
			if errors.Is(err, shiftDomain.ErrInvalidKind) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		// A specific time narrows the answer to staff free at that slot.
		if at := r.URL.Query().Get("time"); at != "" && !result.Closed {
			free := []projections.MentorSlots{}
			for _, m := range result.Mentors {
				for _, slot := range m.Slots {
					if slot == at {
						free = append(free, projections.MentorSlots{MentorID: m.MentorID, Email: m.Email, Slots: []string{at}})
						break
					}
				}
			}
			result.Mentors = free
		}

		writeJSON(w, http.StatusOK, result)
	}
}
