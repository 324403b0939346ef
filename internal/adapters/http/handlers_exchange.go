package web

import (
	"errors"
	"net/http"
	"strings"

	"stella/internal/application/orchestrators"
	auditDomain "stella/internal/domain/audit"
	coinDomain "stella/internal/domain/coin"
	exchangeDomain "stella/internal/domain/exchange"
)

// handleExchangeItems handles GET /api/exchange/items, the redeemable
// catalog. Members see active items; staff see everything.
func handleExchangeItems(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var items []exchangeDomain.Item
	var err error
	if sess.Role == "user" {
		items, err = stores.ItemStore.ListActive(r.Context())
	} else {
		items, err = stores.ItemStore.List(r.Context())
	}
	if err != nil {
		internalError(w, err)
		return
	}
	if items == nil {
		items = []exchangeDomain.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleAdminExchangeItems handles POST (upsert) and DELETE for
// /api/admin/exchange/items.
func handleAdminExchangeItems(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "POST":
		var body struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			CostCoins    int    `json:"costCoins"`
			Active       *bool  `json:"active"`
			DisplayOrder int    `json:"displayOrder"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		item := exchangeDomain.Item{
			ID:           body.ID,
			Name:         body.Name,
			CostCoins:    body.CostCoins,
			Active:       true,
			DisplayOrder: body.DisplayOrder,
			CreatedAt:    timeNow(),
		}
		if body.ID != "" {
			existing, err := stores.ItemStore.GetByID(r.Context(), body.ID)
			if err != nil {
				writeError(w, http.StatusNotFound, "item not found")
				return
			}
			item.CreatedAt = existing.CreatedAt
		} else {
			item.ID = generateID()
		}
		if body.Active != nil {
			item.Active = *body.Active
		}

		if err := item.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := stores.ItemStore.Save(r.Context(), item); err != nil {
			internalError(w, err)
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategoryExchange, auditDomain.ActionUpdate).
			WithResource("exchange_item", item.ID))
		writeJSON(w, http.StatusOK, item)

	case "DELETE":
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if err := stores.ItemStore.Delete(r.Context(), id); err != nil {
			writeError(w, http.StatusNotFound, "item not found")
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategoryExchange, auditDomain.ActionDelete).
			WithResource("exchange_item", id))
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleExchangeRequests handles GET (list) and POST (redeem) for
// /api/exchange/requests.
func handleExchangeRequests(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		var list []exchangeDomain.Request
		var err error
		if sess.Role != "user" {
			status := r.URL.Query().Get("status")
			if status == "" {
				status = exchangeDomain.StatusPending
			}
			list, err = stores.RequestStore.ListByStatus(r.Context(), status)
		} else {
			list, err = stores.RequestStore.ListByProfileID(r.Context(), sess.ProfileID)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		if list == nil {
			list = []exchangeDomain.Request{}
		}
		writeJSON(w, http.StatusOK, list)

	case "POST":
		if sess.ProfileID == "" {
			writeError(w, http.StatusForbidden, "a member profile is required")
			return
		}
		var body struct {
			ItemID string `json:"itemId"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		result, err := orchestrators.ExecuteCreateExchange(r.Context(), orchestrators.CreateExchangeInput{
			ProfileID: sess.ProfileID,
			ItemID:    body.ItemID,
		}, orchestrators.CreateExchangeDeps{
			ItemStore:        stores.ItemStore,
			RequestStore:     stores.RequestStore,
			ProfileStore:     stores.ProfileStore,
			LedgerStore:      stores.LedgerStore,
			TransactionStore: stores.TransactionStore,
			GenerateID:       generateID,
			Now:              timeNow,
		})
		if err != nil {
			switch {
			case errors.Is(err, coinDomain.ErrInsufficientBalance):
				writeReject(w, http.StatusOK, "not enough coins for this item")
			case errors.Is(err, exchangeDomain.ErrItemInactive):
				writeReject(w, http.StatusOK, "that item is no longer available")
			case errors.Is(err, orchestrators.ErrItemNotFound):
				writeError(w, http.StatusNotFound, err.Error())
			default:
				writeError(w, http.StatusBadRequest, err.Error())
			}
			return
		}

		recordAudit(r, auditEvent(sess, auditDomain.CategoryExchange, auditDomain.ActionCreate).
			WithResource("exchange_request", result.RequestID))
		writeJSON(w, http.StatusOK, map[string]any{
			"success":    true,
			"request_id": result.RequestID,
			"cost_coins": result.CostCoins,
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminExchangeDecide handles POST /api/admin/exchange/requests/{id}/decide
func handleAdminExchangeDecide(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/api/admin/exchange/requests/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] != "decide" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	id := parts[0]

	var body struct {
		Decision string `json:"decision"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := orchestrators.ExecuteDecideExchange(r.Context(), orchestrators.DecideExchangeInput{
		RequestID: id,
		Decision:  body.Decision,
		DecidedBy: sess.AccountID,
	}, orchestrators.DecideExchangeDeps{
		RequestStore:     stores.RequestStore,
		LedgerStore:      stores.LedgerStore,
		TransactionStore: stores.TransactionStore,
		ProfileStore:     stores.ProfileStore,
		OutboxStore:      stores.OutboxStore,
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrRequestNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, exchangeDomain.ErrInvalidTransition):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	action := auditDomain.ActionApprove
	if body.Decision == exchangeDomain.StatusRejected {
		action = auditDomain.ActionReject
	}
	recordAudit(r, auditEvent(sess, auditDomain.CategoryExchange, action).
		WithResource("exchange_request", id))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
