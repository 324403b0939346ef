package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"stella/internal/application/orchestrators"
	"stella/internal/application/projections"
	auditDomain "stella/internal/domain/audit"
	coinDomain "stella/internal/domain/coin"
)

// handleCoinBalance handles GET /api/coins/balance?profile_id=
func handleCoinBalance(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	profileID := r.URL.Query().Get("profile_id")
	if profileID == "" {
		profileID = sess.ProfileID
	}
	if !canAccessProfile(sess, profileID) {
		writeError(w, http.StatusForbidden, "cannot read another member's coins")
		return
	}

	ledgers, err := stores.LedgerStore.ListByProfileID(r.Context(), profileID)
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, coinDomain.SumBalance(ledgers, timeNow()))
}

// handleCoinTransactions handles GET /api/coins/transactions?profile_id=&month=
func handleCoinTransactions(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	profileID := q.Get("profile_id")
	if profileID == "" {
		profileID = sess.ProfileID
	}
	if !canAccessProfile(sess, profileID) {
		writeError(w, http.StatusForbidden, "cannot read another member's coins")
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))
	result, err := projections.QueryGetCoinSummary(r.Context(), projections.GetCoinSummaryQuery{
		ProfileID:     profileID,
		HistoryLimit:  limit,
		HistoryOffset: offset,
	}, projections.GetCoinSummaryDeps{
		LedgerStore:      stores.LedgerStore,
		TransactionStore: stores.TransactionStore,
		Now:              timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}

	history := result.History
	if month := q.Get("month"); month != "" {
		filtered := []coinDomain.Transaction{}
		for _, tx := range history {
			if strings.HasPrefix(tx.CreatedAt.Format("2006-01"), month) {
				filtered = append(filtered, tx)
			}
		}
		history = filtered
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transactions":  history,
		"expiring_soon": result.ExpiringSoon,
	})
}

// handleCoinStats handles GET /api/coins/stats?profile_id=&months=
func handleCoinStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	profileID := q.Get("profile_id")
	if profileID == "" {
		profileID = sess.ProfileID
	}
	if !canAccessProfile(sess, profileID) {
		writeError(w, http.StatusForbidden, "cannot read another member's coins")
		return
	}

	months, _ := strconv.Atoi(q.Get("months"))
	result, err := projections.QueryGetCoinSummary(r.Context(), projections.GetCoinSummaryQuery{
		ProfileID:   profileID,
		StatsMonths: months,
	}, projections.GetCoinSummaryDeps{
		LedgerStore:      stores.LedgerStore,
		TransactionStore: stores.TransactionStore,
		Now:              timeNow,
	})
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result.MonthlyStats)
}

// handleAdminGrantCoins handles POST /api/admin/coins/grant
func handleAdminGrantCoins(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var body struct {
		ProfileID  string `json:"profileId"`
		Amount     int    `json:"amount"`
		ExpiryDays int    `json:"expiryDays"`
		Reason     string `json:"reason"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := orchestrators.ExecuteGrantCoins(r.Context(), orchestrators.GrantCoinsInput{
		ProfileID:  body.ProfileID,
		Amount:     body.Amount,
		ExpiryDays: body.ExpiryDays,
		Reason:     body.Reason,
		ExecutorID: sess.AccountID,
	}, orchestrators.GrantCoinsDeps{
		LedgerStore:      stores.LedgerStore,
		TransactionStore: stores.TransactionStore,
		ProfileStore:     stores.ProfileStore,
		SettingsStore:    stores.SettingsStore,
		GenerateID:       generateID,
		Now:              timeNow,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		case errors.Is(err, coinDomain.ErrNegativeAmount):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeReject(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	recordAudit(r, auditEvent(sess, auditDomain.CategoryCoin, auditDomain.ActionGrant).
		WithResource("ledger", result.LedgerID).
		WithDescription("granted coins"))
	writeJSON(w, http.StatusOK, map[string]any{
		"ledger_id":  result.LedgerID,
		"expires_at": result.ExpiresAt,
	})
}

// handleAdminExtendCoins handles POST /api/admin/coins/extend
func handleAdminExtendCoins(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var body struct {
		LedgerIDs      []string `json:"ledgerIds"`
		AdditionalDays int      `json:"additionalDays"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := orchestrators.ExecuteExtendExpiry(r.Context(), orchestrators.ExtendExpiryInput{
		LedgerIDs:  body.LedgerIDs,
		Days:       body.AdditionalDays,
		ExecutorID: sess.AccountID,
	}, orchestrators.ExtendExpiryDeps{LedgerStore: stores.LedgerStore})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recordAudit(r, auditEvent(sess, auditDomain.CategoryCoin, auditDomain.ActionUpdate).
		WithDescription("extended coin expiry"))
	writeJSON(w, http.StatusOK, map[string]any{
		"success": result.Succeeded,
		"failed":  result.Failed,
		"errors":  result.Errors,
	})
}
