package web

import (
	"errors"
	"net/http"

	"stella/internal/application/orchestrators"
	auditDomain "stella/internal/domain/audit"
	checkinDomain "stella/internal/domain/checkin"
	profileDomain "stella/internal/domain/profile"
)

// handleCheckInCode handles POST /api/checkin/code. A member issues their
// own verification code for the front desk.
func handleCheckInCode(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}
	if sess.ProfileID == "" {
		writeError(w, http.StatusForbidden, "a member profile is required")
		return
	}

	result, err := orchestrators.ExecuteIssueCode(r.Context(), orchestrators.IssueCodeInput{
		ProfileID: sess.ProfileID,
	}, orchestrators.IssueCodeDeps{
		CodeStore:    stores.CodeStore,
		ProfileStore: stores.ProfileStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrProfileSuspended) {
			writeError(w, http.StatusForbidden, err.Error())
			return
		}
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleCheckInVerify handles POST /api/checkin/verify. The front desk
// checks a code without consuming it.
func handleCheckInVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireStaff(w, r); !ok {
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := strictDecode(r, &body); err != nil || body.Code == "" {
		writeError(w, http.StatusBadRequest, "code is required")
		return
	}

	code, err := stores.CodeStore.GetActiveByCode(r.Context(), body.Code, timeNow())
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"valid":   false,
			"message": "code is invalid or expired",
		})
		return
	}

	out := map[string]any{"valid": true, "profileId": code.ProfileID}
	if p, err := stores.ProfileStore.GetByID(r.Context(), code.ProfileID); err == nil {
		if p.Status == profileDomain.StatusSuspended {
			writeJSON(w, http.StatusOK, map[string]any{
				"valid":   false,
				"message": "membership is suspended",
			})
			return
		}
		out["name"] = p.Name
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCheckIn handles POST /api/checkin. Records a visit by code (front
// desk), manually (staff) or as a self check-in.
func handleCheckIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	var body struct {
		ProfileID string `json:"profileId"`
		Code      string `json:"code"`
		Method    string `json:"method"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if body.Method == "" {
		body.Method = checkinDomain.MethodSelf
	}

	// Members can only self check-in against their own profile.
	if sess.Role == "user" {
		if body.Method != checkinDomain.MethodSelf {
			writeError(w, http.StatusForbidden, "staff access required for this method")
			return
		}
		if body.ProfileID != "" && body.ProfileID != sess.ProfileID {
			writeError(w, http.StatusForbidden, "cannot check in another member")
			return
		}
		body.ProfileID = sess.ProfileID
	} else if body.Method == checkinDomain.MethodSelf && body.ProfileID == "" {
		body.ProfileID = sess.ProfileID
	}

	grantDeps := &orchestrators.GrantCoinsDeps{
		LedgerStore:      stores.LedgerStore,
		TransactionStore: stores.TransactionStore,
		ProfileStore:     stores.ProfileStore,
		SettingsStore:    stores.SettingsStore,
		GenerateID:       generateID,
		Now:              timeNow,
	}
	result, err := orchestrators.ExecuteCheckIn(r.Context(), orchestrators.CheckInInput{
		ProfileID:   body.ProfileID,
		Code:        body.Code,
		Method:      body.Method,
		PerformedBy: sess.AccountID,
	}, orchestrators.CheckInDeps{
		CodeStore:     stores.CodeStore,
		LogStore:      stores.LogStore,
		ProfileStore:  stores.ProfileStore,
		SettingsStore: stores.SettingsStore,
		GrantDeps:     grantDeps,
		GenerateID:    generateID,
		Now:           timeNow,
	})
	if err != nil {
		switch {
		case errors.Is(err, orchestrators.ErrCodeInvalid):
			writeReject(w, http.StatusOK, "verification code is invalid or expired")
		case errors.Is(err, orchestrators.ErrAlreadyCheckedIn):
			writeReject(w, http.StatusOK, "already checked in today")
		case errors.Is(err, orchestrators.ErrProfileSuspended):
			writeError(w, http.StatusForbidden, err.Error())
		case errors.Is(err, orchestrators.ErrProfileNotFound):
			writeError(w, http.StatusNotFound, err.Error())
		default:
			writeError(w, http.StatusBadRequest, err.Error())
		}
		return
	}

	recordAudit(r, auditEvent(sess, auditDomain.CategoryCheckIn, auditDomain.ActionCreate).
		WithResource("checkin", result.LogID))
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"log_id":      result.LogID,
		"profile_id":  result.ProfileID,
		"bonus_coins": result.BonusCoins,
	})
}

// handleCheckInHistory handles GET /api/checkin/history?profile_id= and,
// for staff, GET /api/checkin/history?date=.
func handleCheckInHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	if date := q.Get("date"); date != "" {
		if _, ok := requireStaff(w, r); !ok {
			return
		}
		logs, err := stores.LogStore.ListByDate(r.Context(), date)
		if err != nil {
			internalError(w, err)
			return
		}
		if logs == nil {
			logs = []checkinDomain.Log{}
		}
		writeJSON(w, http.StatusOK, logs)
		return
	}

	profileID := q.Get("profile_id")
	if profileID == "" {
		profileID = sess.ProfileID
	}
	if !canAccessProfile(sess, profileID) {
		writeError(w, http.StatusForbidden, "cannot read another member's history")
		return
	}

	logs, err := stores.LogStore.ListByProfileID(r.Context(), profileID)
	if err != nil {
		internalError(w, err)
		return
	}
	if logs == nil {
		logs = []checkinDomain.Log{}
	}
	writeJSON(w, http.StatusOK, logs)
}
