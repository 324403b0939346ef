package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"stella/internal/adapters/http/middleware"
	"stella/internal/application/orchestrators"
	accountDomain "stella/internal/domain/account"
	auditDomain "stella/internal/domain/audit"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// generateID creates a new UUID string.
func generateID() string {
	return uuid.New().String()
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	writeError(w, http.StatusInternalServerError, "internal server error")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeReject reports an expected business rejection as a structured payload
// rather than an error status body.
func writeReject(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "message": message})
}

// requireSession rejects unauthenticated requests with 401.
func requireSession(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return middleware.Session{}, false
	}
	return sess, true
}

// requireStaff rejects requests from members; mentors, managers and admins pass.
func requireStaff(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if !middleware.IsStaff(r.Context()) {
		writeError(w, http.StatusForbidden, "staff access required")
		return middleware.Session{}, false
	}
	return sess, true
}

// requireAdmin rejects everything but admin sessions.
func requireAdmin(w http.ResponseWriter, r *http.Request) (middleware.Session, bool) {
	sess, ok := requireSession(w, r)
	if !ok {
		return middleware.Session{}, false
	}
	if sess.Role != accountDomain.RoleAdmin {
		writeError(w, http.StatusForbidden, "admin access required")
		return middleware.Session{}, false
	}
	return sess, true
}

// canAccessProfile reports whether the session may read data belonging to the
// given profile. Staff see everything; members only themselves.
func canAccessProfile(sess middleware.Session, profileID string) bool {
	if sess.Role != accountDomain.RoleUser {
		return true
	}
	return profileID != "" && sess.ProfileID == profileID
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// recordAudit writes an audit event, never failing the request. Dropped
// events go to the log instead.
func recordAudit(r *http.Request, event auditDomain.Event) {
	if stores == nil || stores.AuditStore == nil {
		return
	}
	if err := stores.AuditStore.Save(r.Context(), event.WithRequest(clientIP(r))); err != nil {
		slog.Warn("audit_dropped", "category", event.Category, "action", event.Action, "error", err.Error())
	}
}

// auditEvent builds an event from the current session.
func auditEvent(sess middleware.Session, category auditDomain.Category, action auditDomain.Action) auditDomain.Event {
	return auditDomain.NewEvent(sess.AccountID, sess.Email, sess.Role, category, action)
}

// handleLogin handles POST /api/login.
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var input orchestrators.LoginInput
	if err := strictDecode(r, &input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: stores.AccountStore,
		ProfileStore: stores.ProfileStore,
	})
	if err != nil {
		status := http.StatusUnauthorized
		if errors.Is(err, orchestrators.ErrAccountLocked) || errors.Is(err, orchestrators.ErrProfileSuspended) {
			status = http.StatusForbidden
		}
		recordAudit(r, auditDomain.NewEvent("", input.Email, "", auditDomain.CategorySecurity, auditDomain.ActionLogin).
			WithSeverity(auditDomain.SeverityWarning).
			WithDescription("login rejected: "+err.Error()))
		writeError(w, status, err.Error())
		return
	}

	token, err := sessions.Create(result.AccountID, result.ProfileID, result.Email, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	recordAudit(r, auditDomain.NewEvent(result.AccountID, result.Email, result.Role, auditDomain.CategorySecurity, auditDomain.ActionLogin))
	writeJSON(w, http.StatusOK, map[string]string{
		"account_id": result.AccountID,
		"profile_id": result.ProfileID,
		"email":      result.Email,
		"role":       result.Role,
	})
}

// handleLogout handles POST /api/logout.
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	if token := middleware.SessionToken(r); token != "" {
		sessions.Delete(token)
	}
	middleware.ClearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleMe handles GET /api/me.
func handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireSession(w, r)
	if !ok {
		return
	}

	out := map[string]any{
		"account_id": sess.AccountID,
		"email":      sess.Email,
		"role":       sess.Role,
	}
	if sess.ProfileID != "" {
		if p, err := stores.ProfileStore.GetByID(r.Context(), sess.ProfileID); err == nil {
			out["profile"] = map[string]any{
				"id":     p.ID,
				"name":   p.Name,
				"status": p.Status,
				"rank":   p.Rank,
			}
		}
	}
	writeJSON(w, http.StatusOK, out)
}
