package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	auditStore "stella/internal/adapters/storage/audit"
	"stella/internal/application/orchestrators"
	auditDomain "stella/internal/domain/audit"
	outboxDomain "stella/internal/domain/outbox"
	settingsDomain "stella/internal/domain/settings"
	shiftDomain "stella/internal/domain/shift"
	tierDomain "stella/internal/domain/tier"
)

// handleRegister handles POST /api/register. Open member signup: one account
// with the user role plus its linked profile.
func handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := orchestrators.ExecuteCreateMember(r.Context(), orchestrators.CreateMemberInput{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
	}, orchestrators.CreateMemberDeps{
		AccountStore: stores.AccountStore,
		ProfileStore: stores.ProfileStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrEmailTaken) {
			writeReject(w, http.StatusOK, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"account_id": result.AccountID,
		"profile_id": result.ProfileID,
	})
}

// handleAdminStaff handles POST /api/admin/staff. Creates a staff account
// (mentor, manager or admin) without a member profile.
func handleAdminStaff(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
		TierID   string `json:"tierId"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	id, err := orchestrators.ExecuteCreateStaff(r.Context(), orchestrators.CreateStaffInput{
		Email:    body.Email,
		Password: body.Password,
		Role:     body.Role,
		TierID:   body.TierID,
	}, orchestrators.CreateStaffDeps{
		AccountStore: stores.AccountStore,
		GenerateID:   generateID,
		Now:          timeNow,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrEmailTaken) {
			writeReject(w, http.StatusOK, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recordAudit(r, auditEvent(sess, auditDomain.CategoryAccount, auditDomain.ActionCreate).
		WithResource("account", id).
		WithDescription("created staff account"))
	writeJSON(w, http.StatusOK, map[string]string{"account_id": id})
}

// handleAdminHours handles GET and PUT for /api/admin/settings/hours.
// PUT replaces the weekly opening windows wholesale.
func handleAdminHours(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		hours, err := stores.SettingsStore.ListHours(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		if hours == nil {
			hours = []settingsDomain.BusinessHours{}
		}
		writeJSON(w, http.StatusOK, hours)

	case "PUT":
		var body []struct {
			Weekday   string `json:"weekday"`
			OpenTime  string `json:"openTime"`
			CloseTime string `json:"closeTime"`
			Closed    bool   `json:"closed"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		for _, h := range body {
			hours := settingsDomain.BusinessHours{
				ID:        generateID(),
				Weekday:   h.Weekday,
				OpenTime:  h.OpenTime,
				CloseTime: h.CloseTime,
				Closed:    h.Closed,
			}
			if err := hours.Validate(); err != nil {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			if err := stores.SettingsStore.SaveHours(r.Context(), hours); err != nil {
				internalError(w, err)
				return
			}
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySettings, auditDomain.ActionUpdate).
			WithDescription("updated business hours"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminClosures handles GET, POST and DELETE for
// /api/admin/settings/closures.
func handleAdminClosures(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		list, err := stores.SettingsStore.ListClosures(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		if list == nil {
			list = []settingsDomain.Closure{}
		}
		writeJSON(w, http.StatusOK, list)

	case "POST":
		var body struct {
			Date   string `json:"date"`
			Reason string `json:"reason"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		c := settingsDomain.Closure{
			ID:        generateID(),
			Date:      body.Date,
			Reason:    body.Reason,
			CreatedAt: timeNow(),
		}
		if err := c.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := stores.SettingsStore.SaveClosure(r.Context(), c); err != nil {
			if errors.Is(err, settingsDomain.ErrDuplicateDate) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			internalError(w, err)
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySettings, auditDomain.ActionCreate).
			WithResource("closure", c.ID))
		writeJSON(w, http.StatusOK, c)

	case "DELETE":
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if err := stores.SettingsStore.DeleteClosure(r.Context(), id); err != nil {
			writeError(w, http.StatusNotFound, "closure not found")
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySettings, auditDomain.ActionDelete).
			WithResource("closure", id))
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminSystemSettings handles GET and PUT for /api/admin/settings/system.
func handleAdminSystemSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		list, err := stores.SettingsStore.ListSettings(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		if list == nil {
			list = []settingsDomain.Setting{}
		}
		writeJSON(w, http.StatusOK, list)

	case "PUT":
		var body struct {
			Key   string `json:"key"`
			Value string `json:"value"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		s := settingsDomain.Setting{Key: body.Key, Value: body.Value, UpdatedAt: timeNow()}
		if err := s.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := stores.SettingsStore.SaveSetting(r.Context(), s); err != nil {
			internalError(w, err)
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySettings, auditDomain.ActionUpdate).
			WithResource("setting", s.Key))
		writeJSON(w, http.StatusOK, s)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminMentorTier handles POST /api/admin/mentors/tier. Linking a tier
// to a member account promotes it to mentor; admin and manager keep their role.
func handleAdminMentorTier(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	var body struct {
		AccountID string `json:"accountId"`
		TierID    string `json:"tierId"`
	}
	if err := strictDecode(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	err := orchestrators.ExecuteAssignTier(r.Context(), orchestrators.AssignTierInput{
		AccountID:  body.AccountID,
		TierID:     body.TierID,
		ExecutorID: sess.AccountID,
	}, orchestrators.AssignTierDeps{
		AccountStore: stores.AccountStore,
		TierStore:    stores.TierStore,
	})
	if err != nil {
		if errors.Is(err, orchestrators.ErrAccountNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	recordAudit(r, auditEvent(sess, auditDomain.CategoryAccount, auditDomain.ActionUpdate).
		WithResource("account", body.AccountID).
		WithDescription("assigned tier"))
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleAdminTiers handles GET, POST and PUT for /api/admin/tiers.
// The protected top tier is never editable.
func handleAdminTiers(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		list, err := stores.TierStore.List(r.Context())
		if err != nil {
			internalError(w, err)
			return
		}
		if list == nil {
			list = []tierDomain.Tier{}
		}
		writeJSON(w, http.StatusOK, list)

	case "POST", "PUT":
		var body struct {
			ID          string                     `json:"id"`
			Level       int                        `json:"level"`
			Name        string                     `json:"name"`
			Permissions map[string]map[string]bool `json:"permissions"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		t := tierDomain.Tier{
			ID:          body.ID,
			Level:       body.Level,
			Name:        body.Name,
			Permissions: body.Permissions,
		}
		if r.Method == "PUT" {
			existing, err := stores.TierStore.GetByID(r.Context(), body.ID)
			if err != nil {
				writeError(w, http.StatusNotFound, "tier not found")
				return
			}
			if existing.IsProtected() {
				writeError(w, http.StatusBadRequest, tierDomain.ErrTierProtected.Error())
				return
			}
		} else {
			t.ID = generateID()
		}
		if t.IsProtected() {
			writeError(w, http.StatusBadRequest, tierDomain.ErrTierProtected.Error())
			return
		}
		if err := t.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := stores.TierStore.Save(r.Context(), t); err != nil {
			internalError(w, err)
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySettings, auditDomain.ActionUpdate).
			WithResource("tier", t.ID))
		writeJSON(w, http.StatusOK, t)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminShifts handles GET, POST and DELETE for /api/admin/shifts.
func handleAdminShifts(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireStaff(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		staffID := r.URL.Query().Get("staff_id")
		if staffID == "" {
			writeError(w, http.StatusBadRequest, "staff_id is required")
			return
		}
		list, err := stores.ShiftStore.ListByStaffID(r.Context(), staffID)
		if err != nil {
			internalError(w, err)
			return
		}
		if list == nil {
			list = []shiftDomain.Shift{}
		}
		writeJSON(w, http.StatusOK, list)

	case "POST":
		var body struct {
			StaffID   string `json:"staffId"`
			RoleKind  string `json:"roleKind"`
			Weekday   string `json:"weekday"`
			StartTime string `json:"startTime"`
			EndTime   string `json:"endTime"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		s := shiftDomain.Shift{
			ID:        generateID(),
			StaffID:   body.StaffID,
			RoleKind:  body.RoleKind,
			Weekday:   body.Weekday,
			StartTime: body.StartTime,
			EndTime:   body.EndTime,
		}
		if err := s.Validate(); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := stores.ShiftStore.Save(r.Context(), s); err != nil {
			internalError(w, err)
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySettings, auditDomain.ActionCreate).
			WithResource("shift", s.ID))
		writeJSON(w, http.StatusOK, s)

	case "DELETE":
		id := r.URL.Query().Get("id")
		if id == "" {
			writeError(w, http.StatusBadRequest, "id is required")
			return
		}
		if err := stores.ShiftStore.Delete(r.Context(), id); err != nil {
			writeError(w, http.StatusNotFound, "shift not found")
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySettings, auditDomain.ActionDelete).
			WithResource("shift", id))
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminAudit handles GET /api/admin/audit with optional filters.
func handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}

	q := r.URL.Query()
	limit := 50
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 && n <= 500 {
		limit = n
	}

	var filter auditStore.Filter
	if v := q.Get("category"); v != "" {
		c := auditDomain.Category(v)
		filter.Category = &c
	}
	if v := q.Get("action"); v != "" {
		a := auditDomain.Action(v)
		filter.Action = &a
	}
	if v := q.Get("actor_id"); v != "" {
		filter.ActorID = &v
	}
	if v := q.Get("severity"); v != "" {
		s := auditDomain.Severity(v)
		filter.Severity = &s
	}
	if v := q.Get("from"); v != "" {
		filter.FromDate = &v
	}
	if v := q.Get("to"); v != "" {
		filter.ToDate = &v
	}

	events, err := stores.AuditStore.List(r.Context(), filter, limit)
	if err != nil {
		internalError(w, err)
		return
	}
	if events == nil {
		events = []auditDomain.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// handleAdminOutbox handles GET /api/admin/outbox (list failed or pending
// entries), POST /api/admin/outbox/{id}/retry and
// POST /api/admin/outbox/{id}/abandon.
func handleAdminOutbox(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireAdmin(w, r)
	if !ok {
		return
	}
	ctx := r.Context()

	switch r.Method {
	case "GET":
		limit := 50
		if n, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && n > 0 && n <= 100 {
			limit = n
		}

		var entries []outboxDomain.Entry
		var err error
		if r.URL.Query().Get("status") == "pending" {
			entries, err = stores.OutboxStore.ListPending(ctx, limit)
		} else {
			entries, err = stores.OutboxStore.ListFailed(ctx, limit)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		if entries == nil {
			entries = []outboxDomain.Entry{}
		}
		writeJSON(w, http.StatusOK, entries)

	case "POST":
		rest := strings.TrimPrefix(r.URL.Path, "/api/admin/outbox/")
		parts := strings.Split(strings.Trim(rest, "/"), "/")
		if len(parts) != 2 || parts[0] == "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		id, action := parts[0], parts[1]

		entry, err := stores.OutboxStore.GetByID(ctx, id)
		if err != nil {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}

		switch action {
		case "retry":
			if entry.Status == outboxDomain.StatusDone || entry.Status == outboxDomain.StatusAbandoned {
				writeError(w, http.StatusBadRequest, "entry is terminal")
				return
			}
			entry.Status = outboxDomain.StatusPending
			entry.Attempts = 0
			entry.ErrorMessage = ""
		case "abandon":
			entry.MarkAbandoned()
		default:
			writeError(w, http.StatusBadRequest, "unknown action")
			return
		}

		if err := stores.OutboxStore.Save(ctx, entry); err != nil {
			internalError(w, err)
			return
		}
		recordAudit(r, auditEvent(sess, auditDomain.CategorySystem, auditDomain.ActionUpdate).
			WithResource("outbox", id).
			WithDescription("outbox "+action))
		writeJSON(w, http.StatusOK, map[string]string{"status": entry.Status})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleAdminPerf handles GET /api/admin/perf, a snapshot of recent request
// timings from the in-process collector.
func handleAdminPerf(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if _, ok := requireAdmin(w, r); !ok {
		return
	}
	if perfCollector == nil {
		writeError(w, http.StatusServiceUnavailable, "collector not configured")
		return
	}

	topN := 10
	if n, err := strconv.Atoi(r.URL.Query().Get("top")); err == nil && n > 0 && n <= 50 {
		topN = n
	}
	since := timeNow().Add(-time.Hour)
	writeJSON(w, http.StatusOK, perfCollector.Snapshot(since, topN))
}
