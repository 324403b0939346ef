package web

import (
	"errors"
	"net/http"

	"stella/internal/application/orchestrators"
	auditDomain "stella/internal/domain/audit"
	fitestDomain "stella/internal/domain/fitest"
	trainingrecDomain "stella/internal/domain/trainingrec"
)

// handleFitest handles POST /api/fitest (staff record a test) and
// GET /api/fitest?profile_id= (history).
func handleFitest(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		sess, ok := requireStaff(w, r)
		if !ok {
			return
		}
		var body struct {
			ProfileID        string `json:"profileId"`
			ScoreStrength    int    `json:"scoreStrength"`
			ScoreEndurance   int    `json:"scoreEndurance"`
			ScoreFlexibility int    `json:"scoreFlexibility"`
			ScoreTechnique   int    `json:"scoreTechnique"`
			CurrentLevel     int    `json:"currentLevel"`
			TargetLevel      int    `json:"targetLevel"`
			Passed           bool   `json:"passed"`
			Notes            string `json:"notes"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		result, err := orchestrators.ExecuteRecordFitest(r.Context(), orchestrators.RecordFitestInput{
			ProfileID:        body.ProfileID,
			MentorID:         sess.AccountID,
			ScoreStrength:    body.ScoreStrength,
			ScoreEndurance:   body.ScoreEndurance,
			ScoreFlexibility: body.ScoreFlexibility,
			ScoreTechnique:   body.ScoreTechnique,
			CurrentLevel:     body.CurrentLevel,
			TargetLevel:      body.TargetLevel,
			Passed:           body.Passed,
			Notes:            body.Notes,
		}, orchestrators.RecordFitestDeps{
			FitestStore:  stores.FitestStore,
			ProfileStore: stores.ProfileStore,
			GenerateID:   generateID,
			Now:          timeNow,
		})
		if err != nil {
			if errors.Is(err, orchestrators.ErrProfileNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		recordAudit(r, auditEvent(sess, auditDomain.CategoryAccount, auditDomain.ActionUpdate).
			WithResource("fitest", result.ResultID).
			WithDescription("recorded fitest result"))
		writeJSON(w, http.StatusOK, result)

	case "GET":
		sess, ok := requireSession(w, r)
		if !ok {
			return
		}
		profileID := r.URL.Query().Get("profile_id")
		if profileID == "" {
			profileID = sess.ProfileID
		}
		if !canAccessProfile(sess, profileID) {
			writeError(w, http.StatusForbidden, "cannot read another member's results")
			return
		}
		list, err := stores.FitestStore.ListByProfileID(r.Context(), profileID)
		if err != nil {
			internalError(w, err)
			return
		}
		if list == nil {
			list = []fitestDomain.Result{}
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// handleTrainingRecords handles POST (upsert by slot) and GET for
// /api/training-records.
func handleTrainingRecords(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "POST":
		sess, ok := requireStaff(w, r)
		if !ok {
			return
		}
		var body struct {
			ProfileID  string `json:"profileId"`
			Kind       string `json:"kind"`
			Content    string `json:"content"`
			RecordDate string `json:"recordDate"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request")
			return
		}

		id, err := orchestrators.ExecuteSaveTrainingRecord(r.Context(), orchestrators.SaveTrainingRecordInput{
			ProfileID:  body.ProfileID,
			MentorID:   sess.AccountID,
			Kind:       body.Kind,
			Content:    body.Content,
			RecordDate: body.RecordDate,
		}, orchestrators.SaveTrainingRecordDeps{
			RecordStore:  stores.TrainingStore,
			ProfileStore: stores.ProfileStore,
			GenerateID:   generateID,
			Now:          timeNow,
		})
		if err != nil {
			if errors.Is(err, orchestrators.ErrProfileNotFound) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"record_id": id})

	case "GET":
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
			writeError(w, http.StatusForbidden, "cannot read another member's records")
			return
		}

		var list []trainingrecDomain.Record
		var err error
		if kind := q.Get("kind"); kind != "" {
			list, err = stores.TrainingStore.ListByProfileIDAndKind(r.Context(), profileID, kind)
		} else {
			list, err = stores.TrainingStore.ListByProfileID(r.Context(), profileID)
		}
		if err != nil {
			internalError(w, err)
			return
		}
		if list == nil {
			list = []trainingrecDomain.Record{}
		}
		writeJSON(w, http.StatusOK, list)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
