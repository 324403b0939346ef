package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"stella/internal/domain/trainingrec"
)

// TrainingRecordStoreForSave defines the store interface needed by SaveTrainingRecord.
type TrainingRecordStoreForSave interface {
	GetByProfileKindDate(ctx context.Context, profileID, kind, recordDate string) (trainingrec.Record, error)
	Save(ctx context.Context, r trainingrec.Record) error
}

// SaveTrainingRecordInput carries input for the training record upsert.
type SaveTrainingRecordInput struct {
	ProfileID  string
	MentorID   string
	Kind       string
	Content    string
	RecordDate string
}

// SaveTrainingRecordDeps holds dependencies for SaveTrainingRecord.
type SaveTrainingRecordDeps struct {
	RecordStore  TrainingRecordStoreForSave
	ProfileStore ProfileStoreForGrant
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSaveTrainingRecord creates or updates the training note for one
// (profile, kind, date). Writing the same slot twice overwrites the content
// rather than adding a second row.
// PRE: Kind is daily or monthly; RecordDate matches the kind's format
// POST: Exactly one record exists for the slot, with the latest content
func ExecuteSaveTrainingRecord(ctx context.Context, input SaveTrainingRecordInput, deps SaveTrainingRecordDeps) (string, error) {
	if _, err := deps.ProfileStore.GetByID(ctx, input.ProfileID); err != nil {
		return "", ErrProfileNotFound
	}

	now := deps.Now()
	rec, err := deps.RecordStore.GetByProfileKindDate(ctx, input.ProfileID, input.Kind, input.RecordDate)
	if err == nil {
		rec.Content = input.Content
		rec.MentorID = input.MentorID
		rec.UpdatedAt = now
	} else {
		rec = trainingrec.Record{
			ID:         deps.GenerateID(),
			ProfileID:  input.ProfileID,
			MentorID:   input.MentorID,
			Kind:       input.Kind,
			Content:    input.Content,
			RecordDate: input.RecordDate,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}

	if err := rec.Validate(); err != nil {
		return "", err
	}
	if err := deps.RecordStore.Save(ctx, rec); err != nil {
		return "", err
	}

	slog.Info("training_event", "event", "record_saved", "record_id", rec.ID, "profile_id", input.ProfileID, "kind", input.Kind, "date", input.RecordDate)
	return rec.ID, nil
}
