package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"stella/internal/domain/fitest"
	"stella/internal/domain/profile"
)

// FitestStoreForRecord defines the fitest store interface needed by RecordFitest.
type FitestStoreForRecord interface {
	Save(ctx context.Context, r fitest.Result) error
}

// ProfileStoreForFitest reads and updates the tested member's profile.
type ProfileStoreForFitest interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
	Save(ctx context.Context, p profile.Profile) error
}

// RecordFitestInput carries input for the fitest orchestrator.
type RecordFitestInput struct {
	ProfileID        string
	MentorID         string
	ScoreStrength    int
	ScoreEndurance   int
	ScoreFlexibility int
	ScoreTechnique   int
	CurrentLevel     int
	TargetLevel      int
	Passed           bool
	Notes            string
}

// RecordFitestResult carries the stored result and any rank change.
type RecordFitestResult struct {
	ResultID string `json:"result_id"`
	NewRank  string `json:"new_rank,omitempty"`
}

// RecordFitestDeps holds dependencies for RecordFitest.
type RecordFitestDeps struct {
	FitestStore  FitestStoreForRecord
	ProfileStore ProfileStoreForFitest
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteRecordFitest stores a promotion-test result. A pass promotes the
// member's profile to the rank mapped from the target level; failures and
// unknown levels leave the rank untouched. There is no demotion.
// PRE: Scores are 0..100; target level is 1..5
// POST: Result saved; profile rank raised on pass
func ExecuteRecordFitest(ctx context.Context, input RecordFitestInput, deps RecordFitestDeps) (RecordFitestResult, error) {
	p, err := deps.ProfileStore.GetByID(ctx, input.ProfileID)
	if err != nil {
		return RecordFitestResult{}, ErrProfileNotFound
	}

	result := fitest.Result{
		ID:               deps.GenerateID(),
		ProfileID:        input.ProfileID,
		MentorID:         input.MentorID,
		ScoreStrength:    input.ScoreStrength,
		ScoreEndurance:   input.ScoreEndurance,
		ScoreFlexibility: input.ScoreFlexibility,
		ScoreTechnique:   input.ScoreTechnique,
		CurrentLevel:     input.CurrentLevel,
		TargetLevel:      input.TargetLevel,
		Passed:           input.Passed,
		Notes:            input.Notes,
		TestedAt:         deps.Now(),
	}
	if err := result.Validate(); err != nil {
		return RecordFitestResult{}, err
	}
	if err := deps.FitestStore.Save(ctx, result); err != nil {
		return RecordFitestResult{}, err
	}

	out := RecordFitestResult{ResultID: result.ID}
	if input.Passed {
		if rank, ok := fitest.RankForLevel(input.TargetLevel); ok && rank != p.Rank {
			p.Rank = rank
			if err := deps.ProfileStore.Save(ctx, p); err != nil {
				return RecordFitestResult{}, err
			}
			out.NewRank = rank
			slog.Info("fitest_event", "event", "rank_promoted", "profile_id", p.ID, "rank", rank)
		}
	}

	slog.Info("fitest_event", "event", "fitest_recorded", "result_id", result.ID, "profile_id", input.ProfileID, "passed", input.Passed)
	return out, nil
}
