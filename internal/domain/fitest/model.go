package fitest

import (
	"errors"
	"time"

	"stella/internal/domain/profile"
)

// MaxLevel is the highest promotion-test level.
const MaxLevel = 5

// Domain errors
var (
	ErrEmptyProfileID = errors.New("fitest profile ID is required")
	ErrEmptyMentorID  = errors.New("fitest mentor ID is required")
	ErrInvalidLevel   = errors.New("level must be between 1 and 5")
	ErrInvalidScore   = errors.New("scores must be between 0 and 100")
)

// rankByLevel is the fixed mapping from a passed target level to the rank
// written onto the member's profile. No demotion path exists.
var rankByLevel = map[int]string{
	1: profile.RankBronze,
	2: profile.RankSilver,
	3: profile.RankGold,
	4: profile.RankPlatinum,
	5: profile.RankDiamond,
}

// RankForLevel maps a target level to a profile rank.
// INVARIANT: mapping is fixed; unknown levels return ok=false
func RankForLevel(level int) (string, bool) {
	rank, ok := rankByLevel[level]
	return rank, ok
}

// Result is one mentor-recorded promotion-test outcome. Insert-only; a
// passing result is the only Fitest side effect on another entity (the
// profile's rank).
type Result struct {
	ID               string
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
	TestedAt         time.Time
}

// Validate checks if the Result has valid data.
// PRE: Result struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Result) Validate() error {
	if r.ProfileID == "" {
		return ErrEmptyProfileID
	}
	if r.MentorID == "" {
		return ErrEmptyMentorID
	}
	for _, s := range []int{r.ScoreStrength, r.ScoreEndurance, r.ScoreFlexibility, r.ScoreTechnique} {
		if s < 0 || s > 100 {
			return ErrInvalidScore
		}
	}
	if r.CurrentLevel < 0 || r.CurrentLevel > MaxLevel {
		return ErrInvalidLevel
	}
	if r.TargetLevel < 1 || r.TargetLevel > MaxLevel {
		return ErrInvalidLevel
	}
	if r.TestedAt.IsZero() {
		return errors.New("tested_at must be set")
	}
	return nil
}
