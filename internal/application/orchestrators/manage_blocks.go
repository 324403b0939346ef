package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stella/internal/domain/reservation"
)

// ReservationStoreForBlocks defines the reservation store interface needed
// by the block orchestrators.
type ReservationStoreForBlocks interface {
	GetByID(ctx context.Context, id string) (reservation.Reservation, error)
	Save(ctx context.Context, r reservation.Reservation) error
	Delete(ctx context.Context, id string) error
	HasConflict(ctx context.Context, mentorID string, reservedAt time.Time) (bool, error)
}

// CreateBlockInput carries input for block creation.
type CreateBlockInput struct {
	MentorID   string
	ReservedAt time.Time
	AllDay     bool
	Reason     string
}

// CreateBlockDeps holds dependencies for CreateBlock.
type CreateBlockDeps struct {
	ReservationStore ReservationStoreForBlocks
	GenerateID       func() string
	Now              func() time.Time
}

// ExecuteCreateBlock records a staff unavailability block. Blocks occupy a
// slot (or a whole day) without touching coins.
// PRE: MentorID is set; the slot is free
// POST: Block saved as a confirmed reservation with IsBlocked set
func ExecuteCreateBlock(ctx context.Context, input CreateBlockInput, deps CreateBlockDeps) (string, error) {
	if input.MentorID == "" {
		return "", reservation.ErrEmptyMentorID
	}

	if !input.AllDay {
		conflict, err := deps.ReservationStore.HasConflict(ctx, input.MentorID, input.ReservedAt)
		if err != nil {
			return "", err
		}
		if conflict {
			return "", ErrSlotTaken
		}
	}

	block := reservation.Reservation{
		ID:            deps.GenerateID(),
		MentorID:      input.MentorID,
		ReservedAt:    input.ReservedAt,
		Status:        reservation.StatusConfirmed,
		IsBlocked:     true,
		IsAllDayBlock: input.AllDay,
		BlockReason:   input.Reason,
		CreatedAt:     deps.Now(),
	}
	if err := block.Validate(); err != nil {
		return "", err
	}
	if err := deps.ReservationStore.Save(ctx, block); err != nil {
		return "", err
	}

	slog.Info("reservation_event", "event", "block_created", "block_id", block.ID, "mentor_id", input.MentorID, "all_day", input.AllDay)
	return block.ID, nil
}

// RemoveBlockDeps holds dependencies for RemoveBlock.
type RemoveBlockDeps struct {
	ReservationStore ReservationStoreForBlocks
}

// ExecuteRemoveBlock deletes a block outright. Member reservations are
// cancelled, never deleted; blocks carry no history worth keeping.
// PRE: id references a block
// POST: Block row removed
func ExecuteRemoveBlock(ctx context.Context, id string, deps RemoveBlockDeps) error {
	res, err := deps.ReservationStore.GetByID(ctx, id)
	if err != nil {
		return ErrReservationNotFound
	}
	if !res.IsBlocked {
		return errors.New("only blocks can be removed")
	}
	if err := deps.ReservationStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("reservation_event", "event", "block_removed", "block_id", id)
	return nil
}
