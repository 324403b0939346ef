package notice

import (
	"errors"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxTitleLength   = 200
	MaxContentLength = 10000
)

// Status constants
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// Domain errors
var (
	ErrEmptyTitle       = errors.New("notice title cannot be empty")
	ErrEmptyContent     = errors.New("notice content cannot be empty")
	ErrAlreadyPublished = errors.New("notice is already published")
)

// Notice is a gym announcement. Content is markdown; the API renders it to
// sanitized HTML for display.
type Notice struct {
	ID          string
	Title       string
	Content     string
	Status      string
	CreatedBy   string
	Pinned      bool
	CreatedAt   time.Time
	PublishedAt time.Time
}

// Validate checks if the Notice has valid data.
// PRE: Notice struct is populated
// POST: Returns nil if valid, error otherwise
func (n *Notice) Validate() error {
	if n.Title == "" {
		return ErrEmptyTitle
	}
	if len(n.Title) > MaxTitleLength {
		return errors.New("notice title cannot exceed 200 characters")
	}
	if n.Content == "" {
		return ErrEmptyContent
	}
	if len(n.Content) > MaxContentLength {
		return errors.New("notice content cannot exceed 10000 characters")
	}
	if n.Status != StatusDraft && n.Status != StatusPublished {
		return errors.New("status must be 'draft' or 'published'")
	}
	return nil
}

// Publish transitions the notice from draft to published.
// PRE: Status is draft
// POST: Status is published, PublishedAt set
func (n *Notice) Publish(now time.Time) error {
	if n.Status == StatusPublished {
		return ErrAlreadyPublished
	}
	n.Status = StatusPublished
	n.PublishedAt = now
	return nil
}
