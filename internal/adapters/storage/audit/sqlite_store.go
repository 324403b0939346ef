package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/audit"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new audit Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, timestamp, category, action, severity, actor_id, actor_email, actor_role, resource_id, resource_type, description, ip_address, metadata"

func scanEvent(scan func(dest ...any) error) (domain.Event, error) {
	var entity domain.Event
	var timestampStr string
	err := scan(
		&entity.ID,
		&timestampStr,
		&entity.Category,
		&entity.Action,
		&entity.Severity,
		&entity.ActorID,
		&entity.ActorEmail,
		&entity.ActorRole,
		&entity.ResourceID,
		&entity.ResourceType,
		&entity.Description,
		&entity.IPAddress,
		&entity.Metadata,
	)
	if err != nil {
		return domain.Event{}, err
	}
	if entity.Timestamp, err = storage.ParseStoredTime(timestampStr); err != nil {
		return domain.Event{}, fmt.Errorf("failed to parse timestamp: %w", err)
	}
	return entity, nil
}

// Save persists an audit Event. Events are append-only.
// PRE: event has required fields set
// POST: Event is inserted
func (s *SQLiteStore) Save(ctx context.Context, event domain.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO audit_event (id, timestamp, category, action, severity, actor_id, actor_email, actor_role, resource_id, resource_type, description, ip_address, metadata)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.Category,
		event.Action,
		event.Severity,
		event.ActorID,
		event.ActorEmail,
		event.ActorRole,
		event.ResourceID,
		event.ResourceType,
		event.Description,
		event.IPAddress,
		event.Metadata,
	)
	return err
}

// List returns audit events matching the filter, newest first.
// PRE: limit > 0
// POST: Returns up to limit events
func (s *SQLiteStore) List(ctx context.Context, filter Filter, limit int) ([]domain.Event, error) {
	var conds []string
	var args []any

	if filter.Category != nil {
		conds = append(conds, "category = ?")
		args = append(args, string(*filter.Category))
	}
	if filter.Action != nil {
		conds = append(conds, "action = ?")
		args = append(args, string(*filter.Action))
	}
	if filter.ActorID != nil {
		conds = append(conds, "actor_id = ?")
		args = append(args, *filter.ActorID)
	}
	if filter.Severity != nil {
		conds = append(conds, "severity = ?")
		args = append(args, string(*filter.Severity))
	}
	if filter.ResourceID != nil {
		conds = append(conds, "resource_id = ?")
		args = append(args, *filter.ResourceID)
	}
	if filter.FromDate != nil {
		conds = append(conds, "SUBSTR(timestamp, 1, 10) >= ?")
		args = append(args, *filter.FromDate)
	}
	if filter.ToDate != nil {
		conds = append(conds, "SUBSTR(timestamp, 1, 10) <= ?")
		args = append(args, *filter.ToDate)
	}

	query := "SELECT " + columns + " FROM audit_event"
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Event
	for rows.Next() {
		entity, err := scanEvent(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// GetByID retrieves an audit Event by its ID.
// PRE: id is non-empty
// POST: Returns the event or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Event, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM audit_event WHERE id = ?", id)
	entity, err := scanEvent(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Event{}, fmt.Errorf("audit event not found: %w", err)
	}
	return entity, err
}
