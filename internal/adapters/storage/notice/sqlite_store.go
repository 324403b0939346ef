package notice

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"stella/internal/adapters/storage"
	domain "stella/internal/domain/notice"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new notice Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const columns = "id, title, content, status, created_by, pinned, created_at, published_at"

func scanNotice(scan func(dest ...any) error) (domain.Notice, error) {
	var entity domain.Notice
	var createdStr string
	var publishedStr sql.NullString
	var pinned int
	err := scan(
		&entity.ID,
		&entity.Title,
		&entity.Content,
		&entity.Status,
		&entity.CreatedBy,
		&pinned,
		&createdStr,
		&publishedStr,
	)
	if err != nil {
		return domain.Notice{}, err
	}
	entity.Pinned = pinned != 0
	if entity.CreatedAt, err = storage.ParseStoredTime(createdStr); err != nil {
		return domain.Notice{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if publishedStr.Valid && publishedStr.String != "" {
		if entity.PublishedAt, err = storage.ParseStoredTime(publishedStr.String); err != nil {
			return domain.Notice{}, fmt.Errorf("failed to parse published_at: %w", err)
		}
	}
	return entity, nil
}

// GetByID retrieves a Notice by its ID.
// PRE: id is non-empty
// POST: Returns the entity or an error if not found
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Notice, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM notice WHERE id = ?", id)
	entity, err := scanNotice(row.Scan)
	if err == sql.ErrNoRows {
		return domain.Notice{}, fmt.Errorf("notice not found: %w", err)
	}
	return entity, err
}

// Save persists a Notice to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Notice) error {
	pinned := 0
	if entity.Pinned {
		pinned = 1
	}
	var publishedValue any
	if !entity.PublishedAt.IsZero() {
		publishedValue = entity.PublishedAt.Format(time.RFC3339Nano)
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO notice (id, title, content, status, created_by, pinned, created_at, published_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title=excluded.title,
			content=excluded.content,
			status=excluded.status,
			pinned=excluded.pinned,
			published_at=excluded.published_at`,
		entity.ID,
		entity.Title,
		entity.Content,
		entity.Status,
		entity.CreatedBy,
		pinned,
		entity.CreatedAt.Format(time.RFC3339Nano),
		publishedValue,
	)
	return err
}

// Delete removes a Notice from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM notice WHERE id = ?", id)
	return err
}

// List retrieves all notices, newest first.
// PRE: none
// POST: Returns all notices including drafts
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Notice, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+columns+" FROM notice ORDER BY created_at DESC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotices(rows)
}

// ListPublished retrieves published notices, pinned first.
// PRE: none
// POST: Returns published notices ordered pinned, then newest publication
func (s *SQLiteStore) ListPublished(ctx context.Context) ([]domain.Notice, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+" FROM notice WHERE status = ? ORDER BY pinned DESC, published_at DESC",
		domain.StatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectNotices(rows)
}

func collectNotices(rows *sql.Rows) ([]domain.Notice, error) {
	var results []domain.Notice
	for rows.Next() {
		entity, err := scanNotice(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}
