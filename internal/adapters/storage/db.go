package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables are created, WAL mode enabled
func InitDB(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS account (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL,
		tier_id TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		failed_logins INTEGER NOT NULL DEFAULT 0,
		locked_until TEXT
	);

	CREATE TABLE IF NOT EXISTS profile (
		id TEXT PRIMARY KEY,
		account_id TEXT NOT NULL,
		name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		status TEXT NOT NULL,
		rank TEXT NOT NULL DEFAULT 'bronze',
		line_user_id TEXT NOT NULL DEFAULT '',
		FOREIGN KEY (account_id) REFERENCES account(id)
	);

	CREATE TABLE IF NOT EXISTS tier (
		id TEXT PRIMARY KEY,
		level INTEGER NOT NULL UNIQUE,
		name TEXT NOT NULL,
		permissions TEXT NOT NULL DEFAULT '{}'
	);

	CREATE TABLE IF NOT EXISTS coin_ledger (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		amount_current INTEGER NOT NULL,
		amount_locked INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		expires_at TEXT NOT NULL,
		granted_by TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (profile_id) REFERENCES profile(id)
	);
	CREATE INDEX IF NOT EXISTS idx_coin_ledger_profile ON coin_ledger(profile_id, status);

	CREATE TABLE IF NOT EXISTS coin_transaction (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		ledger_id TEXT NOT NULL DEFAULT '',
		amount INTEGER NOT NULL,
		type TEXT NOT NULL,
		executor_id TEXT NOT NULL DEFAULT '',
		reference_id TEXT NOT NULL DEFAULT '',
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		FOREIGN KEY (profile_id) REFERENCES profile(id)
	);
	CREATE INDEX IF NOT EXISTS idx_coin_transaction_profile ON coin_transaction(profile_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_coin_transaction_reference ON coin_transaction(reference_id);

	CREATE TABLE IF NOT EXISTS reservation (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL DEFAULT '',
		mentor_id TEXT NOT NULL,
		reserved_at TEXT NOT NULL,
		status TEXT NOT NULL,
		coins_used INTEGER NOT NULL DEFAULT 0,
		is_blocked INTEGER NOT NULL DEFAULT 0,
		is_all_day_block INTEGER NOT NULL DEFAULT 0,
		block_reason TEXT NOT NULL DEFAULT '',
		cancel_reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reservation_mentor ON reservation(mentor_id, reserved_at);
	CREATE INDEX IF NOT EXISTS idx_reservation_profile ON reservation(profile_id, status);

	CREATE TABLE IF NOT EXISTS verification_code (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		code TEXT NOT NULL,
		expires_at TEXT NOT NULL,
		used INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		FOREIGN KEY (profile_id) REFERENCES profile(id)
	);
	CREATE INDEX IF NOT EXISTS idx_verification_code_code ON verification_code(code);

	CREATE TABLE IF NOT EXISTS checkin_log (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		performed_by TEXT NOT NULL DEFAULT '',
		method TEXT NOT NULL,
		bonus_coins INTEGER NOT NULL DEFAULT 0,
		checked_in_at TEXT NOT NULL,
		FOREIGN KEY (profile_id) REFERENCES profile(id)
	);
	CREATE INDEX IF NOT EXISTS idx_checkin_log_profile ON checkin_log(profile_id, checked_in_at);

	CREATE TABLE IF NOT EXISTS exchange_item (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		cost_coins INTEGER NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		display_order INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS exchange_request (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		item_name TEXT NOT NULL,
		cost_coins INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		decided_by TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		decided_at TEXT,
		FOREIGN KEY (profile_id) REFERENCES profile(id)
	);
	CREATE INDEX IF NOT EXISTS idx_exchange_request_profile ON exchange_request(profile_id, status);

	CREATE TABLE IF NOT EXISTS fitest_result (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		mentor_id TEXT NOT NULL,
		score_strength INTEGER NOT NULL,
		score_endurance INTEGER NOT NULL,
		score_flexibility INTEGER NOT NULL,
		score_technique INTEGER NOT NULL,
		current_level INTEGER NOT NULL,
		target_level INTEGER NOT NULL,
		passed INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT '',
		tested_at TEXT NOT NULL,
		FOREIGN KEY (profile_id) REFERENCES profile(id)
	);
	CREATE INDEX IF NOT EXISTS idx_fitest_result_profile ON fitest_result(profile_id, tested_at);

	CREATE TABLE IF NOT EXISTS training_record (
		id TEXT PRIMARY KEY,
		profile_id TEXT NOT NULL,
		mentor_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		content TEXT NOT NULL,
		record_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT,
		FOREIGN KEY (profile_id) REFERENCES profile(id)
	);
	CREATE INDEX IF NOT EXISTS idx_training_record_profile ON training_record(profile_id, kind, record_date);

	CREATE TABLE IF NOT EXISTS business_hours (
		id TEXT PRIMARY KEY,
		weekday TEXT NOT NULL UNIQUE,
		open_time TEXT NOT NULL,
		close_time TEXT NOT NULL,
		closed INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS closure (
		id TEXT PRIMARY KEY,
		date TEXT NOT NULL UNIQUE,
		reason TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS app_setting (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS staff_shift (
		id TEXT PRIMARY KEY,
		staff_id TEXT NOT NULL,
		role_kind TEXT NOT NULL,
		weekday TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_staff_shift_weekday ON staff_shift(role_kind, weekday);

	CREATE TABLE IF NOT EXISTS notice (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		content TEXT NOT NULL,
		status TEXT NOT NULL,
		created_by TEXT NOT NULL,
		pinned INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		published_at TEXT
	);

	CREATE TABLE IF NOT EXISTS audit_event (
		id TEXT PRIMARY KEY,
		timestamp TEXT NOT NULL,
		category TEXT NOT NULL,
		action TEXT NOT NULL,
		severity TEXT NOT NULL DEFAULT 'info',
		actor_id TEXT NOT NULL DEFAULT '',
		actor_email TEXT NOT NULL DEFAULT '',
		actor_role TEXT NOT NULL DEFAULT '',
		resource_id TEXT NOT NULL DEFAULT '',
		resource_type TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		ip_address TEXT NOT NULL DEFAULT '',
		metadata TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_audit_event_category ON audit_event(category, timestamp);

	CREATE TABLE IF NOT EXISTS outbox_entry (
		id TEXT PRIMARY KEY,
		action_type TEXT NOT NULL,
		payload TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		max_attempts INTEGER NOT NULL DEFAULT 5,
		last_attempted_at TEXT,
		created_at TEXT NOT NULL,
		external_id TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_outbox_entry_status ON outbox_entry(status, created_at);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// ParseStoredTime parses a timestamp column written by any store.
// Older rows may carry Go's default time.Time String() output, so a
// small set of layouts is tried in order.
func ParseStoredTime(value string) (time.Time, error) {
	if idx := strings.Index(value, " m="); idx != -1 {
		value = value[:idx]
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05.999999999 -0700 MST",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
