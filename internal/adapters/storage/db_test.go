package storage

import (
	"database/sql"
	"sort"
	"testing"

	_ "modernc.org/sqlite"
)

// openTestDB creates an in-memory SQLite database for testing.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// getTableNames returns sorted table names from sqlite_master, excluding internal tables.
func getTableNames(t *testing.T, db *sql.DB) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		t.Fatalf("failed to query sqlite_master: %v", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("failed to scan table name: %v", err)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expectedTables is the sorted list of tables after all migrations.
var expectedTables = []string{
	"account",
	"app_setting",
	"audit_event",
	"business_hours",
	"checkin_log",
	"closure",
	"coin_ledger",
	"coin_transaction",
	"exchange_item",
	"exchange_request",
	"fitest_result",
	"notice",
	"outbox_entry",
	"profile",
	"reservation",
	"schema_version",
	"staff_shift",
	"tier",
	"training_record",
	"verification_code",
}

// TestMigrateDB_Fresh verifies the full schema lands on an empty database.
func TestMigrateDB_Fresh(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed on fresh db: %v", err)
	}

	version, err := SchemaVersion(db)
	if err != nil {
		t.Fatalf("SchemaVersion failed: %v", err)
	}
	if version != LatestSchemaVersion {
		t.Errorf("version = %d, want %d", version, LatestSchemaVersion)
	}

	tables := getTableNames(t, db)
	if len(tables) != len(expectedTables) {
		t.Errorf("got %d tables, want %d\ngot:  %v\nwant: %v", len(tables), len(expectedTables), tables, expectedTables)
	}
	for i, want := range expectedTables {
		if i >= len(tables) {
			t.Errorf("missing table: %s", want)
			continue
		}
		if tables[i] != want {
			t.Errorf("table[%d] = %q, want %q", i, tables[i], want)
		}
	}
}

// TestMigrateDB_Idempotent verifies that running MigrateDB twice is harmless.
func TestMigrateDB_Idempotent(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db); err != nil {
		t.Fatalf("first MigrateDB failed: %v", err)
	}
	version1, _ := SchemaVersion(db)

	if err := MigrateDB(db); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}
	version2, _ := SchemaVersion(db)
	if version1 != version2 {
		t.Errorf("version changed after idempotent run: %d to %d", version1, version2)
	}
}

// TestMigrateDB_DataSurvival verifies that existing data survives a re-run.
func TestMigrateDB_DataSurvival(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB failed: %v", err)
	}

	_, err := db.Exec(`INSERT INTO account (id, email, role, created_at) VALUES ('a1', 'admin@test.com', 'admin', '2026-01-01T00:00:00Z')`)
	if err != nil {
		t.Fatalf("failed to insert test account: %v", err)
	}
	_, err = db.Exec(`INSERT INTO profile (id, account_id, name, email, status) VALUES ('p1', 'a1', 'Admin', 'admin@test.com', 'active')`)
	if err != nil {
		t.Fatalf("failed to insert test profile: %v", err)
	}

	if err := MigrateDB(db); err != nil {
		t.Fatalf("second MigrateDB failed: %v", err)
	}

	var name string
	if err := db.QueryRow("SELECT name FROM profile WHERE id = 'p1'").Scan(&name); err != nil {
		t.Fatalf("profile data lost after migration: %v", err)
	}
	if name != "Admin" {
		t.Errorf("profile name = %q, want %q", name, "Admin")
	}
}

// TestMigrateDB_UpgradeFromVersion1 verifies pending migrations replay against
// a database stamped at an older version.
func TestMigrateDB_UpgradeFromVersion1(t *testing.T) {
	db := openTestDB(t)

	// Build a version 1 database: baseline schema minus the columns added later.
	if err := InitDB(db); err != nil {
		t.Fatalf("InitDB failed: %v", err)
	}
	stmts := []string{
		`ALTER TABLE reservation DROP COLUMN cancel_reason`,
		`ALTER TABLE profile DROP COLUMN line_user_id`,
		`CREATE TABLE schema_version (version INTEGER NOT NULL)`,
		`INSERT INTO schema_version (version) VALUES (1)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to build version 1 db: %v", err)
		}
	}

	if err := MigrateDB(db); err != nil {
		t.Fatalf("MigrateDB upgrade failed: %v", err)
	}

	v, _ := SchemaVersion(db)
	if v != LatestSchemaVersion {
		t.Errorf("version = %d, want %d", v, LatestSchemaVersion)
	}

	// Columns added by migrations 2 and 3 must now exist.
	if _, err := db.Exec(`INSERT INTO account (id, email, role, created_at) VALUES ('a1', 'a@test.com', 'user', '2026-01-01T00:00:00Z')`); err != nil {
		t.Fatalf("insert account: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO profile (id, account_id, name, email, status, line_user_id) VALUES ('p1', 'a1', 'A', 'a@test.com', 'active', 'U123')`); err != nil {
		t.Errorf("line_user_id column missing after upgrade: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO reservation (id, profile_id, mentor_id, reserved_at, status, cancel_reason, created_at) VALUES ('r1', 'p1', 'm1', '2026-01-02T10:00:00Z', 'cancelled', 'sick', '2026-01-01T00:00:00Z')`); err != nil {
		t.Errorf("cancel_reason column missing after upgrade: %v", err)
	}
}

// TestParseStoredTime covers the layouts older rows may carry.
func TestParseStoredTime(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"rfc3339nano", "2026-01-02T10:04:05.123456789Z", false},
		{"rfc3339", "2026-01-02T10:04:05Z", false},
		{"go string format", "2026-01-02 10:04:05.123456789 +0000 UTC", false},
		{"monotonic suffix stripped", "2026-01-02 10:04:05.123456789 +0000 UTC m=+1.234", false},
		{"space separated", "2026-01-02 10:04:05", false},
		{"garbage", "not a time", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStoredTime(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseStoredTime(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}
