package db

import (
	"path/filepath"
	"testing"
)

func TestGetDialect(t *testing.T) {
	tests := []struct {
		driver string
		want   string
	}{
		{"sqlite", "sqlite3"},
		{"pgx", "postgres"},
		{"mysql", "mysql"},
	}
	for _, tt := range tests {
		if got := getDialect(tt.driver); got != tt.want {
			t.Errorf("getDialect(%q) = %q, want %q", tt.driver, got, tt.want)
		}
	}
}

func TestSQLitePath(t *testing.T) {
	got := sqlitePath("file:./data/app.db?_pragma=foreign_keys(1)")
	if got != "./data/app.db" {
		t.Errorf("sqlitePath = %q, want %q", got, "./data/app.db")
	}
}

func TestRunMigrations_UpAndDown(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "app.db") + "?_pragma=foreign_keys(1)"
	database, err := Init("sqlite", dsn)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer func() { _ = Close(database) }()

	err = RunMigrations(database.DB, "sqlite")
	if err != nil {
		t.Fatalf("RunMigrations: %v", err)
	}

	for _, table := range []string{"users", "profiles", "tokens", "sessions"} {
		var n int
		err = database.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = $1`, table)
		if err != nil {
			t.Fatalf("lookup %s: %v", table, err)
		}
		if n != 1 {
			t.Errorf("table %s missing after migrate up", table)
		}
	}

	err = MigrateDown(database.DB, "sqlite")
	if err != nil {
		t.Fatalf("MigrateDown: %v", err)
	}

	var n int
	err = database.Get(&n, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'sessions'`)
	if err != nil {
		t.Fatalf("lookup sessions: %v", err)
	}
	if n != 0 {
		t.Error("sessions table still present after one migrate down")
	}
}
