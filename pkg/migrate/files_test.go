package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mzielinski/usermgmt-backend/pkg/migrate"
)

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := migrate.CreateSQLMigration(dir, "Add Verified Flag!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_verified_flag.sql") {
		t.Fatalf("unexpected filename: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	if !strings.Contains(string(data), "-- +goose Up") || !strings.Contains(string(data), "-- +goose Down") {
		t.Fatalf("skeleton missing goose markers:\n%s", data)
	}
}

func TestCreateSQLMigrationRejectsEmptyName(t *testing.T) {
	if _, err := migrate.CreateSQLMigration(t.TempDir(), "!!!"); err == nil {
		t.Fatal("expected error for unsanitizable name")
	}
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "not_versioned.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected filename validation error")
	}
}

func TestValidateDirRejectsMissingDownMarker(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "20240101000001_init.sql"), []byte("-- +goose Up\nCREATE TABLE t (id INT);\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := migrate.ValidateDir(dir); err == nil {
		t.Fatal("expected missing Down marker error")
	}
}

func TestRepoMigrationsValidate(t *testing.T) {
	if err := migrate.ValidateDir(filepath.Join("..", "..", "migrations")); err != nil {
		t.Fatalf("repo migrations invalid: %v", err)
	}
}

func TestEmailsMigrationEnforcesPerUserUniqueness(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("..", "..", "migrations", "*_create_emails.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatal("no emails migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CONSTRAINT idx_emails_user_address UNIQUE (user_id, email)",
		"REFERENCES users (id) ON DELETE CASCADE",
		"DROP TABLE emails",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
