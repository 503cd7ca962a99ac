package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseMigrationFilename(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  int
		name     string
	}{
		{"0001_create_categories.sql", true, 1, "create_categories"},
		{"0012_add_index.sql", true, 12, "add_index"},
		{"001_invalid.sql", false, 0, ""},       // wrong number format
		{"0001_test", false, 0, ""},             // missing .sql
		{"0001.sql", false, 0, ""},              // missing name
		{"invalid_0001_test.sql", false, 0, ""}, // wrong order
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			version, name, ok := parseMigrationFilename(tt.filename)
			if ok != tt.valid || version != tt.version || name != tt.name {
				t.Errorf("parseMigrationFilename(%q) = %d, %q, %v; want %d, %q, %v",
					tt.filename, version, name, ok, tt.version, tt.name, tt.valid)
			}
		})
	}
}

func TestLoadMigrations(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"0002_second.sql": "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.b` (id STRING);",
		"0001_first.sql":  "CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.a` (id STRING);",
		"README.md":       "not a migration",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}

	migrations, err := loadMigrations(dir, "proj", "ds")
	if err != nil {
		t.Fatalf("loadMigrations failed: %v", err)
	}
	if len(migrations) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(migrations))
	}
	if migrations[0].Version != 1 || migrations[1].Version != 2 {
		t.Errorf("expected migrations sorted by version, got %d, %d", migrations[0].Version, migrations[1].Version)
	}
	if !strings.Contains(migrations[0].SQL, "`proj.ds.a`") {
		t.Errorf("placeholders not replaced: %s", migrations[0].SQL)
	}

	again, _ := loadMigrations(dir, "other", "dataset")
	if again[0].Checksum != migrations[0].Checksum {
		t.Error("checksum should not depend on project or dataset")
	}
}

func TestPendingMigrations(t *testing.T) {
	migrations := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}
	applied := []AppliedMigration{{Version: 1}, {Version: 3}}

	pending := pendingMigrations(migrations, applied)
	if len(pending) != 1 || pending[0].Version != 2 {
		t.Errorf("expected only version 2 pending, got %+v", pending)
	}
}

func TestRepositoryMigrationsAreValid(t *testing.T) {
	migrations, err := loadMigrations(filepath.Join("..", "..", "migrations", "bigquery"), "p", "d")
	if err != nil {
		t.Fatalf("loadMigrations failed: %v", err)
	}
	if len(migrations) == 0 {
		t.Fatal("expected repository migrations")
	}
	for i, mig := range migrations {
		if mig.Version != i+1 {
			t.Errorf("migration %s: version %d, want %d", mig.Filename, mig.Version, i+1)
		}
		if strings.Contains(mig.SQL, "{{") {
			t.Errorf("migration %s has unreplaced placeholders", mig.Filename)
		}
	}
}
