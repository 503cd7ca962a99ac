package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/finance-ledger/internal/config"
	"github.com/dvloznov/finance-ledger/internal/logger"
	"github.com/rs/zerolog"
	"google.golang.org/api/iterator"
)

// Migration represents a single migration file
type Migration struct {
	Version  int
	Name     string
	Filename string
	SQL      string
	Checksum string
}

// AppliedMigration represents a migration that has already been applied
type AppliedMigration struct {
	Version   int
	Name      string
	AppliedAt time.Time
	Checksum  string
	AppliedBy string
}

// migrationFilePattern matches migration files: 0001_name.sql
var migrationFilePattern = regexp.MustCompile(`^(\d{4})_(.+)\.sql$`)

func main() {
	var (
		envFile       = flag.String("env", "", "Path to a .env file (defaults to ./.env when present)")
		projectFlag   = flag.String("project", "", "GCP project ID (overrides BQ_PROJECT_ID)")
		datasetFlag   = flag.String("dataset", "", "BigQuery dataset ID (overrides BQ_DATASET_ID)")
		appliedBy     = flag.String("applied-by", "migrate-cli", "Name of the tool applying migrations")
		migrationsDir = flag.String("migrations", "migrations/bigquery", "Path to migrations directory")
		dryRun        = flag.Bool("dry-run", false, "List pending migrations without applying them")
	)
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	projectID := firstNonEmpty(*projectFlag, cfg.BigQuery.ProjectID)
	datasetID := firstNonEmpty(*datasetFlag, cfg.BigQuery.DatasetID)
	if projectID == "" {
		log.Fatal().Msg("No project: set -project or BQ_PROJECT_ID")
	}

	ctx := logger.WithContext(context.Background(), log)

	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create BigQuery client")
	}
	defer client.Close()

	m := &migrator{
		client:    client,
		projectID: projectID,
		datasetID: datasetID,
		appliedBy: *appliedBy,
		log:       log,
	}

	log.Info().Str("project", projectID).Str("dataset", datasetID).Msg("Connected to BigQuery")

	if err := m.run(ctx, *migrationsDir, *dryRun); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}

type migrator struct {
	client    *bigquery.Client
	projectID string
	datasetID string
	appliedBy string
	log       zerolog.Logger
}

func (m *migrator) run(ctx context.Context, dir string, dryRun bool) error {
	if err := m.ensureSchemaMigrationsTable(ctx); err != nil {
		return fmt.Errorf("ensuring schema_migrations table: %w", err)
	}

	migrations, err := loadMigrations(resolveMigrationsDir(dir), m.projectID, m.datasetID)
	if err != nil {
		return fmt.Errorf("reading migrations: %w", err)
	}
	m.log.Info().Int("count", len(migrations)).Msg("Found migration files")

	applied, err := m.appliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}
	m.log.Info().Int("count", len(applied)).Msg("Found already applied migrations")

	for _, am := range applied {
		for _, mig := range migrations {
			if mig.Version == am.Version && am.Checksum != "" && mig.Checksum != am.Checksum {
				m.log.Warn().
					Int("version", mig.Version).
					Str("name", mig.Name).
					Msg("Applied migration file has changed since it was applied")
			}
		}
	}

	pending := pendingMigrations(migrations, applied)
	if len(pending) == 0 {
		m.log.Info().Msg("No new migrations to apply. Database is up to date.")
		return nil
	}

	for _, mig := range pending {
		if dryRun {
			m.log.Info().Str("migration", mig.Filename).Msg("[PENDING]")
			continue
		}

		m.log.Info().Str("migration", mig.Filename).Msg("[RUN]")

		if err := m.exec(ctx, m.client.Query(mig.SQL)); err != nil {
			return fmt.Errorf("executing %s: %w", mig.Filename, err)
		}
		if err := m.recordMigration(ctx, mig); err != nil {
			return fmt.Errorf("recording %s: %w", mig.Filename, err)
		}

		m.log.Info().Str("migration", mig.Filename).Msg("[OK]")
	}

	if !dryRun {
		m.log.Info().Int("count", len(pending)).Msg("Successfully applied migrations")
	}
	return nil
}

func (m *migrator) table(name string) string {
	return "`" + m.projectID + "." + m.datasetID + "." + name + "`"
}

// exec runs a statement and waits for it to finish.
func (m *migrator) exec(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}

	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}

	return nil
}

// ensureSchemaMigrationsTable creates the dataset bookkeeping table if it doesn't exist
func (m *migrator) ensureSchemaMigrationsTable(ctx context.Context) error {
	return m.exec(ctx, m.client.Query(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			version       INT64 NOT NULL,
			name          STRING NOT NULL,
			applied_at    TIMESTAMP NOT NULL,
			checksum      STRING,
			applied_by    STRING
		)
	`, m.table("schema_migrations"))))
}

// appliedMigrations retrieves the list of already applied migrations
func (m *migrator) appliedMigrations(ctx context.Context) ([]AppliedMigration, error) {
	q := m.client.Query(fmt.Sprintf(`
		SELECT version, name, applied_at, checksum, applied_by
		FROM %s
		ORDER BY version ASC
	`, m.table("schema_migrations")))

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading applied migrations: %w", err)
	}

	var applied []AppliedMigration
	for {
		var row struct {
			Version   int64               `bigquery:"version"`
			Name      string              `bigquery:"name"`
			AppliedAt time.Time           `bigquery:"applied_at"`
			Checksum  bigquery.NullString `bigquery:"checksum"`
			AppliedBy bigquery.NullString `bigquery:"applied_by"`
		}

		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("iterating results: %w", err)
		}

		applied = append(applied, AppliedMigration{
			Version:   int(row.Version),
			Name:      row.Name,
			AppliedAt: row.AppliedAt,
			Checksum:  row.Checksum.StringVal,
			AppliedBy: row.AppliedBy.StringVal,
		})
	}

	return applied, nil
}

// recordMigration records a successfully applied migration in schema_migrations
func (m *migrator) recordMigration(ctx context.Context, mig Migration) error {
	q := m.client.Query(fmt.Sprintf(`
		INSERT INTO %s
		(version, name, applied_at, checksum, applied_by)
		VALUES (@version, @name, CURRENT_TIMESTAMP(), @checksum, @applied_by)
	`, m.table("schema_migrations")))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "version", Value: mig.Version},
		{Name: "name", Value: mig.Name},
		{Name: "checksum", Value: mig.Checksum},
		{Name: "applied_by", Value: m.appliedBy},
	}

	return m.exec(ctx, q)
}

// resolveMigrationsDir falls back to the repository root when run from cmd/migrate.
func resolveMigrationsDir(dir string) string {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if alt := filepath.Join("..", "..", dir); dirExists(alt) {
			return alt
		}
	}
	return dir
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// parseMigrationFilename extracts the version and name from 0001_name.sql.
func parseMigrationFilename(filename string) (version int, name string, ok bool) {
	matches := migrationFilePattern.FindStringSubmatch(filename)
	if matches == nil {
		return 0, "", false
	}
	version, err := strconv.Atoi(matches[1])
	if err != nil {
		return 0, "", false
	}
	return version, matches[2], true
}

// loadMigrations reads all migration files in dir, sorted by version.
// {{PROJECT_ID}} and {{DATASET_ID}} placeholders are substituted; the checksum
// is computed on the file content before substitution.
func loadMigrations(dir, projectID, datasetID string) ([]Migration, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []Migration
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		version, name, ok := parseMigrationFilename(file.Name())
		if !ok {
			continue
		}

		content, err := os.ReadFile(filepath.Join(dir, file.Name()))
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", file.Name(), err)
		}

		sql := strings.ReplaceAll(string(content), "{{PROJECT_ID}}", projectID)
		sql = strings.ReplaceAll(sql, "{{DATASET_ID}}", datasetID)

		migrations = append(migrations, Migration{
			Version:  version,
			Name:     name,
			Filename: file.Name(),
			SQL:      sql,
			Checksum: fmt.Sprintf("%x", sha256.Sum256(content)),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// pendingMigrations returns the migrations whose version has not been applied.
func pendingMigrations(migrations []Migration, applied []AppliedMigration) []Migration {
	done := make(map[int]bool, len(applied))
	for _, am := range applied {
		done[am.Version] = true
	}

	var pending []Migration
	for _, mig := range migrations {
		if !done[mig.Version] {
			pending = append(pending, mig)
		}
	}
	return pending
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
