package store

import (
	"context"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/jmoiron/sqlx"
)

// CurrentSchemaVersion tracks the database schema version.
const CurrentSchemaVersion = "1.0.0"

// Migration represents a database schema migration.
type Migration struct {
	Version string
	Up      string
}

// AllMigrations contains all database migrations in semver order.
var AllMigrations = []Migration{
	{
		Version: "1.0.0",
		Up:      migrationV1Up,
	},
}

const migrationV1Up = `
-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version TEXT PRIMARY KEY,
    applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- FAQ documents
CREATE TABLE IF NOT EXISTS faqs (
    id TEXT PRIMARY KEY,
    question TEXT NOT NULL,
    answer TEXT NOT NULL,
    category TEXT NOT NULL DEFAULT 'general',
    position INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_faqs_category ON faqs(category);
CREATE INDEX IF NOT EXISTS idx_faqs_position ON faqs(position);

-- Cached embedding vectors, one per FAQ
CREATE TABLE IF NOT EXISTS embeddings (
    faq_id TEXT PRIMARY KEY,
    vector BLOB NOT NULL,
    dimension INTEGER NOT NULL,
    provider TEXT NOT NULL,
    model TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (faq_id) REFERENCES faqs(id) ON DELETE CASCADE
);
`

// ApplyMigrations brings the schema up to CurrentSchemaVersion. Versions
// are compared as semver so migrations always apply in order regardless of
// slice ordering.
func ApplyMigrations(ctx context.Context, db *sqlx.DB) error {
	// schema_version may not exist yet on a fresh database.
	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range AllMigrations {
		ver, err := semver.NewVersion(m.Version)
		if err != nil {
			return fmt.Errorf("invalid migration version %q: %w", m.Version, err)
		}
		if latest := applied[m.Version]; latest {
			continue
		}
		if _, err := db.ExecContext(ctx, m.Up); err != nil {
			return fmt.Errorf("migration %s failed: %w", ver, err)
		}
		if _, err := db.ExecContext(ctx,
			"INSERT OR IGNORE INTO schema_version (version) VALUES (?)", m.Version); err != nil {
			return fmt.Errorf("recording migration %s: %w", ver, err)
		}
	}
	return nil
}

func appliedVersions(ctx context.Context, db *sqlx.DB) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_version")
	if err != nil {
		// Fresh database: table is created by the first migration.
		return applied, nil
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Guard against a database written by a newer binary.
	current := semver.MustParse(CurrentSchemaVersion)
	for v := range applied {
		ver, err := semver.NewVersion(v)
		if err != nil {
			continue
		}
		if ver.GreaterThan(current) {
			return nil, fmt.Errorf("database schema %s is newer than supported %s", ver, current)
		}
	}
	return applied, nil
}
