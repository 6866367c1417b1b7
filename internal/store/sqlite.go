package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"faqsearch/pkg/faq"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// Open opens (creating if needed) a SQLite-backed store at dbPath.
// Use ":memory:" for an ephemeral store in tests.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sqlx.Connect(DriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL for concurrent readers during ingestion writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	// SQLite benefits from a single writer connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// entryRow is the sqlx scan target for the faqs/embeddings join.
type entryRow struct {
	ID        string         `db:"id"`
	Question  string         `db:"question"`
	Answer    string         `db:"answer"`
	Category  string         `db:"category"`
	Vector    []byte         `db:"vector"`
	Dimension sql.NullInt64  `db:"dimension"`
	Provider  sql.NullString `db:"provider"`
}

func (r *entryRow) toEntry() *faq.Entry {
	e := &faq.Entry{
		ID:       r.ID,
		Question: r.Question,
		Answer:   r.Answer,
		Category: r.Category,
	}
	if len(r.Vector) > 0 {
		e.Embedding = deserializeVector(r.Vector)
	}
	return e
}

const listQuery = `
	SELECT f.id, f.question, f.answer, f.category, e.vector, e.dimension, e.provider
	FROM faqs f
	LEFT JOIN embeddings e ON e.faq_id = f.id
`

// ListAll returns every entry in stable insertion order.
func (s *SQLiteStore) ListAll(ctx context.Context) ([]*faq.Entry, error) {
	var rows []entryRow
	if err := s.db.SelectContext(ctx, &rows, listQuery+" ORDER BY f.position ASC, f.id ASC"); err != nil {
		return nil, fmt.Errorf("failed to list faqs: %w", err)
	}

	entries := make([]*faq.Entry, len(rows))
	for i := range rows {
		entries[i] = rows[i].toEntry()
	}
	return entries, nil
}

// GetByID returns one entry or faq.ErrNotFound.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*faq.Entry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row, listQuery+" WHERE f.id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, faq.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get faq %s: %w", id, err)
	}
	return row.toEntry(), nil
}

// Upsert inserts or replaces an entry's document fields. When the question
// text of an existing entry changes, its cached vector is dropped — it no
// longer describes the stored text.
func (s *SQLiteStore) Upsert(ctx context.Context, entry *faq.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var prevQuestion string
	err = tx.GetContext(ctx, &prevQuestion, "SELECT question FROM faqs WHERE id = ?", entry.ID)
	exists := err == nil
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check faq %s: %w", entry.ID, err)
	}

	now := time.Now()
	if exists {
		_, err = tx.ExecContext(ctx, `
			UPDATE faqs SET question = ?, answer = ?, category = ?, updated_at = ?
			WHERE id = ?`,
			entry.Question, entry.Answer, entry.Category, now, entry.ID)
		if err != nil {
			return fmt.Errorf("failed to update faq %s: %w", entry.ID, err)
		}
		if prevQuestion != entry.Question {
			if _, err := tx.ExecContext(ctx, "DELETE FROM embeddings WHERE faq_id = ?", entry.ID); err != nil {
				return fmt.Errorf("failed to drop stale embedding for %s: %w", entry.ID, err)
			}
		}
	} else {
		if err := insertEntry(ctx, tx, entry, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Append inserts a new entry; the id must be unused.
func (s *SQLiteStore) Append(ctx context.Context, entry *faq.Entry) error {
	if err := entry.Validate(); err != nil {
		return err
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var one int
	err = tx.GetContext(ctx, &one, "SELECT 1 FROM faqs WHERE id = ?", entry.ID)
	if err == nil {
		return fmt.Errorf("%w: %s", faq.ErrAlreadyExists, entry.ID)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to check faq %s: %w", entry.ID, err)
	}

	if err := insertEntry(ctx, tx, entry, time.Now()); err != nil {
		return err
	}
	return tx.Commit()
}

func insertEntry(ctx context.Context, tx *sqlx.Tx, entry *faq.Entry, now time.Time) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO faqs (id, question, answer, category, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, (SELECT COALESCE(MAX(position), -1) + 1 FROM faqs), ?, ?)`,
		entry.ID, entry.Question, entry.Answer, entry.Category, now, now)
	if err != nil {
		return fmt.Errorf("failed to insert faq %s: %w", entry.ID, err)
	}
	return nil
}

// Count returns the number of stored entries.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM faqs"); err != nil {
		return 0, fmt.Errorf("failed to count faqs: %w", err)
	}
	return n, nil
}

// SaveEmbedding stores the vector for an entry, replacing any previous one.
func (s *SQLiteStore) SaveEmbedding(ctx context.Context, faqID string, vector []float32, provider, model string) error {
	if len(vector) == 0 {
		return fmt.Errorf("empty vector for faq %s", faqID)
	}

	// The foreign key rejects vectors for ids that were never stored.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO embeddings (faq_id, vector, dimension, provider, model, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(faq_id) DO UPDATE SET
			vector = excluded.vector,
			dimension = excluded.dimension,
			provider = excluded.provider,
			model = excluded.model,
			created_at = excluded.created_at`,
		faqID, serializeVector(vector), len(vector), provider, model, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save embedding for %s: %w", faqID, err)
	}
	return nil
}

// CountEmbedded returns how many entries have a cached vector.
func (s *SQLiteStore) CountEmbedded(ctx context.Context) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM embeddings"); err != nil {
		return 0, fmt.Errorf("failed to count embeddings: %w", err)
	}
	return n, nil
}

// DeleteEmbeddings drops every cached vector.
func (s *SQLiteStore) DeleteEmbeddings(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM embeddings"); err != nil {
		return fmt.Errorf("failed to delete embeddings: %w", err)
	}
	return nil
}
