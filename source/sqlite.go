package source

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/IvanBrykalov/tagcloud/cloud"
)

// MemoryDSN opens a private in-memory database (tests, fixtures).
const MemoryDSN = ":memory:"

const schema = `
CREATE TABLE IF NOT EXISTS vocabularies (
	id TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS tags (
	vocabulary  TEXT NOT NULL REFERENCES vocabularies(id) ON DELETE CASCADE,
	tid         TEXT NOT NULL,
	name        TEXT NOT NULL,
	count       INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
	description TEXT NOT NULL DEFAULT '',
	link        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (vocabulary, tid)
);
CREATE INDEX IF NOT EXISTS idx_tags_vocabulary_count ON tags(vocabulary, count DESC);
`

// SQLiteOptions configures OpenSQLite.
type SQLiteOptions struct {
	// Path of the database file, or MemoryDSN.
	Path string
	// Limit caps the tags per cloud, most used first; 0 = no limit.
	Limit int
}

// SQLite reads clouds from a SQLite database: one vocabulary per cloud id,
// tags ordered by count (highest first) then name.
type SQLite struct {
	db    *sql.DB
	limit int
}

// OpenSQLite opens (creating if needed) the database and applies the schema.
func OpenSQLite(opt SQLiteOptions) (*SQLite, error) {
	if opt.Path == "" {
		return nil, errors.New("source: sqlite path is required")
	}
	if opt.Path != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(opt.Path), 0o755); err != nil {
			return nil, errors.Wrap(err, "creating db directory")
		}
	}

	db, err := sql.Open("sqlite", opt.Path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if opt.Path == MemoryDSN {
		// every connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "pinging database")
	}

	for _, p := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "setting pragma %q", p)
		}
	}
	s := &SQLite{db: db, limit: opt.Limit}
	if err := s.Migrate(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate applies the schema. It is idempotent.
func (s *SQLite) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return errors.Wrap(err, "applying schema")
}

// Close closes the database.
func (s *SQLite) Close() error { return s.db.Close() }

// Tags returns the tags of vocabulary id, or ErrUnknownCloud if the
// vocabulary does not exist. An existing vocabulary may be empty.
func (s *SQLite) Tags(ctx context.Context, id string) ([]cloud.Tag, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM vocabularies WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrUnknownCloud, "vocabulary %q", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "looking up vocabulary %q", id)
	}

	limit := -1 // SQLite: negative LIMIT means none
	if s.limit > 0 {
		limit = s.limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT tid, name, count, description, link
		FROM tags
		WHERE vocabulary = ?
		ORDER BY count DESC, name
		LIMIT ?`, id, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "querying tags of %q", id)
	}
	defer rows.Close()

	var tags []cloud.Tag
	for rows.Next() {
		var t cloud.Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Count, &t.Description, &t.Link); err != nil {
			return nil, errors.Wrap(err, "scanning tag")
		}
		t.Distributed = cloud.Distribute(t.Count)
		tags = append(tags, t)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(err, "reading tags of %q", id)
	}
	return tags, nil
}

// Put creates vocabulary id if needed and upserts tags by their ID
// (the name is used when ID is empty).
func (s *SQLite) Put(ctx context.Context, id string, tags ...cloud.Tag) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `INSERT OR IGNORE INTO vocabularies(id) VALUES (?)`, id); err != nil {
		return errors.Wrapf(err, "creating vocabulary %q", id)
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tags(vocabulary, tid, name, count, description, link)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(vocabulary, tid) DO UPDATE SET
			name = excluded.name,
			count = excluded.count,
			description = excluded.description,
			link = excluded.link`)
	if err != nil {
		return errors.Wrap(err, "preparing upsert")
	}
	defer stmt.Close()

	for _, t := range tags {
		tid := t.ID
		if tid == "" {
			tid = t.Name
		}
		if _, err = stmt.ExecContext(ctx, id, tid, t.Name, max(t.Count, 0), t.Description, t.Link); err != nil {
			return errors.Wrapf(err, "upserting tag %q", t.Name)
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit")
	}
	return nil
}

// Vocabularies lists every cloud id, sorted.
func (s *SQLite) Vocabularies(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM vocabularies ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "listing vocabularies")
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.Wrap(err, "scanning vocabulary")
		}
		ids = append(ids, id)
	}
	return ids, errors.Wrap(rows.Err(), "reading vocabularies")
}

var _ Source = (*SQLite)(nil)
