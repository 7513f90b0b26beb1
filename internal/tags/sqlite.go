package tags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jeeftor/captionctl/internal/caption"
	"github.com/jeeftor/captionctl/internal/logging"

	// Pure-Go SQLite driver
	_ "modernc.org/sqlite"
)

// schemaVersion tracks the tag database layout
const schemaVersion = 1

const driverName = "sqlite"

// SQLiteStore serves tags from a SQLite database
type SQLiteStore struct {
	db     *sql.DB
	logger *logging.ContextualLogger
}

// OpenSQLite opens or creates the tag database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("tag database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create tag database dir: %w", err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, logger: logging.NewContextualLogger("tags", "sqlite")}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Debug("Tag database ready", "path", path)
	return s, nil
}

func (s *SQLiteStore) ensureSchema(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS tags (
			id      INTEGER PRIMARY KEY AUTOINCREMENT,
			source  TEXT NOT NULL,
			clip_id TEXT NOT NULL DEFAULT '',
			name    TEXT NOT NULL,
			phrases TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tags_source ON tags(source, clip_id);`,
	}
	for _, stmt := range ddl {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create tag schema: %w", err)
		}
	}

	var version string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = 'schema_version'`).Scan(&version)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = s.db.ExecContext(ctx, `INSERT INTO metadata(key, value) VALUES('schema_version', ?)`,
			strconv.Itoa(schemaVersion))
		if err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read schema version: %w", err)
	case version != strconv.Itoa(schemaVersion):
		return fmt.Errorf("unsupported tag database schema version %s", version)
	}
	return nil
}

// Import replaces the tags of every source in f. Records limited to clips get
// one row per clip. It returns the number of rows written.
func (s *SQLiteStore) Import(ctx context.Context, f *File) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	sources := make([]string, 0, len(f.Sources))
	for source := range f.Sources {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	rows := 0
	for _, source := range sources {
		if _, err := tx.ExecContext(ctx, `DELETE FROM tags WHERE source = ?`, source); err != nil {
			return 0, fmt.Errorf("clear source %s: %w", source, err)
		}
		for _, r := range f.Sources[source] {
			clips := r.Clips
			if len(clips) == 0 {
				clips = []string{""}
			}
			for _, clip := range clips {
				_, err := tx.ExecContext(ctx,
					`INSERT INTO tags(source, clip_id, name, phrases) VALUES(?, ?, ?, ?)`,
					source, clip, r.Name, r.Phrases)
				if err != nil {
					return 0, fmt.Errorf("insert tag %s/%s: %w", source, r.Name, err)
				}
				rows++
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit import: %w", err)
	}
	s.logger.Info("Imported tags", "sources", len(sources), "rows", rows)
	return rows, nil
}

// Tags returns the tags of source that apply to clipID
func (s *SQLiteStore) Tags(source, clipID string) ([]caption.Tag, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := `SELECT name, phrases FROM tags WHERE source = ? AND (clip_id = '' OR clip_id = ?) ORDER BY id`
	args := []any{source, clipID}
	if clipID == "" {
		query = `SELECT name, phrases FROM tags WHERE source = ? ORDER BY id`
		args = args[:1]
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var out []caption.Tag
	for rows.Next() {
		var t caption.Tag
		if err := rows.Scan(&t.Name, &t.PhraseString); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
