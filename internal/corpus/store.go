package corpus

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"docaudit/internal/aidetect"
)

var ErrEmptyDocument = errors.New("corpus document needs an id and text")

// Source supplies a corpus snapshot for one analysis call.
type Source interface {
	List(ctx context.Context) ([]aidetect.CorpusDocument, error)
}

// SQLiteStore keeps reference documents in a single sqlite table.
type SQLiteStore struct {
	db *sql.DB
}

func Open(path string) (*SQLiteStore, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Close() error { return s.db.Close() }

// Add inserts doc or replaces the text stored under the same id.
func (s *SQLiteStore) Add(ctx context.Context, doc aidetect.CorpusDocument) error {
	if strings.TrimSpace(doc.ID) == "" || strings.TrimSpace(doc.Text) == "" {
		return ErrEmptyDocument
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO corpus_documents(id, body, added_at) VALUES(?,?,?)
		 ON CONFLICT(id) DO UPDATE SET body = excluded.body, added_at = excluded.added_at`,
		doc.ID, doc.Text, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert corpus document: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM corpus_documents WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete corpus document: %w", err)
	}
	return nil
}

// List returns every document ordered by id.
func (s *SQLiteStore) List(ctx context.Context) ([]aidetect.CorpusDocument, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, body FROM corpus_documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query corpus: %w", err)
	}
	defer rows.Close()

	out := []aidetect.CorpusDocument{}
	for rows.Next() {
		var d aidetect.CorpusDocument
		if err := rows.Scan(&d.ID, &d.Text); err != nil {
			return nil, fmt.Errorf("scan corpus document: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate corpus: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	row := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM corpus_documents`)
	var count int
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return count, nil
}
