package roster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the table backing PostgresStore.
const Schema = `
CREATE TABLE IF NOT EXISTS team_documents (
	id         TEXT PRIMARY KEY,
	body       JSONB NOT NULL,
	revision   BIGINT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresStore implements Store with one row per document in team_documents.
type PostgresStore struct {
	pool       *pgxpool.Pool
	documentID string
}

// NewPostgresStore creates a Store backed by the given connection pool.
func NewPostgresStore(pool *pgxpool.Pool, documentID string) *PostgresStore {
	return &PostgresStore{pool: pool, documentID: documentID}
}

// EnsureSchema creates the team_documents table if it does not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating team_documents table: %w", err)
	}
	return nil
}

// Get loads the document. A missing row reads as an empty roster at revision 0.
func (s *PostgresStore) Get(ctx context.Context) (*Document, error) {
	query := `SELECT body, revision FROM team_documents WHERE id = $1`

	var (
		body     []byte
		revision int64
	)
	err := s.pool.QueryRow(ctx, query, s.documentID).Scan(&body, &revision)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			doc := &Document{}
			doc.normalize()
			return doc, nil
		}
		return nil, fmt.Errorf("querying team document: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decoding team document: %w", err)
	}
	doc.Revision = revision
	doc.normalize()

	return &doc, nil
}

// Put upserts the document, conditional on the stored revision matching
// doc.Revision.
func (s *PostgresStore) Put(ctx context.Context, doc *Document) error {
	next := doc.Clone()
	next.Revision = doc.Revision + 1

	body, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encoding team document: %w", err)
	}

	query := `
		INSERT INTO team_documents (id, body, revision, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (id) DO UPDATE
		SET body = EXCLUDED.body, revision = EXCLUDED.revision, updated_at = now()
		WHERE team_documents.revision = $4`

	result, err := s.pool.Exec(ctx, query, s.documentID, body, next.Revision, doc.Revision)
	if err != nil {
		return fmt.Errorf("writing team document: %w", err)
	}

	if result.RowsAffected() == 0 {
		return ErrConflict
	}

	doc.Revision = next.Revision
	return nil
}
