package snapshot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
)

// PostgresStore keeps the snapshot as a single row, for deployments that
// already run postgres and want the blob next to their other state.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres snapshot db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres snapshot db: %w", err)
	}
	store := &PostgresStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewPostgresStoreWithDB wraps an existing connection, used by tests.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) migrate() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS snapshot (
		id INT PRIMARY KEY CHECK (id = 1),
		blob BYTEA NOT NULL,
		saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`)
	if err != nil {
		return fmt.Errorf("migrate postgres snapshot schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) ([]byte, error) {
	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT blob FROM snapshot WHERE id = 1`).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoState
	}
	if err != nil {
		return nil, fmt.Errorf("load postgres snapshot: %w", err)
	}
	return blob, nil
}

func (s *PostgresStore) Save(ctx context.Context, blob []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO snapshot (id, blob, saved_at) VALUES (1, $1, now())
		 ON CONFLICT (id) DO UPDATE SET blob = EXCLUDED.blob, saved_at = EXCLUDED.saved_at`,
		blob)
	if err != nil {
		return fmt.Errorf("save postgres snapshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) Close() error { return s.db.Close() }
