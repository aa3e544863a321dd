package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nasik90/listmarket/internal/app/logger"
	"github.com/nasik90/listmarket/internal/app/storage"
	"github.com/pressly/goose"
	"go.uber.org/zap"
)

const (
	documentID = 1
	txAttempts = 5
)

// Store keeps the document as a single JSONB row. Update holds the row lock
// for the whole read-modify-write cycle.
type Store struct {
	conn *sql.DB
}

// NewStore applies pending migrations and seeds the document row. A failed
// migration is returned as is; applied versions are never rolled back here.
func NewStore(conn *sql.DB, migrationsDir string) (*Store, error) {
	s := &Store{conn: conn}
	if err := migrate(conn, migrationsDir); err != nil {
		return s, err
	}
	if _, err := conn.Exec(
		`INSERT INTO documents (id, body) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		documentID, `{}`); err != nil {
		return s, err
	}
	return s, nil
}

func migrate(conn *sql.DB, dir string) error {
	if err := goose.Up(conn, dir); err != nil {
		return fmt.Errorf("%w: migrations: %w", storage.ErrStorage, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) Load(ctx context.Context) (*storage.Document, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = $1`, documentID)
	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storage.NewDocument(), nil
		}
		return nil, fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return decodeOrEmpty(body), nil
}

func (s *Store) Save(ctx context.Context, doc *storage.Document) error {
	return s.Update(ctx, func(current *storage.Document) error {
		*current = *doc
		return nil
	})
}

func (s *Store) Update(ctx context.Context, fn func(doc *storage.Document) error) error {
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		err := s.update(ctx, fn)
		if err == nil {
			return struct{}{}, nil
		}
		if isRetryable(err) {
			logger.Log.Warn("document transaction conflict, retrying", zap.String("error", err.Error()))
			return struct{}{}, err
		}
		return struct{}{}, backoff.Permanent(err)
	}, backoff.WithBackOff(newTxBackOff()), backoff.WithMaxTries(txAttempts))
	return err
}

func (s *Store) update(ctx context.Context, fn func(doc *storage.Document) error) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `SELECT body FROM documents WHERE id = $1 FOR UPDATE`, documentID)
	var body []byte
	if err := row.Scan(&body); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	// Reads degrade to an empty document, writes refuse to replace the row.
	doc, err := storage.Decode(body)
	if err != nil {
		logger.Log.Error("malformed document row, refusing to overwrite", zap.String("error", err.Error()))
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}

	if err := fn(doc); err != nil {
		return err
	}

	data, err := storage.Encode(doc)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", storage.ErrStorage, err)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE documents SET body = $2, version = version + 1, updated_at = $3 WHERE id = $1
	`, documentID, data, time.Now()); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return nil
}

func decodeOrEmpty(body []byte) *storage.Document {
	doc, err := storage.Decode(body)
	if err != nil {
		logger.Log.Error("malformed document row, starting from empty state", zap.String("error", err.Error()))
		return storage.NewDocument()
	}
	return doc
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
		return true
	}
	return false
}

func newTxBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 50 * time.Millisecond
	b.MaxInterval = time.Second
	return b
}
