package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/nasik90/listmarket/internal/app/logger"
	"github.com/nasik90/listmarket/internal/app/storage"
	"go.uber.org/zap"
)

const writeAttempts = 3

// Store keeps the document in a single JSON file. Every mutation goes through
// Update, which serializes writers with a mutex and re-reads the file first.
type Store struct {
	mu   sync.Mutex
	path string
}

func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) Load(ctx context.Context) (*storage.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.loadLocked()
}

func (s *Store) Save(ctx context.Context, doc *storage.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.saveLocked(doc)
}

// Update applies fn to a freshly loaded document and persists the result.
// Nothing is written when fn returns an error.
func (s *Store) Update(ctx context.Context, fn func(doc *storage.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	doc, err := s.loadLocked()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.saveLocked(doc)
}

func (s *Store) loadLocked() (*storage.Document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return storage.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", storage.ErrStorage, s.path, err)
	}
	doc, err := storage.Decode(data)
	if err == nil {
		return doc, nil
	}

	// Keep the unreadable file for inspection and continue from an empty state.
	aside := fmt.Sprintf("%s.corrupt-%d", s.path, time.Now().UnixNano())
	if renameErr := os.Rename(s.path, aside); renameErr != nil {
		logger.Log.Error("move malformed document aside",
			zap.String("path", s.path), zap.String("error", renameErr.Error()))
		return nil, fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	logger.Log.Error("malformed document, starting from empty state",
		zap.String("path", s.path), zap.String("moved_to", aside), zap.String("error", err.Error()))
	return storage.NewDocument(), nil
}

func (s *Store) saveLocked(doc *storage.Document) error {
	data, err := storage.Encode(doc)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", storage.ErrStorage, err)
	}
	_, err = backoff.Retry(context.Background(), func() (struct{}, error) {
		err := s.writeAtomic(data)
		if err != nil {
			logger.Log.Warn("write document", zap.String("path", s.path), zap.String("error", err.Error()))
		}
		return struct{}{}, err
	}, backoff.WithBackOff(newWriteBackOff()), backoff.WithMaxTries(writeAttempts))
	if err != nil {
		return fmt.Errorf("%w: %w", storage.ErrStorage, err)
	}
	return nil
}

// writeAtomic writes to a temporary file in the same directory and renames it
// over the target, so readers see either the old or the new document.
func (s *Store) writeAtomic(data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

func newWriteBackOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 20 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	return b
}
