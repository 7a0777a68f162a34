package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendBolt   = "bolt"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

var (
	// ErrNotFound is returned by Load when no value exists under the key.
	ErrNotFound = errors.New("key not found")

	// ErrStorageClosed is returned when the underlying database is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrPersistence wraps write failures reported by the background writer.
	ErrPersistence = errors.New("persistence failure")

	// ErrWriterClosed is returned by Put after Close.
	ErrWriterClosed = errors.New("writer closed")
)

// KV is the durable key-value store the practice engine persists into.
// Values are opaque bytes; callers own the encoding.
type KV interface {
	// Save stores value under key, replacing any previous value.
	Save(ctx context.Context, key string, value []byte) error

	// Load returns the value stored under key, or ErrNotFound.
	Load(ctx context.Context, key string) ([]byte, error)

	// Close releases the underlying resources.
	Close() error
}

// Open opens the KV backend named by backend at path.
func Open(ctx context.Context, backend, path string) (KV, error) {
	switch backend {
	case BackendBolt, "":
		return OpenBolt(ctx, path)
	case BackendSQLite:
		return OpenSQLite(ctx, path)
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q", backend)
	}
}

// DefaultDBPath resolves the database file path in priority order:
// 1. WORDSPARK_DB environment variable
// 2. $XDG_DATA_HOME/wordspark/wordspark.db
// 3. ~/.local/share/wordspark/wordspark.db
func DefaultDBPath() (string, error) {
	if p := os.Getenv("WORDSPARK_DB"); p != "" {
		return p, EnsureDir(p)
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}

	p := filepath.Join(dataHome, "wordspark", "wordspark.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the parent directory of path if it doesn't exist.
func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}
