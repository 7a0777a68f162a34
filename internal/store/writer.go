package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Persister accepts fire-and-forget writes. Callers never wait on storage.
type Persister interface {
	Put(key string, v any) error
}

// saveTimeout bounds a single background Save.
const saveTimeout = 5 * time.Second

// Writer persists JSON values to a KV on a background goroutine. Only the
// latest value per key is kept while a write is pending, so bursts of
// mutations collapse into one Save per key.
type Writer struct {
	kv     KV
	logger *slog.Logger

	mu      sync.Mutex
	pending map[string][]byte
	closed  bool

	wake     chan struct{}
	flushReq chan chan error
	done     chan struct{}
	wg       sync.WaitGroup

	// OnError is called from the writer goroutine for every failed Save.
	OnError func(error)

	errMu   sync.Mutex
	lastErr error
}

// NewWriter starts a background writer over kv.
func NewWriter(kv KV, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		kv:       kv,
		logger:   logger,
		pending:  make(map[string][]byte),
		wake:     make(chan struct{}, 1),
		flushReq: make(chan chan error),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w
}

// Put encodes v and queues it for persistence under key. Encoding errors are
// returned immediately; storage errors surface through Err and OnError.
func (w *Writer) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWriterClosed
	}
	w.pending[key] = data
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
	return nil
}

// Flush blocks until every value queued before the call has been attempted.
// It returns the first error of that pass.
func (w *Writer) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case w.flushReq <- reply:
	case <-w.done:
		return ErrWriterClosed
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the most recent persistence failure, if any.
func (w *Writer) Err() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.lastErr
}

// ClearErr forgets the recorded persistence failure.
func (w *Writer) ClearErr() {
	w.errMu.Lock()
	w.lastErr = nil
	w.errMu.Unlock()
}

// Close stops accepting writes, flushes what is pending and waits for the
// background goroutine. It returns the last recorded failure.
func (w *Writer) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWriterClosed
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	w.wg.Wait()
	return w.Err()
}

func (w *Writer) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.wake:
			w.flushPending()
		case reply := <-w.flushReq:
			reply <- w.flushPending()
		case <-w.done:
			w.flushPending()
			return
		}
	}
}

// flushPending writes the current batch in key order. Failed keys go back
// into pending unless a newer value arrived meanwhile, so the next pass
// retries them.
func (w *Writer) flushPending() error {
	w.mu.Lock()
	batch := w.pending
	w.pending = make(map[string][]byte)
	w.mu.Unlock()

	if len(batch) == 0 {
		return nil
	}

	keys := make([]string, 0, len(batch))
	for k := range batch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var first error
	for _, k := range keys {
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		err := w.kv.Save(ctx, k, batch[k])
		cancel()
		if err == nil {
			continue
		}

		err = fmt.Errorf("%w: %w", ErrPersistence, err)
		w.logger.Warn("persist failed", "key", k, "error", err)
		w.recordErr(err)
		if first == nil {
			first = err
		}

		w.mu.Lock()
		if _, newer := w.pending[k]; !newer {
			w.pending[k] = batch[k]
		}
		w.mu.Unlock()
	}
	return first
}

func (w *Writer) recordErr(err error) {
	w.errMu.Lock()
	w.lastErr = err
	w.errMu.Unlock()
	if w.OnError != nil {
		w.OnError(err)
	}
}

// LoadJSON decodes the value stored under key into v. It reports false with
// a nil error when the key has never been written.
func LoadJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	data, err := kv.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
