package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/wordspark/internal/catalog"
	"github.com/abhisek/wordspark/internal/config"
	"github.com/abhisek/wordspark/internal/stats"
	"github.com/abhisek/wordspark/internal/store"
	"github.com/abhisek/wordspark/internal/syncledger"
)

// appEnv is the opened store plus every component loaded from it.
type appEnv struct {
	cfg    config.Config
	dbPath string
	logger *slog.Logger

	kv     store.KV
	writer *store.Writer

	ledger *syncledger.Ledger
	items  *catalog.ItemCatalog
	cols   *catalog.CollectionCatalog
	stats  *stats.Aggregator

	logFile *os.File
}

// openEnv opens the store and loads the catalogs, ledger and statistics.
// When logToFile is set, logs go to wordspark.log next to the database
// instead of stderr.
func openEnv(cmd *cobra.Command, logToFile bool) (*appEnv, error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	env := &appEnv{cfg: cfg}

	if cfg.Backend != store.BackendMemory {
		if env.dbPath, err = resolveDBPath(cfg); err != nil {
			return nil, fmt.Errorf("resolve DB path: %w", err)
		}
	}

	var logOut io.Writer = os.Stderr
	if logToFile && env.dbPath != "" {
		f, err := os.OpenFile(logPath(env.dbPath), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		env.logFile = f
		logOut = f
	}
	level, _ := cfg.Level()
	env.logger = slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: level}))

	loc, _ := cfg.Loc()

	if env.kv, err = store.Open(ctx, cfg.Backend, env.dbPath); err != nil {
		env.closeLog()
		return nil, fmt.Errorf("open store: %w", err)
	}
	env.writer = store.NewWriter(env.kv, env.logger)

	if err := env.load(ctx, loc); err != nil {
		env.Close()
		return nil, err
	}
	env.logger.Debug("store opened", "backend", cfg.Backend, "path", env.dbPath)
	return env, nil
}

func (e *appEnv) load(ctx context.Context, loc *time.Location) error {
	var err error
	if e.ledger, err = syncledger.New(ctx, e.kv, e.writer, syncledger.WithLogger(e.logger)); err != nil {
		return err
	}
	if e.items, err = catalog.NewItemCatalog(ctx, e.kv, e.writer, e.ledger, catalog.WithLogger(e.logger)); err != nil {
		return err
	}
	if e.cols, err = catalog.NewCollectionCatalog(ctx, e.kv, e.writer, e.ledger, e.items, catalog.WithLogger(e.logger)); err != nil {
		return err
	}
	if e.stats, err = stats.New(ctx, e.kv, e.writer, stats.WithLogger(e.logger), stats.WithLocation(loc)); err != nil {
		return err
	}
	return nil
}

// pool is the session's view of the catalogs.
func (e *appEnv) pool() catalog.Pool {
	return catalog.Pool{Items: e.items, Collections: e.cols}
}

// Close drains pending writes and closes the store.
func (e *appEnv) Close() error {
	var errs []error
	if e.writer != nil {
		if err := e.writer.Close(); err != nil && !errors.Is(err, store.ErrWriterClosed) {
			errs = append(errs, fmt.Errorf("flush writes: %w", err))
		}
	}
	if e.kv != nil {
		if err := e.kv.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	e.closeLog()
	return errors.Join(errs...)
}

func (e *appEnv) closeLog() {
	if e.logFile != nil {
		e.logFile.Close()
		e.logFile = nil
	}
}

// withEnv opens the environment, runs fn and closes it, reporting the first
// error.
func withEnv(cmd *cobra.Command, fn func(e *appEnv) error) error {
	env, err := openEnv(cmd, false)
	if err != nil {
		return err
	}
	runErr := fn(env)
	closeErr := env.Close()
	if runErr != nil {
		return runErr
	}
	return closeErr
}

func logPath(dbPath string) string {
	return strings.TrimSuffix(dbPath, filepath.Ext(dbPath)) + ".log"
}
