package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/trebuchet-org/weekvote/internal/domain"
	"github.com/trebuchet-org/weekvote/internal/domain/config"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DatabaseFile is the sqlite file name inside the data directory
const DatabaseFile = "weekvote.sqlite"

// Store is the sqlite-backed record store. It implements every store port of
// the use case layer.
type Store struct {
	db  *gorm.DB
	log *slog.Logger
}

// NewStore opens the store under cfg.DataDir. An empty DataDir opens a shared
// in-memory database.
func NewStore(cfg *config.RuntimeConfig, log *slog.Logger) (*Store, error) {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	dsn := "file::memory:?cache=shared"
	if cfg.DataDir != "" {
		if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		// WAL so readers never block the writer; busy_timeout covers other processes
		opts := "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
		dsn = fmt.Sprintf("file:%s?%s", filepath.Join(cfg.DataDir, DatabaseFile), opts)
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite has a single writer; one connection keeps in-process writers queued
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	s := &Store{db: db, log: log.With("component", "store")}
	if err := s.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	for _, model := range []any{&proposalRow{}, &voteRow{}, &rewardRow{}, &itemRow{}} {
		s.log.Debug("migrating table", "model", fmt.Sprintf("%T", model))
		if err := s.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}
	// At most one winner per week, whatever path marks it
	return s.db.Exec(
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_proposals_week_winner ON proposals(week) WHERE is_winner",
	).Error
}

// Close releases the database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type txKey struct{}

// RunInTx runs fn inside one transaction. Store calls made with the context
// handed to fn join it; nested calls reuse the outer transaction.
func (s *Store) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
	return classify(err)
}

// conn returns the transaction bound to ctx or the plain handle
func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

// classify maps lock contention onto domain.ErrStorageConflict
func classify(err error) error {
	if err == nil || errors.Is(err, domain.ErrStorageConflict) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database table is locked") {
		return fmt.Errorf("%w: %v", domain.ErrStorageConflict, err)
	}
	return err
}

// notFound translates gorm's missing-record error
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return classify(err)
}
