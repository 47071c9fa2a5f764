// Package postgres is the server storage backend, built on gorm. The
// schema is embedded and migrated with sql-migrate when the store opens.
package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gabapcia/walletsync/internal/pkg/logger"

	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Store persists accounts, keychains, operations, blocks and synchronizer
// states in PostgreSQL.
type Store struct {
	db *gorm.DB
}

// Options tunes the connection pool.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// gormWriter routes gorm's log lines to the application logger.
type gormWriter struct{}

func (gormWriter) Printf(format string, args ...any) {
	logger.Warn(context.Background(), fmt.Sprintf(format, args...), "component", "gorm")
}

// Open connects to dsn, applies the pending migrations and returns the store.
func Open(ctx context.Context, dsn string, opts Options) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.New(gormWriter{}, gormlogger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}

	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}

	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	root, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return nil, err
	}

	n, err := migrate.Exec(sqlDB, "postgres", &migrate.HttpFileSystemMigrationSource{FileSystem: http.FS(root)}, migrate.Up)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	logger.Info(ctx, "database migrated", "migrations.applied", n)
	return &Store{db: db}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
