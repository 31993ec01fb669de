package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/glebarez/sqlite"
	"github.com/jon4hz/astroadvisor/internal/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InMemoryPath selects a private in-memory SQLite database.
const InMemoryPath = ":memory:"

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint.
	ErrDuplicate = errors.New("duplicate record")
)

// DB is the full set of persistence capabilities used by the engine.
type DB interface {
	UserDB
	ReadingDB
	TraditionDB
	HistoryDB
	PreferencesDB
	StatsDB

	// Transaction runs fn inside a database transaction. The transaction is
	// rolled back if fn returns an error or panics and committed otherwise.
	Transaction(ctx context.Context, fn func(tx DB) error) error
	Ping(ctx context.Context) error
	Close() error
}

var _ DB = (*Client)(nil) // Ensure Client implements DB

// Client wraps the gorm.DB instance.
type Client struct {
	db *gorm.DB
}

// Page describes an offset based page of results.
type Page struct {
	Skip  int
	Limit int
}

// SortOrder is the order in which lists are returned.
type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

// New creates a new database connection and performs migrations.
func New(cfg *config.DatabaseConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}

	gormCfg := &gorm.Config{
		Logger:         newQueryLogger(log.Default().WithPrefix("gorm")),
		TranslateError: true,
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.Driver {
	case config.DatabaseDriverPostgres:
		db, err = gorm.Open(postgres.Open(cfg.URL), gormCfg)
	case config.DatabaseDriverSQLite, "":
		db, err = openSQLite(cfg.Path, gormCfg)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	switch {
	case cfg.Path == InMemoryPath && cfg.Driver != config.DatabaseDriverPostgres:
		// every connection would otherwise see its own empty database
		sqlDB.SetMaxOpenConns(1)
	case cfg.Driver == config.DatabaseDriverPostgres:
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	c := &Client{db: db}
	if err := c.Migrate(); err != nil {
		return nil, err
	}

	return c, nil
}

// newQueryLogger routes gorm warnings through l. Missing records are expected
// by the lookups and are not logged, query values are never printed.
func newQueryLogger(l *log.Logger) logger.Interface {
	return logger.New(
		l.StandardLog(log.StandardLogOptions{ForceLevel: log.WarnLevel}),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
		},
	)
}

func openSQLite(path string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	dsn := "file::memory:"
	if path != InMemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path
	}
	return gorm.Open(sqlite.Open(dsn+"?_pragma=foreign_keys(1)"), gormCfg)
}

// models lists every table in creation order.
func models() []any {
	return []any{
		&User{},
		&Reading{},
		&Philosophy{},
		&Religion{},
		&AstrologicalSystem{},
		&UserHistory{},
		&UserPreferences{},
	}
}

// Migrate creates or updates the schema.
func (c *Client) Migrate() error {
	if err := c.db.AutoMigrate(models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Reset drops every table and recreates the schema.
func (c *Client) Reset(ctx context.Context) error {
	tables := models()
	// drop dependents before the tables they reference
	for i := len(tables) - 1; i >= 0; i-- {
		if err := c.db.WithContext(ctx).Migrator().DropTable(tables[i]); err != nil {
			return fmt.Errorf("failed to drop table: %w", err)
		}
	}
	return c.Migrate()
}

// Transaction implements DB.
func (c *Client) Transaction(ctx context.Context, fn func(tx DB) error) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Client{db: tx})
	})
}

// Ping checks that the database is reachable.
func (c *Client) Ping(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (c *Client) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}

// translateError maps driver specific errors onto the package sentinels.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}

func (p Page) apply(db *gorm.DB) *gorm.DB {
	if p.Skip > 0 {
		db = db.Offset(p.Skip)
	}
	if p.Limit > 0 {
		db = db.Limit(p.Limit)
	}
	return db
}

func isDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicate)
}
