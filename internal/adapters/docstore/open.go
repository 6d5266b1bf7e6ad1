package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "modernc.org/sqlite"

	"chitfund/internal/adapters/http/perf"
	"chitfund/internal/adapters/storage"
)

// Backend names accepted by Open.
const (
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

const (
	defaultSQLitePath  = "chitfund.db"
	defaultPostgresDSN = "postgres://localhost/chitfund?sslmode=disable"
	sqlitePragmas      = "_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Options configures Open.
type Options struct {
	Backend   string
	DSN       string
	Collector *perf.Collector
	SlowQuery time.Duration
}

// Handle is an opened store. Close releases the underlying connection pool.
type Handle struct {
	Client Client
	db     *storage.TimedDB
}

// Close closes the database, if any.
func (h *Handle) Close() error {
	if h.db == nil {
		return nil
	}
	return h.db.Close()
}

// Ping verifies the backing database is reachable.
func (h *Handle) Ping(ctx context.Context) error {
	if h.db == nil {
		return nil
	}
	return h.db.PingContext(ctx)
}

// Open connects to the configured backend, migrates it and returns a Handle.
// PRE: opts.Backend is one of memory, sqlite, postgres (empty means sqlite)
// POST: Handle.Client is ready for use
func Open(ctx context.Context, opts Options) (*Handle, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	var driver, dsn string
	var dialect Dialect
	switch backend {
	case BackendMemory:
		return &Handle{Client: NewMemoryClient()}, nil
	case "", BackendSQLite:
		driver, dialect = storage.DriverSQLite, SQLiteDialect
		dsn = sqliteDSN(opts.DSN)
	case BackendPostgres:
		driver, dialect = storage.DriverPostgres, PostgresDialect
		dsn = opts.DSN
		if dsn == "" {
			dsn = defaultPostgresDSN
		}
	default:
		return nil, fmt.Errorf("%w: %s", storage.ErrUnsupportedDriver, opts.Backend)
	}

	openMu.Lock()
	db, err := sqlOpen(driver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", backend, err)
	}
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping %s: %w", backend, err)
	}
	if err := storage.MigrateDB(ctx, db, driver); err != nil {
		db.Close()
		return nil, err
	}

	timed := storage.NewTimedDB(db, opts.Collector, opts.SlowQuery)
	return &Handle{Client: NewSQLClient(timed, dialect), db: timed}, nil
}

// sqliteDSN appends the WAL pragmas to file databases unless the caller
// supplied a query string.
func sqliteDSN(dsn string) string {
	if dsn == "" {
		dsn = defaultSQLitePath
	}
	if strings.Contains(dsn, "?") || strings.Contains(dsn, ":memory:") {
		return dsn
	}
	return dsn + "?" + sqlitePragmas
}

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
