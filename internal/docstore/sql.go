package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	_ "github.com/tursodatabase/go-libsql"

	"github.com/umee-network/wallet-registry/internal/log"
	"github.com/umee-network/wallet-registry/internal/record"
)

const (
	driverSQLite = "sqlite3"
	driverLibSQL = "libsql"

	defaultConnectAttempts = 3
	defaultConnectDelay    = time.Second
)

// Options configures Open.
type Options struct {
	// URL is either a local database ("file:path/to/db", or a bare path) or a
	// remote Turso database ("libsql://...", "https://...").
	URL string

	// AuthToken is sent to remote databases.
	AuthToken string

	// ConnectAttempts and ConnectDelay control how often the initial ping is
	// retried. Zero values mean 3 attempts one second apart.
	ConnectAttempts uint
	ConnectDelay    time.Duration

	Logger *log.Logger
}

// SQLStore is a Store backed by database/sql.
type SQLStore struct {
	conn   *sql.DB
	driver string
	logger *log.Logger
}

var _ Store = (*SQLStore)(nil)

// Open connects to the database named by opts.URL, pings it with retries and
// creates the schema if needed.
//
// The caller must call Close when done.
func Open(ctx context.Context, opts Options) (*SQLStore, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.ApplyPrefix("[docstore]")

	driver, dsn, err := dataSource(opts.URL, opts.AuthToken)
	if err != nil {
		return nil, err
	}

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	attempts := opts.ConnectAttempts
	if attempts == 0 {
		attempts = defaultConnectAttempts
	}
	delay := opts.ConnectDelay
	if delay == 0 {
		delay = defaultConnectDelay
	}

	err = retry.Do(func() error {
		return conn.PingContext(ctx)
	},
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("database not reachable, retrying", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLStore{
		conn:   conn,
		driver: driver,
		logger: logger,
	}

	if driver == driverSQLite {
		// WAL lets readers run while a commit is in progress.
		if _, err := conn.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := store.InitSchema(ctx); err != nil {
		_ = store.Close()
		return nil, err
	}

	logger.Debug("connected", "driver", driver)
	return store, nil
}

// dataSource picks the driver for a URL and builds its DSN.
func dataSource(rawURL, authToken string) (string, string, error) {
	if rawURL == "" {
		return "", "", fmt.Errorf("store url is empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid store url %q: %w", rawURL, err)
	}

	switch u.Scheme {
	case "libsql", "https", "http", "wss", "ws":
		if authToken != "" {
			q := u.Query()
			q.Set("authToken", authToken)
			u.RawQuery = q.Encode()
		}
		return driverLibSQL, u.String(), nil

	case "file", "":
		path := strings.TrimPrefix(rawURL, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", "", fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		dsn := "file:" + strings.TrimPrefix(rawURL, "file:")
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=busy_timeout(5000)&_txlock=immediate"
		return driverSQLite, dsn, nil
	}

	return "", "", fmt.Errorf("unsupported store url scheme %q", u.Scheme)
}

// InitSchema creates the documents table. It is idempotent.
func (s *SQLStore) InitSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		data TEXT NOT NULL,  -- JSON object
		version INTEGER NOT NULL DEFAULT 1,
		updated_at TEXT NOT NULL,
		PRIMARY KEY (collection, id)
	);
	`

	if _, err := s.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (s *SQLStore) Close() error {
	if s.conn == nil {
		return nil
	}

	if s.driver == driverSQLite {
		if _, err := s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
			s.logger.Warn("failed to checkpoint WAL", "error", err)
		}
	}

	if err := s.conn.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	s.conn = nil
	return nil
}

// Get reads a whole collection.
func (s *SQLStore) Get(ctx context.Context, collection string) ([]Snapshot, error) {
	return queryCollection(ctx, s.conn, collection)
}

// Count returns the number of documents in a collection.
func (s *SQLStore) Count(ctx context.Context, collection string) (int, error) {
	var count int
	err := s.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM documents WHERE collection = ?`, collection,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", collection, err)
	}
	return count, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryCollection(ctx context.Context, q queryer, collection string) ([]Snapshot, error) {
	rows, err := q.QueryContext(ctx,
		`SELECT id, data, version, updated_at FROM documents WHERE collection = ? ORDER BY id`,
		collection,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	defer rows.Close()

	var snapshots []Snapshot
	for rows.Next() {
		var (
			snap      Snapshot
			data      string
			updatedAt string
		)
		if err := rows.Scan(&snap.ID, &data, &snap.Version, &updatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan %s document: %w", collection, err)
		}

		snap.Data, err = record.Decode([]byte(data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s/%s: %w", collection, snap.ID, err)
		}
		snap.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)

		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", collection, err)
	}
	return snapshots, nil
}
