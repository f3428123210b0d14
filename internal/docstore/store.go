// Package docstore is a small document store with collections, snapshot reads
// and atomic, optimistically checked write batches.
//
// Documents live in a single SQL table:
//
//	documents(collection, id, data, version, updated_at)
//
// The same schema runs on a local SQLite file (ncruces/go-sqlite3) and on a
// remote Turso database (go-libsql). See Open for how the driver is chosen.
//
// Transactions follow the read-then-commit model of hosted document stores:
// reads inside RunTransaction see the current state and remember each
// document's version, writes are buffered, and on commit every write to a
// document that was read is checked against that version. If someone else
// changed the document in between, the whole batch is rolled back with
// ErrConflict.
package docstore

import (
	"context"
	"errors"
	"time"

	"github.com/umee-network/wallet-registry/internal/record"
)

var (
	// ErrConflict means a document changed between the snapshot read and commit.
	ErrConflict = errors.New("document changed since it was read")

	// ErrNotFound means Update targeted a document that does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrInvalidID is returned for an empty collection or document id.
	ErrInvalidID = errors.New("collection and id must not be empty")

	// ErrTxDone is returned when a transaction is used after its function returned.
	ErrTxDone = errors.New("transaction has already completed")
)

// Snapshot is a document as read from the store.
type Snapshot struct {
	ID        string
	Data      record.Document
	Version   int64
	UpdatedAt time.Time
}

// Store is a document store.
type Store interface {
	// RunTransaction calls fn with a new transaction and commits the writes
	// fn buffered if it returns nil. Nothing is written if fn returns an error.
	RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error

	// Get reads every document of a collection, ordered by id.
	Get(ctx context.Context, collection string) ([]Snapshot, error)

	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int, error)

	Close() error
}

// Transaction buffers writes until RunTransaction commits them.
type Transaction interface {
	Get(ctx context.Context, collection string) ([]Snapshot, error)
	Set(collection, id string, doc record.Document, opts ...SetOption) error

	// Update replaces an existing document. It fails with ErrNotFound on
	// commit if the document does not exist.
	Update(collection, id string, doc record.Document) error
	Delete(collection, id string) error
}

type setOptions struct {
	merge bool
}

// SetOption changes how Set writes a document.
type SetOption func(*setOptions)

// Merge makes Set merge the given top-level fields into the existing
// document instead of replacing it.
func Merge() SetOption {
	return func(o *setOptions) {
		o.merge = true
	}
}
