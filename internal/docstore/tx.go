package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/umee-network/wallet-registry/internal/record"
)

type opKind int

const (
	opSet opKind = iota
	opUpdate
	opDelete
)

func (k opKind) String() string {
	switch k {
	case opSet:
		return "set"
	case opUpdate:
		return "update"
	case opDelete:
		return "delete"
	}
	return "unknown"
}

type write struct {
	kind       opKind
	collection string
	id         string
	data       record.Document
	merge      bool
}

type docKey struct {
	collection string
	id         string
}

// transaction records what was read and what should be written.
type transaction struct {
	store *SQLStore

	mu       sync.Mutex
	done     bool
	read     map[string]bool  // collections read in full
	versions map[docKey]int64 // version of every document seen
	writes   []write
}

// RunTransaction runs fn and commits its buffered writes in one SQL
// transaction. Writes to documents fn read are checked against the version
// that was read; any mismatch rolls everything back with ErrConflict.
// The transaction is not retried.
func (s *SQLStore) RunTransaction(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	tx := &transaction{
		store:    s,
		read:     map[string]bool{},
		versions: map[docKey]int64{},
	}

	err := fn(ctx, tx)

	tx.mu.Lock()
	tx.done = true
	writes := tx.writes
	tx.mu.Unlock()

	if err != nil {
		return err
	}
	if len(writes) == 0 {
		return nil
	}
	return s.commit(ctx, tx, writes)
}

func (tx *transaction) Get(ctx context.Context, collection string) ([]Snapshot, error) {
	tx.mu.Lock()
	done := tx.done
	tx.mu.Unlock()
	if done {
		return nil, ErrTxDone
	}

	snapshots, err := queryCollection(ctx, tx.store.conn, collection)
	if err != nil {
		return nil, err
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	tx.read[collection] = true
	for _, snap := range snapshots {
		tx.versions[docKey{collection, snap.ID}] = snap.Version
	}
	return snapshots, nil
}

func (tx *transaction) Set(collection, id string, doc record.Document, opts ...SetOption) error {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	return tx.buffer(write{kind: opSet, collection: collection, id: id, data: doc, merge: o.merge})
}

func (tx *transaction) Update(collection, id string, doc record.Document) error {
	return tx.buffer(write{kind: opUpdate, collection: collection, id: id, data: doc})
}

func (tx *transaction) Delete(collection, id string) error {
	return tx.buffer(write{kind: opDelete, collection: collection, id: id})
}

func (tx *transaction) buffer(w write) error {
	if w.collection == "" || w.id == "" {
		return fmt.Errorf("%s %s/%s: %w", w.kind, w.collection, w.id, ErrInvalidID)
	}
	if w.kind != opDelete && w.data == nil {
		return fmt.Errorf("%s %s/%s: document is nil", w.kind, w.collection, w.id)
	}

	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return ErrTxDone
	}
	if w.data != nil {
		w.data = w.data.Clone()
	}
	tx.writes = append(tx.writes, w)
	return nil
}

// expected returns the version the commit must find for key. seen is false
// when the transaction never read the document's collection, in which case
// no check applies. A zero version with seen set means "must not exist".
func (tx *transaction) expected(key docKey) (version int64, seen bool) {
	if v, ok := tx.versions[key]; ok {
		return v, true
	}
	return 0, tx.read[key.collection]
}

func (s *SQLStore) commit(ctx context.Context, tx *transaction, writes []write) error {
	sqlTx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = sqlTx.Rollback()
		}
	}()

	now := time.Now().UTC().Format(time.RFC3339Nano)

	// Versions move as writes apply, so a document written twice in one batch
	// is checked against its own earlier write.
	for _, w := range writes {
		key := docKey{w.collection, w.id}
		want, seen := tx.expected(key)

		current, exists, err := currentDocument(ctx, sqlTx, key)
		if err != nil {
			return err
		}

		if seen && (want != current.Version || (want == 0) == exists) {
			return fmt.Errorf("%s %s/%s: %w", w.kind, w.collection, w.id, ErrConflict)
		}

		switch w.kind {
		case opDelete:
			if !exists {
				break
			}
			if _, err := sqlTx.ExecContext(ctx,
				`DELETE FROM documents WHERE collection = ? AND id = ?`, w.collection, w.id,
			); err != nil {
				return fmt.Errorf("failed to delete %s/%s: %w", w.collection, w.id, err)
			}
			tx.versions[key] = 0

		case opUpdate, opSet:
			if w.kind == opUpdate && !exists {
				return fmt.Errorf("update %s/%s: %w", w.collection, w.id, ErrNotFound)
			}

			data := w.data
			if exists && w.merge {
				merged := current.Data.Clone()
				maps.Copy(merged, data)
				data = merged
			}

			encoded, err := data.Encode()
			if err != nil {
				return fmt.Errorf("failed to encode %s/%s: %w", w.collection, w.id, err)
			}

			version := current.Version + 1
			if _, err := sqlTx.ExecContext(ctx, `
				INSERT INTO documents (collection, id, data, version, updated_at)
				VALUES (?, ?, ?, ?, ?)
				ON CONFLICT(collection, id) DO UPDATE SET
					data = excluded.data,
					version = excluded.version,
					updated_at = excluded.updated_at
				`, w.collection, w.id, string(encoded), version, now,
			); err != nil {
				return fmt.Errorf("failed to write %s/%s: %w", w.collection, w.id, err)
			}
			tx.versions[key] = version
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	s.logger.Debug("committed transaction", "writes", len(writes))
	return nil
}

// currentDocument reads one document inside the commit transaction.
func currentDocument(ctx context.Context, sqlTx *sql.Tx, key docKey) (Snapshot, bool, error) {
	var (
		snap Snapshot
		data string
	)
	err := sqlTx.QueryRowContext(ctx,
		`SELECT data, version FROM documents WHERE collection = ? AND id = ?`,
		key.collection, key.id,
	).Scan(&data, &snap.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{ID: key.id}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to read %s/%s: %w", key.collection, key.id, err)
	}

	snap.ID = key.id
	snap.Data, err = record.Decode([]byte(data))
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("failed to decode %s/%s: %w", key.collection, key.id, err)
	}
	return snap, true, nil
}
