// Package sync reconciles the local registry files with the remote document store.
//
// # Overview
//
// The local JSON files are the source of truth. A run makes each remote
// collection match them:
//
//	blockchains/*.json  → chains   (keyed by chainId)
//	                    → assets   (derived, keyed by upper-cased symbol)
//	projects/*.json     → projects (keyed by name)
//
// For every kind the syncer opens one store transaction, reads the whole
// collection, diffs it against the local records and buffers the deletes,
// inserts and updates. The store commits them together or not at all.
//
// # Usage
//
//	store, err := docstore.Open(ctx, docstore.Options{URL: "file:.regsync/registry.db"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	syncer := sync.New(store, sync.Options{})
//	summary, err := syncer.Run(ctx, "../blockchains", "../projects")
//
// # Error handling
//
//   - A missing or empty directory is logged and that kind is skipped.
//   - A file that does not parse stops that kind; the error is returned by Run
//     after the remaining kinds have run.
//   - A failed transaction is logged and recorded in the kind's Outcome. It
//     does not stop the other kinds and Run does not return it as an error.
//   - Transactions are never retried; the next run converges instead.
//
// # Dry runs
//
// With Options.DryRun the diff is computed inside the transaction as usual
// but nothing is buffered, so the store is left untouched. The Outcome still
// lists the keys that would be written.
package sync
