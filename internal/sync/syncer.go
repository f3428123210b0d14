package sync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/umee-network/wallet-registry/internal/diff"
	"github.com/umee-network/wallet-registry/internal/docstore"
	"github.com/umee-network/wallet-registry/internal/loader"
	"github.com/umee-network/wallet-registry/internal/log"
	"github.com/umee-network/wallet-registry/internal/record"
)

// Options configures a Syncer.
type Options struct {
	// Loader reads the record directories. Defaults to loader.New(0, Logger).
	Loader *loader.Loader

	// Logger defaults to log.Default().
	Logger *log.Logger

	// DryRun computes the diffs without writing anything.
	DryRun bool

	// RunID tags the log lines and the Summary. A random one is generated if empty.
	RunID string
}

// syncer implements the Syncer interface.
type syncer struct {
	store  docstore.Store
	loader *loader.Loader
	logger *log.Logger
	dryRun bool
	runID  string
}

// New creates a Syncer writing to store.
func New(store docstore.Store, opts Options) Syncer {
	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	ldr := opts.Loader
	if ldr == nil {
		ldr = loader.New(loader.DefaultConcurrency, logger)
	}

	return &syncer{
		store:  store,
		loader: ldr,
		logger: logger.ApplyPrefix("[sync]").With("run_id", runID),
		dryRun: opts.DryRun,
		runID:  runID,
	}
}

// SyncChains implements Syncer.SyncChains.
func (s *syncer) SyncChains(ctx context.Context, chains []record.Document) *Outcome {
	return s.syncCollection(ctx, KindChains, chains, record.ChainKey)
}

// SyncAssets implements Syncer.SyncAssets.
func (s *syncer) SyncAssets(ctx context.Context, chains []record.Document) *Outcome {
	return s.syncCollection(ctx, KindAssets, record.DeriveAssets(chains), record.AssetKey)
}

// SyncProjects implements Syncer.SyncProjects.
func (s *syncer) SyncProjects(ctx context.Context, projects []record.Document) *Outcome {
	return s.syncCollection(ctx, KindProjects, projects, record.ProjectKey)
}

// Run implements Syncer.Run.
func (s *syncer) Run(ctx context.Context, chainsDir, projectsDir string) (*Summary, error) {
	summary := &Summary{
		RunID:     s.runID,
		DryRun:    s.dryRun,
		StartedAt: time.Now(),
	}
	defer func() {
		summary.Duration = time.Since(summary.StartedAt)
	}()

	s.logger.Info("starting sync", "chains_dir", chainsDir, "projects_dir", projectsDir, "dry_run", s.dryRun)

	var loadErrs []error

	chains, err := s.loader.Load(ctx, chainsDir)
	if err != nil {
		s.logger.Error("failed to load chains", "error", err)
		loadErrs = append(loadErrs, fmt.Errorf("load chains: %w", err))
		summary.Outcomes = append(summary.Outcomes,
			(&Outcome{Kind: KindChains}).fail(err),
			(&Outcome{Kind: KindAssets}).fail(err),
		)
	} else {
		summary.Outcomes = append(summary.Outcomes, s.SyncChains(ctx, chains))
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Outcomes = append(summary.Outcomes, s.SyncAssets(ctx, chains))
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	projects, err := s.loader.Load(ctx, projectsDir)
	if err != nil {
		s.logger.Error("failed to load projects", "error", err)
		loadErrs = append(loadErrs, fmt.Errorf("load projects: %w", err))
		summary.Outcomes = append(summary.Outcomes, (&Outcome{Kind: KindProjects}).fail(err))
	} else {
		summary.Outcomes = append(summary.Outcomes, s.SyncProjects(ctx, projects))
	}
	if err := ctx.Err(); err != nil {
		return summary, err
	}

	s.logger.Info("sync finished", "failed", summary.Failed())
	return summary, errors.Join(loadErrs...)
}

// entry is a document with the key it is compared under and the id it is
// stored under. The two differ only for remote documents written under a
// non-normalized id, such as a lower-case asset symbol.
type entry struct {
	key string
	id  string
	doc record.Document
}

func entryKey(e entry) string { return e.key }

func entriesEqual(a, b entry) bool { return diff.DocumentsEqual(a.doc, b.doc) }

// syncCollection diffs local against the kind's collection and applies the
// result in one transaction.
func (s *syncer) syncCollection(ctx context.Context, kind Kind, local []record.Document, key func(record.Document) string) *Outcome {
	logger := s.logger.ApplyPrefix(fmt.Sprintf("[%s]", kind))
	outcome := &Outcome{Kind: kind}

	if len(local) == 0 {
		logger.Info("no local records, skipping")
		outcome.Status = StatusSkipped
		return outcome
	}

	localEntries := make([]entry, 0, len(local))
	for _, doc := range local {
		k := key(doc)
		if k == "" {
			logger.Warn("record has no key, ignoring", "name", doc.String(record.FieldName))
			continue
		}
		localEntries = append(localEntries, entry{key: k, id: k, doc: doc})
	}

	if len(localEntries) == 0 {
		logger.Warn("no local record has a key, skipping")
		outcome.Status = StatusSkipped
		return outcome
	}

	outcome.Local = distinctKeys(localEntries)
	collection := string(kind)

	err := s.store.RunTransaction(ctx, func(ctx context.Context, tx docstore.Transaction) error {
		snapshots, err := tx.Get(ctx, collection)
		if err != nil {
			return err
		}

		remoteEntries, duplicates := remoteIndex(snapshots, key)
		remoteIDs := make(map[string]string, len(remoteEntries))
		for _, e := range remoteEntries {
			remoteIDs[e.key] = e.id
		}

		result := diff.Compute(localEntries, remoteEntries, entryKey, entriesEqual)

		deleteIDs := duplicates
		for _, k := range result.Delete {
			deleteIDs = append(deleteIDs, remoteIDs[k])
		}
		slices.Sort(deleteIDs)

		outcome.Remote = len(snapshots)
		outcome.Counts = result.Counts()
		outcome.Counts.Delete = len(deleteIDs)
		outcome.Inserted = keys(result.Insert)
		outcome.Updated = keys(result.Update)
		if len(deleteIDs) > 0 {
			outcome.Deleted = deleteIDs
		}

		logger.Info("computed diff",
			"local", outcome.Local,
			"remote", outcome.Remote,
			"insert", outcome.Counts.Insert,
			"update", outcome.Counts.Update,
			"delete", outcome.Counts.Delete,
		)

		if s.dryRun {
			return nil
		}

		for _, id := range deleteIDs {
			if err := tx.Delete(collection, id); err != nil {
				return err
			}
		}
		for _, e := range result.Insert {
			if err := tx.Set(collection, e.key, e.doc); err != nil {
				return err
			}
		}
		for _, e := range result.Update {
			if err := tx.Update(collection, remoteIDs[e.key], e.doc); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("transaction failed, collection left unchanged", "error", err)
		return outcome.fail(err)
	}

	if s.dryRun {
		outcome.Status = StatusPlanned
		return outcome
	}

	outcome.Status = StatusApplied
	logger.Info("transaction committed")
	return outcome
}

// remoteIndex keys every snapshot by the key of its data, falling back to the
// document id when the data has none. When several documents share a key, the
// one stored under the key itself is kept (else the first by id) and the ids
// of the others are returned for deletion.
func remoteIndex(snapshots []docstore.Snapshot, key func(record.Document) string) ([]entry, []string) {
	entries := make([]entry, 0, len(snapshots))
	position := make(map[string]int, len(snapshots))
	var duplicates []string

	for _, snap := range snapshots {
		k := key(snap.Data)
		if k == "" {
			k = snap.ID
		}
		e := entry{key: k, id: snap.ID, doc: snap.Data}

		i, seen := position[k]
		switch {
		case !seen:
			position[k] = len(entries)
			entries = append(entries, e)
		case snap.ID == k:
			duplicates = append(duplicates, entries[i].id)
			entries[i] = e
		default:
			duplicates = append(duplicates, snap.ID)
		}
	}
	return entries, duplicates
}

func distinctKeys(entries []entry) int {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		seen[e.key] = struct{}{}
	}
	return len(seen)
}

func keys(entries []entry) []string {
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.key
	}
	return out
}
