package sync

import (
	"context"

	"github.com/umee-network/wallet-registry/internal/record"
)

// Syncer reconciles one kind of record at a time with the document store.
type Syncer interface {
	// SyncChains makes the chains collection match chains.
	//
	// An empty input is skipped without touching the store.
	SyncChains(ctx context.Context, chains []record.Document) *Outcome

	// SyncAssets derives the asset documents from chains and makes the
	// assets collection match them.
	SyncAssets(ctx context.Context, chains []record.Document) *Outcome

	// SyncProjects makes the projects collection match projects.
	SyncProjects(ctx context.Context, projects []record.Document) *Outcome

	// Run loads chainsDir and projectsDir and syncs chains, then assets, then
	// projects.
	//
	// The returned error joins the load errors of every kind. Transaction
	// failures are only reported in the Summary.
	Run(ctx context.Context, chainsDir, projectsDir string) (*Summary, error)
}
