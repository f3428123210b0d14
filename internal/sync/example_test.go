package sync_test

import (
	"context"
	"fmt"
	"log"

	"github.com/umee-network/wallet-registry/internal/docstore"
	"github.com/umee-network/wallet-registry/internal/sync"
)

// This example shows a full run against a local store.
// It has no output block, so it is compiled but not executed.
func ExampleNew() {
	ctx := context.Background()

	store, err := docstore.Open(ctx, docstore.Options{URL: "file:.regsync/registry.db"})
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	syncer := sync.New(store, sync.Options{})

	summary, err := syncer.Run(ctx, "../blockchains", "../projects")
	if err != nil {
		log.Fatal(err)
	}

	for _, outcome := range summary.Outcomes {
		fmt.Printf("%s: %s %+v\n", outcome.Kind, outcome.Status, outcome.Counts)
	}
}

// This example computes the plan without writing.
func ExampleOptions_dryRun() {
	ctx := context.Background()

	store, err := docstore.Open(ctx, docstore.Options{URL: "libsql://registry-umee.turso.io", AuthToken: "..."})
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	outcome := sync.New(store, sync.Options{DryRun: true}).SyncProjects(ctx, nil)
	fmt.Println(outcome.Status)
}
