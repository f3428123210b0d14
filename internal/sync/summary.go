package sync

import (
	"time"

	"github.com/umee-network/wallet-registry/internal/diff"
	"github.com/umee-network/wallet-registry/internal/record"
)

// Kind names a record kind. Each kind has its own collection.
type Kind string

const (
	KindChains   Kind = record.ChainsCollection
	KindAssets   Kind = record.AssetsCollection
	KindProjects Kind = record.ProjectsCollection
)

// Status is how a kind's sync ended.
type Status string

const (
	// StatusSkipped means there were no local records.
	StatusSkipped Status = "skipped"

	// StatusApplied means the transaction committed. It may have had nothing to write.
	StatusApplied Status = "applied"

	// StatusPlanned means the diff was computed in dry-run mode.
	StatusPlanned Status = "planned"

	// StatusFailed means loading or the transaction failed; nothing was written.
	StatusFailed Status = "failed"
)

// Outcome reports what happened to one kind.
type Outcome struct {
	Kind   Kind   `json:"kind" yaml:"kind" toml:"kind"`
	Status Status `json:"status" yaml:"status" toml:"status"`

	// Local is the number of local records after keying.
	Local int `json:"local" yaml:"local" toml:"local"`

	// Remote is the number of documents in the collection before the sync.
	Remote int `json:"remote" yaml:"remote" toml:"remote"`

	Counts diff.Counts `json:"counts" yaml:"counts" toml:"counts"`

	// Keys of the documents inserted, updated and deleted, or that would be
	// in a dry run.
	Inserted []string `json:"inserted,omitempty" yaml:"inserted,omitempty" toml:"inserted,omitempty"`
	Updated  []string `json:"updated,omitempty" yaml:"updated,omitempty" toml:"updated,omitempty"`
	Deleted  []string `json:"deleted,omitempty" yaml:"deleted,omitempty" toml:"deleted,omitempty"`

	// Err is set when Status is StatusFailed.
	Err   error  `json:"-" yaml:"-" toml:"-"`
	Error string `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
}

func (o *Outcome) fail(err error) *Outcome {
	o.Status = StatusFailed
	o.Err = err
	o.Error = err.Error()
	return o
}

// Summary collects the outcome of every kind in a run.
type Summary struct {
	RunID     string        `json:"runId" yaml:"runId" toml:"runId"`
	DryRun    bool          `json:"dryRun" yaml:"dryRun" toml:"dryRun"`
	StartedAt time.Time     `json:"startedAt" yaml:"startedAt" toml:"startedAt"`
	Duration  time.Duration `json:"duration" yaml:"duration" toml:"duration"`
	Outcomes  []*Outcome    `json:"outcomes" yaml:"outcomes" toml:"outcomes"`
}

// Failed reports whether any kind failed.
func (s *Summary) Failed() bool {
	for _, o := range s.Outcomes {
		if o.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Outcome returns the outcome of kind, or nil if it did not run.
func (s *Summary) Outcome(kind Kind) *Outcome {
	for _, o := range s.Outcomes {
		if o.Kind == kind {
			return o
		}
	}
	return nil
}
