// Package diff computes the insert / update / delete sets that bring a remote
// collection in line with the local source of truth.
package diff

import (
	"github.com/google/go-cmp/cmp"

	"github.com/umee-network/wallet-registry/internal/record"
)

// Result holds the writes needed to reconcile remote with local.
//
// Insert and Update follow the order of the local records. Delete holds the
// keys of remote records that no longer exist locally; its order is not
// meaningful.
type Result[T any] struct {
	Insert []T
	Update []T
	Delete []string
}

// Empty reports whether no write is needed.
func (r Result[T]) Empty() bool {
	return len(r.Insert) == 0 && len(r.Update) == 0 && len(r.Delete) == 0
}

// Counts is the size of each group.
type Counts struct {
	Insert int `json:"insert" yaml:"insert" toml:"insert"`
	Update int `json:"update" yaml:"update" toml:"update"`
	Delete int `json:"delete" yaml:"delete" toml:"delete"`
}

// Counts returns the size of each group.
func (r Result[T]) Counts() Counts {
	return Counts{Insert: len(r.Insert), Update: len(r.Update), Delete: len(r.Delete)}
}

// Compute diffs local against remote using key to identify records and
// equal to detect changes.
//
// If a key occurs more than once in local, the last occurrence wins, at the
// position of the first. Duplicate remote keys are handled the same way.
// Records with an empty key are ignored on both sides.
func Compute[T any](local, remote []T, key func(T) string, equal func(a, b T) bool) Result[T] {
	localKeys, localByKey := index(local, key)
	remoteKeys, remoteByKey := index(remote, key)

	var result Result[T]

	for _, k := range localKeys {
		current := localByKey[k]

		existing, found := remoteByKey[k]
		switch {
		case !found:
			result.Insert = append(result.Insert, current)
		case !equal(existing, current):
			result.Update = append(result.Update, current)
		}
	}

	for _, k := range remoteKeys {
		if _, found := localByKey[k]; !found {
			result.Delete = append(result.Delete, k)
		}
	}

	return result
}

// Documents diffs record documents with deep structural equality.
func Documents(local, remote []record.Document, key func(record.Document) string) Result[record.Document] {
	return Compute(local, remote, key, DocumentsEqual)
}

// DocumentsEqual compares two documents field by field. Object fields are
// compared regardless of order; arrays are compared element by element.
func DocumentsEqual(a, b record.Document) bool {
	return cmp.Equal(map[string]any(a), map[string]any(b))
}

func index[T any](items []T, key func(T) string) ([]string, map[string]T) {
	keys := make([]string, 0, len(items))
	byKey := make(map[string]T, len(items))

	for _, item := range items {
		k := key(item)
		if k == "" {
			continue
		}
		if _, seen := byKey[k]; !seen {
			keys = append(keys, k)
		}
		byKey[k] = item
	}

	return keys, byKey
}
