// Package record defines the documents exchanged between the local JSON files
// and the remote document store.
//
// Three kinds of record are mirrored, each into its own collection:
//
//	blockchains/*.json  → chains   (keyed by chainId)
//	                    → assets   (derived from chains, keyed by upper-cased symbol)
//	projects/*.json     → projects (keyed by name)
//
// Records are kept as generic JSON documents rather than structs so that fields
// the typed contract does not know about survive a round trip to the store.
// The typed view lives in the schema package.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Collection names in the document store.
const (
	ChainsCollection   = "chains"
	AssetsCollection   = "assets"
	ProjectsCollection = "projects"
)

// Field names shared by the loader, the diff keys and the schema.
const (
	FieldChainID     = "chainId"
	FieldChainType   = "chain_type"
	FieldAssets      = "assets"
	FieldSymbol      = "symbol"
	FieldName        = "name"
	FieldIsSupported = "isSupported"
)

// ErrNotObject is returned when the input is valid JSON but not an object.
var ErrNotObject = errors.New("expected a JSON object")

// Document is one JSON object. Numbers are held as json.Number so that a
// document decoded from a file and the same document read back from the store
// compare equal.
type Document map[string]any

// Decode parses a single JSON object.
func Decode(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w, got %T", ErrNotObject, raw)
	}
	if dec.More() {
		return nil, fmt.Errorf("unexpected data after JSON object")
	}
	return Document(obj), nil
}

// Encode serializes the document. Map keys come out sorted, so equal
// documents always encode to the same bytes.
func (d Document) Encode() ([]byte, error) {
	return json.Marshal(d)
}

// String returns the value of a string field, or "" if absent or not a string.
func (d Document) String(field string) string {
	s, _ := d[field].(string)
	return s
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(map[string]any)
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = cloneValue(val)
		}
		return out
	case Document:
		return Document(cloneValue(map[string]any(t)).(map[string]any))
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = cloneValue(val)
		}
		return out
	default:
		return v
	}
}

// ChainKey is the identifier of a chain document.
func ChainKey(d Document) string {
	return d.String(FieldChainID)
}

// AssetKey is the identifier of an asset document. Symbols are compared
// case-insensitively, so the key is the upper-cased symbol.
func AssetKey(d Document) string {
	return NormalizeSymbol(d.String(FieldSymbol))
}

// ProjectKey is the identifier of a project document.
func ProjectKey(d Document) string {
	return d.String(FieldName)
}

// NormalizeSymbol upper-cases an asset symbol for use as a storage key.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
