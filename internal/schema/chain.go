package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/umee-network/wallet-registry/internal/record"
)

// Version of the chain file contract in chain.cue. A chain file may pin the
// version it was written for in its schema_version field.
const Version = "v1"

// FieldSchemaVersion is the optional field a chain file uses to pin Version.
const FieldSchemaVersion = "schema_version"

// Kind is the chain_type discriminant.
type Kind string

const (
	KindCosmos Kind = "cosmos"
	KindEvm    Kind = "evm"
)

// ErrUnknownKind is returned when chain_type is missing or not a known kind.
var ErrUnknownKind = errors.New("unknown chain_type")

// KindOf reads the discriminant of a document.
func KindOf(doc record.Document) (Kind, error) {
	raw, ok := doc[record.FieldChainType]
	if !ok {
		return "", fmt.Errorf("%w: field is missing", ErrUnknownKind)
	}

	switch kind := Kind(fmt.Sprint(raw)); kind {
	case KindCosmos, KindEvm:
		if _, isString := raw.(string); isString {
			return kind, nil
		}
	}
	return "", fmt.Errorf("%w: %v", ErrUnknownKind, raw)
}

// Chain is either a CosmosChain or an EvmChain.
type Chain interface {
	Kind() Kind
	ID() string
	DisplayName() string
	Symbols() []string

	sealed()
}

// CosmosChain is a chain whose assets carry Cosmos denominations.
type CosmosChain struct {
	Name    string        `json:"name"`
	ChainID string        `json:"chainId"`
	Assets  []CosmosAsset `json:"assets"`
}

// CosmosAsset is an asset of a CosmosChain.
type CosmosAsset struct {
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	BaseDenom        string `json:"baseDenom"`
	CosmosHubID      string `json:"cosmosHubId"`
	Decimals         int    `json:"decimals"`
	Website          string `json:"website"`
	Explorer         string `json:"explorer"`
	ShortDescription string `json:"shortDescription"`
	Description      string `json:"description"`
	Link             string `json:"link"`
	CoinGeckoID      string `json:"coinGeckoId"`
	Logo             string `json:"logo"`
}

// EvmChain is a chain whose assets are contracts.
type EvmChain struct {
	Name    string     `json:"name"`
	ChainID string     `json:"chainId"`
	Assets  []EvmAsset `json:"assets"`
}

// EvmAsset is an asset of an EvmChain.
type EvmAsset struct {
	Address          string `json:"address"`
	Name             string `json:"name"`
	Symbol           string `json:"symbol"`
	Decimals         int    `json:"decimals"`
	Website          string `json:"website"`
	Explorer         string `json:"explorer"`
	ShortDescription string `json:"shortDescription"`
	Description      string `json:"description"`
	Link             string `json:"link"`
	CoinGeckoID      string `json:"coinGeckoId"`
	Logo             string `json:"logo"`
}

func (c *CosmosChain) Kind() Kind          { return KindCosmos }
func (c *CosmosChain) ID() string          { return c.ChainID }
func (c *CosmosChain) DisplayName() string { return c.Name }
func (c *CosmosChain) sealed()             {}

func (c *CosmosChain) Symbols() []string {
	symbols := make([]string, len(c.Assets))
	for i, asset := range c.Assets {
		symbols[i] = asset.Symbol
	}
	return symbols
}

func (c *EvmChain) Kind() Kind          { return KindEvm }
func (c *EvmChain) ID() string          { return c.ChainID }
func (c *EvmChain) DisplayName() string { return c.Name }
func (c *EvmChain) sealed()             {}

func (c *EvmChain) Symbols() []string {
	symbols := make([]string, len(c.Assets))
	for i, asset := range c.Assets {
		symbols[i] = asset.Symbol
	}
	return symbols
}

// Decode converts a document into its variant. It does not validate;
// use Validator.Validate first if the document comes from an untrusted file.
func Decode(doc record.Document) (Chain, error) {
	kind, err := KindOf(doc)
	if err != nil {
		return nil, err
	}

	data, err := normalizeDecimals(doc).Encode()
	if err != nil {
		return nil, fmt.Errorf("failed to encode chain: %w", err)
	}

	var chain Chain
	switch kind {
	case KindCosmos:
		chain = &CosmosChain{}
	case KindEvm:
		chain = &EvmChain{}
	}

	if err := json.Unmarshal(data, chain); err != nil {
		return nil, fmt.Errorf("failed to decode %s chain: %w", kind, err)
	}
	return chain, nil
}

// fieldDecimals is the only integer field of an asset.
const fieldDecimals = "decimals"

// maxExactInteger is the largest integer a float64 holds exactly.
const maxExactInteger = 1 << 53

// normalizeDecimals returns doc with every integral asset decimals value
// (6.0, 6e0) rewritten as a plain integer. Other values are left for the
// structural check to reject. doc itself is not modified.
func normalizeDecimals(doc record.Document) record.Document {
	if _, ok := doc[record.FieldAssets].([]any); !ok {
		return doc
	}

	out := doc.Clone()
	for _, raw := range out[record.FieldAssets].([]any) {
		asset, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if n, ok := integral(asset[fieldDecimals]); ok {
			asset[fieldDecimals] = json.Number(strconv.FormatInt(n, 10))
		}
	}
	return out
}

func integral(v any) (int64, bool) {
	var f float64
	switch t := v.(type) {
	case json.Number:
		parsed, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case float64:
		f = t
	default:
		return 0, false
	}
	if f != math.Trunc(f) || math.Abs(f) > maxExactInteger {
		return 0, false
	}
	return int64(f), true
}
