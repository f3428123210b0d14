package schema

import (
	"fmt"
	"unicode/utf16"

	"github.com/umee-network/wallet-registry/internal/record"
)

// Required string fields per variant. decimals is checked structurally only.
var (
	cosmosAssetFields = []string{
		"name", "symbol", "baseDenom", "cosmosHubId", "website", "explorer",
		"shortDescription", "description", "link", "coinGeckoId", "logo",
	}
	evmAssetFields = []string{
		"address", "name", "symbol", "website", "explorer",
		"shortDescription", "description", "link", "coinGeckoId", "logo",
	}
)

// RequiredAssetFields returns the string fields every asset of kind must carry.
func RequiredAssetFields(kind Kind) []string {
	switch kind {
	case KindCosmos:
		return cosmosAssetFields
	case KindEvm:
		return evmAssetFields
	}
	return nil
}

// IsValidProp reports whether v is a string longer than one character.
// Length is counted in UTF-16 code units, as registry consumers do, so a
// single character outside the Basic Multilingual Plane counts as two.
func IsValidProp(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}

	units := 0
	for _, r := range s {
		units += utf16.RuneLen(r)
		if units > 1 {
			return true
		}
	}
	return false
}

// ValidateFields reports whether every asset of doc passes IsValidProp on
// every required field of its variant.
func ValidateFields(doc record.Document) bool {
	return len(fieldErrors(doc)) == 0
}

// fieldErrors lists every failing asset field of doc.
func fieldErrors(doc record.Document) []string {
	kind, err := KindOf(doc)
	if err != nil {
		return []string{err.Error()}
	}

	assets, ok := doc[record.FieldAssets].([]any)
	if !ok {
		return []string{"assets: expected an array"}
	}

	var problems []string
	for i, raw := range assets {
		asset, ok := raw.(map[string]any)
		if !ok {
			problems = append(problems, fmt.Sprintf("assets[%d]: expected an object", i))
			continue
		}
		for _, field := range RequiredAssetFields(kind) {
			if !IsValidProp(asset[field]) {
				problems = append(problems, fmt.Sprintf("assets[%d].%s: expected a string longer than one character", i, field))
			}
		}
	}
	return problems
}
