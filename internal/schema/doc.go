// Package schema defines the typed contract for chain files and validates
// documents against it.
//
// # Variants
//
// A chain file is one of two variants, selected by its chain_type field:
//
//	{"chain_type": "cosmos", "assets": [{"baseDenom": ..., "cosmosHubId": ...}]}
//	{"chain_type": "evm",    "assets": [{"address": ...}]}
//
// Decode turns a validated document into a CosmosChain or an EvmChain, so
// callers never read a field that does not belong to the variant.
//
// # Validation
//
// A document is valid only if two independent checks pass:
//
//   - the field check: every required string field of every asset is a
//     string longer than one character (IsValidProp);
//   - the structural check: the document unifies with the CUE definition of
//     its variant (required keys, decimals is an integer, strings are strings).
//
// Neither check alone is enough. The field check never looks at decimals and
// the structural check accepts one-character placeholders.
//
// # Versions
//
// The contract is defined once, in chain.cue, and carries Version. Adding an
// optional field is compatible and keeps the version. Adding, removing or
// retyping a required field is not: bump Version and note the migration in
// this comment.
//
// A chain file may pin the version it targets with schema_version. A pin with
// a different major version fails validation; a newer pin of the same major
// only warns.
//
//	v1  name, chainId, chain_type, assets; per-variant asset fields as in chain.cue.
package schema
