package record

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode_KeepsNumbersExact(t *testing.T) {
	doc, err := Decode([]byte(`{"chainId":"1","decimals":18,"price":0.1}`))
	require.NoError(t, err)

	assert.Equal(t, json.Number("18"), doc["decimals"])
	assert.Equal(t, json.Number("0.1"), doc["price"])
	assert.Equal(t, "1", ChainKey(doc))
}

func TestDecode_RejectsNonObjects(t *testing.T) {
	for name, input := range map[string]string{
		"null":     `null`,
		"array":    `[1,2]`,
		"trailing": `{"a":1}{"b":2}`,
		"broken":   `{"a":`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Decode([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestEncode_RoundTrip(t *testing.T) {
	doc, err := Decode([]byte(`{"b":[1,{"c":"x"}],"a":2}`))
	require.NoError(t, err)

	data, err := doc.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":2,"b":[1,{"c":"x"}]}`, string(data))

	again, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc, again)
}

func TestClone_IsDeep(t *testing.T) {
	doc, err := Decode([]byte(`{"assets":[{"symbol":"atom"}]}`))
	require.NoError(t, err)

	clone := doc.Clone()
	clone["assets"].([]any)[0].(map[string]any)["symbol"] = "osmo"

	assert.Equal(t, "atom", doc["assets"].([]any)[0].(map[string]any)["symbol"])
}

func TestAssetKey_IsCaseInsensitive(t *testing.T) {
	assert.Equal(t, "ATOM", AssetKey(Document{"symbol": "atom"}))
	assert.Equal(t, "ATOM", AssetKey(Document{"symbol": "ATOM"}))
	assert.Equal(t, "", AssetKey(Document{"symbol": 42}))
}

func TestDeriveAssets(t *testing.T) {
	chains := []Document{
		mustDecode(t, `{"chainId":"cosmoshub-4","assets":[{"symbol":"atom","decimals":6},{"symbol":"statom"}]}`),
		mustDecode(t, `{"chainId":"osmosis-1","assets":[{"symbol":"OSMO"},{"name":"no symbol"}]}`),
	}

	assets := DeriveAssets(chains)
	require.Len(t, assets, 3)

	assert.Equal(t, "ATOM", AssetKey(assets[0]))
	assert.Equal(t, "cosmoshub-4", assets[0][FieldChainID])
	assert.Equal(t, true, assets[0][FieldIsSupported])
	assert.Equal(t, json.Number("6"), assets[0]["decimals"])

	assert.Equal(t, "OSMO", AssetKey(assets[2]))
	assert.Equal(t, "osmosis-1", assets[2][FieldChainID])

	// Chain documents are not modified.
	_, tagged := chains[0]["assets"].([]any)[0].(map[string]any)[FieldChainID]
	assert.False(t, tagged)
}

func TestDeriveAssets_LaterChainWins(t *testing.T) {
	chains := []Document{
		mustDecode(t, `{"chainId":"a","assets":[{"symbol":"usdc"},{"symbol":"x1"}]}`),
		mustDecode(t, `{"chainId":"b","assets":[{"symbol":"USDC"}]}`),
	}

	assets := DeriveAssets(chains)
	require.Len(t, assets, 2)
	assert.Equal(t, "b", assets[0][FieldChainID])
	assert.Equal(t, "X1", AssetKey(assets[1]))
}

func mustDecode(t *testing.T, s string) Document {
	t.Helper()
	doc, err := Decode([]byte(s))
	require.NoError(t, err)
	return doc
}
