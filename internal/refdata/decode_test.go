package refdata

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawTuple(t *testing.T, values ...interface{}) []json.RawMessage {
	t.Helper()
	tuple := make([]json.RawMessage, len(values))
	for i, v := range values {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		tuple[i] = b
	}
	return tuple
}

func TestDecodeAssetData(t *testing.T) {
	encoded := EncodedAssetData{
		AssetIDPrefixes: []string{"eip155:1/erc20", "eip155:1/slip44"},
		EncodedAssetIDs: []string{
			"0:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48",
			"1:60",
		},
		EncodedAssets: [][]json.RawMessage{
			rawTuple(t, 0, "USD Coin", 6, "#2775CA", []string{"https://icons/usdc.png"}, "USDC", 0),
			rawTuple(t, 1, "Ethereum", 18, "#627EEA", []string{"https://icons/eth.png"}, "ETH", 0),
		},
	}

	assets, err := DecodeAssetData(encoded)
	require.NoError(t, err)
	require.Len(t, assets, 2)

	usdc := assets["eip155:1/erc20:0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48"]
	assert.Equal(t, "eip155:1", usdc.ChainID)
	assert.Equal(t, "USDC", usdc.Symbol)
	assert.Equal(t, "USD Coin", usdc.Name)
	assert.Equal(t, 6, usdc.Precision)
	assert.Equal(t, "https://icons/usdc.png", usdc.Icon)
	assert.False(t, usdc.IsPool)

	eth := assets["eip155:1/slip44:60"]
	assert.Equal(t, 18, eth.Precision)
	assert.Equal(t, "ETH", eth.Symbol)
}

func TestDecodeAssetData_PoolFlag(t *testing.T) {
	encoded := EncodedAssetData{
		AssetIDPrefixes: []string{"eip155:1/erc20"},
		EncodedAssetIDs: []string{"0:0xpool"},
		EncodedAssets: [][]json.RawMessage{
			rawTuple(t, 0, "Some LP", 18, "#fff", []string{}, "LP", 1),
		},
	}

	assets, err := DecodeAssetData(encoded)
	require.NoError(t, err)
	assert.True(t, assets["eip155:1/erc20:0xpool"].IsPool)
}

func TestDecodeAssetData_SkipsMalformedEntries(t *testing.T) {
	encoded := EncodedAssetData{
		AssetIDPrefixes: []string{"eip155:1/erc20"},
		EncodedAssetIDs: []string{
			"not-an-index:0xaaa", // unparseable prefix index
			"9:0xbbb",            // prefix index out of range
			"0:0xccc",
		},
		EncodedAssets: [][]json.RawMessage{
			rawTuple(t, 0, "A", 18, "", []string{}, "A", 0),
			rawTuple(t, 1, "B", 18, "", []string{}, "B", 0),
			rawTuple(t, 2, "C", 8, "", []string{}, "C", 0),
		},
	}

	assets, err := DecodeAssetData(encoded)
	require.NoError(t, err)
	require.Len(t, assets, 1)
	assert.Equal(t, 8, assets["eip155:1/erc20:0xccc"].Precision)
}

func TestDecodeAssetData_ShortAndMistypedTuples(t *testing.T) {
	encoded := EncodedAssetData{
		AssetIDPrefixes: []string{"eip155:1/erc20"},
		EncodedAssetIDs: []string{"0:0xshort", "0:0xmistyped"},
		EncodedAssets: [][]json.RawMessage{
			rawTuple(t, 0, "Short"), // tuple truncated after name
			rawTuple(t, 0, 12345, "not-a-number", 7, []string{}, true, "x"),
		},
	}

	assets, err := DecodeAssetData(encoded)
	require.NoError(t, err)
	require.Len(t, assets, 2)

	short := assets["eip155:1/erc20:0xshort"]
	assert.Equal(t, "Short", short.Name)
	assert.Equal(t, 0, short.Precision)

	// mistyped fields are skipped, well-typed positions still decode
	mistyped := assets["eip155:1/erc20:0xmistyped"]
	assert.Equal(t, "", mistyped.Name)
	assert.Equal(t, 0, mistyped.Precision)
}

func TestEncodedAssetDataValid(t *testing.T) {
	assert.False(t, EncodedAssetData{}.Valid())
	assert.True(t, EncodedAssetData{
		AssetIDPrefixes: []string{"p"},
		EncodedAssetIDs: []string{"0:x"},
		EncodedAssets:   [][]json.RawMessage{{}},
	}.Valid())
}
