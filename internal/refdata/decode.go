package refdata

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/swapstats/revenue-api/internal/fees"
)

// EncodedAssetData is the compact columnar asset payload: a prefix table of
// chain namespaces, a list of "prefixIdx:assetReference" ids and a parallel
// list of fixed-position field tuples.
type EncodedAssetData struct {
	AssetIDPrefixes []string            `json:"assetIdPrefixes"`
	EncodedAssetIDs []string            `json:"encodedAssetIds"`
	EncodedAssets   [][]json.RawMessage `json:"encodedAssets"`
}

// Valid reports whether the payload has the expected overall shape.
func (e EncodedAssetData) Valid() bool {
	return len(e.AssetIDPrefixes) > 0 && len(e.EncodedAssetIDs) > 0 && len(e.EncodedAssets) > 0
}

type fieldTag int

const (
	fieldAssetIdx fieldTag = iota
	fieldName
	fieldPrecision
	fieldColor
	fieldIcon
	fieldSymbol
	fieldIsPool
)

// fieldOrder fixes the tuple positions. It must match the encoder's field
// list exactly.
var fieldOrder = [...]fieldTag{
	fieldAssetIdx,
	fieldName,
	fieldPrecision,
	fieldColor,
	fieldIcon,
	fieldSymbol,
	fieldIsPool,
}

func decodeAssetID(encoded string, prefixes []string) (string, bool) {
	colon := strings.LastIndex(encoded, ":")
	if colon < 0 {
		return "", false
	}

	prefixIdx, err := strconv.Atoi(encoded[:colon])
	if err != nil || prefixIdx < 0 || prefixIdx >= len(prefixes) {
		return "", false
	}

	return prefixes[prefixIdx] + ":" + encoded[colon+1:], true
}

func chainIDFromAssetID(assetID string) string {
	slash := strings.Index(assetID, "/")
	if slash < 0 {
		return assetID
	}
	return assetID[:slash]
}

// DecodeAssetData reconstructs the asset registry from the columnar
// payload. Malformed ids and tuple entries are skipped, never fatal; an
// unhandled field tag is a programming error surfaced as an error so a new
// encoder field cannot be silently dropped.
func DecodeAssetData(encoded EncodedAssetData) (map[string]fees.StaticAsset, error) {
	assets := make(map[string]fees.StaticAsset, len(encoded.EncodedAssets))

	for idx, tuple := range encoded.EncodedAssets {
		if idx >= len(encoded.EncodedAssetIDs) {
			break
		}

		assetID, ok := decodeAssetID(encoded.EncodedAssetIDs[idx], encoded.AssetIDPrefixes)
		if !ok {
			continue
		}

		asset := fees.StaticAsset{
			AssetID: assetID,
			ChainID: chainIDFromAssetID(assetID),
		}

		for fieldIdx, tag := range fieldOrder {
			if fieldIdx >= len(tuple) {
				break
			}
			raw := tuple[fieldIdx]

			switch tag {
			case fieldAssetIdx:
				// positional index inside the encoder, unused here
			case fieldName:
				_ = json.Unmarshal(raw, &asset.Name)
			case fieldPrecision:
				_ = json.Unmarshal(raw, &asset.Precision)
			case fieldColor:
				_ = json.Unmarshal(raw, &asset.Color)
			case fieldIcon:
				var icons []string
				if err := json.Unmarshal(raw, &icons); err == nil && len(icons) > 0 {
					asset.Icon = icons[0]
				}
			case fieldSymbol:
				_ = json.Unmarshal(raw, &asset.Symbol)
			case fieldIsPool:
				var isPool int
				if err := json.Unmarshal(raw, &isPool); err == nil && isPool != 0 {
					asset.IsPool = true
				}
			default:
				return nil, errors.Errorf("unhandled asset field tag %d", tag)
			}
		}

		assets[assetID] = asset
	}

	return assets, nil
}
