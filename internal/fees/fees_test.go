package fees_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/swapstats/revenue-api/internal/fees"
)

func TestTimestampToDate(t *testing.T) {
	// 2024-01-02T23:59:59Z
	assert.Equal(t, "2024-01-02", fees.TimestampToDate(1704239999))
	// 2024-01-03T00:00:00Z, one second later
	assert.Equal(t, "2024-01-03", fees.TimestampToDate(1704240000))
}

func TestGroupByDate_UsesEventTimestamp(t *testing.T) {
	list := []fees.Fee{
		{TxHash: "a", Timestamp: 1704239999}, // 2024-01-02
		{TxHash: "b", Timestamp: 1704240000}, // 2024-01-03
		{TxHash: "c", Timestamp: 1704240001}, // 2024-01-03
	}

	byDate := fees.GroupByDate(list)

	assert.Len(t, byDate, 2)
	assert.Len(t, byDate["2024-01-02"], 1)
	assert.Len(t, byDate["2024-01-03"], 2)
}

func TestSyntheticTxHash_Deterministic(t *testing.T) {
	a := fees.SyntheticTxHash("chainflip", "eip155:1/slip44:60", 1704240000)
	b := fees.SyntheticTxHash("chainflip", "eip155:1/slip44:60", 1704240000)
	c := fees.SyntheticTxHash("chainflip", "eip155:1/slip44:60", 1704240001)

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
