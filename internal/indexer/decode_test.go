package indexer

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodePriceUpdate(t *testing.T) {
	log := priceLog(t, 11829650, 0xab, 4, "YFI", 31_000_250000)

	event, err := DecodePriceUpdate(1, log, 1612000000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), event.ChainID)
	assert.Equal(t, uint64(11829650), event.Block.Number)
	assert.Equal(t, int64(1612000000), event.Block.Timestamp)
	assert.Equal(t, "YFI", event.Symbol)
	assert.Equal(t, "31000250000", event.Price)
	assert.Equal(t, uint64(4), event.LogIndex)
	assert.Equal(t, oracleAddr.Hex(), event.Oracle)
}

func TestDecodePriceUpdateRejectsForeignTopic(t *testing.T) {
	log := priceLog(t, 1, 0x1, 0, "ETH", 1)
	log.Topics[0] = common.HexToHash("0x01")
	_, err := DecodePriceUpdate(1, log, 0)
	require.Error(t, err)
}

func TestNormalizeAddresses(t *testing.T) {
	got, err := NormalizeAddresses([]string{" 0x50f8D7f4db16AA926497993F020364f739EDb988 ", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"0x50f8d7f4db16aa926497993f020364f739edb988"}, got)

	_, err = NormalizeAddresses([]string{"nope"})
	require.Error(t, err)
}
