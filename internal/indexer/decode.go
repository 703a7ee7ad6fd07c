package indexer

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"poolValuator/internal/model"
	"poolValuator/internal/oracle"
)

const priceUpdatedEvent = "PriceUpdated"

// PriceUpdatedTopic returns topic0 of the oracle PriceUpdated event.
func PriceUpdatedTopic() (common.Hash, error) {
	parsed, err := oracle.PowerOracleABI()
	if err != nil {
		return common.Hash{}, err
	}
	return parsed.Events[priceUpdatedEvent].ID, nil
}

// DecodePriceUpdate turns a raw oracle log into a PriceUpdate.
func DecodePriceUpdate(chainID uint64, log types.Log, timestamp int64) (model.PriceUpdate, error) {
	parsed, err := oracle.PowerOracleABI()
	if err != nil {
		return model.PriceUpdate{}, err
	}
	event := parsed.Events[priceUpdatedEvent]
	if len(log.Topics) == 0 || log.Topics[0] != event.ID {
		return model.PriceUpdate{}, fmt.Errorf("log %s:%d is not %s", log.TxHash.Hex(), log.Index, priceUpdatedEvent)
	}

	values, err := event.Inputs.NonIndexed().Unpack(log.Data)
	if err != nil {
		return model.PriceUpdate{}, fmt.Errorf("unpack %s: %w", priceUpdatedEvent, err)
	}
	if len(values) != 2 {
		return model.PriceUpdate{}, fmt.Errorf("%s field count %d", priceUpdatedEvent, len(values))
	}
	symbol, ok := values[0].(string)
	if !ok {
		return model.PriceUpdate{}, fmt.Errorf("%s symbol type %T", priceUpdatedEvent, values[0])
	}
	price, ok := values[1].(*big.Int)
	if !ok {
		return model.PriceUpdate{}, fmt.Errorf("%s price type %T", priceUpdatedEvent, values[1])
	}

	return model.PriceUpdate{
		ChainID:  chainID,
		Block:    model.Block{Number: log.BlockNumber, Timestamp: timestamp},
		TxHash:   log.TxHash.Hex(),
		LogIndex: uint64(log.Index),
		Oracle:   log.Address.Hex(),
		Symbol:   symbol,
		Price:    price.String(),
	}, nil
}
