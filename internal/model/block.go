package model

// Block is the reference block an event was emitted in.
type Block struct {
	Number    uint64 `json:"number"`
	Timestamp int64  `json:"timestamp"`
}

// PriceUpdate is a decoded oracle PriceUpdated event.
type PriceUpdate struct {
	ChainID  uint64 `json:"chain_id"`
	Block    Block  `json:"block"`
	TxHash   string `json:"tx_hash"`
	LogIndex uint64 `json:"log_index"`
	Oracle   string `json:"oracle"`
	Symbol   string `json:"symbol"`
	Price    string `json:"price"`
}
