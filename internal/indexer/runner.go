package indexer

import (
	"context"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"poolValuator/internal/model"
)

// RunConfig holds runtime settings for the indexer.
type RunConfig struct {
	FromBlock    uint64
	ToBlock      uint64
	Oracle       common.Address
	BatchSize    uint64
	MaxRetries   int
	RetryBackoff time.Duration
}

// LogSource is the chain access the runner needs.
type LogSource interface {
	ChainID(ctx context.Context) (uint64, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	BlockTimestamp(ctx context.Context, number uint64) (int64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// EventHandler consumes decoded price updates in chain order.
type EventHandler interface {
	Handle(ctx context.Context, event model.PriceUpdate) error
}

// Runner streams oracle PriceUpdated logs and feeds them to a handler.
type Runner struct {
	cfg      RunConfig
	source   LogSource
	handler  EventHandler
	progress ProgressStore
	logger   *zap.Logger
	seen     map[string]struct{}
}

// NewRunner builds a Runner. A nil progress store disables resume.
func NewRunner(cfg RunConfig, source LogSource, handler EventHandler, progress ProgressStore, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if progress == nil {
		progress = NewFileProgress("")
	}
	return &Runner{
		cfg:      cfg,
		source:   source,
		handler:  handler,
		progress: progress,
		logger:   logger,
		seen:     make(map[string]struct{}),
	}
}

// Run processes [FromBlock, ToBlock] (ToBlock 0 = head), resuming after the
// last saved block. Progress is saved only after a whole range is handled.
func (r *Runner) Run(ctx context.Context) error {
	if r.source == nil {
		return fmt.Errorf("log source is nil")
	}
	if r.handler == nil {
		return fmt.Errorf("event handler is nil")
	}
	if r.cfg.BatchSize == 0 {
		return fmt.Errorf("batch size must be greater than zero")
	}
	if r.cfg.Oracle == (common.Address{}) {
		return fmt.Errorf("oracle address is required")
	}

	topic, err := PriceUpdatedTopic()
	if err != nil {
		return fmt.Errorf("price updated topic: %w", err)
	}

	chainID, err := r.source.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("get chain id: %w", err)
	}

	from := r.cfg.FromBlock
	to := r.cfg.ToBlock
	if to == 0 {
		if to, err = r.source.LatestBlockNumber(ctx); err != nil {
			return fmt.Errorf("get latest block: %w", err)
		}
	}

	last, ok, err := r.progress.Load(ctx)
	if err != nil {
		return err
	}
	if ok && last >= from {
		from = last + 1
		r.logger.Info("resume from progress", zap.Uint64("last_processed", last), zap.Uint64("from", from))
	}
	if from > to {
		r.logger.Info("nothing to sync", zap.Uint64("from", from), zap.Uint64("to", to))
		return nil
	}

	ranges, err := SplitRange(from, to, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		if err := ctx.Err(); err != nil {
			return err
		}

		handled, err := r.processRange(ctx, chainID, topic, blockRange)
		if err != nil {
			return err
		}
		if err := r.progress.Save(ctx, blockRange.To); err != nil {
			return fmt.Errorf("save progress: %w", err)
		}
		r.logger.Info("batch complete", zap.Int("events", handled), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
	}
	return nil
}

func (r *Runner) processRange(ctx context.Context, chainID uint64, topic common.Hash, blockRange BlockRange) (int, error) {
	var logs []types.Log
	err := retry(ctx, r.logger, "filter logs", r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		logs, err = r.source.FilterLogs(ctx, blockRange.From, blockRange.To, []common.Address{r.cfg.Oracle}, []common.Hash{topic})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("filter logs %d-%d: %w", blockRange.From, blockRange.To, err)
	}

	// Duplicates only occur within one FilterLogs response.
	clear(r.seen)
	defer clear(r.seen)

	handled := 0
	for _, log := range logs {
		if log.Removed || r.isDuplicate(log) {
			continue
		}

		var ts int64
		err := retry(ctx, r.logger, "block timestamp", r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			ts, err = r.source.BlockTimestamp(ctx, log.BlockNumber)
			return err
		})
		if err != nil {
			return handled, fmt.Errorf("block timestamp %d: %w", log.BlockNumber, err)
		}

		event, err := DecodePriceUpdate(chainID, log, ts)
		if err != nil {
			r.logger.Warn("skip undecodable log", zap.String("tx", log.TxHash.Hex()), zap.Uint("log_index", log.Index), zap.Error(err))
			continue
		}
		r.logger.Debug("price updated",
			zap.String("symbol", event.Symbol),
			zap.String("price", event.Price),
			zap.Uint64("block", event.Block.Number),
		)
		if err := r.handler.Handle(ctx, event); err != nil {
			return handled, fmt.Errorf("handle %s:%d: %w", event.TxHash, event.LogIndex, err)
		}
		handled++
	}
	return handled, nil
}

func (r *Runner) isDuplicate(log types.Log) bool {
	id := fmt.Sprintf("%s:%d", log.TxHash.Hex(), log.Index)
	if _, ok := r.seen[id]; ok {
		return true
	}
	r.seen[id] = struct{}{}
	return false
}
