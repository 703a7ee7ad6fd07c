package postgres

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"poolValuator/internal/model"
	"poolValuator/internal/storage"
	"poolValuator/internal/storage/migrations"
)

// Store provides Postgres persistence for valuator entities.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.EntityStore = (*Store)(nil)

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Migrate applies the embedded schema files in name order.
func (s *Store) Migrate(ctx context.Context) ([]string, error) {
	files, err := fs.Glob(migrations.PostgresFS, "postgres/*.sql")
	if err != nil {
		return nil, fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		sql, err := fs.ReadFile(migrations.PostgresFS, file)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", file, err)
		}
		if _, err := s.pool.Exec(ctx, string(sql)); err != nil {
			return nil, fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return files, nil
}

func (s *Store) LoadPool(ctx context.Context, id string) (*model.Pool, error) {
	var (
		p                      model.Pool
		liquidity, totalShares string
		priceCount             int64
	)
	row := s.pool.QueryRow(ctx, `
		SELECT id, tokens_list, tokens_count, public_swap, liquidity::text, total_shares::text,
			last_pool_price_update, pool_price_count
		FROM pools WHERE id = $1
	`, id)
	err := row.Scan(&p.ID, &p.TokensList, &p.TokensCount, &p.PublicSwap, &liquidity, &totalShares,
		&p.LastPoolPriceUpdate, &priceCount)
	if err != nil {
		return nil, notFound(err)
	}
	p.PoolPriceCount = uint64(priceCount)
	if p.Liquidity, err = parseDecimal("liquidity", liquidity); err != nil {
		return nil, err
	}
	if p.TotalShares, err = parseDecimal("total_shares", totalShares); err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePool upserts a pool by id.
func (s *Store) SavePool(ctx context.Context, p *model.Pool) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}
	tokens := p.TokensList
	if tokens == nil {
		tokens = []string{}
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pools (
			id, tokens_list, tokens_count, public_swap, liquidity, total_shares,
			last_pool_price_update, pool_price_count, updated_at
		) VALUES ($1, $2, $3, $4, $5::numeric, $6::numeric, $7, $8, now())
		ON CONFLICT (id) DO UPDATE SET
			tokens_list = EXCLUDED.tokens_list,
			tokens_count = EXCLUDED.tokens_count,
			public_swap = EXCLUDED.public_swap,
			liquidity = EXCLUDED.liquidity,
			total_shares = EXCLUDED.total_shares,
			last_pool_price_update = EXCLUDED.last_pool_price_update,
			pool_price_count = EXCLUDED.pool_price_count,
			updated_at = now()
	`,
		p.ID,
		tokens,
		p.TokensCount,
		p.PublicSwap,
		p.Liquidity.String(),
		p.TotalShares.String(),
		p.LastPoolPriceUpdate,
		int64(p.PoolPriceCount),
	)
	return err
}

func (s *Store) LoadPoolToken(ctx context.Context, poolID, token string) (*model.PoolToken, error) {
	var (
		t               model.PoolToken
		decimals        int16
		balance, weight string
	)
	row := s.pool.QueryRow(ctx, `
		SELECT pool_id, address, symbol, name, decimals, balance::text, denorm_weight::text
		FROM pool_tokens WHERE pool_id = $1 AND address = $2
	`, poolID, token)
	err := row.Scan(&t.PoolID, &t.Address, &t.Symbol, &t.Name, &decimals, &balance, &weight)
	if err != nil {
		return nil, notFound(err)
	}
	t.Decimals = uint8(decimals)
	if t.Balance, err = parseDecimal("balance", balance); err != nil {
		return nil, err
	}
	if t.DenormWeight, err = parseDecimal("denorm_weight", weight); err != nil {
		return nil, err
	}
	return &t, nil
}

// SavePoolToken upserts a pool token by (pool_id, address).
func (s *Store) SavePoolToken(ctx context.Context, t *model.PoolToken) error {
	if t == nil || t.PoolID == "" || t.Address == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pool_tokens (pool_id, address, symbol, name, decimals, balance, denorm_weight, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6::numeric, $7::numeric, now())
		ON CONFLICT (pool_id, address) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			balance = EXCLUDED.balance,
			denorm_weight = EXCLUDED.denorm_weight,
			updated_at = now()
	`,
		t.PoolID,
		t.Address,
		t.Symbol,
		t.Name,
		int16(t.Decimals),
		t.Balance.String(),
		t.DenormWeight.String(),
	)
	return err
}

func (s *Store) LoadTokenPrice(ctx context.Context, id string) (*model.TokenPrice, error) {
	var (
		p        model.TokenPrice
		decimals int16
		price    string
	)
	row := s.pool.QueryRow(ctx, `
		SELECT id, symbol, name, decimals, price::text, pool_token_id
		FROM token_prices WHERE id = $1
	`, id)
	err := row.Scan(&p.ID, &p.Symbol, &p.Name, &decimals, &price, &p.PoolTokenID)
	if err != nil {
		return nil, notFound(err)
	}
	p.Decimals = uint8(decimals)
	if p.Price, err = parseDecimal("price", price); err != nil {
		return nil, err
	}
	return &p, nil
}

// SaveTokenPrice upserts a token price by id.
func (s *Store) SaveTokenPrice(ctx context.Context, p *model.TokenPrice) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO token_prices (id, symbol, name, decimals, price, pool_token_id, updated_at)
		VALUES ($1, $2, $3, $4, $5::numeric, $6, now())
		ON CONFLICT (id) DO UPDATE SET
			symbol = EXCLUDED.symbol,
			name = EXCLUDED.name,
			decimals = EXCLUDED.decimals,
			price = EXCLUDED.price,
			pool_token_id = EXCLUDED.pool_token_id,
			updated_at = now()
	`,
		p.ID,
		p.Symbol,
		p.Name,
		int16(p.Decimals),
		p.Price.String(),
		p.PoolTokenID,
	)
	return err
}

func (s *Store) LoadPoolPrice(ctx context.Context, id string) (*model.PoolPrice, error) {
	var (
		p                        model.PoolPrice
		price, supply, liquidity string
		blockNumber              int64
	)
	row := s.pool.QueryRow(ctx, `
		SELECT id, pool_id, price::text, total_supply::text, liquidity::text, block_number, ts
		FROM pool_prices WHERE id = $1
	`, id)
	err := row.Scan(&p.ID, &p.PoolID, &price, &supply, &liquidity, &blockNumber, &p.Timestamp)
	if err != nil {
		return nil, notFound(err)
	}
	p.BlockNumber = uint64(blockNumber)
	if p.Price, err = parseDecimal("price", price); err != nil {
		return nil, err
	}
	if p.TotalSupply, err = parseDecimal("total_supply", supply); err != nil {
		return nil, err
	}
	if p.Liquidity, err = parseDecimal("liquidity", liquidity); err != nil {
		return nil, err
	}
	return &p, nil
}

// SavePoolPrice upserts a snapshot by id; rewrites within the same timestamp update in place.
func (s *Store) SavePoolPrice(ctx context.Context, p *model.PoolPrice) error {
	if p == nil || p.ID == "" {
		return storage.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO pool_prices (id, pool_id, price, total_supply, liquidity, block_number, ts)
		VALUES ($1, $2, $3::numeric, $4::numeric, $5::numeric, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			price = EXCLUDED.price,
			total_supply = EXCLUDED.total_supply,
			liquidity = EXCLUDED.liquidity,
			block_number = EXCLUDED.block_number
	`,
		p.ID,
		p.PoolID,
		p.Price.String(),
		p.TotalSupply.String(),
		p.Liquidity.String(),
		int64(p.BlockNumber),
		p.Timestamp,
	)
	return err
}

func (s *Store) LoadAggregate(ctx context.Context) (*model.LiquidityAggregate, error) {
	var total string
	row := s.pool.QueryRow(ctx, `SELECT total_liquidity::text FROM liquidity_aggregate WHERE id = $1`, model.AggregateID)
	if err := row.Scan(&total); err != nil {
		return nil, notFound(err)
	}
	value, err := parseDecimal("total_liquidity", total)
	if err != nil {
		return nil, err
	}
	return &model.LiquidityAggregate{ID: model.AggregateID, TotalLiquidity: value}, nil
}

// SaveAggregate upserts the singleton aggregate.
func (s *Store) SaveAggregate(ctx context.Context, agg *model.LiquidityAggregate) error {
	if agg == nil {
		return storage.ErrInvalidInput
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO liquidity_aggregate (id, total_liquidity, updated_at)
		VALUES ($1, $2::numeric, now())
		ON CONFLICT (id) DO UPDATE SET total_liquidity = EXCLUDED.total_liquidity, updated_at = now()
	`, model.AggregateID, agg.TotalLiquidity.String())
	return err
}

// LoadState returns last_processed_block for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_block FROM indexer_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveState upserts last_processed_block for a name.
func (s *Store) SaveState(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO indexer_state (name, last_processed_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_block = EXCLUDED.last_processed_block, updated_at = now()
	`, name, int64(block))
	return err
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.ErrNotFound
	}
	return err
}

func parseDecimal(field, value string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse %s: %w", field, err)
	}
	return d, nil
}
