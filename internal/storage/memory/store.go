package memory

import (
	"context"
	"sort"
	"sync"

	"poolValuator/internal/model"
	"poolValuator/internal/storage"
)

// Store is an in-memory implementation of storage.EntityStore.
// Values are copied on the way in and out.
type Store struct {
	mu          sync.RWMutex
	pools       map[string]model.Pool
	poolTokens  map[string]model.PoolToken // keyed by poolId-token
	tokenPrices map[string]model.TokenPrice
	poolPrices  map[string]model.PoolPrice
	aggregate   *model.LiquidityAggregate
}

var _ storage.EntityStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		pools:       make(map[string]model.Pool),
		poolTokens:  make(map[string]model.PoolToken),
		tokenPrices: make(map[string]model.TokenPrice),
		poolPrices:  make(map[string]model.PoolPrice),
	}
}

func (s *Store) LoadPool(_ context.Context, id string) (*model.Pool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pools[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	p.TokensList = append([]string(nil), p.TokensList...)
	return &p, nil
}

func (s *Store) SavePool(_ context.Context, pool *model.Pool) error {
	if pool == nil || pool.ID == "" {
		return storage.ErrInvalidInput
	}
	p := *pool
	p.TokensList = append([]string(nil), pool.TokensList...)

	s.mu.Lock()
	s.pools[p.ID] = p
	s.mu.Unlock()
	return nil
}

func (s *Store) LoadPoolToken(_ context.Context, poolID, token string) (*model.PoolToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.poolTokens[model.PoolTokenID(poolID, token)]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &t, nil
}

func (s *Store) SavePoolToken(_ context.Context, token *model.PoolToken) error {
	if token == nil || token.PoolID == "" || token.Address == "" {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	s.poolTokens[token.ID()] = *token
	s.mu.Unlock()
	return nil
}

func (s *Store) LoadTokenPrice(_ context.Context, id string) (*model.TokenPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.tokenPrices[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (s *Store) SaveTokenPrice(_ context.Context, price *model.TokenPrice) error {
	if price == nil || price.ID == "" {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	s.tokenPrices[price.ID] = *price
	s.mu.Unlock()
	return nil
}

func (s *Store) LoadPoolPrice(_ context.Context, id string) (*model.PoolPrice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.poolPrices[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &p, nil
}

func (s *Store) SavePoolPrice(_ context.Context, price *model.PoolPrice) error {
	if price == nil || price.ID == "" {
		return storage.ErrInvalidInput
	}
	s.mu.Lock()
	s.poolPrices[price.ID] = *price
	s.mu.Unlock()
	return nil
}

// PoolPrices returns all snapshots of a pool ordered by timestamp.
func (s *Store) PoolPrices(poolID string) []model.PoolPrice {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.PoolPrice
	for _, p := range s.poolPrices {
		if p.PoolID == poolID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out
}

func (s *Store) LoadAggregate(_ context.Context) (*model.LiquidityAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.aggregate == nil {
		return nil, storage.ErrNotFound
	}
	agg := *s.aggregate
	return &agg, nil
}

func (s *Store) SaveAggregate(_ context.Context, agg *model.LiquidityAggregate) error {
	if agg == nil {
		return storage.ErrInvalidInput
	}
	copied := *agg
	copied.ID = model.AggregateID

	s.mu.Lock()
	s.aggregate = &copied
	s.mu.Unlock()
	return nil
}
