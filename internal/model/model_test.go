package model

import "testing"

func TestPoolTradable(t *testing.T) {
	cases := []struct {
		name string
		pool *Pool
		want bool
	}{
		{"nil", nil, false},
		{"empty tokens", &Pool{TokensCount: 2, PublicSwap: true}, false},
		{"single token", &Pool{TokensList: []string{"0xa"}, TokensCount: 1, PublicSwap: true}, false},
		{"swap disabled", &Pool{TokensList: []string{"0xa", "0xb"}, TokensCount: 2}, false},
		{"tradable", &Pool{TokensList: []string{"0xa", "0xb"}, TokensCount: 2, PublicSwap: true}, true},
	}
	for _, tc := range cases {
		if got := tc.pool.Tradable(); got != tc.want {
			t.Fatalf("%s: Tradable() = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestIdentities(t *testing.T) {
	token := PoolToken{PoolID: "0xpool", Address: "0xtoken"}
	if got := token.ID(); got != "0xpool-0xtoken" {
		t.Fatalf("pool token id = %s", got)
	}
	if got := PoolPriceID("0xpool", 1612000000); got != "0xpool-1612000000" {
		t.Fatalf("pool price id = %s", got)
	}
	if agg := NewLiquidityAggregate(); agg.ID != AggregateID || !agg.TotalLiquidity.IsZero() {
		t.Fatalf("unexpected aggregate %+v", agg)
	}
}
