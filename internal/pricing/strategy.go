package pricing

import "strings"

// Strategy is a token pricing path.
type Strategy int

const (
	StrategyOracle Strategy = iota
	StrategyLegacyVault
	StrategyVault
)

func (s Strategy) String() string {
	switch s {
	case StrategyLegacyVault:
		return "legacy-vault"
	case StrategyVault:
		return "vault"
	default:
		return "oracle"
	}
}

// Rules describes which pools and tokens leave the generic oracle path.
type Rules struct {
	// VaultPool is the id of the pool whose tokens are yield vault shares.
	VaultPool string
	// LegacyVaults are vault tokens in VaultPool that only expose the legacy accessor.
	LegacyVaults []string
}

type rule struct {
	strategy Strategy
	match    func(poolID, token string) bool
}

// Table maps a pool/token pair to a pricing strategy. Rules are evaluated in
// order and the first match wins; unmatched pairs use the oracle.
type Table struct {
	rules []rule
}

// NewTable builds the strategy table for rules.
func NewTable(r Rules) *Table {
	t := &Table{}
	vaultPool := normalize(r.VaultPool)
	if vaultPool == "" {
		return t
	}

	legacy := make(map[string]struct{}, len(r.LegacyVaults))
	for _, addr := range r.LegacyVaults {
		if addr = normalize(addr); addr != "" {
			legacy[addr] = struct{}{}
		}
	}

	inVaultPool := func(poolID string) bool { return normalize(poolID) == vaultPool }

	t.rules = append(t.rules,
		rule{
			strategy: StrategyLegacyVault,
			match: func(poolID, token string) bool {
				if !inVaultPool(poolID) {
					return false
				}
				_, ok := legacy[normalize(token)]
				return ok
			},
		},
		rule{
			strategy: StrategyVault,
			match: func(poolID, _ string) bool {
				return inVaultPool(poolID)
			},
		},
	)
	return t
}

// Select returns the strategy for token within pool poolID.
func (t *Table) Select(poolID, token string) Strategy {
	for _, r := range t.rules {
		if r.match(poolID, token) {
			return r.strategy
		}
	}
	return StrategyOracle
}

func normalize(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
