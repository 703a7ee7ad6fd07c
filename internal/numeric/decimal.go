package numeric

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// DivPrecision is the number of fractional digits kept by divisions.
const DivPrecision int32 = 34

var (
	// WAD is the 1e18 fixed-point unit used by vaults and registries.
	WAD = decimal.New(1, 18)
	// OracleUnit is the 1e6 fixed-point unit of power oracle prices.
	OracleUnit = decimal.New(1, 6)
)

// FromFixed converts a fixed-point integer to a decimal by dividing by unit.
func FromFixed(value *big.Int, unit decimal.Decimal) decimal.Decimal {
	if value == nil || unit.IsZero() {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, 0).DivRound(unit, DivPrecision)
}

// BigIntToDecimal scales an integer token amount by 10^decimals.
func BigIntToDecimal(amount *big.Int, decimals uint8) decimal.Decimal {
	if amount == nil {
		return decimal.Zero
	}
	return TokenToDecimal(decimal.NewFromBigInt(amount, 0), decimals)
}

// TokenToDecimal scales an already-decimal amount by 10^decimals.
func TokenToDecimal(amount decimal.Decimal, decimals uint8) decimal.Decimal {
	return amount.Shift(-int32(decimals))
}

// SafeDiv returns num/den to DivPrecision places, or zero when den is not positive.
func SafeDiv(num, den decimal.Decimal) decimal.Decimal {
	if !den.IsPositive() {
		return decimal.Zero
	}
	return num.DivRound(den, DivPrecision)
}
