package amm

import (
	"math/big"

	"github.com/holiman/uint256"
)

// FeeDenominator fixes swap fees at basis-point granularity.
const FeeDenominator = 10000

// SwapOutput computes the constant-product output for amountIn against
// pre-transfer reserves:
//
//	out = floor(reserveOut * inAfterFee / (reserveIn * den + inAfterFee))
//	inAfterFee = amountIn * (den - feeNumerator)
//
// Intermediate products exceed 256 bits, so the computation runs on
// math/big; the result is always below reserveOut and fits a word.
// Truncation favors the pool.
func SwapOutput(reserveIn, reserveOut, amountIn *uint256.Int, feeNumerator uint64) (*uint256.Int, error) {
	if feeNumerator >= FeeDenominator {
		return nil, ErrInvalidFee
	}
	if amountIn == nil || amountIn.IsZero() {
		return nil, ErrZeroAmount
	}

	inAfterFee := new(big.Int).Mul(amountIn.ToBig(), big.NewInt(FeeDenominator-int64(feeNumerator)))
	numerator := new(big.Int).Mul(reserveOut.ToBig(), inAfterFee)
	denominator := new(big.Int).Mul(reserveIn.ToBig(), big.NewInt(FeeDenominator))
	denominator.Add(denominator, inAfterFee)

	out, overflow := uint256.FromBig(new(big.Int).Quo(numerator, denominator))
	if overflow {
		return nil, ErrAmountOverflow
	}
	return out, nil
}

// DepositShares returns floor(amountA * totalShares / reserveA), the
// share mint for a ratio-matched deposit into a non-empty pool.
func DepositShares(amountA, totalShares, reserveA *uint256.Int) (*uint256.Int, error) {
	product := new(big.Int).Mul(amountA.ToBig(), totalShares.ToBig())
	shares, overflow := uint256.FromBig(product.Quo(product, reserveA.ToBig()))
	if overflow {
		return nil, ErrAmountOverflow
	}
	return shares, nil
}

// RedeemAmount returns floor(reserve * shares / totalShares). The result
// never exceeds reserve, so it always fits a word.
func RedeemAmount(reserve, shares, totalShares *uint256.Int) *uint256.Int {
	product := new(big.Int).Mul(reserve.ToBig(), shares.ToBig())
	out, _ := uint256.FromBig(product.Quo(product, totalShares.ToBig()))
	return out
}

// RatioMatches reports whether amountA:amountB equals reserveA:reserveB
// exactly, by cross-multiplication in wide precision.
func RatioMatches(reserveA, reserveB, amountA, amountB *uint256.Int) bool {
	left := new(big.Int).Mul(reserveA.ToBig(), amountB.ToBig())
	right := new(big.Int).Mul(reserveB.ToBig(), amountA.ToBig())
	return left.Cmp(right) == 0
}
