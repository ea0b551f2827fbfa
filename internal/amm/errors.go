package amm

import "errors"

var (
	ErrZeroAmount         = errors.New("amount must be positive")
	ErrImbalancedDeposit  = errors.New("deposit does not match pool ratio")
	ErrDustDeposit        = errors.New("deposit too small to mint shares")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrDustWithdrawal     = errors.New("withdrawal amounts round to zero")
	ErrInsufficientOutput = errors.New("insufficient output amount")
	ErrReentrancy         = errors.New("reentrant call")
	ErrAmountOverflow     = errors.New("amount exceeds 256 bits")
	ErrInvalidFee         = errors.New("fee numerator must be below denominator")
	ErrSameToken          = errors.New("pool tokens must differ")
	ErrZeroToken          = errors.New("pool tokens must be non-zero")
)
