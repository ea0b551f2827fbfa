package token

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

var (
	ErrTransferFailed        = errors.New("token returned false")
	ErrZeroAmount            = errors.New("amount must be positive")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrTokenExists           = errors.New("token already registered")
	ErrUnknownToken          = errors.New("unknown token")
)

// Token is the fungible-token surface the settlement core depends on.
// Implementations signal failure in heterogeneous ways: a non-nil error
// models a revert, a non-nil *false result models an explicit boolean
// failure, and a nil result with nil error models a legacy token that
// returns no data on success. SafeTransfer folds all three into one
// fail-fast contract.
type Token interface {
	Address() common.Address
	BalanceOf(account common.Address) *uint256.Int
	Transfer(caller, to common.Address, amount *uint256.Int) (*bool, error)
	TransferFrom(caller, from, to common.Address, amount *uint256.Int) (*bool, error)
	Approve(caller, spender common.Address, amount *uint256.Int) (*bool, error)
}
