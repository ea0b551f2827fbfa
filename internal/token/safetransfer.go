package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// SafeTransfer moves amount from caller to recipient, treating a revert
// or an explicit false return as failure and a missing return value as
// success.
func SafeTransfer(t Token, caller, to common.Address, amount *uint256.Int) error {
	ok, err := t.Transfer(caller, to, amount)
	return normalize("transfer", t, ok, err)
}

// SafeTransferFrom pulls amount from the approved owner to recipient.
func SafeTransferFrom(t Token, caller, from, to common.Address, amount *uint256.Int) error {
	ok, err := t.TransferFrom(caller, from, to, amount)
	return normalize("transferFrom", t, ok, err)
}

// SafeApprove grants spender the right to pull amount from caller.
func SafeApprove(t Token, caller, spender common.Address, amount *uint256.Int) error {
	ok, err := t.Approve(caller, spender, amount)
	return normalize("approve", t, ok, err)
}

func normalize(op string, t Token, ret *bool, err error) error {
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, t.Address().Hex(), err)
	}
	if ret != nil && !*ret {
		return fmt.Errorf("%s %s: %w", op, t.Address().Hex(), ErrTransferFailed)
	}
	return nil
}
