package token

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// fakeToken returns a scripted result from every call.
type fakeToken struct {
	ret *bool
	err error
}

func (f *fakeToken) Address() common.Address { return common.HexToAddress("0xfa4e") }
func (f *fakeToken) BalanceOf(common.Address) *uint256.Int {
	return uint256.NewInt(0)
}
func (f *fakeToken) Transfer(_, _ common.Address, _ *uint256.Int) (*bool, error) {
	return f.ret, f.err
}
func (f *fakeToken) TransferFrom(_, _, _ common.Address, _ *uint256.Int) (*bool, error) {
	return f.ret, f.err
}
func (f *fakeToken) Approve(_, _ common.Address, _ *uint256.Int) (*bool, error) {
	return f.ret, f.err
}

func TestSafeTransferNormalization(t *testing.T) {
	revert := errors.New("revert: paused")
	yes, no := true, false

	tests := []struct {
		name    string
		ret     *bool
		err     error
		wantErr error
	}{
		{name: "revert", ret: nil, err: revert, wantErr: revert},
		{name: "returns false", ret: &no, err: nil, wantErr: ErrTransferFailed},
		{name: "returns true", ret: &yes, err: nil, wantErr: nil},
		{name: "no return data", ret: nil, err: nil, wantErr: nil},
	}

	caller := common.HexToAddress("0x01")
	to := common.HexToAddress("0x02")
	amount := uint256.NewInt(1)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ft := &fakeToken{ret: tc.ret, err: tc.err}

			err := SafeTransfer(ft, caller, to, amount)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("got %v, want %v", err, tc.wantErr)
			}

			if err := SafeTransferFrom(ft, caller, caller, to, amount); !errors.Is(err, tc.wantErr) {
				t.Fatalf("transferFrom: got %v, want %v", err, tc.wantErr)
			}
			if err := SafeApprove(ft, caller, to, amount); !errors.Is(err, tc.wantErr) {
				t.Fatalf("approve: got %v, want %v", err, tc.wantErr)
			}
		})
	}
}
