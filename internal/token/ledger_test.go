package token

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"dotvest/internal/journal"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
	carol = common.HexToAddress("0xca401")
)

func newTestToken(t *testing.T) (*journal.Journal, *StandardToken) {
	t.Helper()
	jnl := journal.New()
	ledger := NewLedger(jnl)
	tok, err := ledger.CreateToken("TKA")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return jnl, tok
}

func TestTransferMovesBalance(t *testing.T) {
	_, tok := newTestToken(t)
	if err := tok.Mint(alice, uint256.NewInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := SafeTransfer(tok, alice, bob, uint256.NewInt(400)); err != nil {
		t.Fatalf("transfer: %v", err)
	}

	if got := tok.BalanceOf(alice); !got.Eq(uint256.NewInt(600)) {
		t.Fatalf("alice balance: %s", got.Dec())
	}
	if got := tok.BalanceOf(bob); !got.Eq(uint256.NewInt(400)) {
		t.Fatalf("bob balance: %s", got.Dec())
	}
}

func TestTransferInsufficientBalanceReverts(t *testing.T) {
	_, tok := newTestToken(t)
	if err := tok.Mint(alice, uint256.NewInt(10)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	err := SafeTransfer(tok, alice, bob, uint256.NewInt(11))
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}
	if got := tok.BalanceOf(alice); !got.Eq(uint256.NewInt(10)) {
		t.Fatalf("alice balance mutated: %s", got.Dec())
	}
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	_, tok := newTestToken(t)
	if err := tok.Mint(alice, uint256.NewInt(1000)); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if err := SafeApprove(tok, alice, carol, uint256.NewInt(300)); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if err := SafeTransferFrom(tok, carol, alice, bob, uint256.NewInt(300)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}
	if got := tok.Allowance(alice, carol); !got.IsZero() {
		t.Fatalf("allowance not consumed: %s", got.Dec())
	}

	err := SafeTransferFrom(tok, carol, alice, bob, uint256.NewInt(1))
	if !errors.Is(err, ErrInsufficientAllowance) {
		t.Fatalf("got %v, want ErrInsufficientAllowance", err)
	}
}

func TestJournalRevertRestoresBalancesAndAllowances(t *testing.T) {
	jnl, tok := newTestToken(t)
	if err := tok.Mint(alice, uint256.NewInt(500)); err != nil {
		t.Fatalf("mint: %v", err)
	}

	snap := jnl.Snapshot()
	if err := SafeApprove(tok, alice, carol, uint256.NewInt(100)); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if err := SafeTransferFrom(tok, carol, alice, bob, uint256.NewInt(100)); err != nil {
		t.Fatalf("transferFrom: %v", err)
	}

	jnl.RevertTo(snap)

	if got := tok.BalanceOf(alice); !got.Eq(uint256.NewInt(500)) {
		t.Fatalf("alice balance after revert: %s", got.Dec())
	}
	if got := tok.BalanceOf(bob); !got.IsZero() {
		t.Fatalf("bob balance after revert: %s", got.Dec())
	}
	if got := tok.Allowance(alice, carol); !got.IsZero() {
		t.Fatalf("allowance after revert: %s", got.Dec())
	}
}

func TestCreateTokenDeterministicAndUnique(t *testing.T) {
	jnl := journal.New()
	ledger := NewLedger(jnl)

	a, err := ledger.CreateToken("TKA")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := ledger.CreateToken("TKA"); !errors.Is(err, ErrTokenExists) {
		t.Fatalf("duplicate create: got %v, want ErrTokenExists", err)
	}

	other := NewLedger(journal.New())
	b, err := other.CreateToken("TKA")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.Address() != b.Address() {
		t.Fatalf("addresses differ: %s vs %s", a.Address().Hex(), b.Address().Hex())
	}

	got, ok := ledger.Token(a.Address())
	if !ok || got.Address() != a.Address() {
		t.Fatalf("resolve failed")
	}
}
