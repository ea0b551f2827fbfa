package router

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"dotvest/internal/amm"
	"dotvest/internal/journal"
	"dotvest/internal/token"
)

var (
	alice = common.HexToAddress("0xa11ce")
	bob   = common.HexToAddress("0xb0b")
)

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

type fixture struct {
	jnl    *journal.Journal
	ledger *token.Ledger
	router *Router
	tka    *token.StandardToken
	tkb    *token.StandardToken
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	jnl := journal.New()
	ledger := token.NewLedger(jnl)
	tka, err := ledger.CreateToken("TKA")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	tkb, err := ledger.CreateToken("TKB")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	return &fixture{
		jnl:    jnl,
		ledger: ledger,
		router: New(jnl, ledger, nil),
		tka:    tka,
		tkb:    tkb,
	}
}

func (f *fixture) fund(t *testing.T, account common.Address, amountA, amountB uint64) {
	t.Helper()
	if amountA > 0 {
		if err := f.tka.Mint(account, u(amountA)); err != nil {
			t.Fatalf("mint A: %v", err)
		}
		if err := token.SafeApprove(f.tka, account, f.router.Address(), u(amountA)); err != nil {
			t.Fatalf("approve A: %v", err)
		}
	}
	if amountB > 0 {
		if err := f.tkb.Mint(account, u(amountB)); err != nil {
			t.Fatalf("mint B: %v", err)
		}
		if err := token.SafeApprove(f.tkb, account, f.router.Address(), u(amountB)); err != nil {
			t.Fatalf("approve B: %v", err)
		}
	}
}

func (f *fixture) assertRouterDustFree(t *testing.T) {
	t.Helper()
	if got := f.tka.BalanceOf(f.router.Address()); !got.IsZero() {
		t.Fatalf("router retained %s of TKA", got.Dec())
	}
	if got := f.tkb.BalanceOf(f.router.Address()); !got.IsZero() {
		t.Fatalf("router retained %s of TKB", got.Dec())
	}
}

func TestCreatePoolAndSymmetricLookup(t *testing.T) {
	f := newFixture(t)

	pool, err := f.router.CreatePool(f.tka.Address(), f.tkb.Address(), 30)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}

	byXY, err := f.router.Pool(f.tka.Address(), f.tkb.Address())
	if err != nil {
		t.Fatalf("lookup x/y: %v", err)
	}
	byYX, err := f.router.Pool(f.tkb.Address(), f.tka.Address())
	if err != nil {
		t.Fatalf("lookup y/x: %v", err)
	}
	if byXY != pool || byYX != pool {
		t.Fatalf("directory lookups disagree")
	}
}

func TestCreatePoolValidation(t *testing.T) {
	f := newFixture(t)

	if _, err := f.router.CreatePool(f.tka.Address(), f.tka.Address(), 30); !errors.Is(err, amm.ErrSameToken) {
		t.Fatalf("same token: got %v", err)
	}
	if _, err := f.router.CreatePool(common.Address{}, f.tkb.Address(), 30); !errors.Is(err, amm.ErrZeroToken) {
		t.Fatalf("zero token: got %v", err)
	}
	if _, err := f.router.CreatePool(common.HexToAddress("0xdead"), f.tkb.Address(), 30); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("unknown token: got %v", err)
	}
}

func TestDuplicatePoolRejectedWithoutDisturbingExisting(t *testing.T) {
	f := newFixture(t)

	pool, err := f.router.CreatePool(f.tka.Address(), f.tkb.Address(), 30)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	f.fund(t, alice, 1000, 2000)
	if _, err := f.router.AddLiquidity(alice, f.tka.Address(), f.tkb.Address(), u(1000), u(2000)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := f.router.CreatePool(f.tkb.Address(), f.tka.Address(), 50); !errors.Is(err, ErrPoolExists) {
		t.Fatalf("duplicate: got %v", err)
	}

	got, err := f.router.Pool(f.tka.Address(), f.tkb.Address())
	if err != nil || got != pool {
		t.Fatalf("directory entry disturbed")
	}
	wantShares := u(1000)
	if pool.TokenA().Address() == f.tkb.Address() {
		wantShares = u(2000)
	}
	if !pool.TotalShares().Eq(wantShares) {
		t.Fatalf("existing pool state disturbed: total shares %s", pool.TotalShares().Dec())
	}
}

func TestAddLiquidityThroughRouter(t *testing.T) {
	f := newFixture(t)
	pool, err := f.router.CreatePool(f.tka.Address(), f.tkb.Address(), 30)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}

	f.fund(t, alice, 1000, 2000)
	shares, err := f.router.AddLiquidity(alice, f.tka.Address(), f.tkb.Address(), u(1000), u(2000))
	if err != nil {
		t.Fatalf("add liquidity: %v", err)
	}

	// First-deposit baseline: shares equal the canonical A amount.
	wantShares := u(1000)
	if pool.TokenA().Address() == f.tkb.Address() {
		wantShares = u(2000)
	}
	if !shares.Eq(wantShares) {
		t.Fatalf("shares: got %s, want %s", shares.Dec(), wantShares.Dec())
	}
	if !pool.SharesOf(alice).Eq(wantShares) {
		t.Fatalf("shares not credited to caller")
	}
	if got := f.tka.BalanceOf(pool.Address()); !got.Eq(u(1000)) {
		t.Fatalf("pool TKA reserve: %s", got.Dec())
	}
	if got := f.tkb.BalanceOf(pool.Address()); !got.Eq(u(2000)) {
		t.Fatalf("pool TKB reserve: %s", got.Dec())
	}
	f.assertRouterDustFree(t)
}

func TestSwapThroughRouter(t *testing.T) {
	f := newFixture(t)
	if _, err := f.router.CreatePool(f.tka.Address(), f.tkb.Address(), 30); err != nil {
		t.Fatalf("create pool: %v", err)
	}
	f.fund(t, alice, 1000, 1000)
	if _, err := f.router.AddLiquidity(alice, f.tka.Address(), f.tkb.Address(), u(1000), u(1000)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	f.fund(t, bob, 100, 0)
	out, err := f.router.Swap(bob, f.tka.Address(), f.tkb.Address(), u(100))
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if !out.Eq(u(90)) {
		t.Fatalf("amount out: got %s, want 90", out.Dec())
	}
	if got := f.tkb.BalanceOf(bob); !got.Eq(u(90)) {
		t.Fatalf("trader not paid directly: holds %s", got.Dec())
	}
	f.assertRouterDustFree(t)
}

func TestRemoveLiquidityThroughRouter(t *testing.T) {
	f := newFixture(t)
	if _, err := f.router.CreatePool(f.tka.Address(), f.tkb.Address(), 30); err != nil {
		t.Fatalf("create pool: %v", err)
	}
	f.fund(t, alice, 1000, 2000)
	shares, err := f.router.AddLiquidity(alice, f.tka.Address(), f.tkb.Address(), u(1000), u(2000))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	outA, outB, err := f.router.RemoveLiquidity(alice, f.tka.Address(), f.tkb.Address(), shares)
	if err != nil {
		t.Fatalf("remove liquidity: %v", err)
	}
	// Outputs follow the requested pair order regardless of canonical order.
	if !outA.Eq(u(1000)) || !outB.Eq(u(2000)) {
		t.Fatalf("payout: got %s/%s, want 1000/2000", outA.Dec(), outB.Dec())
	}
	if !f.tka.BalanceOf(alice).Eq(u(1000)) || !f.tkb.BalanceOf(alice).Eq(u(2000)) {
		t.Fatalf("round trip not exact")
	}
	f.assertRouterDustFree(t)
}

func TestPoolNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.router.Swap(alice, f.tka.Address(), f.tkb.Address(), u(1)); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("got %v, want ErrPoolNotFound", err)
	}
	if _, _, err := f.router.RemoveLiquidity(alice, f.tka.Address(), f.tkb.Address(), u(1)); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("got %v, want ErrPoolNotFound", err)
	}
}

func TestFailedPoolOperationReturnsPulledFunds(t *testing.T) {
	f := newFixture(t)
	if _, err := f.router.CreatePool(f.tka.Address(), f.tkb.Address(), 30); err != nil {
		t.Fatalf("create pool: %v", err)
	}
	f.fund(t, alice, 1000, 2000)
	if _, err := f.router.AddLiquidity(alice, f.tka.Address(), f.tkb.Address(), u(1000), u(2000)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Wrong ratio: the router has already pulled both amounts when the
	// pool rejects, so the rollback must hand them back.
	f.fund(t, bob, 100, 150)
	_, err := f.router.AddLiquidity(bob, f.tka.Address(), f.tkb.Address(), u(100), u(150))
	if !errors.Is(err, amm.ErrImbalancedDeposit) {
		t.Fatalf("got %v, want ErrImbalancedDeposit", err)
	}
	if !f.tka.BalanceOf(bob).Eq(u(100)) || !f.tkb.BalanceOf(bob).Eq(u(150)) {
		t.Fatalf("pulled funds not returned to caller")
	}
	f.assertRouterDustFree(t)
}
