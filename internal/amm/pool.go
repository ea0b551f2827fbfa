package amm

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"dotvest/internal/journal"
	"dotvest/internal/token"
)

// Direction selects which pool token is swapped in.
type Direction int

const (
	AToB Direction = iota
	BToA
)

func (d Direction) String() string {
	if d == AToB {
		return "a_to_b"
	}
	return "b_to_a"
}

// Pool is a constant-product market for one canonical token pair.
// Reserves are never cached: every read goes to the tokens' own ledgers
// via BalanceOf, so invariant checks always see post-transfer state.
//
// The first deposit mints amountA shares regardless of amountB, which
// lets the first provider set an arbitrary initial exchange rate with no
// sanity check. Kept for behavioral parity with the deployed system;
// changing it would change observable pricing.
type Pool struct {
	addr         common.Address
	tokenA       token.Token
	tokenB       token.Token
	feeNumerator uint64

	totalShares *uint256.Int
	sharesOf    map[common.Address]*uint256.Int

	jnl    *journal.Journal
	lock   reentryGuard
	logger *zap.Logger
}

// NewPool creates a pool for the pair, ordering the tokens canonically
// (lower address first) and deriving the pool's own account address from
// the ordered pair.
func NewPool(jnl *journal.Journal, tokenX, tokenY token.Token, feeNumerator uint64, logger *zap.Logger) (*Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if tokenX == nil || tokenY == nil {
		return nil, ErrZeroToken
	}
	a, b := tokenX, tokenY
	if bytes.Compare(a.Address().Bytes(), b.Address().Bytes()) > 0 {
		a, b = b, a
	}
	if a.Address() == (common.Address{}) || b.Address() == (common.Address{}) {
		return nil, ErrZeroToken
	}
	if a.Address() == b.Address() {
		return nil, ErrSameToken
	}
	if feeNumerator >= FeeDenominator {
		return nil, ErrInvalidFee
	}

	addr := common.BytesToAddress(crypto.Keccak256(a.Address().Bytes(), b.Address().Bytes())[12:])

	return &Pool{
		addr:         addr,
		tokenA:       a,
		tokenB:       b,
		feeNumerator: feeNumerator,
		totalShares:  uint256.NewInt(0),
		sharesOf:     make(map[common.Address]*uint256.Int),
		jnl:          jnl,
		logger:       logger,
	}, nil
}

func (p *Pool) Address() common.Address { return p.addr }
func (p *Pool) TokenA() token.Token     { return p.tokenA }
func (p *Pool) TokenB() token.Token     { return p.tokenB }
func (p *Pool) FeeNumerator() uint64    { return p.feeNumerator }

// Reserves reads both live balances held by the pool.
func (p *Pool) Reserves() (*uint256.Int, *uint256.Int) {
	return p.tokenA.BalanceOf(p.addr), p.tokenB.BalanceOf(p.addr)
}

// TotalShares returns the outstanding share supply.
func (p *Pool) TotalShares() *uint256.Int {
	return p.totalShares.Clone()
}

// SharesOf returns a provider's share balance; absence means zero.
func (p *Pool) SharesOf(provider common.Address) *uint256.Int {
	if s, ok := p.sharesOf[provider]; ok {
		return s.Clone()
	}
	return uint256.NewInt(0)
}

// AddLiquidity pulls amountA/amountB from the funding account and mints
// shares to the provider. Non-first deposits must match the reserve
// ratio exactly. The funding account must have approved the pool.
func (p *Pool) AddLiquidity(from, provider common.Address, amountA, amountB *uint256.Int) (*uint256.Int, error) {
	if err := p.lock.enter(); err != nil {
		return nil, err
	}
	defer p.lock.exit()

	snap := p.jnl.Snapshot()
	shares, err := p.addLiquidity(from, provider, amountA, amountB)
	if err != nil {
		p.jnl.RevertTo(snap)
		return nil, err
	}
	return shares, nil
}

func (p *Pool) addLiquidity(from, provider common.Address, amountA, amountB *uint256.Int) (*uint256.Int, error) {
	if isZero(amountA) || isZero(amountB) {
		return nil, ErrZeroAmount
	}

	reserveA, reserveB := p.Reserves()

	var shares *uint256.Int
	if p.totalShares.IsZero() {
		// First deposit defines the price baseline; see type comment.
		shares = amountA.Clone()
	} else {
		if !RatioMatches(reserveA, reserveB, amountA, amountB) {
			return nil, fmt.Errorf("reserves %s/%s, deposit %s/%s: %w",
				reserveA.Dec(), reserveB.Dec(), amountA.Dec(), amountB.Dec(), ErrImbalancedDeposit)
		}
		var err error
		shares, err = DepositShares(amountA, p.totalShares, reserveA)
		if err != nil {
			return nil, err
		}
		if shares.IsZero() {
			return nil, ErrDustDeposit
		}
	}

	if err := token.SafeTransferFrom(p.tokenA, p.addr, from, p.addr, amountA); err != nil {
		return nil, err
	}
	if err := token.SafeTransferFrom(p.tokenB, p.addr, from, p.addr, amountB); err != nil {
		return nil, err
	}

	newTotal, overflow := new(uint256.Int).AddOverflow(p.totalShares, shares)
	if overflow {
		return nil, ErrAmountOverflow
	}
	p.setTotalShares(newTotal)
	p.setShares(provider, new(uint256.Int).Add(p.SharesOf(provider), shares))

	p.logger.Debug("liquidity added",
		zap.String("pool", p.addr.Hex()),
		zap.String("provider", provider.Hex()),
		zap.String("amount_a", amountA.Dec()),
		zap.String("amount_b", amountB.Dec()),
		zap.String("shares", shares.Dec()),
	)
	return shares, nil
}

// RemoveLiquidity burns the provider's shares and pays the pro-rata
// reserves to the recipient. Shares are burned before the transfers go
// out; a failed transfer reverts the burn.
func (p *Pool) RemoveLiquidity(provider, to common.Address, shares *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if err := p.lock.enter(); err != nil {
		return nil, nil, err
	}
	defer p.lock.exit()

	snap := p.jnl.Snapshot()
	amountA, amountB, err := p.removeLiquidity(provider, to, shares)
	if err != nil {
		p.jnl.RevertTo(snap)
		return nil, nil, err
	}
	return amountA, amountB, nil
}

func (p *Pool) removeLiquidity(provider, to common.Address, shares *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	if isZero(shares) {
		return nil, nil, ErrZeroAmount
	}
	owned := p.SharesOf(provider)
	if owned.Lt(shares) {
		return nil, nil, fmt.Errorf("%s owns %s, burning %s: %w",
			provider.Hex(), owned.Dec(), shares.Dec(), ErrInsufficientShares)
	}

	reserveA, reserveB := p.Reserves()
	amountA := RedeemAmount(reserveA, shares, p.totalShares)
	amountB := RedeemAmount(reserveB, shares, p.totalShares)
	if amountA.IsZero() || amountB.IsZero() {
		return nil, nil, ErrDustWithdrawal
	}

	p.setTotalShares(new(uint256.Int).Sub(p.totalShares, shares))
	p.setShares(provider, new(uint256.Int).Sub(owned, shares))

	if err := token.SafeTransfer(p.tokenA, p.addr, to, amountA); err != nil {
		return nil, nil, err
	}
	if err := token.SafeTransfer(p.tokenB, p.addr, to, amountB); err != nil {
		return nil, nil, err
	}

	p.logger.Debug("liquidity removed",
		zap.String("pool", p.addr.Hex()),
		zap.String("provider", provider.Hex()),
		zap.String("amount_a", amountA.Dec()),
		zap.String("amount_b", amountB.Dec()),
		zap.String("shares", shares.Dec()),
	)
	return amountA, amountB, nil
}

// Swap pulls amountIn of the input token from the funding account and
// pays the constant-product output to the recipient. Output is computed
// from pre-transfer reserves with amountIn added algebraically, so the
// price already reflects the incoming funds.
func (p *Pool) Swap(from, to common.Address, dir Direction, amountIn *uint256.Int) (*uint256.Int, error) {
	if err := p.lock.enter(); err != nil {
		return nil, err
	}
	defer p.lock.exit()

	snap := p.jnl.Snapshot()
	out, err := p.swap(from, to, dir, amountIn)
	if err != nil {
		p.jnl.RevertTo(snap)
		return nil, err
	}
	return out, nil
}

func (p *Pool) swap(from, to common.Address, dir Direction, amountIn *uint256.Int) (*uint256.Int, error) {
	if isZero(amountIn) {
		return nil, ErrZeroAmount
	}

	tokenIn, tokenOut := p.tokenA, p.tokenB
	if dir == BToA {
		tokenIn, tokenOut = p.tokenB, p.tokenA
	}
	reserveIn := tokenIn.BalanceOf(p.addr)
	reserveOut := tokenOut.BalanceOf(p.addr)

	if err := token.SafeTransferFrom(tokenIn, p.addr, from, p.addr, amountIn); err != nil {
		return nil, err
	}

	amountOut, err := SwapOutput(reserveIn, reserveOut, amountIn, p.feeNumerator)
	if err != nil {
		return nil, err
	}
	if amountOut.IsZero() {
		return nil, ErrInsufficientOutput
	}

	if err := token.SafeTransfer(tokenOut, p.addr, to, amountOut); err != nil {
		return nil, err
	}

	p.logger.Debug("swap executed",
		zap.String("pool", p.addr.Hex()),
		zap.String("trader", to.Hex()),
		zap.String("direction", dir.String()),
		zap.String("amount_in", amountIn.Dec()),
		zap.String("amount_out", amountOut.Dec()),
	)
	return amountOut, nil
}

// setShares journals the previous value; a zero balance removes the
// entry so absence always means zero.
func (p *Pool) setShares(provider common.Address, v *uint256.Int) {
	old, existed := p.sharesOf[provider]
	p.jnl.Append(func() {
		if existed {
			p.sharesOf[provider] = old
		} else {
			delete(p.sharesOf, provider)
		}
	})
	if v.IsZero() {
		delete(p.sharesOf, provider)
	} else {
		p.sharesOf[provider] = v.Clone()
	}
}

func (p *Pool) setTotalShares(v *uint256.Int) {
	old := p.totalShares
	p.jnl.Append(func() { p.totalShares = old })
	p.totalShares = v.Clone()
}

func isZero(v *uint256.Int) bool {
	return v == nil || v.IsZero()
}
