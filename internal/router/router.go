package router

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"dotvest/internal/amm"
	"dotvest/internal/journal"
	"dotvest/internal/token"
)

var (
	ErrPoolExists   = errors.New("pool already exists for pair")
	ErrPoolNotFound = errors.New("pool does not exist")
	ErrUnknownToken = errors.New("token not registered")
)

// TokenDirectory resolves token addresses to token handles.
type TokenDirectory interface {
	Token(addr common.Address) (token.Token, bool)
}

type pairKey struct {
	x common.Address
	y common.Address
}

// Router owns the pair-to-pool directory and orchestrates fund movement
// for pool operations. Funds always travel caller -> router -> pool, so
// the router is the pool's sole trusted counterparty; it forwards exact
// amounts and retains nothing.
type Router struct {
	addr   common.Address
	jnl    *journal.Journal
	tokens TokenDirectory
	pools  map[pairKey]*amm.Pool
	logger *zap.Logger
}

// New builds a router over the token directory.
func New(jnl *journal.Journal, tokens TokenDirectory, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		addr:   common.BytesToAddress(crypto.Keccak256([]byte("dotvest/router"))[12:]),
		jnl:    jnl,
		tokens: tokens,
		pools:  make(map[pairKey]*amm.Pool),
		logger: logger,
	}
}

func (r *Router) Address() common.Address { return r.addr }

// CreatePool registers a pool for a new pair. The pair is recorded under
// both orderings so lookups are symmetric; a second creation for the
// same pair fails without touching the existing entry.
func (r *Router) CreatePool(tokenX, tokenY common.Address, feeNumerator uint64) (*amm.Pool, error) {
	if tokenX == (common.Address{}) || tokenY == (common.Address{}) {
		return nil, amm.ErrZeroToken
	}
	if tokenX == tokenY {
		return nil, amm.ErrSameToken
	}
	tx, ok := r.tokens.Token(tokenX)
	if !ok {
		return nil, fmt.Errorf("%s: %w", tokenX.Hex(), ErrUnknownToken)
	}
	ty, ok := r.tokens.Token(tokenY)
	if !ok {
		return nil, fmt.Errorf("%s: %w", tokenY.Hex(), ErrUnknownToken)
	}
	if _, exists := r.pools[pairKey{tokenX, tokenY}]; exists {
		return nil, fmt.Errorf("%s/%s: %w", tokenX.Hex(), tokenY.Hex(), ErrPoolExists)
	}

	pool, err := amm.NewPool(r.jnl, tx, ty, feeNumerator, r.logger)
	if err != nil {
		return nil, err
	}
	r.pools[pairKey{tokenX, tokenY}] = pool
	r.pools[pairKey{tokenY, tokenX}] = pool

	r.logger.Info("pool created",
		zap.String("pool", pool.Address().Hex()),
		zap.String("token_a", pool.TokenA().Address().Hex()),
		zap.String("token_b", pool.TokenB().Address().Hex()),
		zap.Uint64("fee_numerator", feeNumerator),
	)
	return pool, nil
}

// Pool resolves the pool for a pair in either order.
func (r *Router) Pool(tokenX, tokenY common.Address) (*amm.Pool, error) {
	pool, ok := r.pools[pairKey{tokenX, tokenY}]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", tokenX.Hex(), tokenY.Hex(), ErrPoolNotFound)
	}
	return pool, nil
}

// AddLiquidity pulls both amounts from the caller, forwards them to the
// pool, and credits the minted shares to the caller. The caller must
// have approved the router for both amounts.
func (r *Router) AddLiquidity(caller, tokenX, tokenY common.Address, amountX, amountY *uint256.Int) (*uint256.Int, error) {
	pool, err := r.Pool(tokenX, tokenY)
	if err != nil {
		return nil, err
	}
	amountA, amountB := amountX, amountY
	if pool.TokenA().Address() != tokenX {
		amountA, amountB = amountY, amountX
	}

	snap := r.jnl.Snapshot()
	shares, err := r.addLiquidity(pool, caller, amountA, amountB)
	if err != nil {
		r.jnl.RevertTo(snap)
		return nil, err
	}
	return shares, nil
}

func (r *Router) addLiquidity(pool *amm.Pool, caller common.Address, amountA, amountB *uint256.Int) (*uint256.Int, error) {
	if err := r.pullAndApprove(pool.TokenA(), caller, pool.Address(), amountA); err != nil {
		return nil, err
	}
	if err := r.pullAndApprove(pool.TokenB(), caller, pool.Address(), amountB); err != nil {
		return nil, err
	}
	return pool.AddLiquidity(r.addr, caller, amountA, amountB)
}

// RemoveLiquidity burns the caller's shares; the pool pays the caller
// directly, so no funds pass through the router. Outputs are returned in
// the order of the requested pair.
func (r *Router) RemoveLiquidity(caller, tokenX, tokenY common.Address, shares *uint256.Int) (*uint256.Int, *uint256.Int, error) {
	pool, err := r.Pool(tokenX, tokenY)
	if err != nil {
		return nil, nil, err
	}

	snap := r.jnl.Snapshot()
	amountA, amountB, err := pool.RemoveLiquidity(caller, caller, shares)
	if err != nil {
		r.jnl.RevertTo(snap)
		return nil, nil, err
	}
	if pool.TokenA().Address() != tokenX {
		amountA, amountB = amountB, amountA
	}
	return amountA, amountB, nil
}

// Swap pulls the input token from the caller, forwards it to the pool,
// and has the pool pay the output directly to the caller.
func (r *Router) Swap(caller, tokenIn, tokenOut common.Address, amountIn *uint256.Int) (*uint256.Int, error) {
	pool, err := r.Pool(tokenIn, tokenOut)
	if err != nil {
		return nil, err
	}
	dir := amm.AToB
	in := pool.TokenA()
	if pool.TokenA().Address() != tokenIn {
		dir = amm.BToA
		in = pool.TokenB()
	}

	snap := r.jnl.Snapshot()
	out, err := r.swap(pool, in, caller, dir, amountIn)
	if err != nil {
		r.jnl.RevertTo(snap)
		return nil, err
	}
	return out, nil
}

func (r *Router) swap(pool *amm.Pool, in token.Token, caller common.Address, dir amm.Direction, amountIn *uint256.Int) (*uint256.Int, error) {
	if err := r.pullAndApprove(in, caller, pool.Address(), amountIn); err != nil {
		return nil, err
	}
	return pool.Swap(r.addr, caller, dir, amountIn)
}

// pullAndApprove moves an exact amount from the caller into router
// custody and grants the pool the right to pull exactly that amount.
func (r *Router) pullAndApprove(t token.Token, caller, pool common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return amm.ErrZeroAmount
	}
	if err := token.SafeTransferFrom(t, r.addr, caller, r.addr, amount); err != nil {
		return err
	}
	return token.SafeApprove(t, r.addr, pool, amount)
}
