package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"dotvest/internal/access"
	"dotvest/internal/identity"
	"dotvest/internal/journal"
	"dotvest/internal/model"
	"dotvest/internal/oracle"
	"dotvest/internal/router"
	"dotvest/internal/storage"
	"dotvest/internal/token"
)

// RunConfig holds runtime settings for the settlement engine.
type RunConfig struct {
	Admin             common.Address
	CheckpointPath    string
	CheckpointEnabled bool
	MaxRetries        int
	RetryBackoff      time.Duration
	BatchSize         int
}

// Runner applies a serialized instruction stream to the settlement core
// and writes committed events to storage. Instructions run strictly in
// order, one to completion at a time; a failed instruction leaves no
// state behind and the stream continues.
type Runner struct {
	cfg     RunConfig
	jnl     *journal.Journal
	ledger  *token.Ledger
	router  *router.Router
	acl     *access.Controller
	oracle  *oracle.Oracle
	names   *identity.Registry
	storage storage.Storage
	logger  *zap.Logger

	checkpoint *CheckpointStore
	seq        uint64
	pending    []model.EventRecord
	now        func() time.Time
}

// NewRunner builds a runner with a fresh settlement core.
func NewRunner(cfg RunConfig, storageSink storage.Storage, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	jnl := journal.New()
	ledger := token.NewLedger(jnl)
	acl := access.NewController(cfg.Admin, logger)
	return &Runner{
		cfg:        cfg,
		jnl:        jnl,
		ledger:     ledger,
		router:     router.New(jnl, ledger, logger),
		acl:        acl,
		oracle:     oracle.New(acl, logger),
		names:      identity.New(acl, logger),
		storage:    storageSink,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
		now:        time.Now,
	}
}

// Router exposes the pool directory for inspection.
func (r *Runner) Router() *router.Router { return r.router }

// Ledger exposes the token directory for inspection.
func (r *Runner) Ledger() *token.Ledger { return r.ledger }

// ApplyGenesis seeds tokens, balances, and roles before the stream runs.
func (r *Runner) ApplyGenesis(g model.Genesis) error {
	for _, gt := range g.Tokens {
		t, err := r.ledger.CreateToken(gt.Symbol)
		if err != nil {
			return fmt.Errorf("genesis token %s: %w", gt.Symbol, err)
		}
		for account, amount := range gt.Balances {
			addr, err := parseAddress(account)
			if err != nil {
				return fmt.Errorf("genesis balance for %s: %w", gt.Symbol, err)
			}
			value, err := parseAmount(amount)
			if err != nil {
				return fmt.Errorf("genesis balance for %s: %w", gt.Symbol, err)
			}
			if err := t.Mint(addr, value); err != nil {
				return fmt.Errorf("genesis mint %s: %w", gt.Symbol, err)
			}
		}
		r.logger.Info("genesis token created",
			zap.String("symbol", gt.Symbol),
			zap.String("address", t.Address().Hex()),
			zap.Int("holders", len(gt.Balances)),
		)
	}
	for _, gr := range g.Roles {
		role := access.RoleID(gr.Role)
		for _, account := range gr.Accounts {
			addr, err := parseAddress(account)
			if err != nil {
				return fmt.Errorf("genesis role %s: %w", gr.Role, err)
			}
			if err := r.acl.Grant(r.cfg.Admin, role, addr); err != nil {
				return fmt.Errorf("genesis role %s: %w", gr.Role, err)
			}
		}
	}
	return nil
}

// Run applies the instruction stream, resuming past any checkpointed
// prefix and flushing committed events in batches.
func (r *Runner) Run(ctx context.Context, instructions []model.Instruction) error {
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}

	cp, found, err := r.checkpoint.Load()
	if err != nil {
		return err
	}
	start := uint64(0)
	if found {
		start = cp.LastProcessedSeq
		r.logger.Info("resuming from checkpoint", zap.Uint64("last_processed_seq", start))
	}

	applied, failed := 0, 0
	for i, instr := range instructions {
		seq := uint64(i) + 1
		if seq <= start {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		r.seq = seq
		if err := r.apply(instr); err != nil {
			failed++
			r.logger.Warn("instruction rejected",
				zap.Uint64("seq", seq),
				zap.String("op", instr.Op),
				zap.Error(err),
			)
		} else {
			applied++
		}
		// Committed writes stay; the journal only needs to cover the
		// operation in flight.
		r.jnl.Reset()

		if len(r.pending) >= r.cfg.BatchSize {
			if err := r.flush(ctx, seq); err != nil {
				return err
			}
		}
	}

	if err := r.flush(ctx, uint64(len(instructions))); err != nil {
		return err
	}

	r.logger.Info("stream complete",
		zap.Int("applied", applied),
		zap.Int("rejected", failed),
	)
	return nil
}

func (r *Runner) flush(ctx context.Context, seq uint64) error {
	if len(r.pending) > 0 {
		batch := r.pending
		err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(context.Context) error {
			return r.storage.PutEventBatch(batch)
		})
		if err != nil {
			return fmt.Errorf("write events: %w", err)
		}
		r.pending = r.pending[:0]
	}
	if err := r.checkpoint.Save(seq); err != nil {
		return err
	}
	return nil
}

func (r *Runner) apply(instr model.Instruction) error {
	switch instr.Op {
	case model.OpCreateToken:
		_, err := r.ledger.CreateToken(instr.Symbol)
		return err

	case model.OpMint:
		t, err := r.standardToken(instr.Token)
		if err != nil {
			return err
		}
		to, err := parseAddress(instr.To)
		if err != nil {
			return err
		}
		amount, err := parseAmount(instr.Amount)
		if err != nil {
			return err
		}
		return t.Mint(to, amount)

	case model.OpApprove:
		caller, err := parseAddress(instr.Caller)
		if err != nil {
			return err
		}
		t, err := r.token(instr.Token)
		if err != nil {
			return err
		}
		spender := r.router.Address()
		if instr.Spender != "" {
			if spender, err = parseAddress(instr.Spender); err != nil {
				return err
			}
		}
		amount, err := parseAmount(instr.Amount)
		if err != nil {
			return err
		}
		return token.SafeApprove(t, caller, spender, amount)

	case model.OpCreatePool:
		tokenA, err := parseAddress(instr.TokenA)
		if err != nil {
			return err
		}
		tokenB, err := parseAddress(instr.TokenB)
		if err != nil {
			return err
		}
		pool, err := r.router.CreatePool(tokenA, tokenB, instr.FeeNumerator)
		if err != nil {
			return err
		}
		r.emit(model.EventPoolCreated, model.EventRecord{
			PoolCreated: &model.PoolCreatedData{
				Pool:         pool.Address().Hex(),
				TokenA:       pool.TokenA().Address().Hex(),
				TokenB:       pool.TokenB().Address().Hex(),
				FeeNumerator: pool.FeeNumerator(),
			},
		})
		return nil

	case model.OpAddLiquidity:
		caller, err := parseAddress(instr.Caller)
		if err != nil {
			return err
		}
		tokenA, err := parseAddress(instr.TokenA)
		if err != nil {
			return err
		}
		tokenB, err := parseAddress(instr.TokenB)
		if err != nil {
			return err
		}
		amountA, err := parseAmount(instr.AmountA)
		if err != nil {
			return err
		}
		amountB, err := parseAmount(instr.AmountB)
		if err != nil {
			return err
		}
		shares, err := r.router.AddLiquidity(caller, tokenA, tokenB, amountA, amountB)
		if err != nil {
			return err
		}
		pool, err := r.router.Pool(tokenA, tokenB)
		if err != nil {
			return err
		}
		canonicalA, canonicalB := amountA, amountB
		if pool.TokenA().Address() != tokenA {
			canonicalA, canonicalB = amountB, amountA
		}
		r.emit(model.EventLiquidityAdded, model.EventRecord{
			LiquidityAdded: &model.LiquidityAddedData{
				Pool:         pool.Address().Hex(),
				Provider:     caller.Hex(),
				AmountA:      canonicalA.Dec(),
				AmountB:      canonicalB.Dec(),
				SharesMinted: shares.Dec(),
			},
		})
		return nil

	case model.OpRemoveLiquidity:
		caller, err := parseAddress(instr.Caller)
		if err != nil {
			return err
		}
		tokenA, err := parseAddress(instr.TokenA)
		if err != nil {
			return err
		}
		tokenB, err := parseAddress(instr.TokenB)
		if err != nil {
			return err
		}
		shares, err := parseAmount(instr.Shares)
		if err != nil {
			return err
		}
		amountA, amountB, err := r.router.RemoveLiquidity(caller, tokenA, tokenB, shares)
		if err != nil {
			return err
		}
		pool, err := r.router.Pool(tokenA, tokenB)
		if err != nil {
			return err
		}
		canonicalA, canonicalB := amountA, amountB
		if pool.TokenA().Address() != tokenA {
			canonicalA, canonicalB = amountB, amountA
		}
		r.emit(model.EventLiquidityRemoved, model.EventRecord{
			LiquidityRemoved: &model.LiquidityRemovedData{
				Pool:         pool.Address().Hex(),
				Provider:     caller.Hex(),
				AmountA:      canonicalA.Dec(),
				AmountB:      canonicalB.Dec(),
				SharesBurned: shares.Dec(),
			},
		})
		return nil

	case model.OpSwap:
		caller, err := parseAddress(instr.Caller)
		if err != nil {
			return err
		}
		tokenIn, err := parseAddress(instr.TokenIn)
		if err != nil {
			return err
		}
		tokenOut, err := parseAddress(instr.TokenOut)
		if err != nil {
			return err
		}
		amountIn, err := parseAmount(instr.AmountIn)
		if err != nil {
			return err
		}
		amountOut, err := r.router.Swap(caller, tokenIn, tokenOut, amountIn)
		if err != nil {
			return err
		}
		pool, err := r.router.Pool(tokenIn, tokenOut)
		if err != nil {
			return err
		}
		r.emit(model.EventSwap, model.EventRecord{
			Swap: &model.SwapData{
				Pool:      pool.Address().Hex(),
				Trader:    caller.Hex(),
				TokenIn:   tokenIn.Hex(),
				TokenOut:  tokenOut.Hex(),
				AmountIn:  amountIn.Dec(),
				AmountOut: amountOut.Dec(),
			},
		})
		return nil

	case model.OpGrantRole, model.OpRevokeRole:
		caller, err := parseAddress(instr.Caller)
		if err != nil {
			return err
		}
		account, err := parseAddress(instr.Account)
		if err != nil {
			return err
		}
		role := access.RoleID(instr.Role)
		if instr.Op == model.OpGrantRole {
			return r.acl.Grant(caller, role, account)
		}
		return r.acl.Revoke(caller, role, account)

	case model.OpSetPrice:
		caller, err := parseAddress(instr.Caller)
		if err != nil {
			return err
		}
		price, err := parseAmount(instr.Price)
		if err != nil {
			return err
		}
		return r.oracle.SetPrice(caller, instr.Symbol, price)

	case model.OpRegisterIdentity:
		caller, err := parseAddress(instr.Caller)
		if err != nil {
			return err
		}
		account, err := parseAddress(instr.Account)
		if err != nil {
			return err
		}
		return r.names.Register(caller, instr.Name, account)

	default:
		return fmt.Errorf("unknown op %q", instr.Op)
	}
}

func (r *Runner) emit(eventType string, rec model.EventRecord) {
	rec.ID = uuid.New().String()
	rec.Seq = r.seq
	rec.Type = eventType
	rec.EmittedAt = r.now().UTC().Format(time.RFC3339Nano)
	r.pending = append(r.pending, rec)
}

func (r *Runner) token(s string) (token.Token, error) {
	addr, err := parseAddress(s)
	if err != nil {
		return nil, err
	}
	t, ok := r.ledger.Token(addr)
	if !ok {
		return nil, fmt.Errorf("%s: %w", addr.Hex(), router.ErrUnknownToken)
	}
	return t, nil
}

func (r *Runner) standardToken(s string) (*token.StandardToken, error) {
	t, err := r.token(s)
	if err != nil {
		return nil, err
	}
	st, ok := t.(*token.StandardToken)
	if !ok {
		return nil, fmt.Errorf("%s is not a ledger token", t.Address().Hex())
	}
	return st, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

func parseAmount(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("amount is required")
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return v, nil
}
