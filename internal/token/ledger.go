package token

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"

	"dotvest/internal/journal"
)

// Ledger owns every token known to the settlement core and resolves
// token addresses for the router. All balance and allowance writes of
// ledger-issued tokens go through the shared journal, so a failed
// operation restores them exactly.
type Ledger struct {
	jnl      *journal.Journal
	tokens   map[common.Address]Token
	bySymbol map[string]common.Address
}

// NewLedger returns an empty ledger bound to the journal.
func NewLedger(jnl *journal.Journal) *Ledger {
	return &Ledger{
		jnl:      jnl,
		tokens:   make(map[common.Address]Token),
		bySymbol: make(map[string]common.Address),
	}
}

// CreateToken issues a new ledger-backed token. The address is derived
// from the symbol so a genesis document replays deterministically.
func (l *Ledger) CreateToken(symbol string) (*StandardToken, error) {
	if symbol == "" {
		return nil, fmt.Errorf("token symbol is required")
	}
	addr := common.BytesToAddress(crypto.Keccak256([]byte("dotvest/token/" + symbol))[12:])
	if _, exists := l.tokens[addr]; exists {
		return nil, fmt.Errorf("token %s: %w", symbol, ErrTokenExists)
	}

	t := &StandardToken{
		addr:       addr,
		symbol:     symbol,
		jnl:        l.jnl,
		balances:   make(map[common.Address]*uint256.Int),
		allowances: make(map[common.Address]map[common.Address]*uint256.Int),
	}
	l.tokens[addr] = t
	l.bySymbol[symbol] = addr
	return t, nil
}

// TokenBySymbol resolves a ledger-issued token by its symbol.
func (l *Ledger) TokenBySymbol(symbol string) (Token, bool) {
	addr, ok := l.bySymbol[symbol]
	if !ok {
		return nil, false
	}
	return l.tokens[addr], true
}

// Register adds an externally implemented token to the directory.
func (l *Ledger) Register(t Token) error {
	if _, exists := l.tokens[t.Address()]; exists {
		return fmt.Errorf("token %s: %w", t.Address().Hex(), ErrTokenExists)
	}
	l.tokens[t.Address()] = t
	return nil
}

// Token resolves a token by address.
func (l *Ledger) Token(addr common.Address) (Token, bool) {
	t, ok := l.tokens[addr]
	return t, ok
}

// StandardToken is a well-behaved fungible token held in the ledger:
// transfers revert on insufficient funds and return true on success.
type StandardToken struct {
	addr       common.Address
	symbol     string
	jnl        *journal.Journal
	balances   map[common.Address]*uint256.Int
	allowances map[common.Address]map[common.Address]*uint256.Int
}

func (t *StandardToken) Address() common.Address { return t.addr }

func (t *StandardToken) Symbol() string { return t.symbol }

// BalanceOf returns a copy of the account balance; absent accounts hold zero.
func (t *StandardToken) BalanceOf(account common.Address) *uint256.Int {
	if b, ok := t.balances[account]; ok {
		return b.Clone()
	}
	return uint256.NewInt(0)
}

// Allowance returns a copy of the remaining spending right.
func (t *StandardToken) Allowance(owner, spender common.Address) *uint256.Int {
	if row, ok := t.allowances[owner]; ok {
		if a, ok := row[spender]; ok {
			return a.Clone()
		}
	}
	return uint256.NewInt(0)
}

// Mint credits freshly issued units to an account.
func (t *StandardToken) Mint(to common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	balance := t.BalanceOf(to)
	sum, overflow := new(uint256.Int).AddOverflow(balance, amount)
	if overflow {
		return fmt.Errorf("mint %s to %s: balance overflow", t.symbol, to.Hex())
	}
	t.setBalance(to, sum)
	return nil
}

func (t *StandardToken) Transfer(caller, to common.Address, amount *uint256.Int) (*bool, error) {
	if err := t.move(caller, to, amount); err != nil {
		return nil, err
	}
	return boolPtr(true), nil
}

func (t *StandardToken) TransferFrom(caller, from, to common.Address, amount *uint256.Int) (*bool, error) {
	if caller != from {
		if err := t.spendAllowance(from, caller, amount); err != nil {
			return nil, err
		}
	}
	if err := t.move(from, to, amount); err != nil {
		return nil, err
	}
	return boolPtr(true), nil
}

func (t *StandardToken) Approve(caller, spender common.Address, amount *uint256.Int) (*bool, error) {
	if amount == nil {
		return nil, ErrZeroAmount
	}
	t.setAllowance(caller, spender, amount)
	return boolPtr(true), nil
}

func (t *StandardToken) move(from, to common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	fromBalance := t.BalanceOf(from)
	if fromBalance.Lt(amount) {
		return fmt.Errorf("%s: %s has %s, needs %s: %w",
			t.symbol, from.Hex(), fromBalance.Dec(), amount.Dec(), ErrInsufficientBalance)
	}
	toBalance := t.BalanceOf(to)
	sum, overflow := new(uint256.Int).AddOverflow(toBalance, amount)
	if overflow {
		return fmt.Errorf("%s: transfer to %s: balance overflow", t.symbol, to.Hex())
	}
	t.setBalance(from, new(uint256.Int).Sub(fromBalance, amount))
	t.setBalance(to, sum)
	return nil
}

func (t *StandardToken) spendAllowance(owner, spender common.Address, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrZeroAmount
	}
	remaining := t.Allowance(owner, spender)
	if remaining.Lt(amount) {
		return fmt.Errorf("%s: %s allowed %s of %s, needs %s: %w",
			t.symbol, spender.Hex(), remaining.Dec(), owner.Hex(), amount.Dec(), ErrInsufficientAllowance)
	}
	t.setAllowance(owner, spender, new(uint256.Int).Sub(remaining, amount))
	return nil
}

// setBalance journals the previous value before overwriting. Stored
// values are never mutated in place, so restoring the old pointer is safe.
func (t *StandardToken) setBalance(account common.Address, v *uint256.Int) {
	old, existed := t.balances[account]
	t.jnl.Append(func() {
		if existed {
			t.balances[account] = old
		} else {
			delete(t.balances, account)
		}
	})
	t.balances[account] = v.Clone()
}

func (t *StandardToken) setAllowance(owner, spender common.Address, v *uint256.Int) {
	row, rowExisted := t.allowances[owner]
	if !rowExisted {
		row = make(map[common.Address]*uint256.Int)
		t.allowances[owner] = row
	}
	old, existed := row[spender]
	t.jnl.Append(func() {
		if existed {
			row[spender] = old
		} else {
			delete(row, spender)
		}
		if !rowExisted {
			delete(t.allowances, owner)
		}
	})
	row[spender] = v.Clone()
}

func boolPtr(v bool) *bool { return &v }
