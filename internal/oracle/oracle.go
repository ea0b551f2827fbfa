package oracle

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"

	"dotvest/internal/access"
)

// Quote is a posted price with its update time.
type Quote struct {
	Price     *uint256.Int
	UpdatedAt time.Time
}

// Oracle is an authenticated symbol-to-price store. Writes require the
// feeder capability; reads are open. Prices are posted values, not
// time-weighted.
type Oracle struct {
	acl    *access.Controller
	quotes map[string]Quote
	now    func() time.Time
	logger *zap.Logger
}

func New(acl *access.Controller, logger *zap.Logger) *Oracle {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Oracle{
		acl:    acl,
		quotes: make(map[string]Quote),
		now:    time.Now,
		logger: logger,
	}
}

// SetPrice posts a price for the symbol. Feeder capability required.
func (o *Oracle) SetPrice(caller common.Address, symbol string, price *uint256.Int) error {
	if err := o.acl.Require(access.RoleOracleFeeder, caller); err != nil {
		return fmt.Errorf("set price %s: %w", symbol, err)
	}
	if symbol == "" {
		return fmt.Errorf("symbol is required")
	}
	if price == nil || price.IsZero() {
		return fmt.Errorf("price must be positive")
	}
	o.quotes[symbol] = Quote{Price: price.Clone(), UpdatedAt: o.now()}
	o.logger.Debug("price posted",
		zap.String("symbol", symbol),
		zap.String("price", price.Dec()),
	)
	return nil
}

// Price returns the latest quote for the symbol.
func (o *Oracle) Price(symbol string) (Quote, bool) {
	q, ok := o.quotes[symbol]
	return q, ok
}
