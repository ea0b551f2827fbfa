package identity

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"dotvest/internal/access"
)

var ErrNameTaken = errors.New("name already registered")

// Registry maps human-readable names to accounts. Writes require the
// registrar capability.
type Registry struct {
	acl    *access.Controller
	names  map[string]common.Address
	logger *zap.Logger
}

func New(acl *access.Controller, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		acl:    acl,
		names:  make(map[string]common.Address),
		logger: logger,
	}
}

// Register binds a name to an account. Registrar capability required;
// names are first-come, immutable.
func (r *Registry) Register(caller common.Address, name string, account common.Address) error {
	if err := r.acl.Require(access.RoleRegistrar, caller); err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if account == (common.Address{}) {
		return fmt.Errorf("account is required")
	}
	if _, exists := r.names[name]; exists {
		return fmt.Errorf("%q: %w", name, ErrNameTaken)
	}
	r.names[name] = account
	r.logger.Debug("identity registered",
		zap.String("name", name),
		zap.String("account", account.Hex()),
	)
	return nil
}

// Resolve looks a name up.
func (r *Registry) Resolve(name string) (common.Address, bool) {
	addr, ok := r.names[name]
	return addr, ok
}
