package access

import (
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

var ErrNotAuthorized = errors.New("account lacks required capability")

// Well-known roles consulted by the surrounding services.
var (
	RoleOracleFeeder = RoleID("ORACLE_FEEDER")
	RoleRegistrar    = RoleID("IDENTITY_REGISTRAR")
	RoleRelayer      = RoleID("GATEWAY_RELAYER")
	RoleNFTAdmin     = RoleID("NFT_ADMIN")
)

// RoleID derives a stable role identifier from its name.
func RoleID(name string) common.Hash {
	return crypto.Keccak256Hash([]byte(name))
}

// Controller is the capability substrate shared by the auxiliary
// services. Components hold a reference to it instead of inheriting
// authorization logic.
type Controller struct {
	admin  common.Address
	roles  map[common.Hash]map[common.Address]bool
	logger *zap.Logger
}

// NewController creates a controller with a single administrator who may
// grant and revoke capabilities.
func NewController(admin common.Address, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		admin:  admin,
		roles:  make(map[common.Hash]map[common.Address]bool),
		logger: logger,
	}
}

func (c *Controller) Admin() common.Address { return c.admin }

// HasCapability reports whether the account holds the role. The admin
// implicitly holds every role.
func (c *Controller) HasCapability(role common.Hash, account common.Address) bool {
	if account == c.admin {
		return true
	}
	return c.roles[role][account]
}

// Grant gives the account the role. Admin only.
func (c *Controller) Grant(caller common.Address, role common.Hash, account common.Address) error {
	if caller != c.admin {
		return ErrNotAuthorized
	}
	if c.roles[role] == nil {
		c.roles[role] = make(map[common.Address]bool)
	}
	c.roles[role][account] = true
	c.logger.Info("capability granted",
		zap.String("role", role.Hex()),
		zap.String("account", account.Hex()),
	)
	return nil
}

// Revoke removes the role from the account. Admin only.
func (c *Controller) Revoke(caller common.Address, role common.Hash, account common.Address) error {
	if caller != c.admin {
		return ErrNotAuthorized
	}
	delete(c.roles[role], account)
	c.logger.Info("capability revoked",
		zap.String("role", role.Hex()),
		zap.String("account", account.Hex()),
	)
	return nil
}

// Require returns ErrNotAuthorized unless the account holds the role.
func (c *Controller) Require(role common.Hash, account common.Address) error {
	if !c.HasCapability(role, account) {
		return ErrNotAuthorized
	}
	return nil
}
