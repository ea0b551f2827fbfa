package gateway

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"dotvest/internal/access"
)

var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrDuplicateHandler = errors.New("handler already registered")
)

// Command is a typed request relayed through the gateway. Raw byte
// forwarding is deliberately not supported; every relayable action is a
// named, typed command.
type Command interface {
	Name() string
}

// Handler executes one command kind on behalf of an authorized caller.
type Handler func(caller common.Address, cmd Command) error

// Gateway dispatches typed commands to registered handlers, gated on the
// relayer capability.
type Gateway struct {
	acl      *access.Controller
	handlers map[string]Handler
	logger   *zap.Logger
}

func New(acl *access.Controller, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{
		acl:      acl,
		handlers: make(map[string]Handler),
		logger:   logger,
	}
}

// Register installs a handler for a command name.
func (g *Gateway) Register(name string, h Handler) error {
	if name == "" || h == nil {
		return fmt.Errorf("command name and handler are required")
	}
	if _, exists := g.handlers[name]; exists {
		return fmt.Errorf("%q: %w", name, ErrDuplicateHandler)
	}
	g.handlers[name] = h
	return nil
}

// Dispatch authorizes the caller and routes the command to its handler.
func (g *Gateway) Dispatch(caller common.Address, cmd Command) error {
	if err := g.acl.Require(access.RoleRelayer, caller); err != nil {
		return fmt.Errorf("dispatch %q: %w", cmd.Name(), err)
	}
	h, ok := g.handlers[cmd.Name()]
	if !ok {
		return fmt.Errorf("%q: %w", cmd.Name(), ErrUnknownCommand)
	}
	g.logger.Debug("command dispatched",
		zap.String("command", cmd.Name()),
		zap.String("caller", caller.Hex()),
	)
	return h(caller, cmd)
}
