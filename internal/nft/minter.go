package nft

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"dotvest/internal/access"
)

// Phase is the mint schedule state. Transitions are forward-only.
type Phase int

const (
	PhaseNone Phase = iota
	PhaseAllowlist
	PhasePublic
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhaseNone:
		return "none"
	case PhaseAllowlist:
		return "allowlist"
	case PhasePublic:
		return "public"
	default:
		return "closed"
	}
}

var (
	ErrMintClosed      = errors.New("minting is not open")
	ErrNotAllowlisted  = errors.New("proof does not match allowlist root")
	ErrWalletCap       = errors.New("per-wallet mint cap reached")
	ErrSoldOut         = errors.New("max supply reached")
	ErrPhaseBackwards  = errors.New("phase may only advance")
	ErrRootAfterLaunch = errors.New("allowlist root is frozen after launch")
)

// Minter runs the allowlist/public mint state machine. Token ids are
// sequential; ownership is a plain map since transfers are out of scope.
type Minter struct {
	acl           *access.Controller
	phase         Phase
	allowlistRoot common.Hash
	maxSupply     uint64
	walletCap     uint64

	nextID uint64
	owners map[uint64]common.Address
	minted map[common.Address]uint64
	logger *zap.Logger
}

func NewMinter(acl *access.Controller, maxSupply, walletCap uint64, logger *zap.Logger) *Minter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Minter{
		acl:       acl,
		phase:     PhaseNone,
		maxSupply: maxSupply,
		walletCap: walletCap,
		nextID:    1,
		owners:    make(map[uint64]common.Address),
		minted:    make(map[common.Address]uint64),
		logger:    logger,
	}
}

func (m *Minter) Phase() Phase { return m.phase }

func (m *Minter) TotalMinted() uint64 { return m.nextID - 1 }

// OwnerOf returns the holder of a token id.
func (m *Minter) OwnerOf(id uint64) (common.Address, bool) {
	owner, ok := m.owners[id]
	return owner, ok
}

// SetAllowlistRoot fixes the allowlist before launch. NFT admin only.
func (m *Minter) SetAllowlistRoot(caller common.Address, root common.Hash) error {
	if err := m.acl.Require(access.RoleNFTAdmin, caller); err != nil {
		return err
	}
	if m.phase != PhaseNone {
		return ErrRootAfterLaunch
	}
	m.allowlistRoot = root
	return nil
}

// AdvancePhase moves the schedule forward. NFT admin only; going back is
// rejected.
func (m *Minter) AdvancePhase(caller common.Address, next Phase) error {
	if err := m.acl.Require(access.RoleNFTAdmin, caller); err != nil {
		return err
	}
	if next <= m.phase {
		return fmt.Errorf("%s -> %s: %w", m.phase, next, ErrPhaseBackwards)
	}
	m.logger.Info("mint phase advanced",
		zap.String("from", m.phase.String()),
		zap.String("to", next.String()),
	)
	m.phase = next
	return nil
}

// Mint issues the next token id to the caller. During the allowlist
// phase the caller must present a valid Merkle proof; during the public
// phase the proof is ignored.
func (m *Minter) Mint(caller common.Address, proof []common.Hash) (uint64, error) {
	switch m.phase {
	case PhaseAllowlist:
		if !VerifyProof(m.allowlistRoot, Leaf(caller), proof) {
			return 0, fmt.Errorf("%s: %w", caller.Hex(), ErrNotAllowlisted)
		}
	case PhasePublic:
		// open mint
	default:
		return 0, ErrMintClosed
	}

	if m.TotalMinted() >= m.maxSupply {
		return 0, ErrSoldOut
	}
	if m.minted[caller] >= m.walletCap {
		return 0, fmt.Errorf("%s: %w", caller.Hex(), ErrWalletCap)
	}

	id := m.nextID
	m.nextID++
	m.owners[id] = caller
	m.minted[caller]++

	m.logger.Debug("token minted",
		zap.Uint64("token_id", id),
		zap.String("owner", caller.Hex()),
		zap.String("phase", m.phase.String()),
	)
	return id, nil
}
