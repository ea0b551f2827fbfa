package identity

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"dotvest/internal/access"
)

func TestRegisterAndResolve(t *testing.T) {
	admin := common.HexToAddress("0xad")
	registrar := common.HexToAddress("0x123")
	target := common.HexToAddress("0x456")

	acl := access.NewController(admin, nil)
	reg := New(acl, nil)

	if err := reg.Register(registrar, "alice", target); !errors.Is(err, access.ErrNotAuthorized) {
		t.Fatalf("got %v, want ErrNotAuthorized", err)
	}

	if err := acl.Grant(admin, access.RoleRegistrar, registrar); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := reg.Register(registrar, "alice", target); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, ok := reg.Resolve("alice")
	if !ok || got != target {
		t.Fatalf("resolve: got %s, %v", got.Hex(), ok)
	}

	if err := reg.Register(registrar, "alice", admin); !errors.Is(err, ErrNameTaken) {
		t.Fatalf("got %v, want ErrNameTaken", err)
	}
	if got, _ := reg.Resolve("alice"); got != target {
		t.Fatalf("rebind succeeded")
	}
}
