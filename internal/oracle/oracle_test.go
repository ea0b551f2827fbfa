package oracle

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"dotvest/internal/access"
)

func TestSetPriceRequiresFeederCapability(t *testing.T) {
	admin := common.HexToAddress("0xad")
	feeder := common.HexToAddress("0xfeed")
	acl := access.NewController(admin, nil)
	o := New(acl, nil)

	err := o.SetPrice(feeder, "TKA/USD", uint256.NewInt(100))
	if !errors.Is(err, access.ErrNotAuthorized) {
		t.Fatalf("got %v, want ErrNotAuthorized", err)
	}

	if err := acl.Grant(admin, access.RoleOracleFeeder, feeder); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if err := o.SetPrice(feeder, "TKA/USD", uint256.NewInt(100)); err != nil {
		t.Fatalf("set price: %v", err)
	}

	q, ok := o.Price("TKA/USD")
	if !ok || !q.Price.Eq(uint256.NewInt(100)) {
		t.Fatalf("price not stored")
	}
	if q.UpdatedAt.IsZero() {
		t.Fatalf("update time not recorded")
	}
}

func TestSetPriceValidation(t *testing.T) {
	admin := common.HexToAddress("0xad")
	o := New(access.NewController(admin, nil), nil)

	if err := o.SetPrice(admin, "", uint256.NewInt(1)); err == nil {
		t.Fatalf("empty symbol accepted")
	}
	if err := o.SetPrice(admin, "TKA/USD", uint256.NewInt(0)); err == nil {
		t.Fatalf("zero price accepted")
	}
	if _, ok := o.Price("TKA/USD"); ok {
		t.Fatalf("rejected write stored a quote")
	}
}
