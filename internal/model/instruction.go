package model

// Instruction operations accepted by the engine.
const (
	OpCreateToken      = "create_token"
	OpMint             = "mint"
	OpApprove          = "approve"
	OpCreatePool       = "create_pool"
	OpAddLiquidity     = "add_liquidity"
	OpRemoveLiquidity  = "remove_liquidity"
	OpSwap             = "swap"
	OpGrantRole        = "grant_role"
	OpRevokeRole       = "revoke_role"
	OpSetPrice         = "set_price"
	OpRegisterIdentity = "register_identity"
)

// Instruction is one serialized settlement request read from the input
// stream. Fields are populated per Op; amounts are decimal strings and
// addresses are 0x-prefixed hex.
type Instruction struct {
	Op     string `json:"op"`
	Caller string `json:"caller,omitempty"`

	Symbol string `json:"symbol,omitempty"`

	Token   string `json:"token,omitempty"`
	To      string `json:"to,omitempty"`
	Spender string `json:"spender,omitempty"`
	Amount  string `json:"amount,omitempty"`

	TokenA       string `json:"token_a,omitempty"`
	TokenB       string `json:"token_b,omitempty"`
	AmountA      string `json:"amount_a,omitempty"`
	AmountB      string `json:"amount_b,omitempty"`
	FeeNumerator uint64 `json:"fee_numerator,omitempty"`

	TokenIn  string `json:"token_in,omitempty"`
	TokenOut string `json:"token_out,omitempty"`
	AmountIn string `json:"amount_in,omitempty"`

	Shares string `json:"shares,omitempty"`

	Role    string `json:"role,omitempty"`
	Account string `json:"account,omitempty"`

	Price string `json:"price,omitempty"`
	Name  string `json:"name,omitempty"`
}
