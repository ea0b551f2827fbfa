package model

// Event type tags as written to storage.
const (
	EventPoolCreated      = "pool_created"
	EventLiquidityAdded   = "liquidity_added"
	EventLiquidityRemoved = "liquidity_removed"
	EventSwap             = "swap"
)

// EventRecord is the normalized settlement event for storage and
// external indexers. Exactly one payload field is set, matching Type.
type EventRecord struct {
	ID        string `json:"id"`
	Seq       uint64 `json:"seq"`
	Type      string `json:"type"`
	EmittedAt string `json:"emitted_at"`

	PoolCreated      *PoolCreatedData      `json:"pool_created,omitempty"`
	LiquidityAdded   *LiquidityAddedData   `json:"liquidity_added,omitempty"`
	LiquidityRemoved *LiquidityRemovedData `json:"liquidity_removed,omitempty"`
	Swap             *SwapData             `json:"swap,omitempty"`
}

// PoolCreatedData records a new pair directory entry.
type PoolCreatedData struct {
	Pool         string `json:"pool"`
	TokenA       string `json:"token_a"`
	TokenB       string `json:"token_b"`
	FeeNumerator uint64 `json:"fee_numerator"`
}

// LiquidityAddedData records a deposit. Amounts are decimal strings in
// the pool's canonical token order.
type LiquidityAddedData struct {
	Pool         string `json:"pool"`
	Provider     string `json:"provider"`
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
	SharesMinted string `json:"shares_minted"`
}

// LiquidityRemovedData records a withdrawal.
type LiquidityRemovedData struct {
	Pool         string `json:"pool"`
	Provider     string `json:"provider"`
	AmountA      string `json:"amount_a"`
	AmountB      string `json:"amount_b"`
	SharesBurned string `json:"shares_burned"`
}

// SwapData records an executed swap.
type SwapData struct {
	Pool      string `json:"pool"`
	Trader    string `json:"trader"`
	TokenIn   string `json:"token_in"`
	TokenOut  string `json:"token_out"`
	AmountIn  string `json:"amount_in"`
	AmountOut string `json:"amount_out"`
}
