package model

// Genesis seeds the ledger before any instruction runs.
type Genesis struct {
	Admin  string         `json:"admin"`
	Tokens []GenesisToken `json:"tokens"`
	Roles  []GenesisRole  `json:"roles"`
}

// GenesisToken creates a token and its initial balances.
type GenesisToken struct {
	Symbol   string            `json:"symbol"`
	Balances map[string]string `json:"balances,omitempty"`
}

// GenesisRole grants a named role to a set of accounts.
type GenesisRole struct {
	Role     string   `json:"role"`
	Accounts []string `json:"accounts"`
}
