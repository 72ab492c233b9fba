package entity

// CodexGraphQLRequest is the body posted to the Codex GraphQL endpoint.
type CodexGraphQLRequest struct {
	Query     string              `json:"query"`
	Variables CodexBalanceVariables `json:"variables"`
}

// CodexBalanceVariables are the variables of the Balances query.
// Cursor is always sent, as null when unset.
type CodexBalanceVariables struct {
	WalletID string  `json:"walletId"`
	Cursor   *string `json:"cursor"`
}

// CodexBalancesResponse is the GraphQL envelope returned for the Balances query.
type CodexBalancesResponse struct {
	Data   *CodexBalancesData `json:"data"`
	Errors []CodexGraphQLError `json:"errors,omitempty"`
}

// CodexBalancesData wraps the balances connection.
type CodexBalancesData struct {
	Balances *CodexBalanceConnection `json:"balances"`
}

// CodexBalanceConnection is a single page of wallet balances.
type CodexBalanceConnection struct {
	Cursor *string            `json:"cursor"`
	Items  []CodexBalanceItem `json:"items"`
}

// CodexBalanceItem is one token balance. TokenID has the form "<address>:<networkId>".
type CodexBalanceItem struct {
	WalletID       string      `json:"walletId"`
	TokenID        string      `json:"tokenId"`
	Balance        FlexBigInt  `json:"balance"`
	ShiftedBalance FlexDecimal `json:"shiftedBalance"`
}

// CodexGraphQLError is an entry of the GraphQL errors array.
type CodexGraphQLError struct {
	Message string `json:"message"`
}
