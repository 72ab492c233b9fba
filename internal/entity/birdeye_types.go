package entity

// BirdeyeTokenListResponse is the payload of GET /v1/wallet/token_list.
type BirdeyeTokenListResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message,omitempty"`
	Data    *BirdeyeTokenListData `json:"data"`
}

// BirdeyeTokenListData holds the wallet totals and per-token items.
// Items is nil when the field is absent and empty when the wallet holds nothing.
type BirdeyeTokenListData struct {
	Wallet   string             `json:"wallet"`
	TotalUsd FlexDecimal        `json:"totalUsd"`
	Items    []BirdeyeTokenItem `json:"items"`
}

// BirdeyeTokenItem represents a single token held by the wallet.
type BirdeyeTokenItem struct {
	Address  string      `json:"address"`
	Decimals int         `json:"decimals"`
	Balance  FlexBigInt  `json:"balance"`
	UIAmount FlexDecimal `json:"uiAmount"`
	ChainID  string      `json:"chainId"`
	Name     string      `json:"name"`
	Symbol   string      `json:"symbol"`
	LogoURI  string      `json:"logoURI"`
	PriceUsd FlexDecimal `json:"priceUsd"`
	ValueUsd FlexDecimal `json:"valueUsd"`
}

// BirdeyePriceResponse is the payload of GET /defi/price.
type BirdeyePriceResponse struct {
	Success bool              `json:"success"`
	Data    *BirdeyePriceData `json:"data"`
}

// BirdeyePriceData contains the spot price of a single token.
type BirdeyePriceData struct {
	Value           FlexDecimal `json:"value"`
	UpdateUnixTime  int64       `json:"updateUnixTime"`
	UpdateHumanTime string      `json:"updateHumanTime"`
}
