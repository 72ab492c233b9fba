package entity

import (
	"github.com/shopspring/decimal"
)

// ReferenceAsset identifies one of the assets whose spot price is always tracked.
type ReferenceAsset string

const (
	AssetSolana   ReferenceAsset = "solana"
	AssetBitcoin  ReferenceAsset = "bitcoin"
	AssetEthereum ReferenceAsset = "ethereum"
)

// ReferenceAssets lists the tracked assets in report order.
var ReferenceAssets = []ReferenceAsset{AssetSolana, AssetBitcoin, AssetEthereum}

// Ticker returns the short display symbol of the asset.
func (a ReferenceAsset) Ticker() string {
	switch a {
	case AssetSolana:
		return "SOL"
	case AssetBitcoin:
		return "BTC"
	case AssetEthereum:
		return "ETH"
	default:
		return string(a)
	}
}

// PriceTable maps every reference asset to its USD price.
// Assets whose price could not be resolved are present with a zero price.
type PriceTable struct {
	USD map[ReferenceAsset]decimal.Decimal `json:"usd"`
}

// NewPriceTable returns a table with every reference asset priced at zero.
func NewPriceTable() PriceTable {
	t := PriceTable{USD: make(map[ReferenceAsset]decimal.Decimal, len(ReferenceAssets))}
	for _, asset := range ReferenceAssets {
		t.USD[asset] = decimal.Zero
	}
	return t
}

// Get returns the USD price of an asset, zero when unknown.
func (t PriceTable) Get(asset ReferenceAsset) decimal.Decimal {
	if price, ok := t.USD[asset]; ok {
		return price
	}
	return decimal.Zero
}

// Set records the USD price of an asset.
func (t *PriceTable) Set(asset ReferenceAsset, price decimal.Decimal) {
	if t.USD == nil {
		t.USD = make(map[ReferenceAsset]decimal.Decimal, len(ReferenceAssets))
	}
	t.USD[asset] = price
}

// Native returns the USD price of the chain's native coin.
func (t PriceTable) Native() decimal.Decimal {
	return t.Get(AssetSolana)
}

// Clone returns a copy that does not share the underlying map.
func (t PriceTable) Clone() PriceTable {
	c := PriceTable{USD: make(map[ReferenceAsset]decimal.Decimal, len(t.USD))}
	for k, v := range t.USD {
		c.USD[k] = v
	}
	return c
}
