package entity

// Wallet identifies a wallet by its public address.
type Wallet struct {
	Address string `json:"address" yaml:"address"`
}
