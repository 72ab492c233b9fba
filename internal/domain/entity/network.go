package entity

// NetworkDefinition holds the constants describing a blockchain network.
type NetworkDefinition struct {
	Name           string `json:"name" yaml:"name"`
	Identifier     string `json:"identifier" yaml:"identifier"` // value of the x-chain header, e.g. "solana"
	NativeSymbol   string `json:"nativeSymbol" yaml:"nativeSymbol"`
	NativeDecimals int    `json:"nativeDecimals" yaml:"nativeDecimals"`
	NativeMint     string `json:"nativeMint" yaml:"nativeMint"`
	CodexNetworkID int64  `json:"codexNetworkId" yaml:"codexNetworkId"`
	PrimaryRPCURL  string `json:"primaryRpcUrl" yaml:"primaryRpcUrl"`
}
