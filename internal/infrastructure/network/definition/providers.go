package networkdefinition

import (
	"fmt"
	"strings"

	"portfolio_reporter/internal/app/port"
	"portfolio_reporter/internal/domain/entity"
)

// NetworkDefinitionProvider resolves the network reports are produced for.
type NetworkDefinitionProvider struct {
	logger         port.Logger
	allNetworkDefs map[string]entity.NetworkDefinition
	active         entity.NetworkDefinition
}

// Predefined network definitions
var ( //nolint:gochecknoglobals // Global for definitions
	Solana = entity.NetworkDefinition{
		Name:           "Solana Mainnet Beta",
		Identifier:     "solana",
		NativeSymbol:   "SOL",
		NativeDecimals: 9,
		NativeMint:     "So11111111111111111111111111111111111111112", // wrapped SOL
		CodexNetworkID: 1399811149,
		PrimaryRPCURL:  "https://api.mainnet-beta.solana.com",
	}
)

var allKnownDefinitions = map[string]entity.NetworkDefinition{
	Solana.Identifier: Solana,
}

// NewNetworkDefinitionProvider creates a provider with the named network active.
// An empty identifier selects Solana mainnet.
func NewNetworkDefinitionProvider(log port.Logger, identifier string) (*NetworkDefinitionProvider, error) {
	p := &NetworkDefinitionProvider{
		logger:         log,
		allNetworkDefs: allKnownDefinitions,
	}

	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		identifier = Solana.Identifier
	}
	def, ok := p.GetNetworkDefinitionByName(identifier)
	if !ok {
		return nil, fmt.Errorf("no network definition for %q", identifier)
	}
	p.active = def
	p.logger.Debug("Network definition selected", "network", def.Name, "codex_network_id", def.CodexNetworkID, "rpc_url", def.PrimaryRPCURL)
	return p, nil
}

// Active returns the network reports are produced for.
func (p *NetworkDefinitionProvider) Active() entity.NetworkDefinition {
	return p.active
}

// GetNetworkDefinitionByName returns a known network definition by its identifier.
func (p *NetworkDefinitionProvider) GetNetworkDefinitionByName(identifier string) (entity.NetworkDefinition, bool) {
	if p == nil {
		return entity.NetworkDefinition{}, false
	}
	def, ok := p.allNetworkDefs[strings.ToLower(identifier)]
	return def, ok
}
