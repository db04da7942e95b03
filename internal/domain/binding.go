package domain

// ChainContractBinding resolves a (chain id, contract version) key to the
// deployed contract address and the ABI variant to speak to it. Bindings are
// loaded once at startup and are immutable for the process lifetime; absence
// of a binding is a hard failure, never a defaulted address.
type ChainContractBinding struct {
	ChainID    uint64
	Version    string
	Address    string
	ABIVariant string
}
