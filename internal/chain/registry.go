package chain

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"

	"givehub/internal/domain"
)

// chainConfig is the JSON shape of one chain entry in CHAIN_CONFIG_JSON.
type chainConfig struct {
	ChainID   uint64          `json:"chainId"`
	RPCURL    string          `json:"rpcUrl"`
	SignerKey string          `json:"signerKey"`
	Bindings  []bindingConfig `json:"bindings"`
}

type bindingConfig struct {
	Version    string `json:"version"`
	Address    string `json:"address"`
	ABIVariant string `json:"abiVariant"`
}

// Registry resolves (chain id, contract version) keys to contract bindings and
// supplies per-chain signing handles. It is built once at startup and is
// immutable afterwards; lookups are pure map reads.
type Registry struct {
	bindings map[string]domain.ChainContractBinding
	rpcURLs  map[uint64]string
	signers  map[uint64]*Signer
}

// LoadRegistry parses raw chain configuration JSON into a Registry. A binding
// referencing an unknown ABI variant or a malformed address is a startup
// error; a missing or invalid signer key is not, it surfaces later as
// ErrSignerUnavailable for that chain only.
func LoadRegistry(rawJSON string) (*Registry, error) {
	if strings.TrimSpace(rawJSON) == "" {
		return nil, fmt.Errorf("chain configuration is empty")
	}

	var chains []chainConfig
	if err := json.Unmarshal([]byte(rawJSON), &chains); err != nil {
		return nil, fmt.Errorf("parse chain configuration: %w", err)
	}

	r := &Registry{
		bindings: map[string]domain.ChainContractBinding{},
		rpcURLs:  map[uint64]string{},
		signers:  map[uint64]*Signer{},
	}

	for _, c := range chains {
		if c.ChainID == 0 {
			return nil, fmt.Errorf("chain configuration: chainId is required")
		}
		if strings.TrimSpace(c.RPCURL) == "" {
			return nil, fmt.Errorf("chain %d: rpcUrl is required", c.ChainID)
		}
		r.rpcURLs[c.ChainID] = c.RPCURL

		if signer, err := newSigner(c.ChainID, c.SignerKey); err == nil {
			r.signers[c.ChainID] = signer
		}

		for _, b := range c.Bindings {
			if b.Version == "" {
				return nil, fmt.Errorf("chain %d: binding version is required", c.ChainID)
			}
			if !common.IsHexAddress(b.Address) {
				return nil, fmt.Errorf("chain %d version %s: invalid contract address %q", c.ChainID, b.Version, b.Address)
			}
			if _, ok := abiVariants[b.ABIVariant]; !ok {
				return nil, fmt.Errorf("chain %d version %s: unknown abi variant %q", c.ChainID, b.Version, b.ABIVariant)
			}
			key := bindingKey(c.ChainID, b.Version)
			if _, exists := r.bindings[key]; exists {
				return nil, fmt.Errorf("duplicate binding for chain %d version %s", c.ChainID, b.Version)
			}
			r.bindings[key] = domain.ChainContractBinding{
				ChainID:    c.ChainID,
				Version:    b.Version,
				Address:    common.HexToAddress(b.Address).Hex(),
				ABIVariant: b.ABIVariant,
			}
		}
	}

	return r, nil
}

// ResolveBinding returns the binding for (chainID, version) or
// ErrBindingNotFound. Absence is a hard failure, never a defaulted address.
func (r *Registry) ResolveBinding(chainID uint64, version string) (domain.ChainContractBinding, error) {
	b, ok := r.bindings[bindingKey(chainID, version)]
	if !ok {
		return domain.ChainContractBinding{}, fmt.Errorf("%w: chain %d version %s", domain.ErrBindingNotFound, chainID, version)
	}
	return b, nil
}

// Signer returns the signing handle for chainID or ErrSignerUnavailable.
func (r *Registry) Signer(chainID uint64) (*Signer, error) {
	s, ok := r.signers[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: chain %d", domain.ErrSignerUnavailable, chainID)
	}
	return s, nil
}

// RPCURL returns the configured RPC endpoint for chainID.
func (r *Registry) RPCURL(chainID uint64) (string, error) {
	u, ok := r.rpcURLs[chainID]
	if !ok {
		return "", fmt.Errorf("%w: no rpc url for chain %d", domain.ErrBindingNotFound, chainID)
	}
	return u, nil
}

// ABI returns the parsed contract ABI for a variant name.
func (r *Registry) ABI(variant string) (abi.ABI, error) {
	parsed, ok := abiVariants[variant]
	if !ok {
		return abi.ABI{}, fmt.Errorf("unknown abi variant %q", variant)
	}
	return parsed, nil
}

func bindingKey(chainID uint64, version string) string {
	return fmt.Sprintf("%d|%s", chainID, version)
}
