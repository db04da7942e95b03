package chain

import (
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"givehub/internal/domain"
)

// Signer is the server-side signing handle for one chain. Transaction
// submission through a signer must be serialized to keep nonce ordering
// intact; callers hold Lock around the submit call but never across the
// confirmation wait.
type Signer struct {
	chainID uint64
	key     *ecdsa.PrivateKey
	address common.Address

	mu sync.Mutex
}

func newSigner(chainID uint64, keyHex string) (*Signer, error) {
	trimmed := strings.TrimPrefix(strings.TrimSpace(keyHex), "0x")
	if trimmed == "" {
		return nil, fmt.Errorf("%w: no key material for chain %d", domain.ErrSignerUnavailable, chainID)
	}
	key, err := crypto.HexToECDSA(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid key material for chain %d", domain.ErrSignerUnavailable, chainID)
	}
	return &Signer{
		chainID: chainID,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// Address returns the signer's account address.
func (s *Signer) Address() common.Address {
	return s.address
}

// TransactOpts builds keyed transact options bound to the signer's chain.
func (s *Signer) TransactOpts() (*bind.TransactOpts, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(s.key, new(big.Int).SetUint64(s.chainID))
	if err != nil {
		return nil, fmt.Errorf("build transactor: %w", err)
	}
	return auth, nil
}

func (s *Signer) Lock()   { s.mu.Lock() }
func (s *Signer) Unlock() { s.mu.Unlock() }
