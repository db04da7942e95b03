package chain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/rs/zerolog"

	"givehub/internal/domain"
)

// Submitter signs and submits contract transactions and waits for on-chain
// confirmation. Submission is serialized per signer so nonce ordering holds;
// the confirmation wait runs without holding the signer lock, so other
// operations keep flowing while a transaction is mined.
type Submitter struct {
	registry       *Registry
	confirmTimeout time.Duration
	logger         zerolog.Logger

	mu      sync.Mutex
	clients map[uint64]*ethclient.Client
}

func NewSubmitter(registry *Registry, confirmTimeout time.Duration, logger zerolog.Logger) *Submitter {
	return &Submitter{
		registry:       registry,
		confirmTimeout: confirmTimeout,
		logger:         logger,
		clients:        map[uint64]*ethclient.Client{},
	}
}

func (s *Submitter) client(ctx context.Context, chainID uint64) (*ethclient.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[chainID]; ok {
		return c, nil
	}
	rpcURL, err := s.registry.RPCURL(chainID)
	if err != nil {
		return nil, err
	}
	c, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dial chain %d: %v", domain.ErrChain, chainID, err)
	}
	s.clients[chainID] = c
	return c, nil
}

// Submit sends a contract call through the chain's signer and blocks until it
// is mined or the confirmation timeout elapses. The transaction hash is
// returned even on timeout: the transaction may still confirm later and the
// reconciler resolves it by hash.
func (s *Submitter) Submit(ctx context.Context, b domain.ChainContractBinding, method string, args ...any) (string, error) {
	parsedABI, err := s.registry.ABI(b.ABIVariant)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrChain, err)
	}
	signer, err := s.registry.Signer(b.ChainID)
	if err != nil {
		return "", err
	}
	client, err := s.client(ctx, b.ChainID)
	if err != nil {
		return "", err
	}

	signer.Lock()
	tx, err := s.transact(ctx, client, signer, parsedABI, b.Address, method, args...)
	signer.Unlock()
	if err != nil {
		return "", err
	}

	txHash := tx.Hash().Hex()
	s.logger.Info().
		Uint64("chain_id", b.ChainID).
		Str("contract", b.Address).
		Str("method", method).
		Str("tx_hash", txHash).
		Msg("chain: transaction submitted")

	waitCtx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()

	receipt, err := bind.WaitMined(waitCtx, client, tx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(waitCtx.Err(), context.DeadlineExceeded) {
			return txHash, fmt.Errorf("%w: %s", domain.ErrChainTimeout, txHash)
		}
		return txHash, fmt.Errorf("%w: wait mined: %v", domain.ErrChain, err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return txHash, fmt.Errorf("%w: transaction %s reverted", domain.ErrChain, txHash)
	}
	return txHash, nil
}

func (s *Submitter) transact(ctx context.Context, client *ethclient.Client, signer *Signer, parsedABI abi.ABI, address, method string, args ...any) (*types.Transaction, error) {
	auth, err := signer.TransactOpts()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrChain, err)
	}
	auth.Context = ctx

	contract := bind.NewBoundContract(common.HexToAddress(address), parsedABI, client, client, client)
	tx, err := contract.Transact(auth, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: submit %s: %v", domain.ErrChain, method, err)
	}
	return tx, nil
}

// ReceiptStatus looks up a transaction receipt by hash. It returns
// OperationConfirmed or OperationFailed for mined transactions and
// ErrNotFound while the transaction is still unknown to the node.
func (s *Submitter) ReceiptStatus(ctx context.Context, chainID uint64, txHash string) (domain.OperationStatus, error) {
	client, err := s.client(ctx, chainID)
	if err != nil {
		return "", err
	}
	receipt, err := client.TransactionReceipt(ctx, common.HexToHash(txHash))
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("%w: receipt lookup %s: %v", domain.ErrChain, txHash, err)
	}
	if receipt.Status == types.ReceiptStatusSuccessful {
		return domain.OperationConfirmed, nil
	}
	return domain.OperationFailed, nil
}

// Close releases all cached RPC clients.
func (s *Submitter) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.clients {
		c.Close()
	}
	s.clients = map[uint64]*ethclient.Client{}
}
