package dispatch

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"givehub/internal/domain"
)

// Authorizer resolves a bearer token against a minimum role.
type Authorizer interface {
	Authorize(ctx context.Context, token string, minRole domain.Role) (domain.Identity, error)
}

// BindingResolver resolves (chain id, contract version) to a binding.
type BindingResolver interface {
	ResolveBinding(chainID uint64, version string) (domain.ChainContractBinding, error)
}

// Submitter signs, submits and awaits one contract transaction. On a
// confirmation timeout it returns the transaction hash together with
// domain.ErrChainTimeout; the transaction may still confirm later.
type Submitter interface {
	Submit(ctx context.Context, b domain.ChainContractBinding, method string, args ...any) (string, error)
}

// OperationStore persists privileged operation records. Confirm and Fail are
// guarded on the pending status; terminal records are immutable.
type OperationStore interface {
	Insert(ctx context.Context, op *domain.PrivilegedOperation) error
	SetTxHash(ctx context.Context, id, txHash string) error
	Confirm(ctx context.Context, id, txHash string) error
	Fail(ctx context.Context, id, detail string) error
}

// AuditAppender appends to the audit trail.
type AuditAppender interface {
	Append(ctx context.Context, rec domain.AuditRecord) (string, error)
}

// Request is one admin-initiated privileged operation.
type Request struct {
	Type      domain.OperationType
	ChainID   uint64
	Version   string
	TokenID   *int64
	NewURI    string
	Address   string
	To        string
	Amount    string
	Recipient string
}

// Result reports a dispatched operation back to the caller.
type Result struct {
	OperationID string
	TxHash      string
	Status      domain.OperationStatus
}

// Dispatcher executes role-gated privileged contract operations. Every
// chain-mutating attempt has a durable pending record before submission, so a
// crash mid-flight leaves evidence for the reconciler.
type Dispatcher struct {
	gate      Authorizer
	registry  BindingResolver
	submitter Submitter
	ops       OperationStore
	audit     AuditAppender
	logger    zerolog.Logger
}

func NewDispatcher(gate Authorizer, registry BindingResolver, submitter Submitter, ops OperationStore, audit AuditAppender, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		gate:      gate,
		registry:  registry,
		submitter: submitter,
		ops:       ops,
		audit:     audit,
		logger:    logger,
	}
}

// Dispatch runs one privileged operation end to end: authorize, resolve the
// binding, validate, record pending, submit, record the terminal state. Any
// failure before the pending record leaves no trace beyond logs because
// nothing was attempted against the chain.
func (d *Dispatcher) Dispatch(ctx context.Context, token string, req Request) (Result, error) {
	if !req.Type.Valid() {
		return Result{}, fmt.Errorf("%w: unknown operation type %q", domain.ErrValidation, req.Type)
	}

	actor, err := d.gate.Authorize(ctx, token, req.Type.MinimumRole())
	if err != nil {
		return Result{}, err
	}

	binding, err := d.registry.ResolveBinding(req.ChainID, req.Version)
	if err != nil {
		return Result{}, err
	}

	method, args, params, err := buildCall(req)
	if err != nil {
		return Result{}, err
	}

	op := &domain.PrivilegedOperation{
		ID:      uuid.NewString(),
		ActorID: actor.ActorID,
		Type:    req.Type,
		ChainID: req.ChainID,
		Version: req.Version,
		Address: req.Address,
		NewURI:  req.NewURI,
		Amount:  req.Amount,
		Status:  domain.OperationPending,
	}
	if req.TokenID != nil {
		op.TokenID = *req.TokenID
	} else {
		op.TokenID = -1
	}
	if req.Type == domain.OpEmergencyWithdraw {
		op.Address = req.To
	}
	if req.Type == domain.OpPayoutRelease {
		op.Address = req.Recipient
	}

	if err := d.ops.Insert(ctx, op); err != nil {
		return Result{}, err
	}
	if _, err := d.audit.Append(ctx, domain.AuditRecord{
		ActorID:     actor.ActorID,
		Operation:   string(req.Type),
		OperationID: op.ID,
		Params:      params,
		Status:      domain.AuditPending,
	}); err != nil {
		// The pending record must be durable before the chain is touched;
		// without it the attempt would be invisible after a crash.
		return Result{}, err
	}

	if ctx.Err() != nil {
		d.failOperation(ctx, actor.ActorID, op, "cancelled before submission")
		return Result{}, fmt.Errorf("%w: cancelled", domain.ErrChain)
	}

	txHash, err := d.submitter.Submit(ctx, binding, method, args...)
	if err != nil {
		if errors.Is(err, domain.ErrChainTimeout) {
			// The transaction is in flight and may still confirm. The
			// record stays pending with its hash so the reconciler can
			// settle it by receipt lookup.
			if storeErr := d.ops.SetTxHash(ctx, op.ID, txHash); storeErr != nil {
				d.logger.Error().Err(storeErr).Str("operation_id", op.ID).Msg("dispatch: recording tx hash after timeout failed, operator attention required")
			}
			d.appendOutcome(ctx, actor.ActorID, op, domain.AuditPending, txHash, params)
			return Result{OperationID: op.ID, TxHash: txHash, Status: domain.OperationPending}, err
		}
		d.failOperation(ctx, actor.ActorID, op, err.Error())
		return Result{OperationID: op.ID, Status: domain.OperationFailed}, err
	}

	if err := d.ops.Confirm(ctx, op.ID, txHash); err != nil {
		d.logger.Error().Err(err).Str("operation_id", op.ID).Str("tx_hash", txHash).Msg("dispatch: confirming operation record failed, operator attention required")
		return Result{OperationID: op.ID, TxHash: txHash, Status: domain.OperationPending}, err
	}
	d.appendOutcome(ctx, actor.ActorID, op, domain.AuditConfirmed, txHash, params)

	d.logger.Info().
		Str("operation_id", op.ID).
		Str("actor_id", actor.ActorID).
		Str("type", string(req.Type)).
		Str("tx_hash", txHash).
		Msg("dispatch: operation confirmed")

	return Result{OperationID: op.ID, TxHash: txHash, Status: domain.OperationConfirmed}, nil
}

func (d *Dispatcher) failOperation(ctx context.Context, actorID string, op *domain.PrivilegedOperation, detail string) {
	if err := d.ops.Fail(ctx, op.ID, detail); err != nil {
		d.logger.Error().Err(err).Str("operation_id", op.ID).Msg("dispatch: failing operation record errored, operator attention required")
	}
	d.appendOutcome(ctx, actorID, op, domain.AuditFailed, "", map[string]any{"detail": detail})
}

// appendOutcome appends a terminal (or still-pending) outcome record. Audit
// writes for already-dispatched chain operations are escalated on failure,
// never dropped silently.
func (d *Dispatcher) appendOutcome(ctx context.Context, actorID string, op *domain.PrivilegedOperation, status domain.AuditOutcome, txHash string, params map[string]any) {
	if _, err := d.audit.Append(ctx, domain.AuditRecord{
		ActorID:     actorID,
		Operation:   string(op.Type),
		OperationID: op.ID,
		Params:      params,
		Status:      status,
		TxHash:      txHash,
	}); err != nil {
		d.logger.Error().Err(err).
			Str("operation_id", op.ID).
			Str("status", string(status)).
			Msg("dispatch: audit append failed, operator attention required")
	}
}

// buildCall validates operation parameters and maps them to a contract method
// call. Validation happens before any network interaction.
func buildCall(req Request) (string, []any, map[string]any, error) {
	switch req.Type {
	case domain.OpBurn:
		if req.TokenID == nil || *req.TokenID < 0 {
			return "", nil, nil, fmt.Errorf("%w: tokenId is required and must be >= 0", domain.ErrValidation)
		}
		return "burn", []any{big.NewInt(*req.TokenID)},
			map[string]any{"tokenId": *req.TokenID}, nil

	case domain.OpFixURI:
		if req.TokenID == nil || *req.TokenID < 0 {
			return "", nil, nil, fmt.Errorf("%w: tokenId is required and must be >= 0", domain.ErrValidation)
		}
		if strings.TrimSpace(req.NewURI) == "" {
			return "", nil, nil, fmt.Errorf("%w: newUri is required", domain.ErrValidation)
		}
		return "setTokenURI", []any{big.NewInt(*req.TokenID), req.NewURI},
			map[string]any{"tokenId": *req.TokenID, "newUri": req.NewURI}, nil

	case domain.OpBlacklistAdd, domain.OpBlacklistRemove:
		if !common.IsHexAddress(req.Address) {
			return "", nil, nil, fmt.Errorf("%w: invalid address %q", domain.ErrValidation, req.Address)
		}
		blocked := req.Type == domain.OpBlacklistAdd
		return "setBlacklist", []any{common.HexToAddress(req.Address), blocked},
			map[string]any{"address": req.Address, "blocked": blocked}, nil

	case domain.OpEmergencyWithdraw:
		if !common.IsHexAddress(req.To) {
			return "", nil, nil, fmt.Errorf("%w: invalid recipient %q", domain.ErrValidation, req.To)
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return "", nil, nil, err
		}
		return "emergencyWithdraw", []any{common.HexToAddress(req.To), amount},
			map[string]any{"to": req.To, "amount": req.Amount}, nil

	case domain.OpPayoutRelease:
		if !common.IsHexAddress(req.Recipient) {
			return "", nil, nil, fmt.Errorf("%w: invalid recipient %q", domain.ErrValidation, req.Recipient)
		}
		amount, err := parseAmount(req.Amount)
		if err != nil {
			return "", nil, nil, err
		}
		return "releasePayout", []any{common.HexToAddress(req.Recipient), amount},
			map[string]any{"recipient": req.Recipient, "amount": req.Amount}, nil
	}
	return "", nil, nil, fmt.Errorf("%w: unknown operation type %q", domain.ErrValidation, req.Type)
}

func parseAmount(raw string) (*big.Int, error) {
	amount, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: amount must be a positive integer, got %q", domain.ErrValidation, raw)
	}
	return amount, nil
}
