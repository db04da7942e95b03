package dispatch

import (
	"context"
	"fmt"
	"time"

	"givehub/internal/domain"
	"givehub/internal/infra"
	"givehub/internal/sqlinline"
)

// PGStore persists privileged operations in Postgres. The confirm and fail
// updates are guarded on status = 'pending', which enforces the terminal
// state machine at the datastore.
type PGStore struct {
	sql infra.SQLExecutor
}

func NewPGStore(sql infra.SQLExecutor) *PGStore {
	return &PGStore{sql: sql}
}

func (s *PGStore) Insert(ctx context.Context, op *domain.PrivilegedOperation) error {
	_, err := s.sql.Exec(ctx, sqlinline.QInsertOperation,
		op.ID, op.ActorID, string(op.Type), op.ChainID, op.Version, op.TokenID, op.Address, op.Amount, op.NewURI)
	if err != nil {
		return fmt.Errorf("%w: insert operation: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (s *PGStore) SetTxHash(ctx context.Context, id, txHash string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QSetOperationTxHash, id, txHash)
	if err != nil {
		return fmt.Errorf("%w: set tx hash: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (s *PGStore) Confirm(ctx context.Context, id, txHash string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QConfirmOperation, id, txHash)
	if err != nil {
		return fmt.Errorf("%w: confirm operation: %v", domain.ErrPersistence, err)
	}
	return nil
}

func (s *PGStore) Fail(ctx context.Context, id, detail string) error {
	_, err := s.sql.Exec(ctx, sqlinline.QFailOperation, id, detail)
	if err != nil {
		return fmt.Errorf("%w: fail operation: %v", domain.ErrPersistence, err)
	}
	return nil
}

// StaleOperation is a pending operation with a submitted transaction whose
// confirmation was never observed.
type StaleOperation struct {
	ID        string
	ActorID   string
	Type      domain.OperationType
	ChainID   uint64
	TxHash    string
	CreatedAt time.Time
}

// ListStalePending returns pending operations with a transaction hash that
// have not been touched for at least olderThan.
func (s *PGStore) ListStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]StaleOperation, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListStalePendingOperations, int(olderThan.Seconds()), limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list stale operations: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var out []StaleOperation
	for rows.Next() {
		var op StaleOperation
		var opType string
		if err := rows.Scan(&op.ID, &op.ActorID, &opType, &op.ChainID, &op.TxHash, &op.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan stale operation: %v", domain.ErrPersistence, err)
		}
		op.Type = domain.OperationType(opType)
		out = append(out, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate stale operations: %v", domain.ErrPersistence, err)
	}
	return out, nil
}
