package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"givehub/internal/domain"
	"givehub/internal/infra"
	"givehub/internal/sqlinline"
)

// Store is the append-only audit trail. There is no update or delete in this
// surface; a status change on an operation is appended as its own record.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Append writes one audit record and returns its id.
func (s *Store) Append(ctx context.Context, rec domain.AuditRecord) (string, error) {
	params := rec.Params
	if params == nil {
		params = map[string]any{}
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("encode audit params: %w", err)
	}
	row := s.sql.QueryRow(ctx, sqlinline.QInsertAuditRecord,
		rec.ActorID, rec.Operation, rec.OperationID, raw, string(rec.Status), rec.TxHash)
	var id string
	if err := row.Scan(&id); err != nil {
		return "", fmt.Errorf("%w: append audit record: %v", domain.ErrPersistence, err)
	}
	return id, nil
}

// Filter narrows a Query; zero values match everything.
type Filter struct {
	ActorID   string
	Operation string
	Status    string
	Limit     int
}

// Query returns matching records, newest first.
func (s *Store) Query(ctx context.Context, f Filter) ([]domain.AuditRecord, error) {
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := s.sql.Query(ctx, sqlinline.QListAuditRecords, f.ActorID, f.Operation, f.Status, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: query audit records: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var records []domain.AuditRecord
	for rows.Next() {
		var rec domain.AuditRecord
		var status string
		var params []byte
		if err := rows.Scan(&rec.ID, &rec.ActorID, &rec.Operation, &rec.OperationID, &params, &status, &rec.TxHash, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan audit record: %v", domain.ErrPersistence, err)
		}
		rec.Status = domain.AuditOutcome(status)
		if len(params) > 0 {
			_ = json.Unmarshal(params, &rec.Params)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate audit records: %v", domain.ErrPersistence, err)
	}
	return records, nil
}
