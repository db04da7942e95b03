package domain

import "time"

// AuditOutcome is the recorded outcome of an audited action.
type AuditOutcome string

const (
	AuditPending   AuditOutcome = "pending"
	AuditConfirmed AuditOutcome = "confirmed"
	AuditFailed    AuditOutcome = "failed"
	AuditApplied   AuditOutcome = "applied"
)

// AuditRecord is one entry in the append-only audit trail. Records are never
// updated or deleted; a status change on an operation is appended as a fresh
// record referencing the same operation id.
type AuditRecord struct {
	ID          string
	ActorID     string
	Operation   string
	OperationID string
	Params      map[string]any
	Status      AuditOutcome
	TxHash      string
	CreatedAt   time.Time
}
