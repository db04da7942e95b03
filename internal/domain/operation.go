package domain

import "time"

// OperationType enumerates the privileged on-chain operations.
type OperationType string

const (
	OpBurn              OperationType = "burn"
	OpFixURI            OperationType = "fix_uri"
	OpBlacklistAdd      OperationType = "blacklist_add"
	OpBlacklistRemove   OperationType = "blacklist_remove"
	OpEmergencyWithdraw OperationType = "emergency_withdraw"
	OpPayoutRelease     OperationType = "payout_release"
)

// Valid reports whether t is a known operation type.
func (t OperationType) Valid() bool {
	switch t {
	case OpBurn, OpFixURI, OpBlacklistAdd, OpBlacklistRemove, OpEmergencyWithdraw, OpPayoutRelease:
		return true
	}
	return false
}

// MinimumRole returns the role required to dispatch t. Emergency withdrawal is
// the single highest-risk operation and is reserved to super admins.
func (t OperationType) MinimumRole() Role {
	if t == OpEmergencyWithdraw {
		return RoleSuperAdmin
	}
	return RoleAdmin
}

// OperationStatus is the lifecycle state of a privileged operation. Confirmed
// and failed are terminal; a retried action is a new record, never a mutation
// of an old one.
type OperationStatus string

const (
	OperationPending   OperationStatus = "pending"
	OperationConfirmed OperationStatus = "confirmed"
	OperationFailed    OperationStatus = "failed"
)

// PrivilegedOperation records one admin-initiated on-chain mutation attempt.
// TxHash is empty until the transaction has been submitted.
type PrivilegedOperation struct {
	ID        string
	ActorID   string
	Type      OperationType
	ChainID   uint64
	Version   string
	TokenID   int64
	Address   string
	Amount    string
	NewURI    string
	Status    OperationStatus
	TxHash    string
	Detail    string
	CreatedAt time.Time
	UpdatedAt time.Time
}
