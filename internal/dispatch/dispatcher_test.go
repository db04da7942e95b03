package dispatch

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"givehub/internal/domain"
)

type fakeGate struct {
	identity domain.Identity
	err      error
	lastMin  domain.Role
}

func (g *fakeGate) Authorize(_ context.Context, _ string, minRole domain.Role) (domain.Identity, error) {
	g.lastMin = minRole
	if g.err != nil {
		return domain.Identity{}, g.err
	}
	if !g.identity.Role.AtLeast(minRole) {
		return domain.Identity{}, domain.ErrForbidden
	}
	return g.identity, nil
}

type fakeRegistry struct {
	binding domain.ChainContractBinding
	err     error
}

func (r *fakeRegistry) ResolveBinding(chainID uint64, version string) (domain.ChainContractBinding, error) {
	if r.err != nil {
		return domain.ChainContractBinding{}, r.err
	}
	if chainID != r.binding.ChainID || version != r.binding.Version {
		return domain.ChainContractBinding{}, fmt.Errorf("%w: chain %d version %s", domain.ErrBindingNotFound, chainID, version)
	}
	return r.binding, nil
}

type fakeSubmitter struct {
	txHash string
	err    error
	calls  int
	method string
	args   []any
}

func (s *fakeSubmitter) Submit(_ context.Context, _ domain.ChainContractBinding, method string, args ...any) (string, error) {
	s.calls++
	s.method = method
	s.args = args
	return s.txHash, s.err
}

type fakeOpStore struct {
	inserted  []*domain.PrivilegedOperation
	confirmed map[string]string
	failed    map[string]string
	txHashes  map[string]string
	insertErr error
}

func newFakeOpStore() *fakeOpStore {
	return &fakeOpStore{
		confirmed: map[string]string{},
		failed:    map[string]string{},
		txHashes:  map[string]string{},
	}
}

func (s *fakeOpStore) Insert(_ context.Context, op *domain.PrivilegedOperation) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.inserted = append(s.inserted, op)
	return nil
}

func (s *fakeOpStore) SetTxHash(_ context.Context, id, txHash string) error {
	s.txHashes[id] = txHash
	return nil
}

func (s *fakeOpStore) Confirm(_ context.Context, id, txHash string) error {
	s.confirmed[id] = txHash
	return nil
}

func (s *fakeOpStore) Fail(_ context.Context, id, detail string) error {
	s.failed[id] = detail
	return nil
}

type fakeAudit struct {
	records []domain.AuditRecord
	err     error
}

func (a *fakeAudit) Append(_ context.Context, rec domain.AuditRecord) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.records = append(a.records, rec)
	return fmt.Sprintf("audit-%d", len(a.records)), nil
}

func int64Ptr(v int64) *int64 { return &v }

func testBinding() domain.ChainContractBinding {
	return domain.ChainContractBinding{
		ChainID:    1043,
		Version:    "v6",
		Address:    "0x52908400098527886E0F7030069857D2E4169EE7",
		ABIVariant: "fund_v6",
	}
}

func newTestDispatcher(gate *fakeGate, reg *fakeRegistry, sub *fakeSubmitter, ops *fakeOpStore, aud *fakeAudit) *Dispatcher {
	return NewDispatcher(gate, reg, sub, ops, aud, zerolog.Nop())
}

func TestDispatchFixURIConfirmed(t *testing.T) {
	gate := &fakeGate{identity: domain.Identity{ActorID: "admin-1", Role: domain.RoleAdmin}}
	reg := &fakeRegistry{binding: testBinding()}
	sub := &fakeSubmitter{txHash: "0xabc"}
	ops := newFakeOpStore()
	aud := &fakeAudit{}
	d := newTestDispatcher(gate, reg, sub, ops, aud)

	res, err := d.Dispatch(context.Background(), "token", Request{
		Type:    domain.OpFixURI,
		ChainID: 1043,
		Version: "v6",
		TokenID: int64Ptr(42),
		NewURI:  "ipfs://fixed",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Status != domain.OperationConfirmed || res.TxHash != "0xabc" {
		t.Fatalf("result = %+v, want confirmed 0xabc", res)
	}
	if sub.method != "setTokenURI" {
		t.Fatalf("method = %q, want setTokenURI", sub.method)
	}
	if len(ops.inserted) != 1 || ops.confirmed[res.OperationID] != "0xabc" {
		t.Fatalf("operation record not inserted/confirmed: %+v", ops)
	}
	// Pending audit record precedes the confirmed one.
	if len(aud.records) != 2 {
		t.Fatalf("audit records = %d, want 2", len(aud.records))
	}
	if aud.records[0].Status != domain.AuditPending || aud.records[1].Status != domain.AuditConfirmed {
		t.Fatalf("audit statuses = %v then %v, want pending then confirmed", aud.records[0].Status, aud.records[1].Status)
	}
	if aud.records[1].TxHash != "0xabc" {
		t.Fatalf("confirmed audit tx hash = %q, want 0xabc", aud.records[1].TxHash)
	}
}

func TestDispatchAdminCannotEmergencyWithdraw(t *testing.T) {
	gate := &fakeGate{identity: domain.Identity{ActorID: "admin-1", Role: domain.RoleAdmin}}
	sub := &fakeSubmitter{txHash: "0xabc"}
	ops := newFakeOpStore()
	aud := &fakeAudit{}
	d := newTestDispatcher(gate, &fakeRegistry{binding: testBinding()}, sub, ops, aud)

	_, err := d.Dispatch(context.Background(), "token", Request{
		Type:    domain.OpEmergencyWithdraw,
		ChainID: 1043,
		Version: "v6",
		To:      "0x52908400098527886E0F7030069857D2E4169EE7",
		Amount:  "1000",
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}
	if gate.lastMin != domain.RoleSuperAdmin {
		t.Fatalf("minimum role checked = %v, want super_admin", gate.lastMin)
	}
	if sub.calls != 0 || len(ops.inserted) != 0 || len(aud.records) != 0 {
		t.Fatal("rejected dispatch must leave no chain call, operation or audit record")
	}
}

func TestDispatchSuperAdminEmergencyWithdraw(t *testing.T) {
	gate := &fakeGate{identity: domain.Identity{ActorID: "root-1", Role: domain.RoleSuperAdmin}}
	sub := &fakeSubmitter{txHash: "0xdef"}
	ops := newFakeOpStore()
	d := newTestDispatcher(gate, &fakeRegistry{binding: testBinding()}, sub, ops, &fakeAudit{})

	res, err := d.Dispatch(context.Background(), "token", Request{
		Type:    domain.OpEmergencyWithdraw,
		ChainID: 1043,
		Version: "v6",
		To:      "0x52908400098527886E0F7030069857D2E4169EE7",
		Amount:  "1000",
	})
	if err != nil || res.Status != domain.OperationConfirmed {
		t.Fatalf("got (%+v, %v), want confirmed", res, err)
	}
	if sub.method != "emergencyWithdraw" {
		t.Fatalf("method = %q, want emergencyWithdraw", sub.method)
	}
}

func TestDispatchUnknownBindingLeavesNoTrace(t *testing.T) {
	gate := &fakeGate{identity: domain.Identity{ActorID: "admin-1", Role: domain.RoleAdmin}}
	sub := &fakeSubmitter{}
	ops := newFakeOpStore()
	aud := &fakeAudit{}
	d := newTestDispatcher(gate, &fakeRegistry{binding: testBinding()}, sub, ops, aud)

	_, err := d.Dispatch(context.Background(), "token", Request{
		Type:    domain.OpBurn,
		ChainID: 999,
		Version: "v1",
		TokenID: int64Ptr(7),
	})
	if !errors.Is(err, domain.ErrBindingNotFound) {
		t.Fatalf("err = %v, want ErrBindingNotFound", err)
	}
	if sub.calls != 0 || len(ops.inserted) != 0 || len(aud.records) != 0 {
		t.Fatal("unresolved binding must leave no chain call, operation or audit record")
	}
}

func TestDispatchValidation(t *testing.T) {
	gate := &fakeGate{identity: domain.Identity{ActorID: "admin-1", Role: domain.RoleAdmin}}
	d := newTestDispatcher(gate, &fakeRegistry{binding: testBinding()}, &fakeSubmitter{}, newFakeOpStore(), &fakeAudit{})

	cases := []struct {
		name string
		req  Request
	}{
		{"burn without token id", Request{Type: domain.OpBurn, ChainID: 1043, Version: "v6"}},
		{"fix uri without uri", Request{Type: domain.OpFixURI, ChainID: 1043, Version: "v6", TokenID: int64Ptr(1)}},
		{"blacklist bad address", Request{Type: domain.OpBlacklistAdd, ChainID: 1043, Version: "v6", Address: "not-an-address"}},
		{"withdraw zero amount", Request{Type: domain.OpEmergencyWithdraw, ChainID: 1043, Version: "v6", To: "0x52908400098527886E0F7030069857D2E4169EE7", Amount: "0"}},
		{"payout negative amount", Request{Type: domain.OpPayoutRelease, ChainID: 1043, Version: "v6", Recipient: "0x52908400098527886E0F7030069857D2E4169EE7", Amount: "-5"}},
		{"unknown type", Request{Type: "mint", ChainID: 1043, Version: "v6"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := d.Dispatch(context.Background(), "token", tc.req); !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestDispatchTimeoutLeavesPendingWithHash(t *testing.T) {
	gate := &fakeGate{identity: domain.Identity{ActorID: "admin-1", Role: domain.RoleAdmin}}
	sub := &fakeSubmitter{txHash: "0xslow", err: fmt.Errorf("%w: 0xslow", domain.ErrChainTimeout)}
	ops := newFakeOpStore()
	aud := &fakeAudit{}
	d := newTestDispatcher(gate, &fakeRegistry{binding: testBinding()}, sub, ops, aud)

	res, err := d.Dispatch(context.Background(), "token", Request{
		Type:    domain.OpBurn,
		ChainID: 1043,
		Version: "v6",
		TokenID: int64Ptr(7),
	})
	if !errors.Is(err, domain.ErrChainTimeout) {
		t.Fatalf("err = %v, want ErrChainTimeout", err)
	}
	if res.Status != domain.OperationPending || res.TxHash != "0xslow" {
		t.Fatalf("result = %+v, want pending with hash", res)
	}
	if ops.txHashes[res.OperationID] != "0xslow" {
		t.Fatal("tx hash not recorded on the pending operation")
	}
	if len(ops.confirmed) != 0 || len(ops.failed) != 0 {
		t.Fatal("timed-out operation must stay pending")
	}
}

func TestDispatchRevertFailsOperation(t *testing.T) {
	gate := &fakeGate{identity: domain.Identity{ActorID: "admin-1", Role: domain.RoleAdmin}}
	sub := &fakeSubmitter{err: fmt.Errorf("%w: execution reverted", domain.ErrChain)}
	ops := newFakeOpStore()
	aud := &fakeAudit{}
	d := newTestDispatcher(gate, &fakeRegistry{binding: testBinding()}, sub, ops, aud)

	res, err := d.Dispatch(context.Background(), "token", Request{
		Type:    domain.OpBlacklistAdd,
		ChainID: 1043,
		Version: "v6",
		Address: "0x52908400098527886E0F7030069857D2E4169EE7",
	})
	if !errors.Is(err, domain.ErrChain) {
		t.Fatalf("err = %v, want ErrChain", err)
	}
	if res.Status != domain.OperationFailed {
		t.Fatalf("status = %v, want failed", res.Status)
	}
	if _, ok := ops.failed[res.OperationID]; !ok {
		t.Fatal("operation record not marked failed")
	}
	last := aud.records[len(aud.records)-1]
	if last.Status != domain.AuditFailed {
		t.Fatalf("last audit status = %v, want failed", last.Status)
	}
}

func TestDispatchAuditFailureBeforeSubmitAborts(t *testing.T) {
	gate := &fakeGate{identity: domain.Identity{ActorID: "admin-1", Role: domain.RoleAdmin}}
	sub := &fakeSubmitter{txHash: "0xabc"}
	ops := newFakeOpStore()
	d := newTestDispatcher(gate, &fakeRegistry{binding: testBinding()}, sub, ops, &fakeAudit{err: errors.New("audit store down")})

	_, err := d.Dispatch(context.Background(), "token", Request{
		Type:    domain.OpBurn,
		ChainID: 1043,
		Version: "v6",
		TokenID: int64Ptr(7),
	})
	if err == nil {
		t.Fatal("expected error when the pending audit record cannot be written")
	}
	if sub.calls != 0 {
		t.Fatal("chain must not be touched without a durable pending audit record")
	}
}
