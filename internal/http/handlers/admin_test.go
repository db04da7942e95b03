package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"givehub/internal/audit"
	"givehub/internal/dispatch"
	"givehub/internal/domain"
)

type fakeDispatcher struct {
	result dispatch.Result
	err    error
	token  string
	req    dispatch.Request
	calls  int
}

func (f *fakeDispatcher) Dispatch(_ context.Context, token string, req dispatch.Request) (dispatch.Result, error) {
	f.calls++
	f.token = token
	f.req = req
	if f.err != nil {
		return dispatch.Result{}, f.err
	}
	return f.result, nil
}

type fakeAuthorizer struct {
	identity domain.Identity
	err      error
}

func (f *fakeAuthorizer) Authorize(context.Context, string, domain.Role) (domain.Identity, error) {
	return f.identity, f.err
}

type fakeAuditQuerier struct {
	records []domain.AuditRecord
	err     error
	filter  audit.Filter
}

func (f *fakeAuditQuerier) Query(_ context.Context, filter audit.Filter) ([]domain.AuditRecord, error) {
	f.filter = filter
	return f.records, f.err
}

func adminPost(path, body string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	r.Header.Set("Authorization", "Bearer test-token")
	return r
}

func TestAdminFixURISuccess(t *testing.T) {
	disp := &fakeDispatcher{result: dispatch.Result{OperationID: "op-1", TxHash: "0xabc", Status: domain.OperationConfirmed}}
	app := &App{Dispatcher: disp, Logger: zerolog.Nop()}

	rec := httptest.NewRecorder()
	app.AdminFixURI(rec, adminPost("/admin/fix-uri", `{"chainId":1043,"version":"v6","tokenId":42,"newUri":"ipfs://fixed"}`))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	got := decodeJSON(t, rec)
	if got["ok"] != true || got["txHash"] != "0xabc" || got["newUri"] != "ipfs://fixed" {
		t.Fatalf("body = %v", got)
	}
	if disp.token != "test-token" {
		t.Fatalf("token = %q, want bearer value", disp.token)
	}
	if disp.req.Type != domain.OpFixURI || disp.req.ChainID != 1043 || disp.req.Version != "v6" {
		t.Fatalf("request = %+v", disp.req)
	}
	if disp.req.TokenID == nil || *disp.req.TokenID != 42 {
		t.Fatalf("tokenId = %v, want 42", disp.req.TokenID)
	}
}

func TestAdminBlacklistActionMapping(t *testing.T) {
	cases := []struct {
		action string
		want   domain.OperationType
	}{
		{"add", domain.OpBlacklistAdd},
		{"", domain.OpBlacklistAdd},
		{"remove", domain.OpBlacklistRemove},
	}
	for _, tc := range cases {
		disp := &fakeDispatcher{result: dispatch.Result{TxHash: "0x1"}}
		app := &App{Dispatcher: disp, Logger: zerolog.Nop()}
		rec := httptest.NewRecorder()
		body := fmt.Sprintf(`{"chainId":1,"version":"v5","address":"0x52908400098527886E0F7030069857D2E4169EE7","action":%q}`, tc.action)
		app.AdminBlacklist(rec, adminPost("/admin/blacklist", body))

		if rec.Code != http.StatusOK || disp.req.Type != tc.want {
			t.Fatalf("action %q: status %d type %v, want 200 %v", tc.action, rec.Code, disp.req.Type, tc.want)
		}
	}

	// Unknown action never reaches the dispatcher.
	disp := &fakeDispatcher{}
	app := &App{Dispatcher: disp, Logger: zerolog.Nop()}
	rec := httptest.NewRecorder()
	app.AdminBlacklist(rec, adminPost("/admin/blacklist", `{"chainId":1,"version":"v5","address":"0x1","action":"freeze"}`))
	if rec.Code != http.StatusBadRequest || disp.calls != 0 {
		t.Fatalf("status = %d calls = %d, want 400 and no dispatch", rec.Code, disp.calls)
	}
}

func TestAdminPayoutReleaseRejectsOffChain(t *testing.T) {
	disp := &fakeDispatcher{}
	app := &App{Dispatcher: disp, Logger: zerolog.Nop()}
	rec := httptest.NewRecorder()
	app.AdminPayoutRelease(rec, adminPost("/admin/payout-release",
		`{"chainId":1,"version":"v6","recipient":"0x52908400098527886E0F7030069857D2E4169EE7","amount":"100","onchain":false}`))

	if rec.Code != http.StatusBadRequest || disp.calls != 0 {
		t.Fatalf("status = %d calls = %d, want 400 and no dispatch", rec.Code, disp.calls)
	}
}

func TestAdminDispatchErrorMapping(t *testing.T) {
	cases := []struct {
		err      error
		wantCode int
		wantKind string
	}{
		{domain.ErrUnauthorized, http.StatusUnauthorized, "unauthorized"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("%w: tokenId is required", domain.ErrValidation), http.StatusBadRequest, "validation"},
		{fmt.Errorf("%w: chain 999 version v1", domain.ErrBindingNotFound), http.StatusInternalServerError, "binding_not_found"},
		{fmt.Errorf("%w: chain 1043", domain.ErrSignerUnavailable), http.StatusInternalServerError, "signer_unavailable"},
		{fmt.Errorf("%w: 0xslow", domain.ErrChainTimeout), http.StatusInternalServerError, "chain_timeout"},
		{fmt.Errorf("%w: reverted", domain.ErrChain), http.StatusInternalServerError, "chain_error"},
		{fmt.Errorf("%w: insert", domain.ErrPersistence), http.StatusInternalServerError, "persistence_error"},
	}
	for _, tc := range cases {
		app := &App{Dispatcher: &fakeDispatcher{err: tc.err}, Logger: zerolog.Nop()}
		rec := httptest.NewRecorder()
		app.AdminBurn(rec, adminPost("/admin/burn", `{"chainId":1,"version":"v5","tokenId":7}`))

		if rec.Code != tc.wantCode {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.wantCode)
			continue
		}
		if got := decodeJSON(t, rec); got["error"] != tc.wantKind {
			t.Errorf("%v: kind = %v, want %s", tc.err, got["error"], tc.wantKind)
		}
	}
}

func TestAdminAuditListRequiresAdmin(t *testing.T) {
	app := &App{
		Gate:   &fakeAuthorizer{err: domain.ErrForbidden},
		Audit:  &fakeAuditQuerier{},
		Logger: zerolog.Nop(),
	}
	rec := httptest.NewRecorder()
	app.AdminAuditList(rec, httptest.NewRequest(http.MethodGet, "/admin/audit", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	app.Gate = &fakeAuthorizer{err: domain.ErrUnauthorized}
	rec = httptest.NewRecorder()
	app.AdminAuditList(rec, httptest.NewRequest(http.MethodGet, "/admin/audit", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdminAuditListAppliesQueryFilters(t *testing.T) {
	querier := &fakeAuditQuerier{records: []domain.AuditRecord{
		{ID: "a1", ActorID: "admin-1", Operation: "burn", Status: domain.AuditConfirmed, TxHash: "0xabc"},
	}}
	app := &App{
		Gate:   &fakeAuthorizer{identity: domain.Identity{ActorID: "admin-1", Role: domain.RoleAdmin}},
		Audit:  querier,
		Logger: zerolog.Nop(),
	}

	r := httptest.NewRequest(http.MethodGet, "/admin/audit?actor=admin-1&operation=burn&status=confirmed&limit=10", nil)
	r.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	app.AdminAuditList(rec, r)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	want := audit.Filter{ActorID: "admin-1", Operation: "burn", Status: "confirmed", Limit: 10}
	if querier.filter != want {
		t.Fatalf("filter = %+v, want %+v", querier.filter, want)
	}
	got := decodeJSON(t, rec)
	items, ok := got["items"].([]any)
	if !ok || len(items) != 1 {
		t.Fatalf("items = %v", got["items"])
	}
}
