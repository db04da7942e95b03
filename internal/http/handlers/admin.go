package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"givehub/internal/auth"
	"givehub/internal/dispatch"
	"givehub/internal/domain"
)

type burnRequest struct {
	ChainID uint64 `json:"chainId"`
	Version string `json:"version"`
	TokenID *int64 `json:"tokenId"`
}

func (a *App) AdminBurn(w http.ResponseWriter, r *http.Request) {
	var req burnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	res, err := a.Dispatcher.Dispatch(r.Context(), bearer(r), dispatch.Request{
		Type:    domain.OpBurn,
		ChainID: req.ChainID,
		Version: req.Version,
		TokenID: req.TokenID,
	})
	if err != nil {
		a.dispatchError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"ok": true, "tokenId": deref(req.TokenID), "txHash": res.TxHash})
}

type fixURIRequest struct {
	ChainID uint64 `json:"chainId"`
	Version string `json:"version"`
	TokenID *int64 `json:"tokenId"`
	NewURI  string `json:"newUri"`
}

func (a *App) AdminFixURI(w http.ResponseWriter, r *http.Request) {
	var req fixURIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	res, err := a.Dispatcher.Dispatch(r.Context(), bearer(r), dispatch.Request{
		Type:    domain.OpFixURI,
		ChainID: req.ChainID,
		Version: req.Version,
		TokenID: req.TokenID,
		NewURI:  req.NewURI,
	})
	if err != nil {
		a.dispatchError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"ok":      true,
		"tokenId": deref(req.TokenID),
		"newUri":  req.NewURI,
		"txHash":  res.TxHash,
	})
}

type blacklistRequest struct {
	ChainID uint64 `json:"chainId"`
	Version string `json:"version"`
	Address string `json:"address"`
	Action  string `json:"action"`
}

func (a *App) AdminBlacklist(w http.ResponseWriter, r *http.Request) {
	var req blacklistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	opType := domain.OpBlacklistAdd
	switch req.Action {
	case "add", "":
	case "remove":
		opType = domain.OpBlacklistRemove
	default:
		a.error(w, http.StatusBadRequest, "validation", "action must be add or remove")
		return
	}
	res, err := a.Dispatcher.Dispatch(r.Context(), bearer(r), dispatch.Request{
		Type:    opType,
		ChainID: req.ChainID,
		Version: req.Version,
		Address: req.Address,
	})
	if err != nil {
		a.dispatchError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"ok":      true,
		"address": req.Address,
		"action":  req.Action,
		"txHash":  res.TxHash,
	})
}

type emergencyWithdrawRequest struct {
	ChainID uint64 `json:"chainId"`
	Version string `json:"version"`
	To      string `json:"to"`
	Amount  string `json:"amount"`
}

func (a *App) AdminEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	var req emergencyWithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	res, err := a.Dispatcher.Dispatch(r.Context(), bearer(r), dispatch.Request{
		Type:    domain.OpEmergencyWithdraw,
		ChainID: req.ChainID,
		Version: req.Version,
		To:      req.To,
		Amount:  req.Amount,
	})
	if err != nil {
		a.dispatchError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"ok":     true,
		"to":     req.To,
		"amount": req.Amount,
		"txHash": res.TxHash,
	})
}

type payoutReleaseRequest struct {
	ChainID   uint64 `json:"chainId"`
	Version   string `json:"version"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	OnChain   *bool  `json:"onchain"`
}

func (a *App) AdminPayoutRelease(w http.ResponseWriter, r *http.Request) {
	var req payoutReleaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if req.OnChain != nil && !*req.OnChain {
		a.error(w, http.StatusBadRequest, "validation", "off-chain payouts are settled by the payment processor, not this endpoint")
		return
	}
	res, err := a.Dispatcher.Dispatch(r.Context(), bearer(r), dispatch.Request{
		Type:      domain.OpPayoutRelease,
		ChainID:   req.ChainID,
		Version:   req.Version,
		Recipient: req.Recipient,
		Amount:    req.Amount,
	})
	if err != nil {
		a.dispatchError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"ok":        true,
		"recipient": req.Recipient,
		"amount":    req.Amount,
		"txHash":    res.TxHash,
	})
}

// dispatchError maps dispatcher error kinds onto the admin API contract.
func (a *App) dispatchError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		a.error(w, http.StatusUnauthorized, "unauthorized", "bearer token missing or invalid")
	case errors.Is(err, domain.ErrForbidden):
		a.error(w, http.StatusForbidden, "forbidden", "insufficient role for this operation")
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidAmount):
		a.error(w, http.StatusBadRequest, "validation", err.Error())
	case errors.Is(err, domain.ErrBindingNotFound):
		a.error(w, http.StatusInternalServerError, "binding_not_found", err.Error())
	case errors.Is(err, domain.ErrSignerUnavailable):
		a.error(w, http.StatusInternalServerError, "signer_unavailable", err.Error())
	case errors.Is(err, domain.ErrChainTimeout):
		a.error(w, http.StatusInternalServerError, "chain_timeout", err.Error())
	case errors.Is(err, domain.ErrChain):
		a.error(w, http.StatusInternalServerError, "chain_error", err.Error())
	default:
		a.error(w, http.StatusInternalServerError, "persistence_error", err.Error())
	}
}

func bearer(r *http.Request) string {
	return auth.TokenFromHeader(r.Header.Get("Authorization"))
}

func deref(v *int64) int64 {
	if v == nil {
		return -1
	}
	return *v
}
