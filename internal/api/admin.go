/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func (h *Handler) initialize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Admin       string          `json:"admin"`
		Asset       string          `json:"asset"`
		CreationFee decimal.Decimal `json:"creation_fee"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.ledger.Initialize(r.Context(), req.Admin, req.Asset, req.CreationFee); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"admin": req.Admin})
}

func (h *Handler) pause(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Pause(r.Context(), authFromRequest(r)); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": true})
}

func (h *Handler) unpause(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.Unpause(r.Context(), authFromRequest(r)); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": false})
}

func (h *Handler) paused(w http.ResponseWriter, r *http.Request) {
	paused, err := h.ledger.IsPaused(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": paused})
}

func (h *Handler) renounceAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.RenounceAdmin(r.Context(), authFromRequest(r)); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "renounced"})
}

func (h *Handler) blacklist(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Address string `json:"address"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.ledger.BlacklistAddress(r.Context(), authFromRequest(r), req.Address); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": req.Address})
}

func (h *Handler) unblacklist(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if err := h.ledger.UnblacklistAddress(r.Context(), authFromRequest(r), address); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"address": address})
}

func (h *Handler) isBlacklisted(w http.ResponseWriter, r *http.Request) {
	blacklisted, err := h.ledger.IsBlacklisted(r.Context(), chi.URLParam(r, "address"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"blacklisted": blacklisted})
}

func (h *Handler) setDefaultAsset(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Asset string `json:"asset"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.ledger.SetDefaultAsset(r.Context(), authFromRequest(r), req.Asset); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"asset": req.Asset})
}

func (h *Handler) defaultAsset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.ledger.GetDefaultAsset(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"asset": asset})
}

func (h *Handler) setCreationFee(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Fee decimal.Decimal `json:"fee"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.ledger.SetCreationFee(r.Context(), authFromRequest(r), req.Fee); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"fee": req.Fee})
}

func (h *Handler) creationFee(w http.ResponseWriter, r *http.Request) {
	fee, err := h.ledger.GetCreationFee(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"fee": fee})
}

func (h *Handler) setEmergencyContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Contact string `json:"contact"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.ledger.SetEmergencyContact(r.Context(), authFromRequest(r), req.Contact); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"contact": req.Contact})
}

func (h *Handler) emergencyContact(w http.ResponseWriter, r *http.Request) {
	contact, err := h.ledger.GetEmergencyContact(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"contact": contact})
}

func (h *Handler) verifyCause(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Cause string `json:"cause"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.ledger.VerifyCause(r.Context(), authFromRequest(r), req.Cause); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"cause": req.Cause})
}

func (h *Handler) isCauseVerified(w http.ResponseWriter, r *http.Request) {
	verified, err := h.ledger.IsCauseVerified(r.Context(), chi.URLParam(r, "cause"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"verified": verified})
}

func (h *Handler) platformFees(w http.ResponseWriter, r *http.Request) {
	fees, err := h.ledger.PlatformFees(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"fees": fees})
}

func (h *Handler) withdrawPlatformFees(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.ledger.WithdrawPlatformFees(r.Context(), authFromRequest(r), req.Amount); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "withdrawn"})
}

func (h *Handler) requestEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token  string          `json:"token"`
		Amount decimal.Decimal `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.ledger.RequestEmergencyWithdraw(r.Context(), authFromRequest(r), req.Token, req.Amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "requested"})
}

func (h *Handler) executeEmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	if err := h.ledger.ExecuteEmergencyWithdraw(r.Context(), authFromRequest(r)); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "executed"})
}

func (h *Handler) pendingEmergencyWithdrawal(w http.ResponseWriter, r *http.Request) {
	request, err := h.ledger.PendingEmergencyWithdrawal(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if request == nil {
		writeError(w, http.StatusNotFound, "no pending emergency withdrawal")
		return
	}
	writeJSON(w, http.StatusOK, request)
}
