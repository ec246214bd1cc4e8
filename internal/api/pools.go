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
	"strconv"

	"crowdfund-ledger-go/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func poolIDFromRequest(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid pool id")
		return 0, false
	}
	return id, true
}

func (h *Handler) createPool(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name               string              `json:"name"`
		Creator            string              `json:"creator"`
		TargetAmount       decimal.Decimal     `json:"target_amount"`
		Deadline           int64               `json:"deadline"`
		Metadata           models.PoolMetadata `json:"metadata"`
		RequiredSignatures *uint32             `json:"required_signatures,omitempty"`
		Signers            []string            `json:"signers,omitempty"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	poolID, err := h.ledger.SavePool(r.Context(), authFromRequest(r), req.Name, req.Metadata,
		req.Creator, req.TargetAmount, req.Deadline, req.RequiredSignatures, req.Signers)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"pool_id": poolID})
}

func (h *Handler) getPool(w http.ResponseWriter, r *http.Request) {
	id, ok := poolIDFromRequest(w, r)
	if !ok {
		return
	}

	pool, err := h.ledger.GetPool(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

func (h *Handler) poolMetadata(w http.ResponseWriter, r *http.Request) {
	id, ok := poolIDFromRequest(w, r)
	if !ok {
		return
	}

	metadata, err := h.ledger.GetPoolMetadata(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metadata)
}

func (h *Handler) poolState(w http.ResponseWriter, r *http.Request) {
	id, ok := poolIDFromRequest(w, r)
	if !ok {
		return
	}

	state, err := h.ledger.PoolStateOf(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.PoolState{"state": state})
}

func (h *Handler) updatePoolState(w http.ResponseWriter, r *http.Request) {
	id, ok := poolIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		State models.PoolState `json:"state"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.ledger.UpdatePoolState(r.Context(), id, req.State); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.PoolState{"state": req.State})
}

func (h *Handler) poolMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := poolIDFromRequest(w, r)
	if !ok {
		return
	}

	metrics, err := h.ledger.PoolMetricsOf(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (h *Handler) poolMultiSig(w http.ResponseWriter, r *http.Request) {
	id, ok := poolIDFromRequest(w, r)
	if !ok {
		return
	}

	config, err := h.ledger.PoolMultiSigOf(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	if config == nil {
		writeError(w, http.StatusNotFound, "pool has no multisig configuration")
		return
	}
	writeJSON(w, http.StatusOK, config)
}

func (h *Handler) poolContribution(w http.ResponseWriter, r *http.Request) {
	id, ok := poolIDFromRequest(w, r)
	if !ok {
		return
	}

	record, err := h.ledger.PoolContributionOf(r.Context(), id, chi.URLParam(r, "contributor"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) contribute(w http.ResponseWriter, r *http.Request) {
	id, ok := poolIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Contributor string          `json:"contributor"`
		Asset       string          `json:"asset"`
		Amount      decimal.Decimal `json:"amount"`
		Private     bool            `json:"private"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.ledger.Contribute(r.Context(), authFromRequest(r), id, req.Contributor, req.Asset, req.Amount, req.Private)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (h *Handler) refund(w http.ResponseWriter, r *http.Request) {
	id, ok := poolIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Contributor string `json:"contributor"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.ledger.Refund(r.Context(), authFromRequest(r), id, req.Contributor); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "refunded"})
}

func (h *Handler) closePool(w http.ResponseWriter, r *http.Request) {
	id, ok := poolIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.ledger.ClosePool(r.Context(), authFromRequest(r), id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "closed"})
}
