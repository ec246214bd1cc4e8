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

	"crowdfund-ledger-go/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func campaignIDFromRequest(w http.ResponseWriter, r *http.Request) (models.CampaignID, bool) {
	id, err := models.ParseCampaignID(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return models.CampaignID{}, false
	}
	return id, true
}

func (h *Handler) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID       models.CampaignID `json:"id"`
		Title    string            `json:"title"`
		Creator  string            `json:"creator"`
		Goal     decimal.Decimal   `json:"goal"`
		Deadline int64             `json:"deadline"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.ledger.CreateCampaign(r.Context(), authFromRequest(r), req.ID, req.Title, req.Creator, req.Goal, req.Deadline)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": req.ID.String()})
}

func (h *Handler) listCampaigns(w http.ResponseWriter, r *http.Request) {
	ids, err := h.ledger.AllCampaigns(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}

	campaigns, err := h.ledger.GetCampaigns(r.Context(), ids)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaigns)
}

func (h *Handler) activeCampaignCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.ledger.ActiveCampaignCount(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint32{"active_campaigns": count})
}

func (h *Handler) globalRaisedTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.ledger.GlobalRaisedTotal(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"total_raised": total})
}

func (h *Handler) getCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignIDFromRequest(w, r)
	if !ok {
		return
	}

	campaign, err := h.ledger.GetCampaign(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, campaign)
}

func (h *Handler) campaignMetrics(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignIDFromRequest(w, r)
	if !ok {
		return
	}

	metrics, err := h.ledger.CampaignMetrics(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, metrics)
}

func (h *Handler) campaignStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignIDFromRequest(w, r)
	if !ok {
		return
	}

	status, err := h.ledger.CampaignStatus(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.CampaignStatus{"status": status})
}

func (h *Handler) campaignFeeHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignIDFromRequest(w, r)
	if !ok {
		return
	}

	fees, err := h.ledger.CampaignFeeHistory(r.Context(), id)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"fees": fees})
}

func (h *Handler) contribution(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignIDFromRequest(w, r)
	if !ok {
		return
	}

	amount, err := h.ledger.Contribution(r.Context(), id, chi.URLParam(r, "donor"))
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]decimal.Decimal{"amount": amount})
}

func (h *Handler) donate(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		Donor  string          `json:"donor"`
		Asset  string          `json:"asset"`
		Amount decimal.Decimal `json:"amount"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.ledger.Donate(r.Context(), authFromRequest(r), id, req.Donor, req.Asset, req.Amount)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "accepted"})
}

func (h *Handler) extendDeadline(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignIDFromRequest(w, r)
	if !ok {
		return
	}

	var req struct {
		NewDeadline int64 `json:"new_deadline"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	err := h.ledger.ExtendCampaignDeadline(r.Context(), authFromRequest(r), id, req.NewDeadline)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deadline": req.NewDeadline})
}

func (h *Handler) cancelCampaign(w http.ResponseWriter, r *http.Request) {
	id, ok := campaignIDFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.ledger.CancelCampaign(r.Context(), authFromRequest(r), id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}
