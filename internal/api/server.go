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
	"encoding/json"
	"errors"
	"net/http"

	"crowdfund-ledger-go/internal/engine"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// actorHeader carries the caller identity. There is no signature check here;
// authenticating the caller is the deployment's job, authorizing the action
// is the engine's.
const actorHeader = "X-Actor"

// Handler exposes the ledger engine over HTTP.
type Handler struct {
	ledger *engine.Engine
}

func NewHandler(ledger *engine.Engine) *Handler {
	return &Handler{ledger: ledger}
}

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(recoverMiddleware)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/version", handler.version)

	r.Route("/v1", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.Post("/initialize", handler.initialize)
			r.Post("/pause", handler.pause)
			r.Post("/unpause", handler.unpause)
			r.Get("/paused", handler.paused)
			r.Post("/renounce", handler.renounceAdmin)
			r.Post("/blacklist", handler.blacklist)
			r.Delete("/blacklist/{address}", handler.unblacklist)
			r.Get("/blacklist/{address}", handler.isBlacklisted)
			r.Put("/default-asset", handler.setDefaultAsset)
			r.Get("/default-asset", handler.defaultAsset)
			r.Put("/creation-fee", handler.setCreationFee)
			r.Get("/creation-fee", handler.creationFee)
			r.Put("/emergency-contact", handler.setEmergencyContact)
			r.Get("/emergency-contact", handler.emergencyContact)
			r.Post("/verified-causes", handler.verifyCause)
			r.Get("/verified-causes/{cause}", handler.isCauseVerified)
			r.Get("/fees", handler.platformFees)
			r.Post("/fees/withdraw", handler.withdrawPlatformFees)
			r.Post("/emergency-withdrawal", handler.requestEmergencyWithdraw)
			r.Post("/emergency-withdrawal/execute", handler.executeEmergencyWithdraw)
			r.Get("/emergency-withdrawal", handler.pendingEmergencyWithdrawal)
		})

		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", handler.createCampaign)
			r.Get("/", handler.listCampaigns)
			r.Get("/active-count", handler.activeCampaignCount)
			r.Get("/global-total", handler.globalRaisedTotal)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler.getCampaign)
				r.Get("/metrics", handler.campaignMetrics)
				r.Get("/status", handler.campaignStatus)
				r.Get("/fees", handler.campaignFeeHistory)
				r.Get("/contributions/{donor}", handler.contribution)
				r.Post("/donations", handler.donate)
				r.Post("/deadline", handler.extendDeadline)
				r.Post("/cancel", handler.cancelCampaign)
			})
		})

		r.Route("/pools", func(r chi.Router) {
			r.Post("/", handler.createPool)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler.getPool)
				r.Get("/metadata", handler.poolMetadata)
				r.Get("/state", handler.poolState)
				r.Put("/state", handler.updatePoolState)
				r.Get("/metrics", handler.poolMetrics)
				r.Get("/multisig", handler.poolMultiSig)
				r.Get("/contributions/{contributor}", handler.poolContribution)
				r.Post("/contributions", handler.contribute)
				r.Post("/refunds", handler.refund)
				r.Post("/close", handler.closePool)
			})
		})
	})
	return r
}

func (h *Handler) version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": h.ledger.Version()})
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		next.ServeHTTP(w, r)
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				zap.L().Error("Handler panicked", zap.Any("panic", rec))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func authFromRequest(r *http.Request) engine.AuthContext {
	return engine.AuthContext{Actor: r.Header.Get(actorHeader)}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		zap.L().Error("Failed to encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func writeEngineError(w http.ResponseWriter, err error) {
	writeError(w, statusForError(err), err.Error())
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return false
	}
	return true
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, engine.ErrInvalidTitle),
		errors.Is(err, engine.ErrInvalidGoal),
		errors.Is(err, engine.ErrInvalidDeadline),
		errors.Is(err, engine.ErrInvalidAmount),
		errors.Is(err, engine.ErrInvalidFee),
		errors.Is(err, engine.ErrInvalidPoolName),
		errors.Is(err, engine.ErrInvalidPoolTarget),
		errors.Is(err, engine.ErrInvalidPoolDeadline),
		errors.Is(err, engine.ErrInvalidMetadata),
		errors.Is(err, engine.ErrInvalidMultiSigConfig),
		errors.Is(err, engine.ErrInvalidSignerCount),
		errors.Is(err, engine.ErrInvalidPoolState):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrContractPaused),
		errors.Is(err, engine.ErrUserBlacklisted):
		return http.StatusForbidden
	case errors.Is(err, engine.ErrCampaignNotFound),
		errors.Is(err, engine.ErrPoolNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrAlreadyInitialized),
		errors.Is(err, engine.ErrAlreadyPaused),
		errors.Is(err, engine.ErrAlreadyUnpaused),
		errors.Is(err, engine.ErrCampaignAlreadyExists),
		errors.Is(err, engine.ErrPoolAlreadyExists),
		errors.Is(err, engine.ErrCampaignAlreadyFunded),
		errors.Is(err, engine.ErrCampaignAlreadyCancelled),
		errors.Is(err, engine.ErrPoolAlreadyDisbursed),
		errors.Is(err, engine.ErrPoolAlreadyClosed),
		errors.Is(err, engine.ErrPoolNotDisbursedOrRefunded),
		errors.Is(err, engine.ErrEmergencyWithdrawalAlreadyRequested):
		return http.StatusConflict
	case errors.Is(err, engine.ErrNotInitialized),
		errors.Is(err, engine.ErrCampaignExpired),
		errors.Is(err, engine.ErrRefundNotAvailable),
		errors.Is(err, engine.ErrPoolNotExpired),
		errors.Is(err, engine.ErrRefundGracePeriodNotPassed),
		errors.Is(err, engine.ErrNoContributionToRefund),
		errors.Is(err, engine.ErrEmergencyWithdrawalNotRequested),
		errors.Is(err, engine.ErrEmergencyWithdrawalPeriodNotPassed),
		errors.Is(err, engine.ErrInsufficientBalance),
		errors.Is(err, engine.ErrInsufficientFees),
		errors.Is(err, engine.ErrTokenTransferFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
