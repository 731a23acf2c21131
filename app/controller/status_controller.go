package controller

import (
	"net/http"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"
	"catalogo-armazones/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StatusController exposes the row-status ledger
type StatusController struct {
	ledger *service.Ledger
	logger *zap.Logger
}

// NewStatusController creates a new StatusController
func NewStatusController(ledger *service.Ledger, log *zap.Logger) *StatusController {
	return &StatusController{ledger: ledger, logger: logger.OrNop(log)}
}

// GetStatuses handles GET /api/status
func (c *StatusController) GetStatuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, c.logger, http.StatusOK, c.ledger.Snapshot())
}

// SetStatus handles PUT /api/status/{sku} with {"status": "green"}
func (c *StatusController) SetStatus(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	var req struct {
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	status, err := models.ParseRowStatus(req.Status)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	c.ledger.Set(r.Context(), sku, status)
	writeJSON(w, c.logger, http.StatusOK, map[string]any{"sku": sku, "status": status})
}

// ResetStatuses handles DELETE /api/status
func (c *StatusController) ResetStatuses(w http.ResponseWriter, r *http.Request) {
	c.ledger.Reset(r.Context())
	c.logger.Info("status ledger reset")
	w.WriteHeader(http.StatusNoContent)
}
