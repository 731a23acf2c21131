package controller

import (
	"net/http"
	"strconv"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"
	"catalogo-armazones/service"

	"go.uber.org/zap"
)

// ImageController validates image URLs and syncs images from the image source
type ImageController struct {
	validator *service.URLValidator
	workspace *service.Workspace
	sync      service.ImageSyncServiceInterface
	logger    *zap.Logger
}

// NewImageController creates a new ImageController. sync may be nil when no image source is configured.
func NewImageController(validator *service.URLValidator, workspace *service.Workspace, sync service.ImageSyncServiceInterface, log *zap.Logger) *ImageController {
	return &ImageController{validator: validator, workspace: workspace, sync: sync, logger: logger.OrNop(log)}
}

// validateRequest takes explicit URLs or the SKU whose three images are checked
type validateRequest struct {
	URLs []string `json:"urls"`
	SKU  string   `json:"sku"`
}

// ValidateImages handles POST /api/images/validate. Results are advisory.
// X-Cached-URLs reports how many URLs the validator has cached so far.
func (c *ImageController) ValidateImages(w http.ResponseWriter, r *http.Request) {
	var req validateRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	urls := req.URLs
	if len(urls) == 0 && req.SKU != "" {
		row, err := c.workspace.Row(req.SKU)
		if err != nil {
			writeError(w, c.logger, "validate images", err)
			return
		}
		for i := 1; i <= models.ImageSlots; i++ {
			urls = append(urls, row.Image(i))
		}
	}
	if len(urls) == 0 {
		http.Error(w, "urls or sku is required", http.StatusBadRequest)
		return
	}

	select {
	case checks := <-c.validator.ValidateAll(r.Context(), urls):
		w.Header().Set("X-Cached-URLs", strconv.Itoa(c.validator.CachedResults()))
		writeJSON(w, c.logger, http.StatusOK, checks)
	case <-r.Context().Done():
		c.logger.Info("image validation abandoned by client")
	}
}

// SyncImages handles POST /api/images/sync
func (c *ImageController) SyncImages(w http.ResponseWriter, r *http.Request) {
	if c.sync == nil {
		http.Error(w, "no image source configured", http.StatusNotImplemented)
		return
	}
	stats, err := c.sync.SyncMissingImages(r.Context())
	if err != nil {
		writeError(w, c.logger, "sync images", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, stats)
}
