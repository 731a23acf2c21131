package controller

import (
	"context"
	"net/http"
	"strings"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"
	"catalogo-armazones/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// generateRequest is the optional body of the single page/card endpoints
type generateRequest struct {
	Images [models.ImageSlots]string `json:"images"`
	Link   string                    `json:"link"`
}

// batchRequest is the body of the batch endpoints
type batchRequest struct {
	SKUs []string `json:"skus"`
}

// jobAccepted is returned when a batch is submitted
type jobAccepted struct {
	JobID string `json:"jobId"`
	Kind  string `json:"kind"`
	Total int    `json:"total"`
}

// GenerationController handles page and card generation
type GenerationController struct {
	pages     *service.PageService
	cards     *service.CardService
	catalog   *service.CatalogService
	workspace *service.Workspace
	jobs      *service.JobRegistry
	previews  *service.PreviewService
	templates *service.TemplateCache
	logger    *zap.Logger
}

// NewGenerationController creates a new GenerationController
func NewGenerationController(
	pages *service.PageService,
	cards *service.CardService,
	catalog *service.CatalogService,
	workspace *service.Workspace,
	jobs *service.JobRegistry,
	previews *service.PreviewService,
	templates *service.TemplateCache,
	log *zap.Logger,
) *GenerationController {
	return &GenerationController{
		pages:     pages,
		cards:     cards,
		catalog:   catalog,
		workspace: workspace,
		jobs:      jobs,
		previews:  previews,
		templates: templates,
		logger:    logger.OrNop(log),
	}
}

func decodeBatch(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req batchRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	skus := make([]string, 0, len(req.SKUs))
	for _, s := range req.SKUs {
		if s = strings.TrimSpace(s); s != "" {
			skus = append(skus, s)
		}
	}
	if len(skus) == 0 {
		http.Error(w, "skus is required", http.StatusBadRequest)
		return nil, false
	}
	return skus, true
}

// GeneratePage handles POST /api/pages/{sku}
func (c *GenerationController) GeneratePage(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := c.pages.Generate(r.Context(), sku, req.Images)
	if err != nil {
		writeError(w, c.logger, "generate page", err)
		return
	}
	c.logger.Info("page generated", zap.String("sku", sku), zap.String("path", result.Path))
	writeJSON(w, c.logger, http.StatusCreated, result)
}

// GeneratePagesBatch handles POST /api/pages/batch
func (c *GenerationController) GeneratePagesBatch(w http.ResponseWriter, r *http.Request) {
	skus, ok := decodeBatch(w, r)
	if !ok {
		return
	}
	if _, err := c.workspace.Rows(); err != nil {
		writeError(w, c.logger, "generate pages", err)
		return
	}

	id, _ := c.jobs.Submit("pages", func(ctx context.Context, _ string) models.BatchSummary {
		return c.pages.GenerateBatch(ctx, skus)
	})
	writeJSON(w, c.logger, http.StatusAccepted, jobAccepted{JobID: id, Kind: "pages", Total: len(skus)})
}

// GenerateCard handles POST /api/cards/{sku}
func (c *GenerationController) GenerateCard(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := c.cards.Generate(r.Context(), sku, req.Images, strings.TrimSpace(req.Link))
	if err != nil {
		writeError(w, c.logger, "generate card", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, result)
}

// InsertCard handles POST /api/cards/{sku}/insert
func (c *GenerationController) InsertCard(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	var req generateRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := c.cards.GenerateAndInsert(r.Context(), sku, req.Images, strings.TrimSpace(req.Link))
	if err != nil {
		writeError(w, c.logger, "insert card", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, result)
}

// GenerateCardsBatch handles POST /api/cards/batch
func (c *GenerationController) GenerateCardsBatch(w http.ResponseWriter, r *http.Request) {
	skus, ok := decodeBatch(w, r)
	if !ok {
		return
	}
	if _, err := c.workspace.Rows(); err != nil {
		writeError(w, c.logger, "generate cards", err)
		return
	}

	id, _ := c.jobs.Submit("cards", func(ctx context.Context, _ string) models.BatchSummary {
		return c.cards.GenerateBatch(ctx, skus)
	})
	writeJSON(w, c.logger, http.StatusAccepted, jobAccepted{JobID: id, Kind: "cards", Total: len(skus)})
}

// ListHeldCards handles GET /api/cards/held
func (c *GenerationController) ListHeldCards(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, c.logger, http.StatusOK, c.workspace.HeldCards())
}

// InsertHeldCards handles POST /api/catalog/insert
func (c *GenerationController) InsertHeldCards(w http.ResponseWriter, r *http.Request) {
	n, err := c.cards.InsertHeld(r.Context())
	if err != nil {
		writeError(w, c.logger, "insert held cards", err)
		return
	}
	writeJSON(w, c.logger, http.StatusOK, map[string]int{"inserted": n})
}

// cardTemplateRequest sets the card template from a template file or from the
// first card of an existing catalog. Reset switches back to the default card.
type cardTemplateRequest struct {
	Path        string `json:"path"`
	FromCatalog bool   `json:"fromCatalog"`
	Reset       bool   `json:"reset"`
}

// SetCardTemplate handles POST /api/card-template
func (c *GenerationController) SetCardTemplate(w http.ResponseWriter, r *http.Request) {
	var req cardTemplateRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Reset {
		c.workspace.SetCardTemplate("")
		writeJSON(w, c.logger, http.StatusOK, map[string]any{"mode": "default"})
		return
	}

	path := strings.TrimSpace(req.Path)
	if path == "" && req.FromCatalog {
		path = c.cards.CatalogPath()
	}
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	var tpl string
	var err error
	if req.FromCatalog {
		tpl, err = c.catalog.ExtractTemplateFromFile(path)
	} else {
		// re-read so an edited template file is picked up
		c.templates.Invalidate(path)
		tpl, err = c.templates.Get(path)
	}
	if err != nil {
		writeError(w, c.logger, "set card template", err)
		return
	}

	c.workspace.SetCardTemplate(tpl)
	c.logger.Info("card template set", zap.String("path", path), zap.Bool("from_catalog", req.FromCatalog))
	writeJSON(w, c.logger, http.StatusOK, map[string]any{"mode": "template", "template": tpl})
}

// CardPreview handles GET /api/previews/{sku}
func (c *GenerationController) CardPreview(w http.ResponseWriter, r *http.Request) {
	sku := chi.URLParam(r, "sku")
	png, err := c.previews.CardPreview(r.Context(), sku)
	if err != nil {
		writeError(w, c.logger, "card preview", err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		c.logger.Warn("failed to write preview", zap.Error(err))
	}
}
