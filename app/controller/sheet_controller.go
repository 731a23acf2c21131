package controller

import (
	"net/http"
	"strings"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"
	"catalogo-armazones/pricing"
	"catalogo-armazones/service"

	"go.uber.org/zap"
)

// SheetController handles the product sheet and the brand/link mappings
type SheetController struct {
	workspace *service.Workspace
	ledger    *service.Ledger
	mappings  *service.MappingLoader
	logger    *zap.Logger
}

// NewSheetController creates a new SheetController
func NewSheetController(workspace *service.Workspace, ledger *service.Ledger, mappings *service.MappingLoader, log *zap.Logger) *SheetController {
	return &SheetController{
		workspace: workspace,
		ledger:    ledger,
		mappings:  mappings,
		logger:    logger.OrNop(log),
	}
}

// RowView is a row as listed by GET /api/rows
type RowView struct {
	models.Row
	Status        models.RowStatus `json:"status"`
	MissingImages []int            `json:"missingImages,omitempty"`
	// ComputedDiscount is derived from the two prices when both parse
	ComputedDiscount string `json:"computedDiscount,omitempty"`
}

// LoadSheet handles POST /api/sheet
func (c *SheetController) LoadSheet(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	path := strings.TrimSpace(req.Path)
	if path == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	rows, err := service.LoadSheet(path)
	if err != nil {
		c.logger.Warn("failed to load sheet", zap.String("path", path), zap.Error(err))
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	c.workspace.SetRows(path, rows)
	c.logger.Info("sheet loaded", zap.String("path", path), zap.Int("rows", len(rows)))

	writeJSON(w, c.logger, http.StatusOK, map[string]any{"path": path, "rows": len(rows)})
}

// ListRows handles GET /api/rows. X-Sheet-Path names the loaded sheet.
func (c *SheetController) ListRows(w http.ResponseWriter, r *http.Request) {
	rows, err := c.workspace.Rows()
	if err != nil {
		writeError(w, c.logger, "list rows", err)
		return
	}

	views := make([]RowView, 0, len(rows))
	for _, row := range rows {
		view := RowView{
			Row:           row,
			Status:        c.ledger.Get(row.Get(models.FieldSKU)),
			MissingImages: row.MissingImages(),
		}
		normal, errN := pricing.ParsePrice(row.Get(models.FieldPriceNormal))
		discounted, errD := pricing.ParsePrice(row.Get(models.FieldPriceDiscounted))
		if errN == nil && errD == nil {
			if pct, err := pricing.DiscountPercent(normal, discounted); err == nil {
				view.ComputedDiscount = pricing.FormatPercent(pct)
			}
		}
		views = append(views, view)
	}

	w.Header().Set("X-Sheet-Path", c.workspace.SheetPath())
	writeJSON(w, c.logger, http.StatusOK, views)
}

// LoadLogos handles POST /api/logos
func (c *SheetController) LoadLogos(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Path) == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	logos, stats, err := c.mappings.LoadLogoMap(strings.TrimSpace(req.Path))
	if err != nil {
		writeError(w, c.logger, "load logos", err)
		return
	}
	c.workspace.SetLogos(logos)
	writeJSON(w, c.logger, http.StatusOK, stats)
}

// LoadLinks handles POST /api/links
func (c *SheetController) LoadLinks(w http.ResponseWriter, r *http.Request) {
	var req pathRequest
	if err := decodeJSON(r, &req); err != nil || strings.TrimSpace(req.Path) == "" {
		http.Error(w, "path is required", http.StatusBadRequest)
		return
	}

	links, stats, err := c.mappings.LoadLinkMap(strings.TrimSpace(req.Path))
	if err != nil {
		writeError(w, c.logger, "load links", err)
		return
	}
	c.workspace.SetLinks(links)
	writeJSON(w, c.logger, http.StatusOK, stats)
}
