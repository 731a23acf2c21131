package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"
	"catalogo-armazones/pricing"
	"catalogo-armazones/templates"
	"catalogo-armazones/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// PageService generates product detail pages
type PageService struct {
	engine       *Engine
	cache        *TemplateCache
	workspace    *Workspace
	ledger       *Ledger
	images       ImageSourceInterface
	templatePath string
	outputDir    string
	workers      int
	logger       *zap.Logger
}

// PageServiceConfig holds the PageService dependencies
type PageServiceConfig struct {
	Engine    *Engine
	Cache     *TemplateCache
	Workspace *Workspace
	Ledger    *Ledger
	// Images is optional; when set it fills empty image slots
	Images       ImageSourceInterface
	TemplatePath string
	OutputDir    string
	Workers      int
	Logger       *zap.Logger
}

// NewPageService creates a new PageService
func NewPageService(cfg PageServiceConfig) *PageService {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &PageService{
		engine:       cfg.Engine,
		cache:        cfg.Cache,
		workspace:    cfg.Workspace,
		ledger:       cfg.Ledger,
		images:       cfg.Images,
		templatePath: cfg.TemplatePath,
		outputDir:    cfg.OutputDir,
		workers:      workers,
		logger:       logger.OrNop(cfg.Logger),
	}
}

// template returns the configured page template, or the embedded reference page
func (s *PageService) template() (string, error) {
	if s.templatePath == "" {
		return templates.ReferencePage, nil
	}
	return s.cache.Get(s.templatePath)
}

// Render substitutes row into the page template without touching the disk
func (s *PageService) Render(row models.Row) (Result, error) {
	tpl, err := s.template()
	if err != nil {
		return Result{}, err
	}
	return s.engine.RenderPage(tpl, NewSubstitutionData(row))
}

// Generate writes the detail page of sku to OUTPUT_DIR/<safe sku>.html.
// Non-empty overrides replace the sheet image URLs. A row with an empty image
// slot is refused with ErrMissingImages and no file is written.
func (s *PageService) Generate(ctx context.Context, sku string, overrides [models.ImageSlots]string) (models.PageResult, error) {
	row, err := s.workspace.Row(sku)
	if err != nil {
		return models.PageResult{}, err
	}
	row = fillMissingImages(ctx, s.images, s.logger, row.WithImages(overrides))

	if missing := row.MissingImages(); len(missing) > 0 {
		s.ledger.Set(ctx, sku, models.StatusYellow)
		return models.PageResult{}, fmt.Errorf("%w: %s slots %v", ErrMissingImages, sku, missing)
	}

	res, err := s.Render(row)
	if err != nil {
		return models.PageResult{}, err
	}

	path, err := s.write(utils.SafeFileName(sku), res.HTML)
	if err != nil {
		s.ledger.Set(ctx, sku, models.StatusRed)
		return models.PageResult{}, err
	}
	s.ledger.Set(ctx, sku, models.StatusGreen)
	s.logMisses(sku, res.Misses)

	return models.PageResult{SKU: sku, Path: path, Misses: res.Misses}, nil
}

// GenerateBatch writes the pages of skus on a bounded worker pool. Prices are
// reformatted, files are named "<safe sku>_<index>.html", a failing row is
// marked red and never stops the others.
func (s *PageService) GenerateBatch(ctx context.Context, skus []string) models.BatchSummary {
	summary := models.BatchSummary{Total: len(skus), Items: make([]models.BatchItem, len(skus))}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sku := range skus {
		g.Go(func() error {
			item := models.BatchItem{SKU: sku}
			path, err := s.generateBatchItem(gctx, sku, i+1)
			if err != nil {
				item.Error = err.Error()
				s.ledger.Set(gctx, sku, models.StatusRed)
				s.logger.Warn("batch page failed", zap.String("sku", sku), zap.Error(err))
			} else {
				item.Path = path
				s.ledger.Set(gctx, sku, models.StatusGreen)
			}

			mu.Lock()
			summary.Items[i] = item
			if err != nil {
				summary.Failed++
			} else {
				summary.Succeeded++
			}
			mu.Unlock()
			// per-row errors are recorded, not propagated, so the group never cancels
			return nil
		})
	}
	_ = g.Wait()

	return summary
}

func (s *PageService) generateBatchItem(ctx context.Context, sku string, index int) (string, error) {
	row, err := s.workspace.Row(sku)
	if err != nil {
		return "", err
	}
	row = fillMissingImages(ctx, s.images, s.logger, row)
	if missing := row.MissingImages(); len(missing) > 0 {
		return "", fmt.Errorf("%w: slots %v", ErrMissingImages, missing)
	}

	tpl, err := s.template()
	if err != nil {
		return "", err
	}
	data := NewSubstitutionData(row)
	if prices, ok := pricing.NormalizePrices(data.OldPrice, data.NewPrice, data.Discount); ok {
		if prices.Old != "" {
			data.OldPrice = prices.Old
		}
		if prices.Discount != "" {
			data.Discount = prices.Discount
		}
		data.NewPrice = prices.New
	}

	res, err := s.engine.RenderPage(tpl, data)
	if err != nil {
		return "", err
	}
	s.logMisses(sku, res.Misses)
	return s.write(utils.BatchFileName(sku, index), res.HTML)
}

func (s *PageService) write(name, html string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output dir %s: %w", s.outputDir, err)
	}
	path := filepath.Join(s.outputDir, name+".html")
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		return "", fmt.Errorf("failed to write page %s: %w", path, err)
	}
	return path, nil
}

func (s *PageService) logMisses(sku string, misses []string) {
	if len(misses) == 0 {
		return
	}
	s.logger.Warn("page template anchors did not match",
		zap.String("sku", sku),
		zap.Strings("anchors", misses),
		zap.Int("anchors_version", s.engine.AnchorsVersion()),
	)
}
