package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CardService generates catalog cards and inserts them into the catalog file
type CardService struct {
	engine      *Engine
	workspace   *Workspace
	ledger      *Ledger
	catalog     *CatalogService
	images      ImageSourceInterface
	catalogPath string
	workers     int
	logger      *zap.Logger
}

// CardServiceConfig holds the CardService dependencies
type CardServiceConfig struct {
	Engine      *Engine
	Workspace   *Workspace
	Ledger      *Ledger
	Catalog     *CatalogService
	Images      ImageSourceInterface
	CatalogPath string
	Workers     int
	Logger      *zap.Logger
}

// NewCardService creates a new CardService
func NewCardService(cfg CardServiceConfig) *CardService {
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}
	return &CardService{
		engine:      cfg.Engine,
		workspace:   cfg.Workspace,
		ledger:      cfg.Ledger,
		catalog:     cfg.Catalog,
		images:      cfg.Images,
		catalogPath: cfg.CatalogPath,
		workers:     workers,
		logger:      logger.OrNop(cfg.Logger),
	}
}

// CatalogPath returns the catalog file cards are inserted into
func (s *CardService) CatalogPath() string {
	return s.catalogPath
}

// Render builds the card of row. link overrides the resolved redirect link when set.
// Missing images and an unknown brand logo are reported as warnings, never as errors.
func (s *CardService) Render(row models.Row, link string) (models.CardResult, error) {
	data := NewSubstitutionData(row)
	data.Logo = ResolveLogo(data.Brand, s.workspace.Logos())
	if link != "" {
		data.Link = link
	} else {
		data.Link = ResolveLink(data.SKU, data.Link, s.workspace.Links())
	}

	result := models.CardResult{SKU: data.SKU, MissingImages: row.MissingImages()}
	if len(result.MissingImages) > 0 {
		names := make([]string, len(result.MissingImages))
		for i, slot := range result.MissingImages {
			names[i] = fmt.Sprintf("Imagen %d", slot)
		}
		result.Warnings = append(result.Warnings, "missing image links: "+strings.Join(names, ", "))
	}
	if data.Logo == "" {
		result.LogoMissing = true
		result.Warnings = append(result.Warnings, fmt.Sprintf("no logo found for brand %q", data.Brand))
	}

	tpl := s.workspace.CardTemplate()
	if tpl == "" {
		result.HTML = s.engine.FillDefaultCard(data)
		return result, nil
	}

	res, err := s.engine.RenderCard(tpl, data)
	if err != nil {
		return models.CardResult{}, err
	}
	result.HTML = res.HTML
	result.Misses = res.Misses
	return result, nil
}

// Generate renders the card of sku with optional image and link overrides
func (s *CardService) Generate(ctx context.Context, sku string, overrides [models.ImageSlots]string, link string) (models.CardResult, error) {
	row, err := s.workspace.Row(sku)
	if err != nil {
		return models.CardResult{}, err
	}
	row = fillMissingImages(ctx, s.images, s.logger, row.WithImages(overrides))

	result, err := s.Render(row, link)
	if err != nil {
		return models.CardResult{}, err
	}
	if len(result.Warnings) > 0 {
		s.logger.Info("card generated with warnings", zap.String("sku", sku), zap.Strings("warnings", result.Warnings))
	}
	return result, nil
}

// GenerateAndInsert renders the card of sku and inserts it into the catalog
func (s *CardService) GenerateAndInsert(ctx context.Context, sku string, overrides [models.ImageSlots]string, link string) (models.CardResult, error) {
	result, err := s.Generate(ctx, sku, overrides, link)
	if err != nil {
		return models.CardResult{}, err
	}
	if err := s.catalog.InsertIntoFile(s.catalogPath, []string{result.HTML}); err != nil {
		return models.CardResult{}, err
	}
	s.ledger.Set(ctx, sku, models.StatusGreen)
	return result, nil
}

// GenerateBatch renders the cards of skus on a bounded worker pool and holds them
// for a later InsertHeld. Held cards are marked purple; SKUs already present in
// the catalog are skipped.
func (s *CardService) GenerateBatch(ctx context.Context, skus []string) models.BatchSummary {
	summary := models.BatchSummary{Total: len(skus), Items: make([]models.BatchItem, len(skus))}

	present := map[string]bool{}
	if existing, err := s.catalog.SKUsInFile(s.catalogPath); err == nil {
		for _, sku := range existing {
			present[sku] = true
		}
	} else {
		s.logger.Debug("catalog not readable, no SKUs skipped", zap.Error(err))
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, sku := range skus {
		g.Go(func() error {
			item := models.BatchItem{SKU: sku}
			var err error
			switch {
			case present[sku]:
				item.Skipped = true
			default:
				var res models.CardResult
				res, err = s.Generate(gctx, sku, [models.ImageSlots]string{}, "")
				if err != nil {
					item.Error = err.Error()
					s.ledger.Set(gctx, sku, models.StatusRed)
					s.logger.Warn("batch card failed", zap.String("sku", sku), zap.Error(err))
				} else {
					s.workspace.HoldCard(HeldCard{SKU: sku, HTML: res.HTML})
					s.ledger.Set(gctx, sku, models.StatusPurple)
				}
			}

			mu.Lock()
			summary.Items[i] = item
			switch {
			case item.Skipped:
				summary.Skipped++
			case err != nil:
				summary.Failed++
			default:
				summary.Succeeded++
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return summary
}

// InsertHeld inserts every held card into the catalog in one write and marks them green
func (s *CardService) InsertHeld(ctx context.Context) (int, error) {
	held := s.workspace.HeldCards()
	if len(held) == 0 {
		return 0, ErrNoCards
	}

	cards := make([]string, len(held))
	skus := make([]string, len(held))
	for i, c := range held {
		cards[i] = c.HTML
		skus[i] = c.SKU
	}
	if err := s.catalog.InsertIntoFile(s.catalogPath, cards); err != nil {
		return 0, err
	}

	s.workspace.ClearHeldCards(skus)
	for _, sku := range skus {
		s.ledger.Set(ctx, sku, models.StatusGreen)
	}
	return len(held), nil
}
