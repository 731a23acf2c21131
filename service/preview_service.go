package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"time"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/disintegration/imaging"
	"github.com/gosimple/slug"
	"go.uber.org/zap"
)

const (
	previewTimeout  = 30 * time.Second
	previewMaxSize  = 480
	previewSelector = "#preview-card"
)

// PreviewService renders cards in headless Chrome and stores PNG thumbnails
type PreviewService struct {
	cards       *CardService
	catalog     *CatalogService
	chromePath  string
	cacheDir    string
	logger      *zap.Logger
	screenshots func(ctx context.Context, html string) ([]byte, error)
}

// NewPreviewService creates a new PreviewService. chromePath may be empty to let
// chromedp find a browser; thumbnails are cached under cacheDir.
func NewPreviewService(cards *CardService, catalog *CatalogService, chromePath, cacheDir string, log *zap.Logger) *PreviewService {
	s := &PreviewService{
		cards:      cards,
		catalog:    catalog,
		chromePath: detectChromePath(chromePath),
		cacheDir:   cacheDir,
		logger:     logger.OrNop(log),
	}
	s.screenshots = s.captureCard
	return s
}

// detectChromePath returns the configured browser path, or the first common
// Chrome/Chromium install found, or "" to let chromedp decide
func detectChromePath(configured string) string {
	if configured != "" {
		if _, err := os.Stat(configured); err == nil {
			return configured
		}
	}

	paths := []string{
		"/usr/bin/chromium",
		"/usr/bin/chromium-browser",
		"/usr/bin/google-chrome",
		"/usr/bin/google-chrome-stable",
		"/snap/bin/chromium",
	}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// CardPreview returns a PNG thumbnail of the card of sku as it would look in the catalog
func (s *PreviewService) CardPreview(ctx context.Context, sku string) ([]byte, error) {
	card, err := s.cards.Generate(ctx, sku, [models.ImageSlots]string{}, "")
	if err != nil {
		return nil, err
	}

	doc := previewDocument(card.HTML)
	if catalog, err := s.catalog.Read(s.cards.CatalogPath()); err == nil {
		if withCard, ok := InsertCard(catalog, wrapPreviewCard(card.HTML)); ok {
			doc = withCard
		}
	}

	cachePath := s.cachePath(sku, doc)
	if data, err := os.ReadFile(cachePath); err == nil {
		return data, nil
	}

	shot, err := s.screenshots(ctx, doc)
	if err != nil {
		return nil, err
	}
	thumb, err := Thumbnail(shot, previewMaxSize)
	if err != nil {
		return nil, err
	}

	if err := saveToCache(cachePath, thumb); err != nil {
		s.logger.Warn("failed to cache preview", zap.String("sku", sku), zap.Error(err))
	}
	return thumb, nil
}

func wrapPreviewCard(card string) string {
	return `<div id="preview-card" style="display:inline-block">` + card + `</div>`
}

// previewDocument is the page used when no catalog is available to host the card
func previewDocument(card string) string {
	return `<!DOCTYPE html><html><head><meta charset="UTF-8"><style>` +
		`body{font-family:sans-serif;margin:16px}.product-img{width:240px;display:none}` +
		`.product-img.active{display:block}.product-brand-overlay img{height:32px}` +
		`</style></head><body><main>` + wrapPreviewCard(card) + `</main></body></html>`
}

// cachePath keys a preview by the slugged SKU and the exact document rendered
func (s *PreviewService) cachePath(sku, doc string) string {
	sum := sha256.Sum256([]byte(doc))
	name := fmt.Sprintf("%s_%s.png", slug.Make(sku), hex.EncodeToString(sum[:8]))
	return filepath.Join(s.cacheDir, name)
}

func saveToCache(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

// captureCard loads html in headless Chrome and screenshots the preview card
func (s *PreviewService) captureCard(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, previewTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.NoSandbox)
	if s.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(s.chromePath))
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	chromedpCtx, chromedpCancel := chromedp.NewContext(allocCtx)
	defer chromedpCancel()

	var buf []byte
	err := chromedp.Run(chromedpCtx,
		chromedp.EmulateViewport(1280, 1600),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, html).Do(ctx)
		}),
		chromedp.WaitVisible(previewSelector, chromedp.ByQuery),
		// give remote images a moment to load
		chromedp.Sleep(1500*time.Millisecond),
		chromedp.Screenshot(previewSelector, &buf, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to capture preview: %w", err)
	}
	return buf, nil
}

// Thumbnail scales an image down so neither side exceeds maxDim and encodes it as PNG
func Thumbnail(data []byte, maxDim int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	b := img.Bounds()
	if b.Dx() > maxDim || b.Dy() > maxDim {
		img = imaging.Fit(img, maxDim, maxDim, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
