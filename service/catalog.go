package service

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"catalogo-armazones/logger"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// CatalogSentinel is the closing tag new cards are inserted before
const CatalogSentinel = "</main>"

var (
	cardTemplateRe = regexp.MustCompile(`<!-- Tarjeta de Producto:[\s\S]+?product-card[\s\S]+?</div>\s*</div>`)
	cardCommentRe  = regexp.MustCompile(`<!-- Tarjeta de Producto:\s*([^>]*?)\s*-->`)
)

// InsertCard inserts card plus a newline right before the first </main>.
// When the sentinel is absent the catalog is returned unchanged and ok is false.
func InsertCard(catalog, card string) (string, bool) {
	i := strings.Index(catalog, CatalogSentinel)
	if i < 0 {
		return catalog, false
	}
	return catalog[:i] + card + "\n" + catalog[i:], true
}

// InsertCards joins cards with newlines and inserts them in one step
func InsertCards(catalog string, cards []string) (string, bool) {
	return InsertCard(catalog, strings.Join(cards, "\n"))
}

// ExtractFirstCardTemplate returns the first commented product card of a catalog
func ExtractFirstCardTemplate(catalog string) (string, bool) {
	m := cardTemplateRe.FindString(catalog)
	return m, m != ""
}

// CatalogSKUs lists the SKUs of the cards already present in a catalog, in
// document order, from both the card comments and the .product-name headings.
func CatalogSKUs(catalog string) ([]string, error) {
	var skus []string
	seen := make(map[string]bool)
	add := func(sku string) {
		sku = strings.TrimSpace(sku)
		if sku == "" || seen[sku] {
			return
		}
		seen[sku] = true
		skus = append(skus, sku)
	}

	for _, m := range cardCommentRe.FindAllStringSubmatch(catalog, -1) {
		add(m[1])
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(catalog))
	if err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	doc.Find(".product-card .product-name").Each(func(_ int, s *goquery.Selection) {
		add(s.Text())
	})
	return skus, nil
}

// CatalogService reads and rewrites the catalog file
type CatalogService struct {
	mu     sync.Mutex
	logger *zap.Logger
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(log *zap.Logger) *CatalogService {
	return &CatalogService{logger: logger.OrNop(log)}
}

// Read returns the catalog contents
func (s *CatalogService) Read(path string) (string, error) {
	if path == "" {
		return "", ErrNoCatalog
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNoCatalog, path)
		}
		return "", fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return string(data), nil
}

// InsertIntoFile inserts cards before the catalog's </main> and rewrites the file.
// Without the sentinel the file is left untouched and ErrMissingSentinel is returned.
func (s *CatalogService) InsertIntoFile(path string, cards []string) error {
	if len(cards) == 0 {
		return ErrNoCards
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	catalog, err := s.Read(path)
	if err != nil {
		return err
	}

	updated, ok := InsertCards(catalog, cards)
	if !ok {
		s.logger.Warn("catalog has no closing main tag", zap.String("path", path))
		return fmt.Errorf("%w: %s", ErrMissingSentinel, path)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(updated), mode); err != nil {
		return fmt.Errorf("failed to write catalog %s: %w", path, err)
	}

	s.logger.Info("cards inserted into catalog", zap.String("path", path), zap.Int("cards", len(cards)))
	return nil
}

// ExtractTemplateFromFile bootstraps a card template from an existing catalog file
func (s *CatalogService) ExtractTemplateFromFile(path string) (string, error) {
	catalog, err := s.Read(path)
	if err != nil {
		return "", err
	}
	tpl, ok := ExtractFirstCardTemplate(catalog)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNoCardTemplate, path)
	}
	return tpl, nil
}

// SKUsInFile lists the SKUs already inserted into the catalog file
func (s *CatalogService) SKUsInFile(path string) ([]string, error) {
	catalog, err := s.Read(path)
	if err != nil {
		return nil, err
	}
	return CatalogSKUs(catalog)
}
