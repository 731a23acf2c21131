package service

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"
	"catalogo-armazones/utils"

	"go.uber.org/zap"
)

const linkKeyPrefix = "Producto-"

// ResolveLogo returns the logo URL for brand, or "" when the map has no entry for it
func ResolveLogo(brand string, logos models.LogoMap) string {
	key := utils.NormalizeBrand(brand)
	if key == "" {
		return ""
	}
	return logos[key]
}

// ResolveLink returns the redirect link for sku: the row's own link first, then
// the link map, then the in-page anchor "#producto-<sku>"
func ResolveLink(sku, rowLink string, links models.LinkMap) string {
	if rowLink != "" {
		return rowLink
	}
	if link := links[sku]; link != "" {
		return link
	}
	return "#producto-" + sku
}

// MappingLoader loads the brand -> logo and SKU -> link files
type MappingLoader struct {
	logger *zap.Logger
}

// NewMappingLoader creates a new MappingLoader
func NewMappingLoader(log *zap.Logger) *MappingLoader {
	return &MappingLoader{logger: logger.OrNop(log)}
}

// LoadLogoMap loads brand -> logo URL pairs. Keys are normalized with
// utils.NormalizeBrand and later entries overwrite earlier ones.
func (m *MappingLoader) LoadLogoMap(path string) (models.LogoMap, models.LoadStats, error) {
	logos := models.LogoMap{}
	stats, err := m.load(path, []string{":", ",", " "}, func(key, value string) bool {
		key = utils.NormalizeBrand(key)
		if key == "" {
			return false
		}
		logos[key] = value
		return true
	})
	if err != nil {
		return nil, stats, err
	}
	return logos, stats, nil
}

// LoadLinkMap loads SKU -> redirect link pairs. "=" is accepted as separator and
// a leading "Producto-" is stripped from keys.
func (m *MappingLoader) LoadLinkMap(path string) (models.LinkMap, models.LoadStats, error) {
	links := models.LinkMap{}
	stats, err := m.load(path, []string{":", "=", ",", " "}, func(key, value string) bool {
		key = strings.TrimPrefix(strings.TrimSpace(key), linkKeyPrefix)
		if key == "" {
			return false
		}
		links[key] = value
		return true
	})
	if err != nil {
		return nil, stats, err
	}
	return links, stats, nil
}

func (m *MappingLoader) load(path string, seps []string, put func(key, value string) bool) (models.LoadStats, error) {
	var stats models.LoadStats
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return stats, fmt.Errorf("%w: %s", ErrMissingMapping, path)
		}
		return stats, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if isSpreadsheet(path) || isCSV(path) {
		return m.loadTable(path, put)
	}

	f, err := os.Open(path)
	if err != nil {
		return stats, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(strings.TrimPrefix(scanner.Text(), utf8BOM))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := splitMappingLine(line, seps)
		if !ok || !put(key, value) {
			stats.Skipped++
			stats.BadLine = append(stats.BadLine, lineNo)
			m.logger.Warn("skipping malformed mapping line", zap.String("path", path), zap.Int("line", lineNo))
			continue
		}
		stats.Loaded++
	}
	if err := scanner.Err(); err != nil {
		return stats, fmt.Errorf("failed to read %s: %w", path, err)
	}

	m.logger.Info("mapping loaded", zap.String("path", path), zap.Int("loaded", stats.Loaded), zap.Int("skipped", stats.Skipped))
	return stats, nil
}

func (m *MappingLoader) loadTable(path string, put func(key, value string) bool) (models.LoadStats, error) {
	var stats models.LoadStats
	records, err := readTable(path)
	if err != nil {
		return stats, err
	}

	for i, rec := range records {
		if blankRecord(rec) {
			continue
		}
		var key, value string
		if len(rec) > 0 {
			key = models.NormalizeCell(rec[0])
		}
		if len(rec) > 1 {
			value = models.NormalizeCell(rec[1])
		}
		if i == 0 && isHeaderKey(key) {
			continue
		}
		if key == "" || value == "" || !put(key, value) {
			stats.Skipped++
			stats.BadLine = append(stats.BadLine, i+1)
			m.logger.Warn("skipping incomplete mapping row", zap.String("path", path), zap.Int("row", i+1))
			continue
		}
		stats.Loaded++
	}

	m.logger.Info("mapping loaded", zap.String("path", path), zap.Int("loaded", stats.Loaded), zap.Int("skipped", stats.Skipped))
	return stats, nil
}

func isHeaderKey(key string) bool {
	switch strings.ToLower(key) {
	case "marca", "brand", "sku", "producto":
		return true
	}
	return false
}

// splitMappingLine splits "key<sep>value" trying each separator in order.
// For ":" neither the "://" of a URL nor any colon after it counts as the separator.
func splitMappingLine(line string, seps []string) (string, string, bool) {
	for _, sep := range seps {
		var i int
		switch sep {
		case ":":
			i = indexColonSeparator(line)
		case " ":
			i = strings.IndexAny(line, " \t")
		default:
			i = strings.Index(line, sep)
		}
		if i < 0 {
			continue
		}
		key := strings.TrimSpace(line[:i])
		value := strings.TrimSpace(line[i+len(sep):])
		if key == "" || value == "" {
			return "", "", false
		}
		return key, value, true
	}
	return "", "", false
}

func indexColonSeparator(line string) int {
	for i := 0; i < len(line); i++ {
		if line[i] != ':' {
			continue
		}
		if strings.HasPrefix(line[i:], "://") {
			return -1
		}
		return i
	}
	return -1
}
