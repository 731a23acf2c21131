package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"catalogo-armazones/models"
)

// StatusFileRepository stores the ledger as a flat JSON object {"SKU": "status"}
type StatusFileRepository struct {
	path string
}

// NewStatusFileRepository creates a new StatusFileRepository backed by path
func NewStatusFileRepository(path string) *StatusFileRepository {
	return &StatusFileRepository{path: path}
}

// Ensure StatusFileRepository implements StatusRepositoryInterface
var _ StatusRepositoryInterface = (*StatusFileRepository)(nil)

// Load reads the ledger file. A missing file is an empty ledger.
func (r *StatusFileRepository) Load(ctx context.Context) (models.StatusMap, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return models.StatusMap{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger %s: %w", r.path, err)
	}

	statuses := models.StatusMap{}
	if len(data) == 0 {
		return statuses, nil
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode ledger %s: %w", r.path, err)
	}
	// Entries with an unknown status are skipped, same as the postgres store
	for sku, value := range raw {
		var name string
		if err := json.Unmarshal(value, &name); err != nil {
			continue
		}
		status, err := models.ParseRowStatus(name)
		if err != nil {
			continue
		}
		statuses[sku] = status
	}
	return statuses, nil
}

// Save writes the whole ledger, replacing the previous file atomically
func (r *StatusFileRepository) Save(ctx context.Context, statuses models.StatusMap) error {
	if statuses == nil {
		statuses = models.StatusMap{}
	}
	// encoding/json sorts map keys, so the file is stable between saves
	data, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create ledger dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close ledger: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger %s: %w", r.path, err)
	}
	return nil
}

// Delete removes the ledger file. Deleting a missing ledger is not an error.
func (r *StatusFileRepository) Delete(ctx context.Context) error {
	if err := os.Remove(r.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete ledger %s: %w", r.path, err)
	}
	return nil
}
