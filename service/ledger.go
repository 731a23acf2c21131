package service

import (
	"context"
	"sync"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"
	"catalogo-armazones/repository"

	"go.uber.org/zap"
)

// Ledger is the in-memory SKU -> status map, persisted on every change.
// Persistence is best effort: failures are logged and the in-memory state stays authoritative.
type Ledger struct {
	mu       sync.Mutex
	repo     repository.StatusRepositoryInterface
	statuses models.StatusMap
	logger   *zap.Logger
}

// NewLedger creates an empty Ledger over repo. Call Load to read the persisted state.
func NewLedger(repo repository.StatusRepositoryInterface, log *zap.Logger) *Ledger {
	return &Ledger{
		repo:     repo,
		statuses: models.StatusMap{},
		logger:   logger.OrNop(log),
	}
}

// Load replaces the in-memory map with the persisted one. Any read failure yields an empty map.
func (l *Ledger) Load(ctx context.Context) models.StatusMap {
	statuses, err := l.repo.Load(ctx)
	if err != nil {
		l.logger.Warn("failed to load status ledger, starting empty", zap.Error(err))
		statuses = models.StatusMap{}
	}
	if statuses == nil {
		statuses = models.StatusMap{}
	}

	l.mu.Lock()
	l.statuses = statuses
	snapshot := l.statuses.Clone()
	l.mu.Unlock()
	return snapshot
}

// Save persists the current map
func (l *Ledger) Save(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.saveLocked(ctx)
}

func (l *Ledger) saveLocked(ctx context.Context) {
	if err := l.repo.Save(ctx, l.statuses); err != nil {
		l.logger.Warn("failed to save status ledger", zap.Error(err))
	}
}

// Set updates the status of sku and persists immediately
func (l *Ledger) Set(ctx context.Context, sku string, status models.RowStatus) {
	if sku == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statuses[sku] = status
	l.saveLocked(ctx)
}

// Get returns the status of sku, normal when unknown
func (l *Ledger) Get(sku string) models.RowStatus {
	l.mu.Lock()
	defer l.mu.Unlock()
	if st, ok := l.statuses[sku]; ok {
		return st
	}
	return models.StatusNormal
}

// Snapshot returns a copy of the current map
func (l *Ledger) Snapshot() models.StatusMap {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.statuses.Clone()
}

// Reset clears the map and deletes the backing store
func (l *Ledger) Reset(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.statuses = models.StatusMap{}
	if err := l.repo.Delete(ctx); err != nil {
		l.logger.Warn("failed to delete status ledger", zap.Error(err))
	}
}
