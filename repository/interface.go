package repository

import (
	"context"

	"catalogo-armazones/models"
)

// StatusRepositoryInterface defines the contract for persisting the row-status ledger
type StatusRepositoryInterface interface {
	Load(ctx context.Context) (models.StatusMap, error)
	Save(ctx context.Context, statuses models.StatusMap) error
	Delete(ctx context.Context) error
}
