package repository

import (
	"context"
	"database/sql"
	"fmt"

	"catalogo-armazones/models"
)

// StatusPostgresRepository stores the ledger in the row_statuses table
type StatusPostgresRepository struct {
	db *sql.DB
}

// NewStatusPostgresRepository creates a new StatusPostgresRepository
func NewStatusPostgresRepository(db *sql.DB) *StatusPostgresRepository {
	return &StatusPostgresRepository{db: db}
}

// Ensure StatusPostgresRepository implements StatusRepositoryInterface
var _ StatusRepositoryInterface = (*StatusPostgresRepository)(nil)

const createRowStatusesTable = `
	CREATE TABLE IF NOT EXISTS row_statuses (
		sku        TEXT PRIMARY KEY,
		status     TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// EnsureSchema creates the row_statuses table when it does not exist
func (r *StatusPostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createRowStatusesTable); err != nil {
		return fmt.Errorf("failed to create row_statuses table: %w", err)
	}
	return nil
}

// Load reads every stored status
func (r *StatusPostgresRepository) Load(ctx context.Context) (models.StatusMap, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT sku, status FROM row_statuses ORDER BY sku`)
	if err != nil {
		return nil, fmt.Errorf("failed to query row statuses: %w", err)
	}
	defer rows.Close()

	statuses := models.StatusMap{}
	for rows.Next() {
		var sku, raw string
		if err := rows.Scan(&sku, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan row status: %w", err)
		}
		status, err := models.ParseRowStatus(raw)
		if err != nil {
			continue
		}
		statuses[sku] = status
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating row statuses: %w", err)
	}
	return statuses, nil
}

// Save replaces the stored ledger with statuses in a single transaction
func (r *StatusPostgresRepository) Save(ctx context.Context, statuses models.StatusMap) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM row_statuses`); err != nil {
		return fmt.Errorf("failed to clear row statuses: %w", err)
	}

	for sku, status := range statuses {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO row_statuses (sku, status, updated_at) VALUES ($1, $2, NOW())`,
			sku, string(status))
		if err != nil {
			return fmt.Errorf("failed to insert status for %s: %w", sku, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit row statuses: %w", err)
	}
	return nil
}

// Delete removes every stored status
func (r *StatusPostgresRepository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM row_statuses`); err != nil {
		return fmt.Errorf("failed to delete row statuses: %w", err)
	}
	return nil
}
