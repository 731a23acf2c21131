package service

import (
	"context"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"

	"go.uber.org/zap"
)

// ImageSyncStats reports what a sync changed
type ImageSyncStats struct {
	Total   int `json:"total"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
	// Incomplete counts rows that still miss at least one image after the sync
	Incomplete int `json:"incomplete"`
}

// ImageSyncService copies image URLs from an image source into the loaded rows
type ImageSyncService struct {
	source    ImageSourceInterface
	workspace *Workspace
	logger    *zap.Logger
}

// Ensure ImageSyncService implements ImageSyncServiceInterface
var _ ImageSyncServiceInterface = (*ImageSyncService)(nil)

// NewImageSyncService creates a new ImageSyncService
func NewImageSyncService(source ImageSourceInterface, workspace *Workspace, log *zap.Logger) *ImageSyncService {
	return &ImageSyncService{source: source, workspace: workspace, logger: logger.OrNop(log)}
}

// SyncMissingImages fills the empty image slots of every loaded row. Rows with
// all three images are skipped; sheet values are never overwritten.
func (s *ImageSyncService) SyncMissingImages(ctx context.Context) (ImageSyncStats, error) {
	rows, err := s.workspace.Rows()
	if err != nil {
		return ImageSyncStats{}, err
	}

	stats := ImageSyncStats{Total: len(rows)}
	for _, row := range rows {
		before := len(row.MissingImages())
		if before == 0 {
			stats.Skipped++
			continue
		}

		filled := fillMissingImages(ctx, s.source, s.logger, row)
		after := len(filled.MissingImages())
		if after < before {
			if err := s.workspace.UpdateRow(filled); err != nil {
				s.logger.Warn("failed to update row images", zap.String("sku", row.Get(models.FieldSKU)), zap.Error(err))
				continue
			}
			stats.Updated++
		}
		if after > 0 {
			stats.Incomplete++
		}
	}

	s.logger.Info("image sync completed",
		zap.Int("total", stats.Total),
		zap.Int("updated", stats.Updated),
		zap.Int("skipped", stats.Skipped),
		zap.Int("incomplete", stats.Incomplete),
	)
	return stats, nil
}
