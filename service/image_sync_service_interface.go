package service

import "context"

// ImageSyncServiceInterface defines the contract for filling sheet image slots from an image source
type ImageSyncServiceInterface interface {
	SyncMissingImages(ctx context.Context) (ImageSyncStats, error)
}
