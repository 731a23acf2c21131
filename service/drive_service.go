package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"catalogo-armazones/logger"
	"catalogo-armazones/models"
	"catalogo-armazones/utils"

	"go.uber.org/zap"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

// DriveService finds product images in a Google Drive folder. Files must be named
// "<SKU>-<slot>.<ext>"; each file becomes the public URL of that image slot.
type DriveService struct {
	client   *drive.Service
	folderID string
	logger   *zap.Logger

	mu    sync.Mutex
	index map[string][models.ImageSlots]string
}

// Ensure DriveService implements ImageSourceInterface
var _ ImageSourceInterface = (*DriveService)(nil)

// NewDriveService creates a DriveService authenticated with a Service Account JSON file
func NewDriveService(ctx context.Context, credentialsPath, folderID string, log *zap.Logger) (*DriveService, error) {
	return NewDriveServiceWithOptions(ctx, folderID, log, option.WithCredentialsFile(credentialsPath))
}

// NewDriveServiceWithOptions creates a DriveService with explicit client options
func NewDriveServiceWithOptions(ctx context.Context, folderID string, log *zap.Logger, opts ...option.ClientOption) (*DriveService, error) {
	if folderID == "" {
		return nil, fmt.Errorf("drive folder id is empty")
	}
	client, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}
	return &DriveService{client: client, folderID: folderID, logger: logger.OrNop(log)}, nil
}

var imageMimeTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

// ListProductImages lists the folder and groups image URLs by SKU and slot
func (ds *DriveService) ListProductImages(ctx context.Context) (map[string][models.ImageSlots]string, error) {
	query := fmt.Sprintf("'%s' in parents and trashed=false", ds.folderID)

	var allFiles []*drive.File
	pageToken := ""
	for {
		call := ds.client.Files.List().
			Context(ctx).
			Q(query).
			Fields("nextPageToken, files(id, name, mimeType)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		r, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to list files: %w", err)
		}
		allFiles = append(allFiles, r.Files...)

		pageToken = r.NextPageToken
		if pageToken == "" {
			break
		}
	}

	images := make(map[string][models.ImageSlots]string)
	for _, file := range allFiles {
		if !imageMimeTypes[strings.ToLower(file.MimeType)] {
			continue
		}
		sku, slot, err := utils.ParseImageFileName(file.Name)
		if err != nil {
			ds.logger.Debug("skipping drive file", zap.String("name", file.Name), zap.Error(err))
			continue
		}
		slots := images[sku]
		if slots[slot-1] == "" {
			slots[slot-1] = fmt.Sprintf("https://drive.google.com/uc?id=%s", file.Id)
		}
		images[sku] = slots
	}

	ds.logger.Info("drive images listed", zap.Int("files", len(allFiles)), zap.Int("skus", len(images)))
	return images, nil
}

// ProductImages returns the Drive URLs for sku. The folder is listed once and
// reused until Refresh is called.
func (ds *DriveService) ProductImages(ctx context.Context, sku string) ([models.ImageSlots]string, error) {
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if ds.index == nil {
		index, err := ds.ListProductImages(ctx)
		if err != nil {
			return [models.ImageSlots]string{}, err
		}
		ds.index = index
	}
	return ds.index[strings.ToUpper(strings.TrimSpace(sku))], nil
}

// Refresh forgets the cached folder listing
func (ds *DriveService) Refresh() {
	ds.mu.Lock()
	ds.index = nil
	ds.mu.Unlock()
}
