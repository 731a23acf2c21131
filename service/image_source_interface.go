package service

import (
	"context"

	"catalogo-armazones/models"

	"go.uber.org/zap"
)

// ImageSourceInterface supplies image URLs for rows whose sheet cells are empty
type ImageSourceInterface interface {
	ProductImages(ctx context.Context, sku string) ([models.ImageSlots]string, error)
}

// fillMissingImages completes the empty image slots of row from src. Sheet
// values always win; lookup failures are logged and the row is returned as is.
func fillMissingImages(ctx context.Context, src ImageSourceInterface, log *zap.Logger, row models.Row) models.Row {
	missing := row.MissingImages()
	if src == nil || len(missing) == 0 {
		return row
	}
	sku := row.Get(models.FieldSKU)
	found, err := src.ProductImages(ctx, sku)
	if err != nil {
		log.Warn("image source lookup failed", zap.String("sku", sku), zap.Error(err))
		return row
	}
	var fill [models.ImageSlots]string
	for _, slot := range missing {
		fill[slot-1] = found[slot-1]
	}
	return row.WithImages(fill)
}
