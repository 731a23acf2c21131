package service

import "errors"

var (
	// ErrMissingTemplate is returned when a page or card template file cannot be read
	ErrMissingTemplate = errors.New("missing base template")
	// ErrMissingImages blocks detail page generation when an image slot is empty
	ErrMissingImages = errors.New("missing image urls")
	// ErrMissingMapping is returned when a logo or link mapping file does not exist
	ErrMissingMapping = errors.New("missing mapping file")
	// ErrMissingSentinel is returned when the catalog has no closing </main>
	ErrMissingSentinel = errors.New("catalog has no </main> sentinel")
	ErrRowNotFound     = errors.New("row not found")
	ErrNoSheet         = errors.New("no product sheet loaded")
	ErrNoCards         = errors.New("no cards to insert")
	ErrNoCatalog       = errors.New("no catalog file configured")
	ErrNoCardTemplate  = errors.New("no card template found in catalog")
)
