package models

// PageResult is the outcome of generating one product detail page
type PageResult struct {
	SKU    string   `json:"sku"`
	Path   string   `json:"path"`
	Misses []string `json:"misses,omitempty"` // anchors that did not match the template
}

// CardResult is the outcome of generating one catalog card
type CardResult struct {
	SKU           string   `json:"sku"`
	HTML          string   `json:"html"`
	MissingImages []int    `json:"missingImages,omitempty"`
	LogoMissing   bool     `json:"logoMissing"`
	Warnings      []string `json:"warnings,omitempty"`
	Misses        []string `json:"misses,omitempty"`
}

// BatchItem is the per-row outcome inside a batch
type BatchItem struct {
	SKU   string `json:"sku"`
	Path  string `json:"path,omitempty"`
	Error string `json:"error,omitempty"`
	// Skipped is set when the row needed no work, e.g. its card is already in the catalog
	Skipped bool `json:"skipped,omitempty"`
}

// BatchSummary is reported when a batch finishes
type BatchSummary struct {
	JobID     string      `json:"jobId"`
	Kind      string      `json:"kind"`
	Total     int         `json:"total"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Skipped   int         `json:"skipped"`
	Items     []BatchItem `json:"items"`
}

// URLCheck is the advisory validation result of one image URL
type URLCheck struct {
	Slot  int    `json:"slot,omitempty"`
	URL   string `json:"url"`
	Valid bool   `json:"valid"`
}
