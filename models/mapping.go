package models

// LogoMap maps a normalized brand key to a logo URL
type LogoMap map[string]string

// LinkMap maps a SKU to the redirect link used by its catalog card
type LinkMap map[string]string

// LoadStats reports how many entries a mapping file produced
type LoadStats struct {
	Loaded  int   `json:"loaded"`
	Skipped int   `json:"skipped"`
	BadLine []int `json:"badLines,omitempty"`
}
