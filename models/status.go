package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RowStatus is the processing state of a product row, keyed by SKU in the ledger
type RowStatus string

const (
	StatusNormal RowStatus = "normal"
	StatusGreen  RowStatus = "green"
	StatusYellow RowStatus = "yellow"
	StatusRed    RowStatus = "red"
	// StatusPurple marks a card that was generated but not yet inserted into the catalog
	StatusPurple RowStatus = "purple"
)

// statusAliases maps the names written by older ledger files to the canonical values
var statusAliases = map[string]RowStatus{
	"normal":   StatusNormal,
	"green":    StatusGreen,
	"verde":    StatusGreen,
	"yellow":   StatusYellow,
	"amarillo": StatusYellow,
	"red":      StatusRed,
	"rojo":     StatusRed,
	"purple":   StatusPurple,
	"morado":   StatusPurple,
}

// ParseRowStatus parses a status name, accepting the legacy Spanish spellings
func ParseRowStatus(s string) (RowStatus, error) {
	if st, ok := statusAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return st, nil
	}
	return "", fmt.Errorf("invalid row status %q", s)
}

// UnmarshalJSON accepts any known alias
func (s *RowStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	st, err := ParseRowStatus(raw)
	if err != nil {
		return err
	}
	*s = st
	return nil
}

// StatusMap maps SKU to its row status
type StatusMap map[string]RowStatus

// Clone returns an independent copy of the map
func (m StatusMap) Clone() StatusMap {
	out := make(StatusMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
