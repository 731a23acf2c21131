package service

import (
	"fmt"
	"sync"

	"catalogo-armazones/models"
)

// HeldCard is a card generated by the bulk flow and waiting for catalog insertion
type HeldCard struct {
	SKU  string `json:"sku"`
	HTML string `json:"html"`
}

// Workspace is the session state shared by the generators: the loaded sheet,
// the logo and link maps, the card template and the cards held for insertion.
type Workspace struct {
	mu           sync.RWMutex
	sheetPath    string
	rows         []models.Row
	index        map[string]int
	logos        models.LogoMap
	links        models.LinkMap
	cardTemplate string
	held         []HeldCard
}

// NewWorkspace creates an empty Workspace
func NewWorkspace() *Workspace {
	return &Workspace{
		index: make(map[string]int),
		logos: models.LogoMap{},
		links: models.LinkMap{},
	}
}

// SetRows replaces the loaded sheet. The first row wins when a SKU repeats.
func (w *Workspace) SetRows(path string, rows []models.Row) {
	index := make(map[string]int, len(rows))
	for i, r := range rows {
		sku := r.Get(models.FieldSKU)
		if _, dup := index[sku]; !dup {
			index[sku] = i
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.sheetPath = path
	w.rows = rows
	w.index = index
}

// SheetPath returns the path of the loaded sheet
func (w *Workspace) SheetPath() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sheetPath
}

// Rows returns the loaded rows
func (w *Workspace) Rows() ([]models.Row, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.rows == nil {
		return nil, ErrNoSheet
	}
	out := make([]models.Row, len(w.rows))
	copy(out, w.rows)
	return out, nil
}

// Row returns the row with the given SKU
func (w *Workspace) Row(sku string) (models.Row, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.rows == nil {
		return models.Row{}, ErrNoSheet
	}
	i, ok := w.index[sku]
	if !ok {
		return models.Row{}, fmt.Errorf("%w: %s", ErrRowNotFound, sku)
	}
	return w.rows[i], nil
}

// SetLogos replaces the logo map
func (w *Workspace) SetLogos(logos models.LogoMap) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logos = logos
}

// Logos returns the current logo map. Callers must not modify it.
func (w *Workspace) Logos() models.LogoMap {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.logos
}

// SetLinks replaces the redirect link map
func (w *Workspace) SetLinks(links models.LinkMap) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.links = links
}

// Links returns the current link map. Callers must not modify it.
func (w *Workspace) Links() models.LinkMap {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.links
}

// SetCardTemplate sets the card template used in anchor mode. "" switches back to the default card.
func (w *Workspace) SetCardTemplate(tpl string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cardTemplate = tpl
}

// CardTemplate returns the loaded card template, "" when none
func (w *Workspace) CardTemplate() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.cardTemplate
}

// HoldCard queues a card for insertion, replacing an earlier card for the same SKU
func (w *Workspace) HoldCard(card HeldCard) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i := range w.held {
		if w.held[i].SKU == card.SKU {
			w.held[i] = card
			return
		}
	}
	w.held = append(w.held, card)
}

// HeldCards returns the cards waiting for insertion
func (w *Workspace) HeldCards() []HeldCard {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]HeldCard, len(w.held))
	copy(out, w.held)
	return out
}

// ClearHeldCards drops the given SKUs from the queue
func (w *Workspace) ClearHeldCards(skus []string) {
	drop := make(map[string]bool, len(skus))
	for _, s := range skus {
		drop[s] = true
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	kept := w.held[:0]
	for _, c := range w.held {
		if !drop[c.SKU] {
			kept = append(kept, c)
		}
	}
	w.held = kept
}

// UpdateRow replaces the loaded row that has the same SKU
func (w *Workspace) UpdateRow(row models.Row) error {
	sku := row.Get(models.FieldSKU)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.rows == nil {
		return ErrNoSheet
	}
	i, ok := w.index[sku]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRowNotFound, sku)
	}
	w.rows[i] = row
	return nil
}
