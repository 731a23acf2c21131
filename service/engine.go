package service

import (
	"fmt"
	"regexp"
	"strings"

	"catalogo-armazones/models"
	"catalogo-armazones/templates"
)

// SubstitutionData is what the anchor render templates see
type SubstitutionData struct {
	SKU        string
	Brand      string
	Attributes [models.AttributeCount]string
	Images     [models.ImageSlots]string
	OldPrice   string
	Discount   string
	NewPrice   string
	Logo       string
	Link       string
}

// NewSubstitutionData flattens a row into render data. Logo and Link are left for the caller.
func NewSubstitutionData(row models.Row) SubstitutionData {
	data := SubstitutionData{
		SKU:      row.Get(models.FieldSKU),
		Brand:    row.Get(models.FieldBrand),
		OldPrice: row.Get(models.FieldPriceNormal),
		Discount: row.Get(models.FieldDiscountPercent),
		NewPrice: row.Get(models.FieldPriceDiscounted),
		Link:     row.Get(models.FieldRedirectLink),
	}
	if data.SKU == "" {
		data.SKU = row.Attribute(1)
	}
	if data.Brand == "" {
		data.Brand = row.Attribute(2)
	}
	for i := 1; i <= models.AttributeCount; i++ {
		data.Attributes[i-1] = row.Attribute(i)
	}
	for i := 1; i <= models.ImageSlots; i++ {
		data.Images[i-1] = row.Image(i)
	}
	return data
}

// Result is the output of one substitution run
type Result struct {
	HTML string `json:"html"`
	// Applied counts replacements per anchor name
	Applied map[string]int `json:"applied"`
	// Misses lists anchors that matched nothing, in table order
	Misses []string `json:"misses,omitempty"`
}

// Engine substitutes row data into page and card templates
type Engine struct {
	anchors     *CompiledAnchors
	defaultCard string
}

// NewEngine creates an Engine over the given anchor table (nil uses the embedded one)
func NewEngine(anchors *CompiledAnchors) *Engine {
	if anchors == nil {
		anchors = DefaultAnchors()
	}
	return &Engine{anchors: anchors, defaultCard: templates.DefaultCard}
}

// AnchorsVersion returns the version of the loaded anchor table
func (e *Engine) AnchorsVersion() int {
	return e.anchors.Version
}

// RenderPage applies the page anchor table to a detail page template
func (e *Engine) RenderPage(doc string, data SubstitutionData) (Result, error) {
	return e.Apply(doc, e.anchors.Page, data)
}

// RenderCard applies the card anchor table to a card template
func (e *Engine) RenderCard(doc string, data SubstitutionData) (Result, error) {
	return e.Apply(doc, e.anchors.Card, data)
}

// Apply runs each anchor in order against the output of the previous one.
// The rendered fragment is inserted literally; a non-matching anchor leaves
// the document unchanged and is reported in Result.Misses.
func (e *Engine) Apply(doc string, anchors []CompiledAnchor, data SubstitutionData) (Result, error) {
	result := Result{Applied: make(map[string]int, len(anchors))}
	for _, a := range anchors {
		var sb strings.Builder
		if err := a.render.Execute(&sb, data); err != nil {
			return Result{}, fmt.Errorf("failed to render anchor %s: %w", a.Name, err)
		}

		var n int
		doc, n = replaceLiteral(a.re, doc, sb.String(), a.Limit)
		if n == 0 {
			result.Misses = append(result.Misses, a.Name)
			continue
		}
		result.Applied[a.Name] += n
	}
	result.HTML = doc
	return result, nil
}

// replaceLiteral replaces up to limit matches (0 = all) with repl, without
// expanding $ references, and returns the number of replacements.
func replaceLiteral(re *regexp.Regexp, doc, repl string, limit int) (string, int) {
	n := -1
	if limit > 0 {
		n = limit
	}
	locs := re.FindAllStringIndex(doc, n)
	if len(locs) == 0 {
		return doc, 0
	}

	var sb strings.Builder
	sb.Grow(len(doc))
	last := 0
	for _, loc := range locs {
		sb.WriteString(doc[last:loc[0]])
		sb.WriteString(repl)
		last = loc[1]
	}
	sb.WriteString(doc[last:])
	return sb.String(), len(locs)
}

// FillDefaultCard fills the built-in token card. Used when no card template is loaded.
func (e *Engine) FillDefaultCard(data SubstitutionData) string {
	r := strings.NewReplacer(
		"{SKU}", data.SKU,
		"{MARCA}", data.Brand,
		"{LOGO}", data.Logo,
		"{IMG1}", data.Images[0],
		"{IMG2}", data.Images[1],
		"{IMG3}", data.Images[2],
		"{OLD_PRICE}", data.OldPrice,
		"{NEW_PRICE}", data.NewPrice,
		"{LINK}", data.Link,
	)
	return r.Replace(e.defaultCard)
}
