package models

import (
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// AttributeCount is the number of "Valor(es) del atributo N" columns in the product sheet
const AttributeCount = 13

// ImageSlots is the number of product images per row
const ImageSlots = 3

// Field identifies a named value of a Row
type Field int

const (
	FieldSKU Field = iota
	FieldBrand
	FieldPriceNormal
	FieldPriceDiscounted
	FieldDiscountPercent
	FieldRedirectLink
	FieldTags
	FieldImage1
	FieldImage2
	FieldImage3
	FieldAttribute1
)

// AttributeField returns the Field for attribute n (1-based)
func AttributeField(n int) Field {
	return FieldAttribute1 + Field(n-1)
}

// ImageField returns the Field for image slot n (1-based)
func ImageField(n int) Field {
	return FieldImage1 + Field(n-1)
}

// Row represents one product record loaded from the spreadsheet.
// Every value is a plain string; absent cells are "" and never "nan".
type Row struct {
	SKU             string                 `json:"sku"`
	Brand           string                 `json:"brand"`
	Attributes      [AttributeCount]string `json:"attributes"`
	PriceNormal     string                 `json:"priceNormal"`
	PriceDiscounted string                 `json:"priceDiscounted"`
	DiscountPercent string                 `json:"discountPercent"`
	Images          [ImageSlots]string     `json:"images"`
	RedirectLink    string                 `json:"redirectLink"`
	Tags            string                 `json:"tags"`
}

var cellPolicy = bluemonday.StrictPolicy()

// nanMarkers are the spellings spreadsheet exports use for an empty cell
var nanMarkers = map[string]bool{
	"nan":  true,
	"none": true,
	"null": true,
	"<na>": true,
	"nat":  true,
}

// NormalizeCell trims a raw cell value, maps NaN-like markers to "" and strips any markup.
func NormalizeCell(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" || nanMarkers[strings.ToLower(value)] {
		return ""
	}
	if strings.ContainsAny(value, "<>") {
		value = strings.TrimSpace(cellPolicy.Sanitize(value))
	}
	return value
}

// Get returns the value for field, or "" when the field is unknown or empty
func (r Row) Get(field Field) string {
	var value string
	switch {
	case field == FieldSKU:
		value = r.SKU
	case field == FieldBrand:
		value = r.Brand
	case field == FieldPriceNormal:
		value = r.PriceNormal
	case field == FieldPriceDiscounted:
		value = r.PriceDiscounted
	case field == FieldDiscountPercent:
		value = r.DiscountPercent
	case field == FieldRedirectLink:
		value = r.RedirectLink
	case field == FieldTags:
		value = r.Tags
	case field >= FieldImage1 && field <= FieldImage3:
		value = r.Images[field-FieldImage1]
	case field >= FieldAttribute1 && field < FieldAttribute1+AttributeCount:
		return r.Attribute(int(field-FieldAttribute1) + 1)
	default:
		return ""
	}
	return NormalizeCell(value)
}

// Attribute returns attribute n (1-based). Attribute 1 falls back to the SKU and
// attribute 2 to the brand, since the sheet keeps both in those columns.
func (r Row) Attribute(n int) string {
	if n < 1 || n > AttributeCount {
		return ""
	}
	value := NormalizeCell(r.Attributes[n-1])
	if value != "" {
		return value
	}
	switch n {
	case 1:
		return NormalizeCell(r.SKU)
	case 2:
		return NormalizeCell(r.Brand)
	}
	return ""
}

// Image returns image slot n (1-based)
func (r Row) Image(n int) string {
	if n < 1 || n > ImageSlots {
		return ""
	}
	return NormalizeCell(r.Images[n-1])
}

// WithImages returns a copy of the row with the non-empty overrides applied
func (r Row) WithImages(overrides [ImageSlots]string) Row {
	out := r
	for i, img := range overrides {
		if v := NormalizeCell(img); v != "" {
			out.Images[i] = v
		}
	}
	return out
}

// MissingImages returns the 1-based image slots that are empty
func (r Row) MissingImages() []int {
	var missing []int
	for i := 1; i <= ImageSlots; i++ {
		if r.Image(i) == "" {
			missing = append(missing, i)
		}
	}
	return missing
}

// normalizeHeader lowercases a column name and drops spaces so "Porcentajede descuento"
// and "Porcentaje de descuento" resolve to the same key
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.Join(strings.Fields(h), "")
}

var headerFields = map[string]Field{
	"sku":                   FieldSKU,
	"marca":                 FieldBrand,
	"brand":                 FieldBrand,
	"precionormal":          FieldPriceNormal,
	"preciocondescuento":    FieldPriceDiscounted,
	"porcentajededescuento": FieldDiscountPercent,
	"descuento":             FieldDiscountPercent,
	"link_producto":         FieldRedirectLink,
	"linkproducto":          FieldRedirectLink,
	"etiquetas":             FieldTags,
}

// headerField resolves a spreadsheet column name to a Field
func headerField(header string) (Field, bool) {
	key := normalizeHeader(header)
	if f, ok := headerFields[key]; ok {
		return f, true
	}
	if rest, ok := strings.CutPrefix(key, "imagen"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= ImageSlots {
			return ImageField(n), true
		}
	}
	if rest, ok := strings.CutPrefix(key, "valor(es)delatributo"); ok {
		if n, err := strconv.Atoi(rest); err == nil && n >= 1 && n <= AttributeCount {
			return AttributeField(n), true
		}
	}
	return 0, false
}

// RowFromRecord builds a Row from one spreadsheet record using its header row.
// Unknown columns are ignored and short records leave the remaining fields empty.
func RowFromRecord(header, record []string) Row {
	var row Row
	for i, h := range header {
		if i >= len(record) {
			break
		}
		field, ok := headerField(h)
		if !ok {
			continue
		}
		value := NormalizeCell(record[i])
		switch {
		case field == FieldSKU:
			row.SKU = value
		case field == FieldBrand:
			row.Brand = value
		case field == FieldPriceNormal:
			row.PriceNormal = value
		case field == FieldPriceDiscounted:
			row.PriceDiscounted = value
		case field == FieldDiscountPercent:
			row.DiscountPercent = value
		case field == FieldRedirectLink:
			row.RedirectLink = value
		case field == FieldTags:
			row.Tags = value
		case field >= FieldImage1 && field <= FieldImage3:
			row.Images[field-FieldImage1] = value
		case field >= FieldAttribute1:
			row.Attributes[field-FieldAttribute1] = value
		}
	}
	if row.SKU == "" {
		row.SKU = row.Attributes[0]
	}
	if row.Brand == "" {
		row.Brand = row.Attributes[1]
	}
	return row
}
