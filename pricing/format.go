package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer      = message.NewPrinter(language.English)
	priceCleaner = strings.NewReplacer("$", "", ",", "", " ", "", "MXN", "", "mxn", "")
	hundred      = decimal.NewFromInt(100)
)

// ParsePrice parses a sheet price such as "$3,600.00" or "3600"
func ParsePrice(s string) (decimal.Decimal, error) {
	clean := priceCleaner.Replace(strings.TrimSpace(s))
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty price")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", s, err)
	}
	return d, nil
}

// FormatPrice formats an amount as "$3,600.00"
func FormatPrice(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + printer.Sprintf("$%.2f", d.Round(2).InexactFloat64())
}

// ParsePercent parses a discount such as "-15%", "15 %" or "15"
func ParsePercent(s string) (decimal.Decimal, error) {
	clean := strings.ReplaceAll(strings.TrimSpace(s), "%", "")
	clean = strings.TrimSpace(clean)
	if clean == "" {
		return decimal.Zero, fmt.Errorf("empty percent")
	}
	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid percent %q: %w", s, err)
	}
	return d, nil
}

// FormatPercent formats a discount with no decimals, keeping its sign: "-15%"
func FormatPercent(d decimal.Decimal) string {
	return d.Round(0).String() + "%"
}

// DiscountPercent computes the (negative) discount between a normal and a discounted price
func DiscountPercent(normal, discounted decimal.Decimal) (decimal.Decimal, error) {
	if !normal.IsPositive() {
		return decimal.Zero, fmt.Errorf("normal price must be positive, got %s", normal)
	}
	return discounted.Sub(normal).Div(normal).Mul(hundred), nil
}

// Prices holds the three price texts stamped into a detail page
type Prices struct {
	Old      string
	Discount string
	New      string
}

// NormalizePrices reformats the sheet prices for bulk page generation.
// With normal, discounted and percent all set (and both prices carrying "$") every value is
// reformatted; with only a normal price the new-price slot shows it. ok is false when nothing
// could be reformatted and the caller should keep the raw values.
func NormalizePrices(normal, discounted, percent string) (Prices, bool) {
	switch {
	case normal != "" && discounted != "" && percent != "":
		if !strings.Contains(normal, "$") || !strings.Contains(discounted, "$") {
			return Prices{}, false
		}
		n, err := ParsePrice(normal)
		if err != nil {
			return Prices{}, false
		}
		d, err := ParsePrice(discounted)
		if err != nil {
			return Prices{}, false
		}
		p, err := ParsePercent(percent)
		if err != nil {
			return Prices{}, false
		}
		return Prices{Old: FormatPrice(n), Discount: FormatPercent(p), New: FormatPrice(d)}, true
	case normal != "" && strings.Contains(normal, "$"):
		n, err := ParsePrice(normal)
		if err != nil {
			return Prices{}, false
		}
		return Prices{New: FormatPrice(n)}, true
	}
	return Prices{}, false
}
