package utils

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	unsafeFileChars = regexp.MustCompile(`[<>:"/\\|?*]`)
	whitespaceRun   = regexp.MustCompile(`\s+`)
	imageExtRegex   = regexp.MustCompile(`(?i)\.(png|jpe?g|webp)$`)
	imageSlotRegex  = regexp.MustCompile(`^(.+?)[-_ ]([1-3])$`)
)

const maxFileNameLen = 50

// SafeFileName returns a file name (without extension) derived from a SKU.
// Characters rejected by common file systems become "_", and whitespace runs collapse to "_".
func SafeFileName(name string) string {
	clean := unsafeFileChars.ReplaceAllString(name, "_")
	clean = whitespaceRun.ReplaceAllString(strings.TrimSpace(clean), "_")
	if runes := []rune(clean); len(runes) > maxFileNameLen {
		clean = string(runes[:maxFileNameLen])
	}
	return clean
}

// BatchFileName is the name used by bulk generation: "<safe sku>_<index>", or
// "producto_<index>" when the SKU produces an empty name
func BatchFileName(sku string, index int) string {
	clean := SafeFileName(sku)
	if clean == "" {
		return fmt.Sprintf("producto_%d", index)
	}
	return fmt.Sprintf("%s_%d", clean, index)
}

// ParseImageFileName parses product image files named "<SKU>-<slot>.<ext>"
// Example: VLE41684-2.webp -> ("VLE41684", 2)
func ParseImageFileName(filename string) (string, int, error) {
	base := imageExtRegex.ReplaceAllString(strings.TrimSpace(filename), "")
	if base == filename {
		return "", 0, fmt.Errorf("invalid image file name %q: expected .png, .jpg, .jpeg or .webp", filename)
	}

	matches := imageSlotRegex.FindStringSubmatch(base)
	if len(matches) != 3 {
		return "", 0, fmt.Errorf("invalid image file name %q: expected <SKU>-<1..3>", filename)
	}

	slot, err := strconv.Atoi(matches[2])
	if err != nil {
		return "", 0, fmt.Errorf("invalid image slot in %q: %w", filename, err)
	}
	return strings.ToUpper(matches[1]), slot, nil
}
