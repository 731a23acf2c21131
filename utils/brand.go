package utils

import "strings"

var brandStripper = strings.NewReplacer(" ", "", "-", "", "_", "")

// NormalizeBrand turns a brand as typed in the sheet into the key used by logo files.
// "Ray-Ban", "ray ban" and "RAYBAN" all become "rayban".
func NormalizeBrand(raw string) string {
	return brandStripper.Replace(strings.ToLower(strings.TrimSpace(raw)))
}
