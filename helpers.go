package imgqa

import (
	"math"
	"strings"
)

// round rounds x to the given number of decimal places.
func round(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

// NormalizeURL restores query separators that upstream feeds escape as '|'.
func NormalizeURL(rawURL string) string {
	return strings.ReplaceAll(rawURL, "|", "&")
}

// mediaType strips MIME parameters: "image/jpeg; charset=utf-8" → "image/jpeg".
func mediaType(ct string) string {
	if idx := strings.IndexByte(ct, ';'); idx >= 0 {
		ct = ct[:idx]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
