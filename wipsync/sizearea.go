package wipsync

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var sizePattern = regexp.MustCompile(`^\s*(\d+(?:\.\d+)?)\s*[xX*]\s*(\d+(?:\.\d+)?)\s*$`)

// ParseAreaSqft derives the piece area from a size descriptor like
// "8X10" or "2.6x9" (feet). Descriptors that do not follow the
// width-by-length convention yield zero; area is informational and must
// never fail a sync.
func ParseAreaSqft(size string) decimal.Decimal {
	m := sizePattern.FindStringSubmatch(strings.TrimSpace(size))
	if m == nil {
		return decimal.Zero
	}
	w, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.Zero
	}
	l, err := decimal.NewFromString(m[2])
	if err != nil {
		return decimal.Zero
	}
	return w.Mul(l).Round(2)
}
