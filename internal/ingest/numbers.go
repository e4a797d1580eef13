package ingest

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// parseCurrencyBRL parses a Brazilian currency cell ("1.234,56", with or
// without quotes or an R$ prefix) into a decimal. Unparseable cells
// yield zero; currency problems are cell-level, never file-level.
func parseCurrencyBRL(cell string) decimal.Decimal {
	s := strings.TrimSpace(cell)
	s = strings.Trim(s, `"`)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// parseDecimalComma parses a plain decimal that may use a comma as the
// fractional separator ("1,5") or a dot ("1.5"). Zero on failure.
func parseDecimalComma(cell string) float64 {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(cell), `"`))
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
