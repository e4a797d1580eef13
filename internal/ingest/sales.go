package ingest

import (
	"strconv"
	"strings"

	"salesbot/internal/domain"
)

// PDV export columns. The tools emit a fixed positional layout; rows
// shorter than the last column we need are treated as malformed.
const (
	salesColName    = 0
	salesColCount   = 2
	salesColItems   = 6
	salesColRevenue = 8
	salesColTicket  = 10
	salesMinColumns = 11
)

// ParseSales turns one PDV CSV's text into per-salesperson sale
// aggregates. Row 0 is discarded as a header, after a cross-check that
// it does not look like an attendance date header dropped into the
// wrong slot.
func ParseSales(text string) ([]domain.SalespersonSales, error) {
	rows := parseRows(text)
	if len(rows) < 2 {
		return nil, formatErrorf("sales file needs a header row and at least one data row (got %d rows)", len(rows))
	}

	header := strings.Join(rows[0], ";")
	if containsDateToken(header) && !strings.Contains(strings.ToLower(header), "vendedor") {
		return nil, &WrongSlotError{Expected: SlotSales, Detected: SlotAttendance}
	}

	byName := map[string]*domain.SalespersonSales{}
	var order []string
	for _, row := range rows[1:] {
		if len(row) < salesMinColumns {
			continue
		}
		lower := strings.ToLower(strings.TrimSpace(row[salesColName]))
		if skipRowLabel(lower) {
			continue
		}
		name := Normalize(row[salesColName])
		if name == "" {
			continue
		}
		count, err := strconv.Atoi(strings.TrimSpace(row[salesColCount]))
		if err != nil {
			continue
		}

		items := parseDecimalComma(row[salesColItems])
		revenue := parseCurrencyBRL(row[salesColRevenue])
		ticket := parseCurrencyBRL(row[salesColTicket])

		if existing, seen := byName[name]; seen {
			// Same person twice in one file: fold like the merger does.
			existing.SalesCount += count
			existing.TotalRevenue = existing.TotalRevenue.Add(revenue)
			existing.RecomputeAverageTicket()
			continue
		}
		byName[name] = &domain.SalespersonSales{
			Salesperson:   name,
			SalesCount:    count,
			TotalRevenue:  revenue,
			AverageTicket: ticket,
			ItemsPerSale:  items,
		}
		order = append(order, name)
	}

	if len(order) == 0 {
		return nil, formatErrorf("no valid salesperson rows found in sales file")
	}

	out := make([]domain.SalespersonSales, 0, len(order))
	for _, name := range order {
		out = append(out, *byName[name])
	}
	return out, nil
}
