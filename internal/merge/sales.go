package merge

import (
	"sort"

	"salesbot/internal/domain"
)

// Sales folds any number of parsed sales datasets into one, keyed by
// normalized salesperson name. Counts and revenue sum arithmetically and
// the average ticket is recomputed after every accumulation step.
// ItemsPerSale is not re-averaged; the first-established value survives
// the fold, matching what the source reports have always shown.
func Sales(datasets [][]domain.SalespersonSales) []domain.SalespersonSales {
	byName := map[string]*domain.SalespersonSales{}
	for _, dataset := range datasets {
		for _, sp := range dataset {
			existing, seen := byName[sp.Salesperson]
			if !seen {
				cp := sp
				byName[sp.Salesperson] = &cp
				continue
			}
			existing.SalesCount += sp.SalesCount
			existing.TotalRevenue = existing.TotalRevenue.Add(sp.TotalRevenue)
			existing.RecomputeAverageTicket()
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.SalespersonSales, 0, len(names))
	for _, name := range names {
		out = append(out, *byName[name])
	}
	return out
}

// RestrictSales drops salespeople absent from the given attendance set.
// Used while a date filter is active: sales rows carry no date, so the
// attendance side decides who was working in the filtered window.
func RestrictSales(sales []domain.SalespersonSales, attendance []domain.SalespersonAttendance) []domain.SalespersonSales {
	active := make(map[string]bool, len(attendance))
	for _, sp := range attendance {
		active[sp.Salesperson] = true
	}
	out := make([]domain.SalespersonSales, 0, len(sales))
	for _, sp := range sales {
		if active[sp.Salesperson] {
			out = append(out, sp)
		}
	}
	return out
}
