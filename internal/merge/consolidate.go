package merge

import (
	"sort"

	"salesbot/internal/domain"
)

// Consolidate outer-joins merged attendance and merged sales on the
// normalized salesperson name. A salesperson present in one source only
// still yields a record with the other side zeroed. The conversion rate
// is zero whenever there are no attendances, regardless of sales.
func Consolidate(attendance []domain.SalespersonAttendance, sales []domain.SalespersonSales) []domain.ConsolidatedRecord {
	byName := map[string]*domain.ConsolidatedRecord{}
	var order []string

	for _, sp := range attendance {
		rec := &domain.ConsolidatedRecord{
			Salesperson:      sp.Salesperson,
			Hourly:           sp.Hourly,
			TotalAttendances: sp.TotalAttendances,
			TotalPotentials:  sp.TotalPotentials,
		}
		byName[sp.Salesperson] = rec
		order = append(order, sp.Salesperson)
	}

	for _, sp := range sales {
		rec, seen := byName[sp.Salesperson]
		if !seen {
			rec = &domain.ConsolidatedRecord{Salesperson: sp.Salesperson}
			byName[sp.Salesperson] = rec
			order = append(order, sp.Salesperson)
		}
		rec.SalesCount = sp.SalesCount
		rec.TotalRevenue = sp.TotalRevenue
		rec.AverageTicket = sp.AverageTicket
		rec.ItemsPerSale = sp.ItemsPerSale
	}

	sort.Strings(order)
	out := make([]domain.ConsolidatedRecord, 0, len(order))
	for _, name := range order {
		rec := byName[name]
		if rec.TotalAttendances > 0 {
			rec.ConversionRate = float64(rec.SalesCount) / float64(rec.TotalAttendances)
		}
		out = append(out, *rec)
	}
	return out
}
