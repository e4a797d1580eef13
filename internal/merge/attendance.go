package merge

import (
	"sort"

	"salesbot/internal/domain"
)

// Attendance folds any number of parsed attendance datasets into one,
// keyed by normalized salesperson name. Shared hours sum component-wise,
// hours present on one side only carry over, and both totals are
// recomputed from the merged buckets, so stale totals never survive.
// The fold is commutative, so ingestion completion order does not
// affect the result.
func Attendance(datasets [][]domain.SalespersonAttendance) []domain.SalespersonAttendance {
	byName := map[string]map[int]domain.HourlyBucket{}
	for _, dataset := range datasets {
		for _, sp := range dataset {
			hours, seen := byName[sp.Salesperson]
			if !seen {
				hours = map[int]domain.HourlyBucket{}
				byName[sp.Salesperson] = hours
			}
			for _, b := range sp.Hourly {
				cur := hours[b.Hour]
				cur.Hour = b.Hour
				cur.Attendances += b.Attendances
				cur.Potentials += b.Potentials
				hours[b.Hour] = cur
			}
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]domain.SalespersonAttendance, 0, len(names))
	for _, name := range names {
		hours := byName[name]
		sp := domain.SalespersonAttendance{Salesperson: name, Hourly: make([]domain.HourlyBucket, 0, len(hours))}
		for _, b := range hours {
			sp.Hourly = append(sp.Hourly, b)
		}
		sort.Slice(sp.Hourly, func(i, j int) bool { return sp.Hourly[i].Hour < sp.Hourly[j].Hour })
		sp.RecomputeTotals()
		out = append(out, sp)
	}
	return out
}
