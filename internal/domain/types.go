package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateRange is a closed calendar-day interval. Start is pinned to the
// beginning of its day and End to the last second of its day, so plain
// time comparisons behave as day-granular inclusive bounds.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range from two days in either order.
func NewDateRange(a, b time.Time) DateRange {
	if b.Before(a) {
		a, b = b, a
	}
	return DateRange{Start: DayStart(a), End: DayEnd(b)}
}

func DayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func DayEnd(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Overlaps reports whether the two closed intervals share at least one day:
// either endpoint of r falls inside other, or r fully contains other.
func (r DateRange) Overlaps(other DateRange) bool {
	if !r.Start.Before(other.Start) && !r.Start.After(other.End) {
		return true
	}
	if !r.End.Before(other.Start) && !r.End.After(other.End) {
		return true
	}
	return r.Start.Before(other.Start) && r.End.After(other.End)
}

// Label renders the range for user-facing messages, collapsing
// single-day ranges to one date.
func (r DateRange) Label() string {
	const layout = "02/01/2006"
	if r.Start.Format(layout) == r.End.Format(layout) {
		return r.Start.Format(layout)
	}
	return r.Start.Format(layout) + " - " + r.End.Format(layout)
}

// HourlyBucket holds the observed counts for one hour of one salesperson.
// Hours absent from the source simply have no bucket.
type HourlyBucket struct {
	Hour        int
	Attendances int
	Potentials  int
}

// SalespersonAttendance aggregates one salesperson's hourly counts.
// TotalAttendances and TotalPotentials are always derived from Hourly;
// mutate Hourly only through code paths that re-derive them.
type SalespersonAttendance struct {
	Salesperson      string
	Hourly           []HourlyBucket
	TotalAttendances int
	TotalPotentials  int
}

// RecomputeTotals re-derives both totals from the hourly buckets.
func (s *SalespersonAttendance) RecomputeTotals() {
	s.TotalAttendances = 0
	s.TotalPotentials = 0
	for _, b := range s.Hourly {
		s.TotalAttendances += b.Attendances
		s.TotalPotentials += b.Potentials
	}
}

// SalespersonSales aggregates one salesperson's PDV export line(s).
// Money fields use decimals; ItemsPerSale is a plain rate.
type SalespersonSales struct {
	Salesperson   string
	SalesCount    int
	TotalRevenue  decimal.Decimal
	AverageTicket decimal.Decimal
	ItemsPerSale  float64
}

// RecomputeAverageTicket re-derives the average ticket from the summed
// revenue and count. Zero count yields a zero ticket, never a division.
func (s *SalespersonSales) RecomputeAverageTicket() {
	if s.SalesCount > 0 {
		s.AverageTicket = s.TotalRevenue.Div(decimal.NewFromInt(int64(s.SalesCount)))
		return
	}
	s.AverageTicket = decimal.Zero
}

// LoadedAttendanceFile is one successfully parsed attendance upload.
// Immutable once created; the file name doubles as the dedup key.
type LoadedAttendanceFile struct {
	Name       string
	RawContent string
	Range      DateRange
	Parsed     []SalespersonAttendance
}

// LoadedSalesFile is one successfully parsed PDV upload. Sales exports
// carry no reliable date header, so there is no range.
type LoadedSalesFile struct {
	Name       string
	RawContent string
	Parsed     []SalespersonSales
}

// ConsolidatedRecord is the derived outer join of attendance and sales
// for one salesperson. Never stored; rebuilt from the loaded files and
// the active filter on every change.
type ConsolidatedRecord struct {
	Salesperson      string
	Hourly           []HourlyBucket
	TotalAttendances int
	TotalPotentials  int
	SalesCount       int
	TotalRevenue     decimal.Decimal
	AverageTicket    decimal.Decimal
	ItemsPerSale     float64
	ConversionRate   float64
}
