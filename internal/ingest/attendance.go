package ingest

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"salesbot/internal/domain"
)

// Attendance files have a fixed shape: row 0 is a free-form date-range
// header, row 1 groups columns by hour ("08h;;09h;;Total"), row 2 marks
// each column as attendances ("At.") or potentials ("Pot."), and data
// rows follow with the salesperson label in column 0.

type metricKind int

const (
	metricAttendance metricKind = iota
	metricPotential
)

type columnRef struct {
	hour int
	kind metricKind
}

var hourLabelRe = regexp.MustCompile(`(\d{1,2})h`)

// AttendanceResult is the parse product of one attendance upload.
type AttendanceResult struct {
	Data  []domain.SalespersonAttendance
	Range domain.DateRange
}

// ParseAttendance turns one attendance CSV's text into per-salesperson,
// per-hour counts plus the covered date range. Row and cell level
// problems are skipped silently; structural problems reject the file.
func ParseAttendance(text string) (AttendanceResult, error) {
	rows := parseRows(text)
	if len(rows) < 4 {
		return AttendanceResult{}, formatErrorf("attendance file needs a date header, two header rows and at least one data row (got %d rows)", len(rows))
	}

	headerLine := strings.Join(rows[0], ";")
	rng, ok := ExtractRange(headerLine)
	if !ok {
		if looksLikeSalesHeader(headerLine) {
			return AttendanceResult{}, &WrongSlotError{Expected: SlotAttendance, Detected: SlotSales}
		}
		return AttendanceResult{}, formatErrorf("could not find a date range in header %q", strings.TrimSpace(headerLine))
	}

	metrics := rows[2]
	if len(metrics) == 0 || !strings.HasPrefix(strings.ToLower(strings.TrimSpace(metrics[0])), "vendedor") {
		return AttendanceResult{}, formatErrorf("first metric column should identify the salesperson, got %q", firstCell(metrics))
	}

	columns := buildColumnMap(rows[1], metrics)

	buckets := map[string]map[int]*domain.HourlyBucket{}
	var order []string
	for _, row := range rows[3:] {
		lower := strings.ToLower(strings.TrimSpace(row[0]))
		if skipRowLabel(lower) {
			continue
		}
		name := Normalize(row[0])
		if name == "" {
			continue
		}
		hours, seen := buckets[name]
		if !seen {
			hours = map[int]*domain.HourlyBucket{}
			buckets[name] = hours
			order = append(order, name)
		}
		for i := 1; i < len(row); i++ {
			ref, mapped := columns[i]
			if !mapped {
				continue
			}
			value, err := strconv.Atoi(strings.TrimSpace(row[i]))
			if err != nil {
				continue
			}
			b := hours[ref.hour]
			if b == nil {
				b = &domain.HourlyBucket{Hour: ref.hour}
				hours[ref.hour] = b
			}
			switch ref.kind {
			case metricAttendance:
				b.Attendances += value
			case metricPotential:
				b.Potentials += value
			}
		}
	}

	if len(order) == 0 {
		return AttendanceResult{}, formatErrorf("no valid salesperson rows found in attendance file")
	}

	data := make([]domain.SalespersonAttendance, 0, len(order))
	for _, name := range order {
		sp := domain.SalespersonAttendance{Salesperson: name, Hourly: flattenHours(buckets[name])}
		sp.RecomputeTotals()
		data = append(data, sp)
	}

	return AttendanceResult{Data: data, Range: rng}, nil
}

// buildColumnMap resolves each column index to an {hour, metric} pair.
// The hour-group row carries its last non-blank label into blank cells;
// a cell containing "total" voids the column and resets the carry.
func buildColumnMap(groups, metrics []string) map[int]columnRef {
	labels := make([]string, len(metrics))
	carried := ""
	for i := range metrics {
		var cell string
		if i < len(groups) {
			cell = strings.TrimSpace(groups[i])
		}
		switch {
		case cell == "":
			labels[i] = carried
		case strings.Contains(strings.ToLower(cell), "total"):
			labels[i] = ""
			carried = ""
		default:
			labels[i] = cell
			carried = cell
		}
	}

	columns := map[int]columnRef{}
	for i, metric := range metrics {
		var kind metricKind
		switch strings.ToLower(strings.TrimSpace(metric)) {
		case "at.":
			kind = metricAttendance
		case "pot.":
			kind = metricPotential
		default:
			continue
		}
		m := hourLabelRe.FindStringSubmatch(labels[i])
		if m == nil {
			continue
		}
		hour, err := strconv.Atoi(m[1])
		if err != nil || hour > 23 {
			continue
		}
		columns[i] = columnRef{hour: hour, kind: kind}
	}
	return columns
}

// skipRowLabel filters the non-person rows these exports sprinkle into
// the data section: totals, repeated header rows and stray date lines.
func skipRowLabel(lower string) bool {
	switch lower {
	case "", "total", "total geral", "vendedor":
		return true
	}
	return strings.HasPrefix(lower, "data")
}

func looksLikeSalesHeader(header string) bool {
	lower := strings.ToLower(header)
	return strings.Contains(lower, "vendedor") || strings.Contains(lower, "venda")
}

func flattenHours(hours map[int]*domain.HourlyBucket) []domain.HourlyBucket {
	out := make([]domain.HourlyBucket, 0, len(hours))
	for _, b := range hours {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hour < out[j].Hour })
	return out
}

func firstCell(row []string) string {
	if len(row) == 0 {
		return ""
	}
	return strings.TrimSpace(row[0])
}
