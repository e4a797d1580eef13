package ingest

import (
	"regexp"
	"strings"
	"time"

	"salesbot/internal/domain"
)

const dateTokenPattern = `\d{1,4}[/-]\d{1,4}[/-]\d{1,4}`

var (
	dateTokenRe = regexp.MustCompile(dateTokenPattern)
	rangePairRe = regexp.MustCompile(`(` + dateTokenPattern + `)\D+(` + dateTokenPattern + `)`)
)

// Format ladder for the header dates. Brazilian day-first layouts come
// before ISO; two-digit years last so "05/03/07" lands in 2007 instead
// of year 7.
var dateLayouts = []string{
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
	"2006-01-02",
	"2/1/06",
	"2/1/2006",
}

// ParseDateToken parses one date token trying each supported layout in
// order, accepting the first that yields a real calendar date after 1970.
func ParseDateToken(token string) (time.Time, bool) {
	token = strings.TrimSpace(token)
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, token)
		if err == nil && t.Year() > 1970 {
			return t, true
		}
	}
	return time.Time{}, false
}

// ExtractRange pulls a calendar-day interval out of a free-form header
// line. The primary scan looks for two date tokens separated by any
// non-digit filler; if that fails, the line is split on a single "-" and
// each half parsed independently. The result is always chronologically
// ordered no matter which date appeared first in the text.
func ExtractRange(header string) (domain.DateRange, bool) {
	if m := rangePairRe.FindStringSubmatch(header); m != nil {
		a, okA := ParseDateToken(m[1])
		b, okB := ParseDateToken(m[2])
		if okA && okB {
			return domain.NewDateRange(a, b), true
		}
	}

	parts := strings.Split(header, "-")
	if len(parts) == 2 {
		a, okA := ParseDateToken(parts[0])
		b, okB := ParseDateToken(parts[1])
		if okA && okB {
			return domain.NewDateRange(a, b), true
		}
	}

	return domain.DateRange{}, false
}

func containsDateToken(s string) bool {
	return dateTokenRe.MatchString(s)
}
