package ingest

import (
	"regexp"
	"strings"
)

var (
	codePrefixRe = regexp.MustCompile(`^\d+-\d+\s+`)
	roleSuffixRe = regexp.MustCompile(`\s*\([^)]*\)$`)
)

// Normalize reduces a raw salesperson label to the bare name so the same
// person is recognized across the attendance and PDV exports: strips the
// leading employee/route code ("1-7 Carol" -> "Carol") and the trailing
// parenthetical role ("Carol (FUNCIONARIO)" -> "Carol"). Applied to a
// fixpoint so stacked prefixes or suffixes cannot survive a single pass.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	for {
		next := codePrefixRe.ReplaceAllString(s, "")
		next = roleSuffixRe.ReplaceAllString(next, "")
		next = strings.TrimSpace(next)
		if next == s {
			return s
		}
		s = next
	}
}
