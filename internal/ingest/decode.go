package ingest

import (
	"encoding/csv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// DecodeText converts raw upload bytes to a string. PDV and attendance
// tools in this domain export either UTF-8 or ISO8859-1; anything that is
// not valid UTF-8 is decoded as latin-1 so accented names survive.
func DecodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}

// parseRows splits semicolon-delimited text into records, tolerating the
// quoting quirks of these exports, and drops blank records. Falls back to
// naive splitting if the csv reader cannot make sense of the file at all.
func parseRows(text string) [][]string {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = ';'
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		rows = naiveRows(text)
	}
	return dropBlankRows(rows)
}

func naiveRows(text string) [][]string {
	var rows [][]string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		rows = append(rows, strings.Split(line, ";"))
	}
	return rows
}

func dropBlankRows(rows [][]string) [][]string {
	var out [][]string
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				out = append(out, row)
				break
			}
		}
	}
	return out
}
