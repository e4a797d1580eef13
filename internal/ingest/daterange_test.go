package ingest

import (
	"testing"
	"time"
)

func TestExtractRangeFormats(t *testing.T) {
	tests := []struct {
		header    string
		wantStart string
		wantEnd   string
	}{
		{"2024/01/01 - 2024/01/31", "2024-01-01", "2024-01-31"},
		{"01/02/2024 - 29/02/2024", "2024-02-01", "2024-02-29"},
		{"Período: 01-03-2024 até 15-03-2024", "2024-03-01", "2024-03-15"},
		{"2024-04-01 a 2024-04-30", "2024-04-01", "2024-04-30"},
		{"5/3/24 - 9/3/24", "2024-03-05", "2024-03-09"},
		{"Atendimentos de 05/03/2024 a 09/03/2024", "2024-03-05", "2024-03-09"},
	}
	for _, tt := range tests {
		rng, ok := ExtractRange(tt.header)
		if !ok {
			t.Errorf("ExtractRange(%q) failed, want %s..%s", tt.header, tt.wantStart, tt.wantEnd)
			continue
		}
		if got := rng.Start.Format("2006-01-02"); got != tt.wantStart {
			t.Errorf("ExtractRange(%q) start = %s, want %s", tt.header, got, tt.wantStart)
		}
		if got := rng.End.Format("2006-01-02"); got != tt.wantEnd {
			t.Errorf("ExtractRange(%q) end = %s, want %s", tt.header, got, tt.wantEnd)
		}
	}
}

func TestExtractRangeReordersChronologically(t *testing.T) {
	rng, ok := ExtractRange("31/01/2024 - 01/01/2024")
	if !ok {
		t.Fatal("ExtractRange failed on reversed dates")
	}
	if !rng.Start.Before(rng.End) {
		t.Fatalf("start %s should precede end %s", rng.Start, rng.End)
	}
	if rng.Start.Day() != 1 || rng.End.Day() != 31 {
		t.Fatalf("expected 01..31, got %s..%s", rng.Start, rng.End)
	}
}

func TestExtractRangeDayBounds(t *testing.T) {
	rng, ok := ExtractRange("2024/01/01 - 2024/01/31")
	if !ok {
		t.Fatal("ExtractRange failed")
	}
	if h, m, s := rng.Start.Clock(); h != 0 || m != 0 || s != 0 {
		t.Fatalf("start should be day start, got %s", rng.Start)
	}
	if h, m, s := rng.End.Clock(); h != 23 || m != 59 || s != 59 {
		t.Fatalf("end should be day end, got %s", rng.End)
	}
}

func TestExtractRangeFallbackSplit(t *testing.T) {
	rng, ok := ExtractRange(" 01/01/2024 - 05/01/2024 ")
	if !ok {
		t.Fatal("ExtractRange failed on dash-separated pair")
	}
	if rng.Start.Month() != time.January || rng.End.Day() != 5 {
		t.Fatalf("unexpected range %s..%s", rng.Start, rng.End)
	}
}

func TestExtractRangeInvalid(t *testing.T) {
	headers := []string{
		"",
		"Relatório de Atendimentos",
		"31/02/2024 - 35/02/2024",
		"12/34 - 56/78",
		"0001/01/02 - 0001/01/03",
	}
	for _, header := range headers {
		if _, ok := ExtractRange(header); ok {
			t.Errorf("ExtractRange(%q) should have failed", header)
		}
	}
}

func TestParseDateTokenTwoDigitYear(t *testing.T) {
	d, ok := ParseDateToken("5/3/24")
	if !ok {
		t.Fatal("ParseDateToken failed on two-digit year")
	}
	if d.Year() != 2024 {
		t.Fatalf("year = %d, want 2024", d.Year())
	}
}
