package slackbot

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"salesbot/internal/domain"
	"salesbot/internal/insight"
)

func TestFormatBRL(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "R$ 0,00"},
		{"61.73", "R$ 61,73"},
		{"1234.56", "R$ 1.234,56"},
		{"1234567.8", "R$ 1.234.567,80"},
		{"-42.5", "-R$ 42,50"},
	}
	for _, tc := range cases {
		got := FormatBRL(decimal.RequireFromString(tc.in))
		if got != tc.want {
			t.Errorf("FormatBRL(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.125); got != "12,5%" {
		t.Errorf("FormatPercent(0.125) = %q, want 12,5%%", got)
	}
	if got := FormatPercent(0); got != "0,0%" {
		t.Errorf("FormatPercent(0) = %q, want 0,0%%", got)
	}
	if got := FormatPercent(1); got != "100,0%" {
		t.Errorf("FormatPercent(1) = %q, want 100,0%%", got)
	}
}

func TestRenderMetricsTable(t *testing.T) {
	records := []domain.ConsolidatedRecord{
		{
			Salesperson:      "Ana",
			TotalAttendances: 10,
			TotalPotentials:  2,
			SalesCount:       4,
			TotalRevenue:     decimal.RequireFromString("400"),
			AverageTicket:    decimal.RequireFromString("100"),
			ItemsPerSale:     1.5,
			ConversionRate:   0.4,
		},
		{
			Salesperson: "Um Nome Extremamente Comprido Demais",
		},
	}

	out := RenderMetricsTable(records)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.Contains(lines[0], "Vendedor") || !strings.Contains(lines[0], "Conv.") {
		t.Fatalf("header = %q", lines[0])
	}
	if !strings.Contains(lines[1], "R$ 400,00") || !strings.Contains(lines[1], "40,0%") || !strings.Contains(lines[1], "1,50") {
		t.Fatalf("Ana row = %q", lines[1])
	}
	if !strings.Contains(lines[2], "...") {
		t.Fatalf("long name not truncated: %q", lines[2])
	}
}

func TestRenderSummary(t *testing.T) {
	s := insight.Summary{
		Summary:         "Um bom mês.",
		Highlights:      []string{"Conversão subiu"},
		Recommendations: []string{"Reforçar o horário das 14h"},
		IndividualHighlights: []insight.IndividualHighlight{
			{Salesperson: "Ana", Highlight: "melhor conversão da loja"},
		},
	}
	out := RenderSummary(s)
	for _, want := range []string{
		"*Performance summary*",
		"Um bom mês.",
		"*Highlights*",
		"• Conversão subiu",
		"*Recommendations*",
		"*Salespeople*",
		"*Ana*",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderSummaryMinimal(t *testing.T) {
	out := RenderSummary(insight.Summary{Summary: "Só o resumo."})
	if strings.Contains(out, "*Highlights*") || strings.Contains(out, "*Recommendations*") {
		t.Fatalf("empty sections should be omitted:\n%s", out)
	}
}
