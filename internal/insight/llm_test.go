package insight

import (
	"strings"
	"testing"
)

func TestParseSummaryResponse(t *testing.T) {
	raw := `{"summary": "Bom mês.", "highlights": ["h1"], "recommendations": ["r1"], "individual_highlights": [{"salesperson": "Ana", "highlight": "top"}]}`
	summary, err := parseSummaryResponse(raw)
	if err != nil {
		t.Fatalf("parseSummaryResponse failed: %v", err)
	}
	if summary.Summary != "Bom mês." || len(summary.Highlights) != 1 || len(summary.Recommendations) != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(summary.IndividualHighlights) != 1 || summary.IndividualHighlights[0].Salesperson != "Ana" {
		t.Fatalf("individual highlights = %+v", summary.IndividualHighlights)
	}
}

func TestParseSummaryResponseStripsFences(t *testing.T) {
	raw := "```json\n{\"summary\": \"Resumo.\"}\n```"
	summary, err := parseSummaryResponse(raw)
	if err != nil {
		t.Fatalf("fenced response failed: %v", err)
	}
	if summary.Summary != "Resumo." {
		t.Fatalf("summary = %q", summary.Summary)
	}
}

func TestParseSummaryResponseRejectsEmpty(t *testing.T) {
	if _, err := parseSummaryResponse(`{"summary": "", "highlights": []}`); err == nil {
		t.Fatal("empty payload should be rejected")
	}
	if _, err := parseSummaryResponse("not json at all"); err == nil {
		t.Fatal("non-JSON payload should be rejected")
	}
}

func TestBuildSummaryPromptsTruncation(t *testing.T) {
	input := Input{
		AttendanceCSV: strings.Repeat("a", maxPromptCSVChars+100),
		SalesCSV:      "",
		RangeLabel:    "01/01/2024 - 31/01/2024",
		StoreName:     "Loja Centro",
	}
	system, user := buildSummaryPrompts(input)
	if !strings.Contains(system, "Loja Centro") {
		t.Fatalf("system prompt missing store name:\n%s", system)
	}
	if !strings.Contains(user, "(truncated)") {
		t.Fatal("oversized CSV should be truncated in the prompt")
	}
	if len(user) > maxPromptCSVChars+500 {
		t.Fatalf("user prompt still oversized: %d chars", len(user))
	}
	if !strings.Contains(user, "\n\nSales CSV data:\nnone") {
		t.Fatalf("empty sales side should render as none:\n%s", user[len(user)-100:])
	}
	if !strings.Contains(user, "Period: 01/01/2024 - 31/01/2024") {
		t.Fatal("user prompt missing the period label")
	}
}

func TestUsageTotals(t *testing.T) {
	u := Usage{InputTokens: 100, OutputTokens: 40}
	u.Add(Usage{InputTokens: 10, OutputTokens: 5, CacheReadInputTokens: 3})
	if u.TotalTokens() != 155 {
		t.Fatalf("TotalTokens = %d, want 155", u.TotalTokens())
	}
	if u.CacheReadInputTokens != 3 {
		t.Fatalf("cache read tokens = %d", u.CacheReadInputTokens)
	}
}
