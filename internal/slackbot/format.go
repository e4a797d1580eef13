package slackbot

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"salesbot/internal/domain"
	"salesbot/internal/insight"
)

// RenderMetricsTable renders the consolidated records as a fixed-width
// table for a Slack code block.
func RenderMetricsTable(records []domain.ConsolidatedRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-22s %8s %8s %7s %12s %10s %10s %8s\n",
		"Vendedor", "Atend.", "Pot.", "Vendas", "Receita", "Ticket", "Itens/Vd", "Conv.")
	for _, rec := range records {
		fmt.Fprintf(&b, "%-22s %8d %8d %7d %12s %10s %10s %8s\n",
			truncateName(rec.Salesperson, 22),
			rec.TotalAttendances,
			rec.TotalPotentials,
			rec.SalesCount,
			FormatBRL(rec.TotalRevenue),
			FormatBRL(rec.AverageTicket),
			formatRate(rec.ItemsPerSale),
			FormatPercent(rec.ConversionRate),
		)
	}
	return b.String()
}

// RenderSummary renders the collaborator's answer as Slack markdown.
func RenderSummary(s insight.Summary) string {
	var b strings.Builder
	b.WriteString("*Performance summary*\n")
	b.WriteString(strings.TrimSpace(s.Summary))
	b.WriteString("\n")
	if len(s.Highlights) > 0 {
		b.WriteString("\n*Highlights*\n")
		for _, h := range s.Highlights {
			b.WriteString("• " + strings.TrimSpace(h) + "\n")
		}
	}
	if len(s.Recommendations) > 0 {
		b.WriteString("\n*Recommendations*\n")
		for _, r := range s.Recommendations {
			b.WriteString("• " + strings.TrimSpace(r) + "\n")
		}
	}
	if len(s.IndividualHighlights) > 0 {
		b.WriteString("\n*Salespeople*\n")
		for _, ih := range s.IndividualHighlights {
			b.WriteString("• *" + strings.TrimSpace(ih.Salesperson) + "* — " + strings.TrimSpace(ih.Highlight) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatBRL renders a decimal as Brazilian currency: R$ 1.234,56.
func FormatBRL(d decimal.Decimal) string {
	s := d.StringFixed(2)
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.SplitN(s, ".", 2)
	intPart, fracPart := parts[0], "00"
	if len(parts) == 2 {
		fracPart = parts[1]
	}

	var grouped strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(r)
	}

	out := "R$ " + grouped.String() + "," + fracPart
	if negative {
		out = "-" + out
	}
	return out
}

// FormatPercent renders a 0..1 rate as a pt-BR percentage ("12,5%").
func FormatPercent(rate float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.1f%%", rate*100), ".", ",")
}

func formatRate(v float64) string {
	return strings.ReplaceAll(fmt.Sprintf("%.2f", v), ".", ",")
}

func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	return name[:max-3] + "..."
}
