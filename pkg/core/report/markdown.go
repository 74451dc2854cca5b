package report

import (
	"fmt"
	"strings"

	"bsr_estimator/pkg/core/utils"
)

// Markdown renders a short report: a figures table followed by the narrative.
func Markdown(res Result) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## Sales estimate: %s at BSR %s\n\n", res.Category, FormatRank(float64(res.Rank)))
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|---|---|\n")
	row := func(label, value string) {
		fmt.Fprintf(&sb, "| %s | %s |\n", label, utils.EscapeTableCell(value))
	}
	row("Monthly units", FormatInt(int64(res.MonthlyUnits)))
	row("Daily units", FormatInt(int64(res.DailyUnits)))
	if res.PriceProvided {
		row("Daily revenue", FormatMoney(res.DailyRevenue))
		row("Monthly revenue", FormatMoney(res.MonthlyRevenue))
		row("Annual revenue", FormatMoney(res.AnnualRevenue))
	}
	row("Method", res.Method.String())

	sb.WriteString("\n")
	sb.WriteString(res.Narrative)
	sb.WriteString("\n")
	return sb.String()
}

// HTML renders Markdown(res) as an HTML fragment.
func HTML(res Result) (string, error) {
	return utils.MarkdownToHTML(Markdown(res))
}
