package report

import (
	"bytes"
	"fmt"
	"text/template"

	"bsr_estimator/pkg/core/estimate"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.AmericanEnglish)

type narrativeData struct {
	Category string
	Rank     string
	Price    string
}

var narrativeTemplates = map[estimate.Method]*template.Template{
	estimate.Interpolation: template.Must(template.New("interpolation").Parse(
		"This estimate is interpolated from verified historical sales data for the {{.Category}} category at BSR {{.Rank}}, based on direct data points.")),
	estimate.Extrapolation: template.Must(template.New("extrapolation").Parse(
		"This estimate uses power law extrapolation calibrated from historical data in the {{.Category}} category, as the BSR is below the typical observed range.")),
	estimate.PowerLaw: template.Must(template.New("power_law").Parse(
		"This estimate uses a power law regression model calibrated from extensive historical data in the {{.Category}} category.")),
}

var priceClause = template.Must(template.New("price").Parse(
	" Revenue calculations based on a ${{.Price}} price point."))

// FormatInt renders n with en-US digit grouping ("12,345").
func FormatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatRank is FormatInt for a whole-number rank.
func FormatRank(rank float64) string {
	return FormatInt(int64(rank))
}

// FormatMoney renders v as "$1,234.56".
func FormatMoney(v float64) string {
	return printer.Sprintf("$%.2f", v)
}

// Narrative explains how the estimate for (category, rank) was obtained.
func Narrative(category string, rank float64, method estimate.Method, price *float64) (string, error) {
	tmpl, ok := narrativeTemplates[method]
	if !ok {
		return "", fmt.Errorf("no narrative for estimation method %v", method)
	}

	data := narrativeData{Category: category, Rank: FormatRank(rank)}
	if price != nil {
		data.Price = decimal.NewFromFloat(*price).StringFixed(2)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute narrative template: %w", err)
	}
	if price != nil {
		if err := priceClause.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("failed to execute price template: %w", err)
		}
	}
	return buf.String(), nil
}
