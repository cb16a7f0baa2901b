package report

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	"github.com/andresuchdata/replenish-planner/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter prints quantities and money with locale grouping, e.g.
// 1234.5 is "1,234.5" in English and "1.234,5" in Indonesian.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter parses a BCP 47 tag such as "en" or "id". Unknown tags fall back to English.
func NewFormatter(locale string) Formatter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return Formatter{printer: message.NewPrinter(tag)}
}

// Amount formats with at most decimals fraction digits; trailing zeros are dropped.
func (f Formatter) Amount(d decimal.Decimal, decimals int) string {
	v, _ := d.Round(int32(decimals)).Float64()
	return f.Float(v, decimals)
}

func (f Formatter) Float(v float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return f.printer.Sprint(number.Decimal(roundFloat(v, decimals), number.MaxFractionDigits(decimals)))
}

func (f Formatter) Int(v int64) string {
	return f.printer.Sprint(number.Decimal(v))
}

// WriteSummary prints the per-status summary and plan totals as an aligned table.
func WriteSummary(w io.Writer, plan *domain.Plan, f Formatter) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "As of\t%s\n\n", plan.AsOf.Format("2006-01-02"))
	fmt.Fprintln(tw, "STATUS\tSKUS\tORDER UNITS\tCAPITAL REQUIRED\tREVENUE AT RISK")
	for _, s := range plan.Summary {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			s.Status, s.Count, f.Int(s.SuggestedUnits), f.Amount(s.CapitalRequired, 2), f.Amount(s.RevenueAtRisk, 2))
	}
	fmt.Fprintf(tw, "\nTotal capital required\t%s\n", f.Amount(plan.TotalCapitalRequired, 2))
	fmt.Fprintf(tw, "Total capital tied up\t%s\n", f.Amount(plan.TotalCapitalTiedUp, 2))
	fmt.Fprintf(tw, "Total revenue at risk\t%s\n", f.Amount(plan.TotalRevenueAtRisk, 2))

	return tw.Flush()
}

// roundFloat rounds v to the given number of decimal places.
func roundFloat(v float64, decimals int) float64 {
	if decimals <= 0 {
		return math.Round(v)
	}

	factor := math.Pow(10, float64(decimals))
	return math.Round(v*factor) / factor
}
