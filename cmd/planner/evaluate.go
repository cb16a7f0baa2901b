package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/andresuchdata/replenish-planner/internal/cashflow"
	"github.com/andresuchdata/replenish-planner/internal/replenishment"
	"github.com/andresuchdata/replenish-planner/internal/service"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
)

func snapshotFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{Name: "on-hand", Usage: "Units on hand"},
		&cli.Int64Flag{Name: "inbound", Usage: "Units already ordered and in transit"},
		&cli.StringFlag{Name: "unit-cost", Usage: "Cost per unit", Value: "0"},
		&cli.StringFlag{Name: "selling-price", Usage: "Selling price per unit", Value: "0"},
		&cli.Float64Flag{Name: "daily-sales", Usage: "Baseline units sold per day"},
		&cli.Float64Flag{Name: "seasonality", Usage: "Seasonal demand adjustment in percent, e.g. 20 or -30"},
		&cli.Int64Flag{Name: "lead-time", Usage: "Supplier lead time in days"},
		&cli.Int64Flag{Name: "safety-days", Usage: "Days of demand held as safety stock"},
		&cli.Int64Flag{Name: "order-cycle", Usage: "Days between orders"},
		&cli.BoolFlag{Name: "delay", Usage: "Apply the supplier delay stress"},
		asOfFlag(),
		&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
	}
}

func asOfFlag() *cli.StringFlag {
	return &cli.StringFlag{Name: "as-of", Usage: "Evaluation date (YYYY-MM-DD), defaults to today"}
}

func parseAsOfFlag(c *cli.Context) (time.Time, error) {
	raw := c.String("as-of")
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of %q: want YYYY-MM-DD", raw)
	}
	return t, nil
}

func parseDecimalFlag(c *cli.Context, name string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(c.String(name))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid --%s %q: %w", name, c.String(name), err)
	}
	return d, nil
}

func snapshotFromFlags(c *cli.Context) (replenishment.Snapshot, error) {
	unitCost, err := parseDecimalFlag(c, "unit-cost")
	if err != nil {
		return replenishment.Snapshot{}, err
	}
	price, err := parseDecimalFlag(c, "selling-price")
	if err != nil {
		return replenishment.Snapshot{}, err
	}
	asOf, err := parseAsOfFlag(c)
	if err != nil {
		return replenishment.Snapshot{}, err
	}

	return replenishment.Snapshot{
		Position: replenishment.InventoryPosition{
			OnHandUnits:  c.Int64("on-hand"),
			InboundUnits: c.Int64("inbound"),
			UnitCost:     unitCost,
			SellingPrice: price,
		},
		Velocity: replenishment.VelocityProfile{
			DailySalesUnits: c.Float64("daily-sales"),
			SeasonalityPct:  c.Float64("seasonality"),
		},
		Supply: replenishment.SupplyChainProfile{
			LeadTimeDays:        c.Int64("lead-time"),
			SafetyDays:          c.Int64("safety-days"),
			OrderCycleDays:      c.Int64("order-cycle"),
			DelayScenarioActive: c.Bool("delay"),
		},
		AsOf: asOf,
	}, nil
}

func evaluateCommand() *cli.Command {
	return &cli.Command{
		Name:  "evaluate",
		Usage: "Evaluate one SKU snapshot",
		Flags: snapshotFlags(),
		Action: func(c *cli.Context) error {
			snap, err := snapshotFromFlags(c)
			if err != nil {
				return err
			}
			m, err := service.NewPlannerService().Evaluate(c.Context, snap)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, m)
			}
			return writeMetricsTable(c.App.Writer, metricRows(m), nil)
		},
	}
}

func compareCommand() *cli.Command {
	return &cli.Command{
		Name:  "compare",
		Usage: "Evaluate one SKU snapshot with and without the supplier delay stress",
		Flags: snapshotFlags(),
		Action: func(c *cli.Context) error {
			snap, err := snapshotFromFlags(c)
			if err != nil {
				return err
			}
			cmp, err := service.NewPlannerService().Compare(c.Context, snap)
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, cmp)
			}
			return writeMetricsTable(c.App.Writer, metricRows(cmp.Base), metricRows(cmp.Stressed))
		},
	}
}

func cashflowCommand() *cli.Command {
	return &cli.Command{
		Name:  "cashflow",
		Usage: "Evaluate cash-flow runway",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "cash", Usage: "Cash on hand", Value: "0"},
			&cli.StringFlag{Name: "receivables", Usage: "Receivables due", Value: "0"},
			&cli.StringFlag{Name: "revenue", Usage: "Monthly revenue", Value: "0"},
			&cli.StringFlag{Name: "expenses", Usage: "Monthly expenses", Value: "0"},
			&cli.Float64Flag{Name: "critical-months", Usage: "Runway under which status is critical", Value: cashflow.DefaultCriticalMonths},
			&cli.Float64Flag{Name: "warning-months", Usage: "Runway under which status is warning", Value: cashflow.DefaultWarningMonths},
			asOfFlag(),
			&cli.BoolFlag{Name: "json", Usage: "Print JSON instead of a table"},
		},
		Action: func(c *cli.Context) error {
			var pos cashflow.Position
			for name, dst := range map[string]*decimal.Decimal{
				"cash":        &pos.CashOnHand,
				"receivables": &pos.ReceivablesDue,
				"revenue":     &pos.MonthlyRevenue,
				"expenses":    &pos.MonthlyExpenses,
			} {
				d, err := parseDecimalFlag(c, name)
				if err != nil {
					return err
				}
				*dst = d
			}
			asOf, err := parseAsOfFlag(c)
			if err != nil {
				return err
			}

			calc := cashflow.NewCalculator(cashflow.WithThresholds(c.Float64("critical-months"), c.Float64("warning-months")))
			svc := service.NewPlannerService(service.WithCashflowCalculator(calc))

			m, err := svc.EvaluateCashflow(c.Context, cashflow.Snapshot{Position: pos, AsOf: asOf})
			if err != nil {
				return err
			}
			if c.Bool("json") {
				return writeJSON(c.App.Writer, m)
			}

			runOut := "-"
			if m.RunOutDate != nil {
				runOut = m.RunOutDate.Format("2006-01-02")
			}
			return writeMetricsTable(c.App.Writer, []metricRow{
				{"net burn", m.NetBurn.StringFixed(2)},
				{"liquidity", m.Liquidity.StringFixed(2)},
				{"runway (months)", m.RunwayMonths.String()},
				{"run-out date", runOut},
				{"status", m.Status.String()},
			}, nil)
		},
	}
}

type metricRow struct {
	label string
	value string
}

func metricRows(m replenishment.Metrics) []metricRow {
	stockout := "-"
	if m.StockoutDate != nil {
		stockout = m.StockoutDate.Format("2006-01-02")
	}
	return []metricRow{
		{"adjusted velocity", fmt.Sprintf("%.2f", m.AdjustedVelocity)},
		{"total stock", fmt.Sprint(m.TotalStock)},
		{"days of inventory", m.DaysOfInventory.String()},
		{"stockout date", stockout},
		{"effective lead time", fmt.Sprint(m.EffectiveLeadTimeDays)},
		{"safety stock", fmt.Sprint(m.SafetyStockUnits)},
		{"lead time demand", fmt.Sprint(m.LeadTimeDemand)},
		{"reorder point", fmt.Sprint(m.ReorderPoint)},
		{"target stock level", fmt.Sprintf("%.2f", m.TargetStockLevel)},
		{"suggested order qty", fmt.Sprint(m.SuggestedOrderQty)},
		{"capital required", m.CapitalRequired.StringFixed(2)},
		{"capital tied up", m.CapitalTiedUp.StringFixed(2)},
		{"gap days", fmt.Sprintf("%.2f", m.GapDays)},
		{"projected lost units", fmt.Sprintf("%.2f", m.ProjectedLostUnits)},
		{"projected revenue loss", m.ProjectedRevenueLoss.StringFixed(2)},
		{"status", m.Status.String()},
	}
}

// writeMetricsTable prints label/value rows; with a second column set it
// prints base and stressed side by side.
func writeMetricsTable(w io.Writer, rows, stressed []metricRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if stressed != nil {
		fmt.Fprintln(tw, "METRIC\tBASE\tSTRESSED")
	}
	for i, r := range rows {
		if stressed != nil {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", r.label, r.value, stressed[i].value)
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\n", r.label, r.value)
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
