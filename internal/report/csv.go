// Package report renders plans for people and spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/andresuchdata/replenish-planner/internal/domain"
)

// PlanColumns is the header row of WritePlanCSV.
var PlanColumns = []string{
	"sku", "name", "brand", "status",
	"adjusted_velocity", "total_stock", "days_of_inventory", "stockout_date",
	"effective_lead_time_days", "safety_stock_units", "lead_time_demand", "reorder_point",
	"target_stock_level", "suggested_order_qty", "capital_required", "capital_tied_up",
	"gap_days", "projected_lost_units", "projected_revenue_loss",
}

// WritePlanCSV writes one row per plan line in plan order. Indefinite
// coverage prints as "indefinite" and a missing stockout date as an empty cell.
func WritePlanCSV(w io.Writer, plan *domain.Plan) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PlanColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, line := range plan.Lines {
		m := line.Metrics
		stockout := ""
		if m.StockoutDate != nil {
			stockout = m.StockoutDate.Format("2006-01-02")
		}

		record := []string{
			line.SKU,
			line.Name,
			line.Brand,
			m.Status.String(),
			formatFloat(m.AdjustedVelocity),
			strconv.FormatInt(m.TotalStock, 10),
			m.DaysOfInventory.String(),
			stockout,
			strconv.FormatInt(m.EffectiveLeadTimeDays, 10),
			strconv.FormatInt(m.SafetyStockUnits, 10),
			strconv.FormatInt(m.LeadTimeDemand, 10),
			strconv.FormatInt(m.ReorderPoint, 10),
			formatFloat(m.TargetStockLevel),
			strconv.FormatInt(m.SuggestedOrderQty, 10),
			m.CapitalRequired.StringFixed(2),
			m.CapitalTiedUp.StringFixed(2),
			formatFloat(m.GapDays),
			formatFloat(m.ProjectedLostUnits),
			m.ProjectedRevenueLoss.StringFixed(2),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write line %s: %w", line.SKU, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(roundFloat(v, 4), 'f', -1, 64)
}
