// internal/domain/models.go
package domain

import (
	"time"

	"github.com/andresuchdata/replenish-planner/internal/replenishment"
	"github.com/andresuchdata/replenish-planner/internal/scenario"
	"github.com/shopspring/decimal"
)

// SKUSnapshot is one planning input row: a SKU and its calculator inputs.
type SKUSnapshot struct {
	SKU      string                 `json:"sku" validate:"required"`
	Name     string                 `json:"name,omitempty"`
	Brand    string                 `json:"brand,omitempty"`
	Snapshot replenishment.Snapshot `json:"snapshot"`
}

// PlanLine is the evaluated result for one SKU.
type PlanLine struct {
	SKU     string                `json:"sku"`
	Name    string                `json:"name,omitempty"`
	Brand   string                `json:"brand,omitempty"`
	Metrics replenishment.Metrics `json:"metrics"`
}

// PlanSummary aggregates plan lines sharing a risk status.
type PlanSummary struct {
	Status          scenario.RiskStatus `json:"status"`
	Count           int                 `json:"count"`
	SuggestedUnits  int64               `json:"suggested_units"`
	CapitalRequired decimal.Decimal     `json:"capital_required"`
	RevenueAtRisk   decimal.Decimal     `json:"revenue_at_risk"`
}

// Plan is a batch evaluation over many SKUs anchored on one day.
type Plan struct {
	AsOf                 time.Time       `json:"as_of"`
	Lines                []PlanLine      `json:"lines"`
	Summary              []PlanSummary   `json:"summary"`
	TotalCapitalRequired decimal.Decimal `json:"total_capital_required"`
	TotalCapitalTiedUp   decimal.Decimal `json:"total_capital_tied_up"`
	TotalRevenueAtRisk   decimal.Decimal `json:"total_revenue_at_risk"`
}

// SKUFilter narrows the snapshots loaded from a snapshot source.
type SKUFilter struct {
	SKUs   []string
	Brands []string
	Limit  int
}

// Matches reports whether a snapshot passes the SKU and brand filters.
// Limit is applied by the caller.
func (f SKUFilter) Matches(s SKUSnapshot) bool {
	if len(f.SKUs) > 0 && !containsFold(f.SKUs, s.SKU) {
		return false
	}
	if len(f.Brands) > 0 && !containsFold(f.Brands, s.Brand) {
		return false
	}
	return true
}
