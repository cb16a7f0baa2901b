package replenishment

import (
	"time"

	"github.com/andresuchdata/replenish-planner/internal/scenario"
	"github.com/shopspring/decimal"
)

// DelayStressDays is the fixed supplier-delay increment added to the lead
// time when the delay scenario is active.
const DelayStressDays = 7

// Upper bounds accepted by Validate. They keep velocity times any day count,
// and on hand plus inbound, far inside int64 and float64 range. The validate
// tags below repeat these values.
const (
	MaxUnits          = 1_000_000_000_000
	MaxDays           = 36_500
	MaxDailySales     = 1_000_000_000
	MaxSeasonalityPct = 10_000
)

// InventoryPosition is the physical and financial state of one SKU.
type InventoryPosition struct {
	OnHandUnits  int64           `json:"on_hand_units" validate:"gte=0,lte=1000000000000"`
	InboundUnits int64           `json:"inbound_units" validate:"gte=0,lte=1000000000000"`
	UnitCost     decimal.Decimal `json:"unit_cost" validate:"gte=0"`
	SellingPrice decimal.Decimal `json:"selling_price" validate:"gte=0"`
}

// TotalStock is the only quantity treated as coverage stock.
func (p InventoryPosition) TotalStock() int64 {
	return addUnits(p.OnHandUnits, p.InboundUnits)
}

// VelocityProfile holds the demand assumptions.
type VelocityProfile struct {
	DailySalesUnits float64 `json:"daily_sales_units" validate:"finite,gte=0,lte=1000000000"`
	// SeasonalityPct is a percentage uplift (+20) or dip (-30) on baseline demand.
	SeasonalityPct float64 `json:"seasonality_pct" validate:"finite,gte=-100,lte=10000"`
}

// Adjusted returns the seasonality-adjusted daily velocity, never negative.
func (v VelocityProfile) Adjusted() float64 {
	adjusted := v.DailySalesUnits * (1 + v.SeasonalityPct/100)
	if !(adjusted > 0) {
		return 0
	}
	return capFloat(adjusted)
}

// SupplyChainProfile holds the replenishment timing assumptions.
type SupplyChainProfile struct {
	LeadTimeDays        int64 `json:"lead_time_days" validate:"gte=0,lte=36500"`
	SafetyDays          int64 `json:"safety_days" validate:"gte=0,lte=36500"`
	OrderCycleDays      int64 `json:"order_cycle_days" validate:"gte=0,lte=36500"`
	DelayScenarioActive bool  `json:"delay_scenario_active"`
}

// EffectiveLeadTimeDays is the lead time including the delay stress, if any.
// The stored LeadTimeDays is left untouched.
func (s SupplyChainProfile) EffectiveLeadTimeDays() int64 {
	if s.DelayScenarioActive {
		return addUnits(s.LeadTimeDays, DelayStressDays)
	}
	return s.LeadTimeDays
}

// Snapshot bundles everything needed for one evaluation. AsOf anchors the
// stockout date; when zero, the Engine's clock supplies it.
type Snapshot struct {
	Position InventoryPosition  `json:"position"`
	Velocity VelocityProfile    `json:"velocity"`
	Supply   SupplyChainProfile `json:"supply"`
	AsOf     time.Time          `json:"as_of,omitempty"`
}

// Metrics is the full derived output for one snapshot.
type Metrics struct {
	AdjustedVelocity      float64             `json:"adjusted_velocity"`
	TotalStock            int64               `json:"total_stock"`
	DaysOfInventory       scenario.Coverage   `json:"days_of_inventory"`
	StockoutDate          *time.Time          `json:"stockout_date"`
	EffectiveLeadTimeDays int64               `json:"effective_lead_time_days"`
	SafetyStockUnits      int64               `json:"safety_stock_units"`
	LeadTimeDemand        int64               `json:"lead_time_demand"`
	ReorderPoint          int64               `json:"reorder_point"`
	TargetStockLevel      float64             `json:"target_stock_level"`
	SuggestedOrderQty     int64               `json:"suggested_order_qty"`
	CapitalRequired       decimal.Decimal     `json:"capital_required"`
	CapitalTiedUp         decimal.Decimal     `json:"capital_tied_up"`
	GapDays               float64             `json:"gap_days"`
	ProjectedLostUnits    float64             `json:"projected_lost_units"`
	ProjectedRevenueLoss  decimal.Decimal     `json:"projected_revenue_loss"`
	Status                scenario.RiskStatus `json:"status"`
}

// Comparison holds the same snapshot evaluated without and with the
// supplier-delay stress.
type Comparison struct {
	Base     Metrics         `json:"base"`
	Stressed Metrics         `json:"stressed"`
	Delta    ComparisonDelta `json:"delta"`
}

// ComparisonDelta is Stressed minus Base for the figures that move.
type ComparisonDelta struct {
	LeadTimeDays         int64           `json:"lead_time_days"`
	ReorderPoint         int64           `json:"reorder_point"`
	SuggestedOrderQty    int64           `json:"suggested_order_qty"`
	CapitalRequired      decimal.Decimal `json:"capital_required"`
	ProjectedRevenueLoss decimal.Decimal `json:"projected_revenue_loss"`
	StatusChanged        bool            `json:"status_changed"`
}
