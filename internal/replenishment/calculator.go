package replenishment

import (
	"math"
	"time"

	"github.com/andresuchdata/replenish-planner/internal/scenario"
	"github.com/shopspring/decimal"
)

// ToolName is the registry name of the replenishment calculator.
const ToolName = "replenishment"

// ceilEpsilon absorbs float noise so 0.1*3 days of demand does not become a
// phantom extra unit.
const ceilEpsilon = 1e-9

// Evaluate derives the metrics for one SKU as of the given day.
func Evaluate(asOf time.Time, position InventoryPosition, velocity VelocityProfile, supply SupplyChainProfile) Metrics {
	m := Metrics{}

	// 1. Adjusted velocity
	v := velocity.Adjusted()
	m.AdjustedVelocity = v

	// 2. Coverage
	m.TotalStock = position.TotalStock()
	if v > 0 {
		m.DaysOfInventory = scenario.FiniteCoverage(float64(m.TotalStock) / v)
	} else {
		m.DaysOfInventory = scenario.IndefiniteCoverage()
	}
	if date, ok := m.DaysOfInventory.StockoutDate(asOf); ok {
		m.StockoutDate = &date
	}

	// 3. Effective lead time
	m.EffectiveLeadTimeDays = supply.EffectiveLeadTimeDays()

	// 4. Reorder point = lead time demand + safety stock, both rounded up
	m.SafetyStockUnits = ceilUnits(v * float64(supply.SafetyDays))
	m.LeadTimeDemand = ceilUnits(v * float64(m.EffectiveLeadTimeDays))
	m.ReorderPoint = addUnits(m.LeadTimeDemand, m.SafetyStockUnits)

	// 5. Order-up-to quantity: clear the reorder point plus one order cycle
	m.TargetStockLevel = capFloat(float64(m.ReorderPoint) + v*float64(supply.OrderCycleDays))
	m.SuggestedOrderQty = ceilUnits(m.TargetStockLevel - float64(m.TotalStock))

	// 6. Risk status
	m.Status = Classify(m.TotalStock, m.SafetyStockUnits, m.ReorderPoint)

	// 7. Capital; inbound stock is not charged again
	m.CapitalRequired = decimal.NewFromInt(m.SuggestedOrderQty).Mul(position.UnitCost)
	m.CapitalTiedUp = decimal.NewFromInt(position.OnHandUnits).Mul(position.UnitCost)

	// 8. Revenue at risk while waiting on the (possibly stressed) lead time
	m.GapDays = m.DaysOfInventory.ShortfallAgainst(float64(m.EffectiveLeadTimeDays))
	m.ProjectedLostUnits = capFloat(m.GapDays * v)
	m.ProjectedRevenueLoss = decimal.NewFromFloat(m.ProjectedLostUnits).Mul(position.SellingPrice)

	return m
}

// ceilUnits rounds a unit quantity up, flooring at zero and saturating at
// math.MaxInt64.
func ceilUnits(v float64) int64 {
	if !(v > 0) {
		return 0
	}
	c := math.Ceil(v - ceilEpsilon)
	if c >= float64(math.MaxInt64) {
		return math.MaxInt64
	}
	return int64(c)
}

// addUnits adds non-negative unit counts, saturating at math.MaxInt64.
func addUnits(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// capFloat keeps a non-negative quantity finite so it stays JSON and
// decimal safe.
func capFloat(v float64) float64 {
	if math.IsInf(v, 1) {
		return math.MaxFloat64
	}
	return v
}

// Compare evaluates the snapshot with the delay scenario off and on.
func Compare(asOf time.Time, position InventoryPosition, velocity VelocityProfile, supply SupplyChainProfile) Comparison {
	baseSupply := supply
	baseSupply.DelayScenarioActive = false
	stressedSupply := supply
	stressedSupply.DelayScenarioActive = true

	base := Evaluate(asOf, position, velocity, baseSupply)
	stressed := Evaluate(asOf, position, velocity, stressedSupply)

	return Comparison{
		Base:     base,
		Stressed: stressed,
		Delta: ComparisonDelta{
			LeadTimeDays:         stressed.EffectiveLeadTimeDays - base.EffectiveLeadTimeDays,
			ReorderPoint:         stressed.ReorderPoint - base.ReorderPoint,
			SuggestedOrderQty:    stressed.SuggestedOrderQty - base.SuggestedOrderQty,
			CapitalRequired:      stressed.CapitalRequired.Sub(base.CapitalRequired),
			ProjectedRevenueLoss: stressed.ProjectedRevenueLoss.Sub(base.ProjectedRevenueLoss),
			StatusChanged:        stressed.Status != base.Status,
		},
	}
}

// Compile-time assertion that Engine implements the scenario Evaluator.
var _ scenario.Evaluator[Snapshot, Metrics] = (*Engine)(nil)

// Engine evaluates snapshots against a clock. It holds no per-call state
// and is safe for concurrent use.
type Engine struct {
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the clock used when a snapshot carries no AsOf.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an Engine using time.Now unless overridden.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Name() string { return ToolName }

// Evaluate runs the calculator for a snapshot.
func (e *Engine) Evaluate(s Snapshot) Metrics {
	return Evaluate(e.asOf(s), s.Position, s.Velocity, s.Supply)
}

// Compare runs the base and stressed evaluations for a snapshot.
func (e *Engine) Compare(s Snapshot) Comparison {
	return Compare(e.asOf(s), s.Position, s.Velocity, s.Supply)
}

func (e *Engine) asOf(s Snapshot) time.Time {
	if !s.AsOf.IsZero() {
		return s.AsOf
	}
	return e.now()
}
