package replenishment

import (
	"encoding/json"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/andresuchdata/replenish-planner/internal/scenario"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var asOf = time.Date(2025, time.March, 10, 15, 30, 0, 0, time.UTC)

// baseline is concrete scenario 1: 500 on hand, 20/day, 15 day lead time.
func baseline() (InventoryPosition, VelocityProfile, SupplyChainProfile) {
	return InventoryPosition{
			OnHandUnits:  500,
			UnitCost:     decimal.NewFromInt(400),
			SellingPrice: decimal.NewFromInt(1200),
		},
		VelocityProfile{DailySalesUnits: 20},
		SupplyChainProfile{LeadTimeDays: 15, SafetyDays: 7, OrderCycleDays: 30}
}

func TestEvaluate_HealthyBaseline(t *testing.T) {
	t.Parallel()
	pos, vel, sup := baseline()

	m := Evaluate(asOf, pos, vel, sup)

	assert.Equal(t, 20.0, m.AdjustedVelocity)
	days, ok := m.DaysOfInventory.Days()
	require.True(t, ok)
	assert.Equal(t, 25.0, days)
	require.NotNil(t, m.StockoutDate)
	assert.Equal(t, time.Date(2025, time.April, 4, 0, 0, 0, 0, time.UTC), *m.StockoutDate)
	assert.EqualValues(t, 15, m.EffectiveLeadTimeDays)
	assert.EqualValues(t, 140, m.SafetyStockUnits)
	assert.EqualValues(t, 300, m.LeadTimeDemand)
	assert.EqualValues(t, 440, m.ReorderPoint)
	assert.Equal(t, 1040.0, m.TargetStockLevel)
	assert.EqualValues(t, 540, m.SuggestedOrderQty)
	assert.Equal(t, scenario.Healthy, m.Status)
	assert.True(t, m.CapitalRequired.Equal(decimal.NewFromInt(216000)), m.CapitalRequired.String())
	assert.True(t, m.CapitalTiedUp.Equal(decimal.NewFromInt(200000)), m.CapitalTiedUp.String())
	assert.Equal(t, 0.0, m.GapDays)
	assert.True(t, m.ProjectedRevenueLoss.IsZero())
}

func TestEvaluate_WarningWhenBelowReorderPoint(t *testing.T) {
	t.Parallel()
	pos, vel, sup := baseline()
	pos.OnHandUnits = 300

	m := Evaluate(asOf, pos, vel, sup)

	assert.Equal(t, scenario.Warning, m.Status)
	assert.EqualValues(t, 740, m.SuggestedOrderQty)
}

func TestEvaluate_DelayScenarioStretchesLeadTime(t *testing.T) {
	t.Parallel()
	pos, vel, sup := baseline()
	sup.DelayScenarioActive = true

	m := Evaluate(asOf, pos, vel, sup)

	assert.EqualValues(t, 22, m.EffectiveLeadTimeDays)
	assert.EqualValues(t, 440, m.LeadTimeDemand)
	assert.EqualValues(t, 580, m.ReorderPoint)
	assert.Equal(t, 0.0, m.GapDays)
	assert.True(t, m.ProjectedRevenueLoss.IsZero())
	// the caller's lead time is untouched
	assert.EqualValues(t, 15, sup.LeadTimeDays)
}

func TestEvaluate_RevenueAtRisk(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		delay    bool
		gapDays  float64
		lostLoss int64
	}{
		{name: "with supplier delay", delay: true, gapDays: 9.5, lostLoss: 456000},
		{name: "nominal lead time", delay: false, gapDays: 2.5, lostLoss: 120000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pos, vel, sup := baseline()
			vel.DailySalesUnits = 40
			sup.DelayScenarioActive = tt.delay

			m := Evaluate(asOf, pos, vel, sup)

			days, ok := m.DaysOfInventory.Days()
			require.True(t, ok)
			assert.Equal(t, 12.5, days)
			assert.InDelta(t, tt.gapDays, m.GapDays, 1e-9)
			assert.True(t, m.ProjectedRevenueLoss.Equal(decimal.NewFromInt(tt.lostLoss)),
				"got %s", m.ProjectedRevenueLoss)
		})
	}
}

func TestEvaluate_ZeroVelocity(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		vel  VelocityProfile
	}{
		{name: "no sales", vel: VelocityProfile{DailySalesUnits: 0, SeasonalityPct: 50}},
		{name: "seasonality wipes demand", vel: VelocityProfile{DailySalesUnits: 12, SeasonalityPct: -100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			pos, _, sup := baseline()
			sup.DelayScenarioActive = true

			m := Evaluate(asOf, pos, tt.vel, sup)

			assert.True(t, m.DaysOfInventory.IsIndefinite())
			assert.Nil(t, m.StockoutDate)
			assert.Zero(t, m.AdjustedVelocity)
			assert.Zero(t, m.SafetyStockUnits)
			assert.Zero(t, m.LeadTimeDemand)
			assert.Zero(t, m.ReorderPoint)
			assert.Zero(t, m.SuggestedOrderQty)
			assert.Zero(t, m.GapDays)
			assert.True(t, m.ProjectedRevenueLoss.IsZero())
			assert.True(t, m.CapitalRequired.IsZero())
			assert.Equal(t, scenario.Healthy, m.Status)
		})
	}
}

func TestEvaluate_ZeroStockZeroVelocityIsCritical(t *testing.T) {
	t.Parallel()
	m := Evaluate(asOf, InventoryPosition{}, VelocityProfile{}, SupplyChainProfile{})
	// 0 <= 0 safety stock
	assert.Equal(t, scenario.Critical, m.Status)
	assert.True(t, m.DaysOfInventory.IsIndefinite())
}

func TestEvaluate_InboundCountsAsCoverageButNotCapital(t *testing.T) {
	t.Parallel()
	pos, vel, sup := baseline()
	pos.OnHandUnits = 200
	pos.InboundUnits = 300

	m := Evaluate(asOf, pos, vel, sup)

	assert.EqualValues(t, 500, m.TotalStock)
	assert.EqualValues(t, 540, m.SuggestedOrderQty)
	assert.Equal(t, scenario.Healthy, m.Status)
	assert.True(t, m.CapitalTiedUp.Equal(decimal.NewFromInt(80000)))
}

func TestEvaluate_RoundsUp(t *testing.T) {
	t.Parallel()
	pos := InventoryPosition{OnHandUnits: 1}
	vel := VelocityProfile{DailySalesUnits: 0.1}
	sup := SupplyChainProfile{LeadTimeDays: 3, SafetyDays: 1, OrderCycleDays: 0}

	m := Evaluate(asOf, pos, vel, sup)

	// 0.1*1 = 0.1 -> 1 unit; 0.1*3 = 0.30000000000000004 -> 1 unit, not 2
	assert.EqualValues(t, 1, m.SafetyStockUnits)
	assert.EqualValues(t, 1, m.LeadTimeDemand)
	assert.EqualValues(t, 2, m.ReorderPoint)
	assert.EqualValues(t, 1, m.SuggestedOrderQty)
	assert.Equal(t, scenario.Critical, m.Status)
}

func TestEvaluate_Seasonality(t *testing.T) {
	t.Parallel()
	pos, vel, sup := baseline()
	vel.SeasonalityPct = 25

	m := Evaluate(asOf, pos, vel, sup)

	assert.Equal(t, 25.0, m.AdjustedVelocity)
	assert.EqualValues(t, 175, m.SafetyStockUnits)
	assert.EqualValues(t, 375, m.LeadTimeDemand)
	assert.Equal(t, scenario.Warning, m.Status)
}

func TestEvaluate_Idempotent(t *testing.T) {
	t.Parallel()
	pos, vel, sup := baseline()
	vel.DailySalesUnits = 37.3
	vel.SeasonalityPct = 12.5
	sup.DelayScenarioActive = true

	first := Evaluate(asOf, pos, vel, sup)
	second := Evaluate(asOf, pos, vel, sup)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestCompare(t *testing.T) {
	t.Parallel()
	pos, vel, sup := baseline()
	sup.DelayScenarioActive = true // ignored, Compare sets both sides

	c := Compare(asOf, pos, vel, sup)

	assert.EqualValues(t, 15, c.Base.EffectiveLeadTimeDays)
	assert.EqualValues(t, 22, c.Stressed.EffectiveLeadTimeDays)
	assert.EqualValues(t, DelayStressDays, c.Delta.LeadTimeDays)
	assert.EqualValues(t, 140, c.Delta.ReorderPoint)
	assert.EqualValues(t, 140, c.Delta.SuggestedOrderQty)
	assert.True(t, c.Delta.CapitalRequired.Equal(decimal.NewFromInt(56000)))
	assert.True(t, c.Delta.StatusChanged)
	assert.Equal(t, scenario.Healthy, c.Base.Status)
	assert.Equal(t, scenario.Warning, c.Stressed.Status)
}

func TestEngine_UsesClockWhenAsOfMissing(t *testing.T) {
	t.Parallel()
	pos, vel, sup := baseline()
	clock := func() time.Time { return time.Date(2024, time.December, 31, 23, 0, 0, 0, time.UTC) }
	e := NewEngine(WithClock(clock))

	m := e.Evaluate(Snapshot{Position: pos, Velocity: vel, Supply: sup})
	require.NotNil(t, m.StockoutDate)
	assert.Equal(t, time.Date(2025, time.January, 25, 0, 0, 0, 0, time.UTC), *m.StockoutDate)

	m = e.Evaluate(Snapshot{Position: pos, Velocity: vel, Supply: sup, AsOf: asOf})
	assert.Equal(t, time.Date(2025, time.April, 4, 0, 0, 0, 0, time.UTC), *m.StockoutDate)
	assert.Equal(t, ToolName, e.Name())
}

func randomSnapshot(r *rand.Rand) (InventoryPosition, VelocityProfile, SupplyChainProfile) {
	return InventoryPosition{
			OnHandUnits:  r.Int63n(5000),
			InboundUnits: r.Int63n(2000),
			UnitCost:     decimal.NewFromFloat(float64(r.Intn(100000)) / 100),
			SellingPrice: decimal.NewFromFloat(float64(r.Intn(200000)) / 100),
		},
		VelocityProfile{
			DailySalesUnits: float64(r.Intn(20000)) / 100,
			SeasonalityPct:  float64(r.Intn(300)) - 100,
		},
		SupplyChainProfile{
			LeadTimeDays:        r.Int63n(90),
			SafetyDays:          r.Int63n(30),
			OrderCycleDays:      r.Int63n(90),
			DelayScenarioActive: r.Intn(2) == 1,
		}
}

func TestProperties_NonNegativeAndStatusConsistent(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		pos, vel, sup := randomSnapshot(r)
		m := Evaluate(asOf, pos, vel, sup)

		assert.GreaterOrEqual(t, m.SafetyStockUnits, int64(0))
		assert.GreaterOrEqual(t, m.LeadTimeDemand, int64(0))
		assert.GreaterOrEqual(t, m.ReorderPoint, int64(0))
		assert.GreaterOrEqual(t, m.SuggestedOrderQty, int64(0))
		assert.False(t, m.CapitalRequired.IsNegative())
		assert.False(t, m.CapitalTiedUp.IsNegative())
		assert.False(t, m.ProjectedRevenueLoss.IsNegative())

		switch {
		case m.TotalStock <= m.SafetyStockUnits:
			assert.Equal(t, scenario.Critical, m.Status)
		case m.TotalStock <= m.ReorderPoint:
			assert.Equal(t, scenario.Warning, m.Status)
		default:
			assert.Equal(t, scenario.Healthy, m.Status)
		}
	}
}

func TestProperties_Monotonic(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(7))

	bumps := map[string]func(VelocityProfile, SupplyChainProfile) (VelocityProfile, SupplyChainProfile){
		"daily sales": func(v VelocityProfile, s SupplyChainProfile) (VelocityProfile, SupplyChainProfile) {
			v.DailySalesUnits += 3.7
			return v, s
		},
		"safety days": func(v VelocityProfile, s SupplyChainProfile) (VelocityProfile, SupplyChainProfile) {
			s.SafetyDays += 4
			return v, s
		},
		"lead time": func(v VelocityProfile, s SupplyChainProfile) (VelocityProfile, SupplyChainProfile) {
			s.LeadTimeDays += 5
			return v, s
		},
		"order cycle": func(v VelocityProfile, s SupplyChainProfile) (VelocityProfile, SupplyChainProfile) {
			s.OrderCycleDays += 6
			return v, s
		},
	}

	for i := 0; i < 500; i++ {
		pos, vel, sup := randomSnapshot(r)
		before := Evaluate(asOf, pos, vel, sup)
		for name, bump := range bumps {
			v2, s2 := bump(vel, sup)
			after := Evaluate(asOf, pos, v2, s2)
			assert.GreaterOrEqual(t, after.ReorderPoint, before.ReorderPoint, name)
			assert.GreaterOrEqual(t, after.SuggestedOrderQty, before.SuggestedOrderQty, name)
		}
	}
}

func TestProperties_DelayNeverImproves(t *testing.T) {
	t.Parallel()
	r := rand.New(rand.NewSource(99))

	for i := 0; i < 1000; i++ {
		pos, vel, sup := randomSnapshot(r)
		c := Compare(asOf, pos, vel, sup)

		assert.GreaterOrEqual(t, c.Stressed.EffectiveLeadTimeDays, c.Base.EffectiveLeadTimeDays)
		assert.GreaterOrEqual(t, c.Stressed.ReorderPoint, c.Base.ReorderPoint)
		assert.True(t, c.Stressed.ProjectedRevenueLoss.GreaterThanOrEqual(c.Base.ProjectedRevenueLoss))
	}
}

func TestEvaluate_LargestValidSnapshotStaysInRange(t *testing.T) {
	t.Parallel()
	s := largestSnapshot()
	require.NoError(t, s.Validate())

	m := Evaluate(asOf, s.Position, s.Velocity, s.Supply)
	assert.Equal(t, int64(2*MaxUnits), m.TotalStock)
	assert.Positive(t, m.LeadTimeDemand)
	assert.Positive(t, m.SafetyStockUnits)
	assert.Equal(t, m.LeadTimeDemand+m.SafetyStockUnits, m.ReorderPoint)
	assert.Positive(t, m.SuggestedOrderQty)
	assert.Less(t, m.SuggestedOrderQty, int64(math.MaxInt64))
	assert.Equal(t, scenario.Critical, m.Status)
	assert.True(t, m.CapitalRequired.IsPositive())

	_, err := json.Marshal(m)
	assert.NoError(t, err)
}

func TestEvaluate_ExtremeInputsSaturate(t *testing.T) {
	t.Parallel()
	price := decimal.NewFromInt(10)
	tests := []struct {
		name string
		pos  InventoryPosition
		vel  VelocityProfile
		sup  SupplyChainProfile
	}{
		{
			name: "demand beyond int64 units",
			pos:  InventoryPosition{UnitCost: price, SellingPrice: price},
			vel:  VelocityProfile{DailySalesUnits: 1e18},
			sup:  SupplyChainProfile{LeadTimeDays: 30, SafetyDays: 7, OrderCycleDays: 30},
		},
		{
			name: "velocity overflowing float64",
			pos:  InventoryPosition{OnHandUnits: 10, UnitCost: price, SellingPrice: price},
			vel:  VelocityProfile{DailySalesUnits: 1e200, SeasonalityPct: 1e200},
			sup:  SupplyChainProfile{LeadTimeDays: 30, SafetyDays: 7, OrderCycleDays: 30},
		},
		{
			name: "stock overflowing int64",
			pos:  InventoryPosition{OnHandUnits: math.MaxInt64, InboundUnits: 1, UnitCost: price, SellingPrice: price},
			vel:  VelocityProfile{DailySalesUnits: 20},
			sup:  SupplyChainProfile{LeadTimeDays: math.MaxInt64, SafetyDays: 7, OrderCycleDays: 30, DelayScenarioActive: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var m Metrics
			require.NotPanics(t, func() { m = Evaluate(asOf, tt.pos, tt.vel, tt.sup) })

			assert.GreaterOrEqual(t, m.TotalStock, int64(0))
			assert.GreaterOrEqual(t, m.EffectiveLeadTimeDays, int64(0))
			assert.GreaterOrEqual(t, m.SafetyStockUnits, int64(0))
			assert.GreaterOrEqual(t, m.LeadTimeDemand, int64(0))
			assert.GreaterOrEqual(t, m.ReorderPoint, m.LeadTimeDemand)
			assert.GreaterOrEqual(t, m.SuggestedOrderQty, int64(0))
			assert.False(t, m.CapitalRequired.IsNegative())
			assert.False(t, m.ProjectedRevenueLoss.IsNegative())
			for _, f := range []float64{m.AdjustedVelocity, m.TargetStockLevel, m.GapDays, m.ProjectedLostUnits} {
				assert.False(t, math.IsInf(f, 0) || math.IsNaN(f))
			}

			_, err := json.Marshal(m)
			assert.NoError(t, err)
		})
	}
}
