// Package cashflow implements the cash-flow runway calculator: how many
// months the business can keep paying its bills at the current net burn.
package cashflow

import (
	"time"

	"github.com/andresuchdata/replenish-planner/internal/scenario"
	"github.com/shopspring/decimal"
)

const (
	// ToolName is the registry name of the runway calculator.
	ToolName = "cashflow"

	DefaultCriticalMonths = 3.0
	DefaultWarningMonths  = 6.0

	// daysPerMonth converts runway months into a projected run-out date.
	daysPerMonth = 30.4375
)

// Position is the cash state and monthly run rate of the business.
type Position struct {
	CashOnHand      decimal.Decimal `json:"cash_on_hand" validate:"gte=0"`
	ReceivablesDue  decimal.Decimal `json:"receivables_due" validate:"gte=0"`
	MonthlyRevenue  decimal.Decimal `json:"monthly_revenue" validate:"gte=0"`
	MonthlyExpenses decimal.Decimal `json:"monthly_expenses" validate:"gte=0"`
}

// Snapshot is one runway evaluation input.
type Snapshot struct {
	Position Position  `json:"position"`
	AsOf     time.Time `json:"as_of,omitempty"`
}

// Validate rejects negative money fields.
func (s Snapshot) Validate() error {
	return scenario.ValidateStruct(s)
}

// Metrics is the derived runway output.
type Metrics struct {
	NetBurn      decimal.Decimal     `json:"net_burn"`
	Liquidity    decimal.Decimal     `json:"liquidity"`
	RunwayMonths scenario.Coverage   `json:"runway_months"`
	RunOutDate   *time.Time          `json:"run_out_date"`
	Status       scenario.RiskStatus `json:"status"`
}

// Compile-time assertion that Calculator implements the scenario Evaluator.
var _ scenario.Evaluator[Snapshot, Metrics] = (*Calculator)(nil)

// Calculator evaluates runway snapshots.
type Calculator struct {
	criticalMonths float64
	warningMonths  float64
	now            func() time.Time
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithThresholds sets the runway, in months, under which the status becomes
// critical and warning. Invalid pairs are ignored and the defaults kept.
func WithThresholds(criticalMonths, warningMonths float64) Option {
	return func(c *Calculator) {
		if criticalMonths > 0 && warningMonths >= criticalMonths {
			c.criticalMonths = criticalMonths
			c.warningMonths = warningMonths
		}
	}
}

// WithClock sets the clock used when a snapshot carries no AsOf.
func WithClock(now func() time.Time) Option {
	return func(c *Calculator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCalculator creates a Calculator with default thresholds.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		criticalMonths: DefaultCriticalMonths,
		warningMonths:  DefaultWarningMonths,
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Calculator) Name() string { return ToolName }

// Evaluate derives net burn, runway and status. A business that is not
// burning cash has an indefinite runway.
func (c *Calculator) Evaluate(s Snapshot) Metrics {
	asOf := s.AsOf
	if asOf.IsZero() {
		asOf = c.now()
	}

	p := s.Position
	m := Metrics{
		NetBurn:   p.MonthlyExpenses.Sub(p.MonthlyRevenue),
		Liquidity: p.CashOnHand.Add(p.ReceivablesDue),
	}

	if !m.NetBurn.IsPositive() {
		m.RunwayMonths = scenario.IndefiniteCoverage()
		m.Status = scenario.Healthy
		return m
	}

	months, _ := m.Liquidity.Div(m.NetBurn).Float64()
	m.RunwayMonths = scenario.FiniteCoverage(months)
	if date, ok := scenario.FiniteCoverage(months * daysPerMonth).StockoutDate(asOf); ok {
		m.RunOutDate = &date
	}

	switch {
	case months < c.criticalMonths:
		m.Status = scenario.Critical
	case months < c.warningMonths:
		m.Status = scenario.Warning
	default:
		m.Status = scenario.Healthy
	}
	return m
}
