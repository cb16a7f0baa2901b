package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/andresuchdata/replenish-planner/internal/cache"
	"github.com/andresuchdata/replenish-planner/internal/cashflow"
	"github.com/andresuchdata/replenish-planner/internal/domain"
	"github.com/andresuchdata/replenish-planner/internal/replenishment"
	"github.com/andresuchdata/replenish-planner/internal/repository"
	"github.com/andresuchdata/replenish-planner/internal/scenario"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type PlannerService struct {
	engine   *replenishment.Engine
	runway   *cashflow.Calculator
	registry *scenario.Registry
	cache    cache.PlanCache
	repo     repository.SnapshotRepository
	workers  int
	maxBatch int
	now      func() time.Time
}

type Option func(*PlannerService)

func WithCache(c cache.PlanCache) Option {
	return func(s *PlannerService) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithRepository wires the snapshot source used by PlanFromRepository.
func WithRepository(repo repository.SnapshotRepository) Option {
	return func(s *PlannerService) { s.repo = repo }
}

func WithWorkers(n int) Option {
	return func(s *PlannerService) { s.workers = n }
}

// WithMaxBatchSize caps the rows accepted by Plan. Zero or less disables the cap.
func WithMaxBatchSize(n int) Option {
	return func(s *PlannerService) { s.maxBatch = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *PlannerService) {
		if now != nil {
			s.now = now
		}
	}
}

func WithCashflowCalculator(c *cashflow.Calculator) Option {
	return func(s *PlannerService) {
		if c != nil {
			s.runway = c
		}
	}
}

func NewPlannerService(opts ...Option) *PlannerService {
	s := &PlannerService{
		cache: cache.NewNoopPlanCache(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.engine = replenishment.NewEngine(replenishment.WithClock(s.now))
	if s.runway == nil {
		s.runway = cashflow.NewCalculator(cashflow.WithClock(s.now))
	}

	s.registry = scenario.NewRegistry()
	scenario.Register[replenishment.Snapshot, replenishment.Metrics](s.registry, s.engine, "Inventory replenishment and stockout risk for one SKU")
	scenario.Register[cashflow.Snapshot, cashflow.Metrics](s.registry, s.runway, "Cash-flow runway from cash, receivables and monthly burn")

	return s
}

// Tools lists the calculators this service exposes.
func (s *PlannerService) Tools() []scenario.Tool {
	return s.registry.Tools()
}

// Evaluate validates a snapshot and runs the replenishment calculator.
func (s *PlannerService) Evaluate(ctx context.Context, snap replenishment.Snapshot) (replenishment.Metrics, error) {
	if err := ctx.Err(); err != nil {
		return replenishment.Metrics{}, err
	}
	if err := snap.Validate(); err != nil {
		return replenishment.Metrics{}, err
	}
	return s.engine.Evaluate(snap), nil
}

// Compare validates a snapshot and evaluates it with and without the delay stress.
func (s *PlannerService) Compare(ctx context.Context, snap replenishment.Snapshot) (replenishment.Comparison, error) {
	if err := ctx.Err(); err != nil {
		return replenishment.Comparison{}, err
	}
	if err := snap.Validate(); err != nil {
		return replenishment.Comparison{}, err
	}
	return s.engine.Compare(snap), nil
}

// EvaluateCashflow validates a runway snapshot and runs the runway calculator.
func (s *PlannerService) EvaluateCashflow(ctx context.Context, snap cashflow.Snapshot) (cashflow.Metrics, error) {
	if err := ctx.Err(); err != nil {
		return cashflow.Metrics{}, err
	}
	if err := snap.Validate(); err != nil {
		return cashflow.Metrics{}, err
	}
	return s.runway.Evaluate(snap), nil
}

// Plan evaluates every row against the same day. A zero asOf means today.
// Every row is validated before any evaluation runs; all rejected rows are
// reported together.
func (s *PlannerService) Plan(ctx context.Context, asOf time.Time, rows []domain.SKUSnapshot) (*domain.Plan, error) {
	if s.maxBatch > 0 && len(rows) > s.maxBatch {
		return nil, fmt.Errorf("%w: %d rows, limit %d", ErrBatchTooLarge, len(rows), s.maxBatch)
	}
	if err := ValidateRows(rows); err != nil {
		return nil, err
	}

	day := s.planDay(asOf)
	inputs := make([]replenishment.Snapshot, len(rows))
	normalized := make([]domain.SKUSnapshot, len(rows))
	for i, row := range rows {
		row.Snapshot.AsOf = day
		normalized[i] = row
		inputs[i] = row.Snapshot
	}

	key, err := cache.PlanKey(day, normalized)
	if err != nil {
		log.Warn().Err(err).Msg("planner: build plan cache key failed")
	}
	if key != "" {
		if plan, ok, err := s.cache.GetPlan(ctx, key); err == nil && ok {
			return plan, nil
		} else if err != nil {
			log.Warn().Err(err).Msg("planner: cache get plan failed")
		}
	}

	eval, err := scenario.Lookup[replenishment.Snapshot, replenishment.Metrics](s.registry, replenishment.ToolName)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	results, err := scenario.Batch[replenishment.Snapshot, replenishment.Metrics](ctx, eval, inputs, s.workers)
	if err != nil {
		return nil, err
	}

	plan := buildPlan(day, normalized, results)

	log.Info().
		Int("rows", len(rows)).
		Str("as_of", day.Format("2006-01-02")).
		Dur("elapsed", time.Since(start)).
		Msg("planner: plan computed")

	if key != "" {
		if err := s.cache.SetPlan(ctx, key, plan); err != nil {
			log.Warn().Err(err).Msg("planner: cache set plan failed")
		}
	}

	return plan, nil
}

// PlanFromRepository loads snapshots from the wired repository and plans them.
func (s *PlannerService) PlanFromRepository(ctx context.Context, asOf time.Time, filter domain.SKUFilter) (*domain.Plan, error) {
	if s.repo == nil {
		return nil, ErrNoSnapshotSource
	}

	rows, err := s.repo.ListSnapshots(ctx, filter)
	if err != nil {
		return nil, errors.Wrap(err, "load snapshots")
	}

	return s.Plan(ctx, asOf, rows)
}

// InvalidatePlans drops every memoised plan.
func (s *PlannerService) InvalidatePlans(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

func (s *PlannerService) planDay(asOf time.Time) time.Time {
	if asOf.IsZero() {
		asOf = s.now()
	}
	y, m, d := asOf.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, asOf.Location())
}

// ValidateRows checks every row and rejects duplicate SKUs (case-insensitive).
// It returns a *PlanValidationError listing all rejected rows, or nil.
func ValidateRows(rows []domain.SKUSnapshot) error {
	var (
		rejected []RowError
		seen     = make(map[string]int, len(rows))
	)

	for i, row := range rows {
		if err := scenario.ValidateStruct(row); err != nil {
			rejected = append(rejected, RowError{Index: i, SKU: row.SKU, Err: err})
			continue
		}

		key := strings.ToLower(strings.TrimSpace(row.SKU))
		if first, dup := seen[key]; dup {
			rejected = append(rejected, RowError{
				Index: i,
				SKU:   row.SKU,
				Err:   fmt.Errorf("duplicate sku, first seen at row %d", first),
			})
			continue
		}
		seen[key] = i
	}

	if len(rejected) > 0 {
		return &PlanValidationError{Rows: rejected}
	}
	return nil
}

// buildPlan orders lines by severity, then revenue at risk, then SKU, and
// aggregates one summary entry per status.
func buildPlan(day time.Time, rows []domain.SKUSnapshot, results []replenishment.Metrics) *domain.Plan {
	lines := make([]domain.PlanLine, len(rows))
	for i, row := range rows {
		lines[i] = domain.PlanLine{
			SKU:     row.SKU,
			Name:    row.Name,
			Brand:   row.Brand,
			Metrics: results[i],
		}
	}

	sort.SliceStable(lines, func(i, j int) bool {
		a, b := lines[i].Metrics, lines[j].Metrics
		if a.Status.Severity() != b.Status.Severity() {
			return a.Status.Severity() < b.Status.Severity()
		}
		if c := a.ProjectedRevenueLoss.Cmp(b.ProjectedRevenueLoss); c != 0 {
			return c > 0
		}
		return lines[i].SKU < lines[j].SKU
	})

	byStatus := make(map[scenario.RiskStatus]*domain.PlanSummary, 3)
	for _, st := range scenario.AllRiskStatuses() {
		byStatus[st] = &domain.PlanSummary{
			Status:          st,
			CapitalRequired: decimal.Zero,
			RevenueAtRisk:   decimal.Zero,
		}
	}

	plan := &domain.Plan{
		AsOf:                 day,
		Lines:                lines,
		TotalCapitalRequired: decimal.Zero,
		TotalCapitalTiedUp:   decimal.Zero,
		TotalRevenueAtRisk:   decimal.Zero,
	}

	for _, line := range lines {
		m := line.Metrics
		sum := byStatus[m.Status]
		sum.Count++
		sum.SuggestedUnits += m.SuggestedOrderQty
		sum.CapitalRequired = sum.CapitalRequired.Add(m.CapitalRequired)
		sum.RevenueAtRisk = sum.RevenueAtRisk.Add(m.ProjectedRevenueLoss)

		plan.TotalCapitalRequired = plan.TotalCapitalRequired.Add(m.CapitalRequired)
		plan.TotalCapitalTiedUp = plan.TotalCapitalTiedUp.Add(m.CapitalTiedUp)
		plan.TotalRevenueAtRisk = plan.TotalRevenueAtRisk.Add(m.ProjectedRevenueLoss)
	}

	for _, st := range scenario.AllRiskStatuses() {
		plan.Summary = append(plan.Summary, *byStatus[st])
	}

	return plan
}
