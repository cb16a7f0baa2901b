package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/andresuchdata/replenish-planner/internal/domain"
	"github.com/andresuchdata/replenish-planner/internal/replenishment"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const snapshotColumns = `sku, name, brand, on_hand, inbound, unit_cost, selling_price,
	daily_sales, seasonality_pct, lead_time_days, safety_days, order_cycle_days, delay_scenario`

type snapshotRow struct {
	SKU            string          `db:"sku"`
	Name           string          `db:"name"`
	Brand          string          `db:"brand"`
	OnHand         int64           `db:"on_hand"`
	Inbound        int64           `db:"inbound"`
	UnitCost       decimal.Decimal `db:"unit_cost"`
	SellingPrice   decimal.Decimal `db:"selling_price"`
	DailySales     float64         `db:"daily_sales"`
	SeasonalityPct float64         `db:"seasonality_pct"`
	LeadTimeDays   int64           `db:"lead_time_days"`
	SafetyDays     int64           `db:"safety_days"`
	OrderCycleDays int64           `db:"order_cycle_days"`
	DelayScenario  bool            `db:"delay_scenario"`
}

func (r snapshotRow) toDomain() domain.SKUSnapshot {
	return domain.SKUSnapshot{
		SKU:   r.SKU,
		Name:  r.Name,
		Brand: r.Brand,
		Snapshot: replenishment.Snapshot{
			Position: replenishment.InventoryPosition{
				OnHandUnits:  r.OnHand,
				InboundUnits: r.Inbound,
				UnitCost:     r.UnitCost,
				SellingPrice: r.SellingPrice,
			},
			Velocity: replenishment.VelocityProfile{
				DailySalesUnits: r.DailySales,
				SeasonalityPct:  r.SeasonalityPct,
			},
			Supply: replenishment.SupplyChainProfile{
				LeadTimeDays:        r.LeadTimeDays,
				SafetyDays:          r.SafetyDays,
				OrderCycleDays:      r.OrderCycleDays,
				DelayScenarioActive: r.DelayScenario,
			},
		},
	}
}

type SnapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// ListSnapshots reads sku_snapshots ordered by SKU.
func (r *SnapshotRepository) ListSnapshots(ctx context.Context, filter domain.SKUFilter) ([]domain.SKUSnapshot, error) {
	where, args := buildSnapshotFilterClause(filter, 1)
	query := "SELECT " + snapshotColumns + " FROM sku_snapshots" + where + " ORDER BY sku"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	var rows []snapshotRow
	if err := sqlx.SelectContext(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list sku snapshots: %w", err)
	}

	out := make([]domain.SKUSnapshot, len(rows))
	for i, row := range rows {
		out[i] = row.toDomain()
	}
	return out, nil
}

// UpsertSnapshots writes snapshots keyed by SKU in a single transaction.
func (r *SnapshotRepository) UpsertSnapshots(ctx context.Context, snapshots []domain.SKUSnapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}

	query := `
		INSERT INTO sku_snapshots (` + snapshotColumns + `, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (sku)
		DO UPDATE SET
			name = EXCLUDED.name,
			brand = EXCLUDED.brand,
			on_hand = EXCLUDED.on_hand,
			inbound = EXCLUDED.inbound,
			unit_cost = EXCLUDED.unit_cost,
			selling_price = EXCLUDED.selling_price,
			daily_sales = EXCLUDED.daily_sales,
			seasonality_pct = EXCLUDED.seasonality_pct,
			lead_time_days = EXCLUDED.lead_time_days,
			safety_days = EXCLUDED.safety_days,
			order_cycle_days = EXCLUDED.order_cycle_days,
			delay_scenario = EXCLUDED.delay_scenario,
			updated_at = EXCLUDED.updated_at
	`

	written := 0
	err := r.db.WithTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, s := range snapshots {
			pos, vel, sup := s.Snapshot.Position, s.Snapshot.Velocity, s.Snapshot.Supply
			if _, err := stmt.ExecContext(ctx,
				s.SKU, s.Name, s.Brand,
				pos.OnHandUnits, pos.InboundUnits, pos.UnitCost, pos.SellingPrice,
				vel.DailySalesUnits, vel.SeasonalityPct,
				sup.LeadTimeDays, sup.SafetyDays, sup.OrderCycleDays, sup.DelayScenarioActive,
				now,
			); err != nil {
				return fmt.Errorf("failed to upsert sku %s: %w", s.SKU, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int("rows", written).Msg("sku snapshots upserted")
	return written, nil
}
