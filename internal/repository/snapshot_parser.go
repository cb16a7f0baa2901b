package repository

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/andresuchdata/replenish-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// Snapshot CSV columns. Only sku, on_hand and daily_sales are required;
// missing optional columns read as zero/false.
const (
	ColSKU            = "sku"
	ColName           = "name"
	ColBrand          = "brand"
	ColOnHand         = "on_hand"
	ColInbound        = "inbound"
	ColUnitCost       = "unit_cost"
	ColSellingPrice   = "selling_price"
	ColDailySales     = "daily_sales"
	ColSeasonalityPct = "seasonality_pct"
	ColLeadTimeDays   = "lead_time_days"
	ColSafetyDays     = "safety_days"
	ColOrderCycleDays = "order_cycle_days"
	ColDelayScenario  = "delay_scenario"
)

// SnapshotColumns is the canonical column order.
var SnapshotColumns = []string{
	ColSKU, ColName, ColBrand, ColOnHand, ColInbound, ColUnitCost, ColSellingPrice,
	ColDailySales, ColSeasonalityPct, ColLeadTimeDays, ColSafetyDays, ColOrderCycleDays, ColDelayScenario,
}

var requiredColumns = []string{ColSKU, ColOnHand, ColDailySales}

// ParseSnapshotsCSV reads snapshot rows from CSV. The delimiter (comma or
// semicolon) is detected from the header line; column order is free.
func ParseSnapshotsCSV(r io.Reader) ([]domain.SKUSnapshot, error) {
	br := bufio.NewReader(r)
	headerLine, err := br.Peek(peekSize(br))
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = detectDelimiter(headerLine)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	return parseTable(header, reader.Read)
}

// parseTable maps header names to indices and parses every following row.
// next returns io.EOF after the last row.
func parseTable(header []string, next func() ([]string, error)) ([]domain.SKUSnapshot, error) {
	index := make(map[string]int, len(header))
	for i, col := range header {
		index[normalizeColumn(col)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("missing required column %q", col)
		}
	}

	var rows []domain.SKUSnapshot
	line := 1
	for {
		record, err := next()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		if isBlank(record) {
			continue
		}

		row, err := parseRecord(record, index)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseRecord(record []string, index map[string]int) (domain.SKUSnapshot, error) {
	get := func(col string) string {
		idx, ok := index[col]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var (
		row domain.SKUSnapshot
		err error
	)
	row.SKU = get(ColSKU)
	row.Name = get(ColName)
	row.Brand = get(ColBrand)

	if row.SKU == "" {
		return row, fmt.Errorf("sku is empty")
	}

	pos := &row.Snapshot.Position
	vel := &row.Snapshot.Velocity
	sup := &row.Snapshot.Supply

	if pos.OnHandUnits, err = parseInt(ColOnHand, get(ColOnHand)); err != nil {
		return row, err
	}
	if pos.InboundUnits, err = parseInt(ColInbound, get(ColInbound)); err != nil {
		return row, err
	}
	if pos.UnitCost, err = parseDecimal(ColUnitCost, get(ColUnitCost)); err != nil {
		return row, err
	}
	if pos.SellingPrice, err = parseDecimal(ColSellingPrice, get(ColSellingPrice)); err != nil {
		return row, err
	}
	if vel.DailySalesUnits, err = parseFloat(ColDailySales, get(ColDailySales)); err != nil {
		return row, err
	}
	if vel.SeasonalityPct, err = parseFloat(ColSeasonalityPct, get(ColSeasonalityPct)); err != nil {
		return row, err
	}
	if sup.LeadTimeDays, err = parseInt(ColLeadTimeDays, get(ColLeadTimeDays)); err != nil {
		return row, err
	}
	if sup.SafetyDays, err = parseInt(ColSafetyDays, get(ColSafetyDays)); err != nil {
		return row, err
	}
	if sup.OrderCycleDays, err = parseInt(ColOrderCycleDays, get(ColOrderCycleDays)); err != nil {
		return row, err
	}
	if sup.DelayScenarioActive, err = parseBool(ColDelayScenario, get(ColDelayScenario)); err != nil {
		return row, err
	}

	return row, nil
}

func parseInt(col, v string) (int64, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		// whole numbers exported as "120.0"
		f, ferr := strconv.ParseFloat(v, 64)
		if ferr != nil || f != float64(int64(f)) {
			return 0, fmt.Errorf("%s: %q is not a whole number", col, v)
		}
		return int64(f), nil
	}
	return n, nil
}

func parseFloat(col, v string) (float64, error) {
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(v, "%"), 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a number", col, v)
	}
	return f, nil
}

func parseDecimal(col, v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: %q is not a decimal", col, v)
	}
	return d, nil
}

func parseBool(col, v string) (bool, error) {
	switch strings.ToLower(v) {
	case "", "0", "false", "no", "n":
		return false, nil
	case "1", "true", "yes", "y":
		return true, nil
	default:
		return false, fmt.Errorf("%s: %q is not a boolean", col, v)
	}
}

func normalizeColumn(col string) string {
	col = strings.TrimPrefix(col, "\ufeff")
	col = strings.ToLower(strings.TrimSpace(col))
	return strings.ReplaceAll(col, " ", "_")
}

func detectDelimiter(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

func peekSize(br *bufio.Reader) int {
	if n := br.Size(); n < 1024 {
		return n
	}
	return 1024
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
