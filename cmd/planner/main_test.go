package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut

	err := app.RunContext(context.Background(), append([]string{"planner", "--log-level", "error"}, args...))
	return out.String(), err
}

var baselineFlags = []string{
	"--on-hand", "500",
	"--unit-cost", "400",
	"--selling-price", "1200",
	"--daily-sales", "20",
	"--lead-time", "15",
	"--safety-days", "7",
	"--order-cycle", "30",
	"--as-of", "2025-03-10",
}

func TestEvaluateCommand_JSON(t *testing.T) {
	out, err := runApp(t, append([]string{"evaluate", "--json"}, baselineFlags...)...)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "healthy", got["status"])
	assert.EqualValues(t, 440, got["reorder_point"])
	assert.EqualValues(t, 540, got["suggested_order_qty"])
	assert.True(t, strings.HasPrefix(got["stockout_date"].(string), "2025-04-04"))
}

func TestEvaluateCommand_Table(t *testing.T) {
	out, err := runApp(t, append([]string{"evaluate"}, baselineFlags...)...)
	require.NoError(t, err)
	assert.Contains(t, out, "reorder point")
	assert.Contains(t, out, "healthy")
}

func TestEvaluateCommand_RejectsInvalidInput(t *testing.T) {
	_, err := runApp(t, "evaluate", "--on-hand=-1", "--daily-sales", "5")
	require.Error(t, err)

	_, err = runApp(t, "evaluate", "--unit-cost", "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--unit-cost")

	_, err = runApp(t, "evaluate", "--as-of", "10/03/2025")
	require.Error(t, err)
}

func TestCompareCommand_JSON(t *testing.T) {
	out, err := runApp(t, append([]string{"compare", "--json"}, baselineFlags...)...)
	require.NoError(t, err)

	var got struct {
		Base     map[string]any `json:"base"`
		Stressed map[string]any `json:"stressed"`
		Delta    map[string]any `json:"delta"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "healthy", got.Base["status"])
	assert.Equal(t, "warning", got.Stressed["status"])
	assert.EqualValues(t, 7, got.Delta["lead_time_days"])
	assert.Equal(t, true, got.Delta["status_changed"])
}

func TestCashflowCommand(t *testing.T) {
	out, err := runApp(t, "cashflow", "--cash", "1000", "--revenue", "250", "--expenses", "500", "--as-of", "2025-03-10")
	require.NoError(t, err)
	assert.Contains(t, out, "net burn")
	assert.Contains(t, out, "250.00")
	assert.Contains(t, out, "warning")
}

func writeSnapshotCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshots.csv")
	content := "sku,brand,on_hand,unit_cost,selling_price,daily_sales,lead_time_days,safety_days,order_cycle_days\n" +
		"HEALTHY,Acme,500,400,1200,20,15,7,30\n" +
		"CRIT,Acme,0,400,1200,20,15,7,30\n" +
		"OTHER,Globex,300,400,1200,20,15,7,30\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestPlanCommand_CSVToStdout(t *testing.T) {
	input := writeSnapshotCSV(t)

	out, err := runApp(t, "plan", "--input", input, "--as-of", "2025-03-10", "--output", "-")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "sku,name,brand,status"))
	assert.True(t, strings.HasPrefix(lines[1], "CRIT,,Acme,critical"))
	assert.True(t, strings.HasPrefix(lines[2], "OTHER,,Globex,warning"))
	assert.True(t, strings.HasPrefix(lines[3], "HEALTHY,,Acme,healthy"))
}

func TestPlanCommand_FilteredSummary(t *testing.T) {
	input := writeSnapshotCSV(t)
	report := filepath.Join(t.TempDir(), "plan.csv")

	out, err := runApp(t, "plan", "--input", input, "--brand", "acme", "--as-of", "2025-03-10", "--output", report)
	require.NoError(t, err)
	assert.Contains(t, out, "critical")

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "OTHER")
	assert.Contains(t, string(data), "CRIT")
}

func TestPlanCommand_RequiresSource(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "DRIVE_FOLDER_ID"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	_, err := runApp(t, "plan")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--input")
}

func TestImportCommand_RequiresDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	require.NoError(t, os.Unsetenv("DATABASE_URL"))

	_, err := runApp(t, "import", "--input", writeSnapshotCSV(t))
	require.Error(t, err)
}
