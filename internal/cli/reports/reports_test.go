package reports

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/daylog/internal/aggregate"
	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/oracle"
	"github.com/julianstephens/daylog/internal/storage/sqlite"
	"github.com/julianstephens/daylog/internal/tracker"
)

var today = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupReports(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })

	var out bytes.Buffer
	ctx := &cli.Context{
		Store: store,
		Tracker: tracker.New(store, oracle.NewClassifier(nil), tracker.Options{
			AdminEmail: "admin@example.com",
			Location:   time.UTC,
			Now:        func() time.Time { return today },
		}),
		UserID: "local",
		Out:    &out,
	}
	_, err := ctx.EnsureUser()
	require.NoError(t, err)
	return ctx, &out
}

func logActivity(t *testing.T, ctx *cli.Context, date, habit, hours string) {
	t.Helper()
	_, err := ctx.Tracker.CreateActivity(context.Background(), ctx.UserID, tracker.NewActivity{
		Date: date, Habit: habit, Hours: hours,
	})
	require.NoError(t, err)
}

func TestGridCmd(t *testing.T) {
	ctx, out := setupReports(t)
	logActivity(t, ctx, "2024-03-01", "reading", "1")
	logActivity(t, ctx, "2024-02-29", "fitness", "2")

	require.NoError(t, (&GridCmd{Weeks: 53}).Run(ctx))
	rendered := out.String()
	assert.Contains(t, rendered, "Less")
	assert.Contains(t, rendered, "2 active days")
	assert.Contains(t, rendered, "3.0h total")
	assert.Contains(t, rendered, "current streak 2")
}

func TestGridCmdJSON(t *testing.T) {
	ctx, out := setupReports(t)
	logActivity(t, ctx, "2024-03-01", "reading", "1.5")

	require.NoError(t, (&GridCmd{Weeks: 53, JSON: true}).Run(ctx))
	var grid []aggregate.GridDay
	require.NoError(t, json.Unmarshal(out.Bytes(), &grid))
	require.Len(t, grid, 365)
	last := grid[len(grid)-1]
	assert.Equal(t, "2024-03-01", last.Date)
	assert.Equal(t, []string{"reading: 1.5h"}, last.Summary)
}

func TestGridCmdValidate(t *testing.T) {
	assert.Error(t, (&GridCmd{Weeks: 0}).Validate())
	assert.NoError(t, (&GridCmd{Weeks: 4}).Validate())
}

func TestHeatMapShape(t *testing.T) {
	grid := aggregate.BuildGrid(today, nil)

	full := strings.Split(HeatMap(grid, 53), "\n")
	// Seven weekday rows plus the legend.
	require.Len(t, full, 8)
	assert.True(t, strings.HasPrefix(full[0], "Sun"))

	narrow := strings.Split(HeatMap(grid, 4), "\n")
	assert.LessOrEqual(t, strings.Count(narrow[3], "■"), 4)
	assert.Empty(t, HeatMap(nil, 53))
}

func TestTotalsCmd(t *testing.T) {
	ctx, out := setupReports(t)
	logActivity(t, ctx, "2024-03-01", "reading", "1")
	logActivity(t, ctx, "2024-02-20", "reading", "2")
	logActivity(t, ctx, "2024-02-20", "fitness", "0.5")

	require.NoError(t, (&TotalsCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "reading")
	assert.Contains(t, out.String(), "3.0h")
	assert.Contains(t, out.String(), "Total: 3.5h")
}

func TestTotalsCmdEmpty(t *testing.T) {
	ctx, out := setupReports(t)
	require.NoError(t, (&TotalsCmd{ByClassification: true}).Run(ctx))
	assert.Equal(t, "No activities logged yet.\n", out.String())
}

func TestQueryCmd(t *testing.T) {
	ctx, out := setupReports(t)
	logActivity(t, ctx, "2024-03-01", "reading", "1")

	cmd := &QueryCmd{Query: "SELECT date, hours FROM activities"}
	err := cmd.Run(ctx)
	assert.ErrorContains(t, err, "--email")

	ctx.Email = "admin@example.com"
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, out.String(), "2024-03-01")
	assert.Contains(t, out.String(), "(1 rows)")

	err = (&QueryCmd{Query: "SELECT * FROM nope"}).Run(ctx)
	assert.ErrorContains(t, err, "query failed")
}
