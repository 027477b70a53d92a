package habits

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/daylog/internal/cli"
	"github.com/julianstephens/daylog/internal/oracle"
	"github.com/julianstephens/daylog/internal/storage/sqlite"
	"github.com/julianstephens/daylog/internal/tracker"
)

type emojiOracle struct{}

func (emojiOracle) Complete(context.Context, string, string) (string, error) {
	return "🎸", nil
}

func setupTestHabits(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to initialize store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	var out bytes.Buffer
	ctx := &cli.Context{
		Store:   store,
		Tracker: tracker.New(store, oracle.NewClassifier(emojiOracle{}), tracker.Options{Location: time.UTC}),
		UserID:  "local",
		Out:     &out,
	}
	return ctx, &out
}

func TestHabitAddCmd(t *testing.T) {
	ctx, out := setupTestHabits(t)

	cmd := &HabitAddCmd{Name: "Guitar", Classification: "music"}
	if err := cmd.Run(ctx); err != nil {
		t.Fatalf("HabitAddCmd.Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "🎸 Guitar") {
		t.Errorf("output = %q, want emoji and name", out.String())
	}

	habits, err := ctx.Tracker.Habits(context.Background(), "local")
	if err != nil {
		t.Fatal(err)
	}
	var found bool
	for _, h := range habits {
		if h.Name == "Guitar" {
			found = true
			if h.Classification != "music" {
				t.Errorf("classification = %q, want music", h.Classification)
			}
		}
	}
	if !found {
		t.Errorf("guitar not among habits: %+v", habits)
	}

	// Adding the same habit again returns the existing one.
	if err := (&HabitAddCmd{Name: "guitar"}).Run(ctx); err != nil {
		t.Fatalf("re-adding habit failed: %v", err)
	}
	again, _ := ctx.Tracker.Habits(context.Background(), "local")
	if len(again) != len(habits) {
		t.Errorf("habit count changed from %d to %d", len(habits), len(again))
	}
}

func TestHabitAddCmdRejectsBlankName(t *testing.T) {
	ctx, _ := setupTestHabits(t)
	if err := (&HabitAddCmd{Name: "   "}).Run(ctx); err == nil {
		t.Error("expected error for blank habit name")
	}
}

func TestHabitListCmd(t *testing.T) {
	ctx, out := setupTestHabits(t)

	if _, err := ctx.EnsureUser(); err != nil {
		t.Fatal(err)
	}
	if _, err := ctx.Tracker.CreateActivity(context.Background(), "local", tracker.NewActivity{
		Habit: "reading", Hours: "2", Description: "novel",
	}); err != nil {
		t.Fatal(err)
	}

	if err := (&HabitListCmd{}).Run(ctx); err != nil {
		t.Fatalf("HabitListCmd.Run() error = %v", err)
	}
	listing := out.String()
	for _, want := range []string{"fitness", "reading", "cooking", "other", "2.0h"} {
		if !strings.Contains(listing, want) {
			t.Errorf("listing missing %q:\n%s", want, listing)
		}
	}
}
