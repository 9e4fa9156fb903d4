package plan

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestComputeProgress(t *testing.T) {
	start := time.Date(2024, 8, 22, 0, 0, 0, 0, time.UTC)
	p := Plan{
		ID:         "plan-1",
		StartDate:  start,
		TotalWeeks: 2,
		Workouts: []Workout{
			{ID: "w1", Name: "Easy Run", WeekNumber: 1, DayOfWeek: 1},
			{ID: "w2", Name: "Intervals", WeekNumber: 1, DayOfWeek: 3},
			{ID: "w3", Name: "Tempo", WeekNumber: 2, DayOfWeek: 1},
			{ID: "w4", Name: "Long Run", WeekNumber: 2, DayOfWeek: 5},
		},
	}
	completedAt := start.AddDate(0, 0, 4)
	completions := map[string]time.Time{
		"w1": completedAt,
		"w3": completedAt.AddDate(0, 0, 7),
	}

	got := computeProgress(p, completions, start.AddDate(0, 0, 8))

	if got.CurrentWeek != 2 {
		t.Errorf("CurrentWeek = %d, want 2", got.CurrentWeek)
	}
	if got.TotalWorkouts != 4 || got.CompletedWorkouts != 2 {
		t.Errorf("got %d/%d completed, want 2/4", got.CompletedWorkouts, got.TotalWorkouts)
	}
	if got.CompletionPercent != 50 {
		t.Errorf("CompletionPercent = %v, want 50", got.CompletionPercent)
	}

	wantWeeks := []WeekProgress{
		{WeekNumber: 1, Total: 2, Completed: 1, Percentage: 50},
		{WeekNumber: 2, Total: 2, Completed: 1, Percentage: 50},
	}
	if diff := cmp.Diff(wantWeeks, got.Weeks); diff != "" {
		t.Errorf("week progress mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(wantWeeks[1], got.CurrentWeekProgress); diff != "" {
		t.Errorf("current week progress mismatch (-want +got):\n%s", diff)
	}

	if len(got.Workouts) != 4 {
		t.Fatalf("got %d workout completions, want 4", len(got.Workouts))
	}
	if !got.Workouts[0].Completed || got.Workouts[0].CompletedAt == nil {
		t.Error("w1 should be completed with a timestamp")
	}
	if got.Workouts[1].Completed {
		t.Error("w2 should not be completed")
	}
}

func TestComputeProgressRoundsPercentages(t *testing.T) {
	start := time.Date(2024, 8, 22, 0, 0, 0, 0, time.UTC)
	p := Plan{
		ID:         "plan-2",
		StartDate:  start,
		TotalWeeks: 1,
		Workouts: []Workout{
			{ID: "w1", WeekNumber: 1, DayOfWeek: 1},
			{ID: "w2", WeekNumber: 1, DayOfWeek: 3},
			{ID: "w3", WeekNumber: 1, DayOfWeek: 5},
		},
	}
	completions := map[string]time.Time{"w1": start}

	got := computeProgress(p, completions, start)

	// 1 of 3 is 33.33...%, reported rounded.
	if got.CompletionPercent != 33 {
		t.Errorf("CompletionPercent = %v, want 33", got.CompletionPercent)
	}
	if got.Weeks[0].Percentage != 33 {
		t.Errorf("week percentage = %v, want 33", got.Weeks[0].Percentage)
	}
}

func TestComputeProgressEmptyPlan(t *testing.T) {
	now := time.Date(2024, 8, 22, 0, 0, 0, 0, time.UTC)
	got := computeProgress(Plan{ID: "empty", StartDate: now}, nil, now)

	if got.CompletionPercent != 0 {
		t.Errorf("CompletionPercent = %v, want 0 for an empty plan", got.CompletionPercent)
	}
	if got.CurrentWeek != 1 {
		t.Errorf("CurrentWeek = %d, want 1", got.CurrentWeek)
	}
	want := WeekProgress{WeekNumber: 1}
	if diff := cmp.Diff(want, got.CurrentWeekProgress); diff != "" {
		t.Errorf("current week progress should be zeroed (-want +got):\n%s", diff)
	}
}
