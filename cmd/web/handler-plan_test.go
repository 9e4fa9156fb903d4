package main

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/stridr/internal/e2etest"
	"github.com/myrjola/stridr/internal/plan"
	"github.com/myrjola/stridr/internal/testhelpers"
)

func Test_application_trainingPlans(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()
	completeOnboarding(ctx, t, client)

	var result plan.GenerationResult
	t.Run("generate plan", func(t *testing.T) {
		req := plan.Request{Goal: "Run a 10 km race", Weeks: 4, WorkoutsPerWeek: 3}
		if err = client.PostJSON(ctx, "/api/plans", req, &result); err != nil {
			t.Fatalf("Failed to generate plan: %v", err)
		}

		p := result.Plan
		if p.ID == "" {
			t.Error("expected plan to have an ID")
		}
		// The fixture plan carries its own length regardless of the request.
		if p.TotalWeeks != 2 {
			t.Errorf("want 2 weeks, got %d", p.TotalWeeks)
		}
		if len(p.Workouts) != 6 {
			t.Errorf("want 6 workouts, got %d", len(p.Workouts))
		}
		if p.Source != plan.SourceFixture {
			t.Errorf("want fixture source, got %q", p.Source)
		}
		if p.GeneratedByAI {
			t.Error("fixture plans are not AI generated")
		}
		if want := p.StartDate.AddDate(0, 0, p.TotalWeeks*7); !p.EndDate.Equal(want) {
			t.Errorf("want end date %v, got %v", want, p.EndDate)
		}
	})

	t.Run("active plan matches", func(t *testing.T) {
		var active plan.Plan
		if err = client.GetJSON(ctx, "/api/plans/active", &active); err != nil {
			t.Fatalf("Failed to get active plan: %v", err)
		}
		if diff := cmp.Diff(result.Plan, active); diff != "" {
			t.Errorf("active plan mismatch (-generated +active):\n%s", diff)
		}
	})

	t.Run("fetch by ID", func(t *testing.T) {
		var p plan.Plan
		if err = client.GetJSON(ctx, "/api/plans/"+result.Plan.ID, &p); err != nil {
			t.Fatalf("Failed to get plan: %v", err)
		}
		if p.ID != result.Plan.ID {
			t.Errorf("want plan %s, got %s", result.Plan.ID, p.ID)
		}
	})

	t.Run("unknown plan is not found", func(t *testing.T) {
		var p plan.Plan
		if err = client.GetJSON(ctx, "/api/plans/no-such-plan", &p); err == nil {
			t.Fatal("expected error for unknown plan")
		}
	})

	t.Run("schedule", func(t *testing.T) {
		var weeks []plan.WeekSchedule
		if err = client.GetJSON(ctx, "/api/plans/"+result.Plan.ID+"/schedule", &weeks); err != nil {
			t.Fatalf("Failed to get schedule: %v", err)
		}
		if len(weeks) != 2 {
			t.Fatalf("want 2 scheduled weeks, got %d", len(weeks))
		}
		for _, week := range weeks {
			if len(week.Workouts) != 3 {
				t.Errorf("week %d: want 3 workouts, got %d", week.WeekNumber, len(week.Workouts))
			}
			for _, w := range week.Workouts {
				if w.Date.IsZero() {
					t.Errorf("workout %s has no date", w.Name)
				}
			}
		}
	})

	t.Run("reschedule moves a workout", func(t *testing.T) {
		var weeks []plan.WeekSchedule
		if err = client.GetJSON(ctx, "/api/plans/"+result.Plan.ID+"/schedule", &weeks); err != nil {
			t.Fatalf("Failed to get schedule: %v", err)
		}
		workoutID := result.Plan.Workouts[0].ID
		target := weeks[1].StartDate.AddDate(0, 0, 1)

		var moved plan.ScheduledWorkout
		req := rescheduleRequest{Date: target}
		if err = client.PutJSON(ctx, "/api/workouts/"+workoutID+"/schedule", req, &moved); err != nil {
			t.Fatalf("Failed to reschedule workout: %v", err)
		}
		if moved.WeekNumber != 2 || moved.DayOfWeek != 2 {
			t.Errorf("moved to week %d day %d, want week 2 day 2", moved.WeekNumber, moved.DayOfWeek)
		}
		if !moved.Date.Equal(target) {
			t.Errorf("moved date = %v, want %v", moved.Date, target)
		}

		if err = client.GetJSON(ctx, "/api/plans/"+result.Plan.ID+"/schedule", &weeks); err != nil {
			t.Fatalf("Failed to get schedule after reschedule: %v", err)
		}
		if len(weeks[0].Workouts) != 2 || len(weeks[1].Workouts) != 4 {
			t.Errorf("got %d and %d workouts per week, want 2 and 4",
				len(weeks[0].Workouts), len(weeks[1].Workouts))
		}
	})

	t.Run("reschedule outside the plan fails", func(t *testing.T) {
		workoutID := result.Plan.Workouts[1].ID
		req := rescheduleRequest{Date: result.Plan.EndDate.AddDate(0, 0, 60)}
		if err = client.PutJSON(ctx, "/api/workouts/"+workoutID+"/schedule", req, nil); err == nil {
			t.Fatal("expected error for a date past the final week")
		}
	})

	t.Run("progress starts at zero", func(t *testing.T) {
		var progress plan.Progress
		if err = client.GetJSON(ctx, "/api/plans/"+result.Plan.ID+"/progress", &progress); err != nil {
			t.Fatalf("Failed to get progress: %v", err)
		}
		if progress.TotalWorkouts != 6 {
			t.Errorf("want 6 total workouts, got %d", progress.TotalWorkouts)
		}
		if progress.CompletedWorkouts != 0 || progress.CompletionPercent != 0 {
			t.Errorf("want no completions, got %d (%.1f%%)",
				progress.CompletedWorkouts, progress.CompletionPercent)
		}
		if progress.CurrentWeek != 1 {
			t.Errorf("want current week 1, got %d", progress.CurrentWeek)
		}
	})

	t.Run("workout description renders markdown", func(t *testing.T) {
		workoutID := result.Plan.Workouts[0].ID
		var description plan.WorkoutDescription
		if err = client.GetJSON(ctx, "/api/workouts/"+workoutID+"/description", &description); err != nil {
			t.Fatalf("Failed to get workout description: %v", err)
		}
		if description.Workout.ID != workoutID {
			t.Errorf("want workout %s, got %s", workoutID, description.Workout.ID)
		}
		if !strings.Contains(description.DescriptionHTML, "<p>") {
			t.Errorf("want rendered HTML, got %q", description.DescriptionHTML)
		}
	})

	t.Run("new plan archives the old one", func(t *testing.T) {
		var replacement plan.GenerationResult
		req := plan.Request{Goal: "Run a 10 km race", Weeks: 4, WorkoutsPerWeek: 3}
		if err = client.PostJSON(ctx, "/api/plans", req, &replacement); err != nil {
			t.Fatalf("Failed to generate replacement plan: %v", err)
		}

		var active plan.Plan
		if err = client.GetJSON(ctx, "/api/plans/active", &active); err != nil {
			t.Fatalf("Failed to get active plan: %v", err)
		}
		if active.ID != replacement.Plan.ID {
			t.Errorf("want active plan %s, got %s", replacement.Plan.ID, active.ID)
		}

		result = replacement
	})

	t.Run("delete removes the plan", func(t *testing.T) {
		if err = client.Delete(ctx, "/api/plans/"+result.Plan.ID); err != nil {
			t.Fatalf("Failed to delete plan: %v", err)
		}
		var active plan.Plan
		if err = client.GetJSON(ctx, "/api/plans/active", &active); err == nil {
			t.Fatal("expected no active plan after deletion")
		}
	})
}
