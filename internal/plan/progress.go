package plan

import (
	"math"
	"sort"
	"time"
)

// WorkoutCompletion pairs a planned workout with its first completed session.
type WorkoutCompletion struct {
	WorkoutID   string     `json:"workout_id"`
	Name        string     `json:"name"`
	WeekNumber  int        `json:"week_number"`
	DayOfWeek   int        `json:"day_of_week"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// WeekProgress summarises one plan week.
type WeekProgress struct {
	WeekNumber int     `json:"week_number"`
	Total      int     `json:"total"`
	Completed  int     `json:"completed"`
	Percentage float64 `json:"percentage"`
}

// Progress is the completion state of a whole plan at a point in time.
// CurrentWeekProgress is the breakdown of the calendar-current week, zeroed
// when that week has no workouts.
type Progress struct {
	PlanID              string              `json:"plan_id"`
	CurrentWeek         int                 `json:"current_week"`
	TotalWorkouts       int                 `json:"total_workouts"`
	CompletedWorkouts   int                 `json:"completed_workouts"`
	CompletionPercent   float64             `json:"completion_percent"`
	CurrentWeekProgress WeekProgress        `json:"current_week_progress"`
	Weeks               []WeekProgress      `json:"weeks"`
	Workouts            []WorkoutCompletion `json:"workouts"`
}

// completionPercent returns the rounded completion percentage, zero for an
// empty total.
func completionPercent(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(100 * float64(completed) / float64(total))
}

// computeProgress folds the plan's workouts and their completed sessions into
// a progress report. A workout counts as completed at most once, at its first
// completed session.
func computeProgress(p Plan, completions map[string]time.Time, now time.Time) Progress {
	progress := Progress{
		PlanID:        p.ID,
		CurrentWeek:   CurrentWeek(p.StartDate, now),
		TotalWorkouts: len(p.Workouts),
	}

	weekTotals := map[int]*WeekProgress{}
	for _, w := range p.Workouts {
		week, ok := weekTotals[w.WeekNumber]
		if !ok {
			week = &WeekProgress{WeekNumber: w.WeekNumber}
			weekTotals[w.WeekNumber] = week
		}
		week.Total++

		completion := WorkoutCompletion{
			WorkoutID:  w.ID,
			Name:       w.Name,
			WeekNumber: w.WeekNumber,
			DayOfWeek:  w.DayOfWeek,
		}
		if completedAt, done := completions[w.ID]; done {
			completion.Completed = true
			completion.CompletedAt = &completedAt
			week.Completed++
			progress.CompletedWorkouts++
		}
		progress.Workouts = append(progress.Workouts, completion)
	}

	progress.CompletionPercent = completionPercent(progress.CompletedWorkouts, progress.TotalWorkouts)

	sort.Slice(progress.Workouts, func(i, j int) bool {
		a, b := progress.Workouts[i], progress.Workouts[j]
		if a.WeekNumber != b.WeekNumber {
			return a.WeekNumber < b.WeekNumber
		}
		return a.DayOfWeek < b.DayOfWeek
	})

	for _, week := range weekTotals {
		week.Percentage = completionPercent(week.Completed, week.Total)
		progress.Weeks = append(progress.Weeks, *week)
	}
	sort.Slice(progress.Weeks, func(i, j int) bool {
		return progress.Weeks[i].WeekNumber < progress.Weeks[j].WeekNumber
	})

	progress.CurrentWeekProgress = WeekProgress{WeekNumber: progress.CurrentWeek}
	if week, ok := weekTotals[progress.CurrentWeek]; ok {
		progress.CurrentWeekProgress = *week
	}

	return progress
}
