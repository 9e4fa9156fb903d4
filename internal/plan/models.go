package plan

import (
	"time"
)

// WorkoutType classifies a planned treadmill session.
type WorkoutType string

const (
	TypeEasyRun        WorkoutType = "easy_run"
	TypeIntervals      WorkoutType = "intervals"
	TypeTempo          WorkoutType = "tempo"
	TypeLongRun        WorkoutType = "long_run"
	TypeTimeTrial      WorkoutType = "time_trial"
	TypeFartlek        WorkoutType = "fartlek"
	TypeHillTraining   WorkoutType = "hill_training"
	TypeRecoveryRun    WorkoutType = "recovery_run"
	TypeProgressionRun WorkoutType = "progression_run"
	TypeThreshold      WorkoutType = "threshold"
)

// workoutTypes lists every valid WorkoutType for validation and schema
// generation.
//
//nolint:gochecknoglobals // immutable lookup table.
var workoutTypes = []WorkoutType{
	TypeEasyRun, TypeIntervals, TypeTempo, TypeLongRun, TypeTimeTrial,
	TypeFartlek, TypeHillTraining, TypeRecoveryRun, TypeProgressionRun,
	TypeThreshold,
}

// KnownWorkoutType reports whether t is one of the canonical workout types.
func KnownWorkoutType(t WorkoutType) bool {
	for _, known := range workoutTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Intensity classifies a training segment.
type Intensity string

const (
	IntensityWarmUp        Intensity = "warm_up"
	IntensityRecovery      Intensity = "recovery"
	IntensityEasy          Intensity = "easy"
	IntensityTempo         Intensity = "tempo"
	IntensityThreshold     Intensity = "threshold"
	IntensityVO2Max        Intensity = "vo2max"
	IntensityNeuromuscular Intensity = "neuromuscular"
	IntensityCoolDown      Intensity = "cool_down"
)

//nolint:gochecknoglobals // immutable lookup table.
var intensities = []Intensity{
	IntensityWarmUp, IntensityRecovery, IntensityEasy, IntensityTempo,
	IntensityThreshold, IntensityVO2Max, IntensityNeuromuscular,
	IntensityCoolDown,
}

// KnownIntensity reports whether i is one of the canonical intensities.
func KnownIntensity(i Intensity) bool {
	for _, known := range intensities {
		if i == known {
			return true
		}
	}
	return false
}

// Source records which generation strategy produced a plan.
type Source string

const (
	SourceAI       Source = "ai"
	SourceFixture  Source = "fixture"
	SourceFallback Source = "fallback"
)

// Status marks whether a plan is the user's active plan.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Segment is one sub-interval of a planned workout, ordered by its position
// in the workout.
type Segment struct {
	Name                 string    `json:"name"`
	DurationSeconds      int       `json:"duration_seconds"`
	DistanceMeters       *float64  `json:"distance_meters,omitempty"`
	TargetSpeedKmh       float64   `json:"target_speed_kmh"`
	TargetInclinePercent float64   `json:"target_incline_percent"`
	Intensity            Intensity `json:"intensity"`
	RPE                  int       `json:"rpe"`
	Instruction          string    `json:"instruction"`
	RecoveryAfterSeconds *int      `json:"recovery_after_seconds,omitempty"`
}

// Workout is a single planned session inside a plan.
type Workout struct {
	ID                       string      `json:"id"`
	Name                     string      `json:"name"`
	Description              string      `json:"description"`
	Type                     WorkoutType `json:"workout_type"`
	EstimatedDurationMinutes int         `json:"estimated_duration_minutes"`
	EstimatedDistanceMeters  float64     `json:"estimated_distance_meters"`
	Difficulty               int         `json:"difficulty"`
	TargetPaceMinPerKm       *float64    `json:"target_pace_min_per_km,omitempty"`
	WeekNumber               int         `json:"week_number"`
	DayOfWeek                int         `json:"day_of_week"`
	Segments                 []Segment   `json:"segments"`
}

// Plan is a multi-week training program. EndDate is always exactly
// StartDate + 7*TotalWeeks days.
type Plan struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Goal            string    `json:"goal"`
	TotalWeeks      int       `json:"total_weeks"`
	WorkoutsPerWeek int       `json:"workouts_per_week"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	GeneratedByAI   bool      `json:"generated_by_ai"`
	Source          Source    `json:"source"`
	Status          Status    `json:"status"`
	Workouts        []Workout `json:"workouts"`
}

// planEndDate computes the invariant end date for a plan.
func planEndDate(start time.Time, totalWeeks int) time.Time {
	return start.AddDate(0, 0, totalWeeks*daysPerWeek)
}
