package plan

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/stridr/internal/profile"
)

// Request describes the plan the user asked for. WorkoutsPerWeek falls back
// to the profile's weekly availability when zero.
type Request struct {
	Goal            string    `json:"goal"`
	Weeks           int       `json:"weeks"`
	WorkoutsPerWeek int       `json:"workouts_per_week"`
	StartDate       time.Time `json:"start_date"`
}

// generator produces a plan for a profile. The workoutsPerWeek argument has
// already been capped by the safety policy.
type generator interface {
	generate(ctx context.Context, prof profile.Profile, req Request, workoutsPerWeek int) (Plan, error)
}

const (
	warmUpMinutes   = 5
	coolDownMinutes = 5
	minMainMinutes  = 5
)

// fallbackGenerator synthesizes a deterministic plan from the profile's
// preferred speeds. It is used when no AI backend is configured or the AI
// call fails.
type fallbackGenerator struct{}

//nolint:gochecknoglobals // fixed rotation shared by every fallback plan.
var fallbackRotation = []WorkoutType{TypeEasyRun, TypeIntervals, TypeTempo}

func (fallbackGenerator) generate(_ context.Context, prof profile.Profile, req Request, workoutsPerWeek int) (Plan, error) {
	days := trainingDays(prof.AvailableDays, workoutsPerWeek)

	p := Plan{
		ID:              uuid.NewString(),
		Name:            fmt.Sprintf("%d-week training plan", req.Weeks),
		Description:     fmt.Sprintf("A steady %d-week treadmill progression towards %s.", req.Weeks, req.Goal),
		Goal:            req.Goal,
		TotalWeeks:      req.Weeks,
		WorkoutsPerWeek: workoutsPerWeek,
		StartDate:       req.StartDate,
		EndDate:         planEndDate(req.StartDate, req.Weeks),
		GeneratedByAI:   false,
		Source:          SourceFallback,
		Status:          StatusActive,
	}

	rotation := 0
	for week := 1; week <= req.Weeks; week++ {
		for _, day := range days {
			workoutType := fallbackRotation[rotation%len(fallbackRotation)]
			rotation++
			p.Workouts = append(p.Workouts, fallbackWorkout(prof, workoutType, week, day))
		}
	}
	return p, nil
}

// trainingDays picks which weekdays to train on. The user's available days
// win when there are enough of them, otherwise the remaining slots are spread
// over the rest of the week.
func trainingDays(available []int, count int) []int {
	seen := make(map[int]bool, daysPerWeek)
	var days []int
	for _, day := range available {
		if day >= 1 && day <= daysPerWeek && !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	for _, day := range []int{1, 3, 5, 2, 4, 6, 7} {
		if len(days) >= count {
			break
		}
		if !seen[day] {
			seen[day] = true
			days = append(days, day)
		}
	}
	sort.Ints(days)
	if len(days) > count {
		days = days[:count]
	}
	return days
}

func fallbackWorkout(prof profile.Profile, workoutType WorkoutType, week, day int) Workout {
	mainMinutes := prof.UsualDurationMinutes - warmUpMinutes - coolDownMinutes
	if mainMinutes < minMainMinutes {
		mainMinutes = minMainMinutes
	}

	var (
		name        string
		description string
		intensity   Intensity
		speed       float64
		rpe         int
		difficulty  int
	)
	switch workoutType {
	case TypeIntervals:
		name = "Interval Session"
		description = "Alternate hard efforts with easy recovery to build speed."
		intensity = IntensityVO2Max
		speed = prof.SprintSpeedKmh
		rpe = 8
		difficulty = 7
	case TypeTempo:
		name = "Tempo Run"
		description = "Hold a comfortably hard pace to raise your lactate threshold."
		intensity = IntensityTempo
		speed = (prof.RunningSpeedKmh + prof.SprintSpeedKmh) / 2
		rpe = 6
		difficulty = 5
	default:
		name = "Easy Run"
		description = "A relaxed run at conversational pace to build your aerobic base."
		intensity = IntensityEasy
		speed = prof.RunningSpeedKmh
		rpe = 4
		difficulty = 3
	}

	segments := []Segment{
		{
			Name:            "Warm-up",
			DurationSeconds: warmUpMinutes * 60,
			TargetSpeedKmh:  prof.WalkingSpeedKmh,
			Intensity:       IntensityWarmUp,
			RPE:             2,
			Instruction:     "Walk briskly and let your heart rate come up gradually.",
		},
		{
			Name:            name,
			DurationSeconds: mainMinutes * 60,
			TargetSpeedKmh:  speed,
			Intensity:       intensity,
			RPE:             rpe,
			Instruction:     description,
		},
		{
			Name:            "Cool-down",
			DurationSeconds: coolDownMinutes * 60,
			TargetSpeedKmh:  prof.WalkingSpeedKmh,
			Intensity:       IntensityCoolDown,
			RPE:             2,
			Instruction:     "Walk it out until your breathing settles.",
		},
	}

	w := Workout{
		ID:                       uuid.NewString(),
		Name:                     name,
		Description:              description,
		Type:                     workoutType,
		EstimatedDurationMinutes: warmUpMinutes + mainMinutes + coolDownMinutes,
		EstimatedDistanceMeters:  estimatedDistanceMeters(segments),
		Difficulty:               difficulty,
		WeekNumber:               week,
		DayOfWeek:                day,
		Segments:                 segments,
	}
	if speed > 0 {
		pace := 60 / speed
		w.TargetPaceMinPerKm = &pace
	}
	return w
}

func estimatedDistanceMeters(segments []Segment) float64 {
	var meters float64
	for _, seg := range segments {
		meters += seg.TargetSpeedKmh * float64(seg.DurationSeconds) / 3600 * 1000
	}
	return meters
}
