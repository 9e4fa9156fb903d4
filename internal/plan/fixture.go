package plan

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/myrjola/stridr/internal/profile"
)

//go:embed fixture.json
var fixturePlanJSON []byte

// legacyWorkoutTypes maps older fixture vocabulary to the canonical workout
// types so existing fixtures keep loading after renames.
//
//nolint:gochecknoglobals // immutable lookup table.
var legacyWorkoutTypes = map[string]WorkoutType{
	"easy":              TypeEasyRun,
	"interval":          TypeIntervals,
	"interval_training": TypeIntervals,
	"tempo_run":         TypeTempo,
	"recovery":          TypeRecoveryRun,
	"hills":             TypeHillTraining,
}

// fixtureGenerator loads a canned plan from an embedded file. It is meant
// for development and end-to-end tests where deterministic content matters
// more than personalization, so it keeps the fixture's own week count and
// only takes the goal and start date from the request.
type fixtureGenerator struct{}

func (fixtureGenerator) generate(_ context.Context, _ profile.Profile, req Request, _ int) (Plan, error) {
	var payload aiPlanPayload
	if err := json.Unmarshal(fixturePlanJSON, &payload); err != nil {
		return Plan{}, fmt.Errorf("parse plan fixture: %w", err)
	}

	totalWeeks := 0
	perWeek := map[int]int{}
	for i := range payload.Workouts {
		payload.Workouts[i].WorkoutType = canonicalWorkoutType(payload.Workouts[i].WorkoutType)
		week := payload.Workouts[i].WeekNumber
		perWeek[week]++
		if week > totalWeeks {
			totalWeeks = week
		}
	}
	workoutsPerWeek := 0
	for _, count := range perWeek {
		if count > workoutsPerWeek {
			workoutsPerWeek = count
		}
	}

	fixtureReq := req
	fixtureReq.Weeks = totalWeeks
	p, err := payload.toPlan(fixtureReq, workoutsPerWeek)
	if err != nil {
		return Plan{}, fmt.Errorf("convert plan fixture: %w", err)
	}
	p.ID = uuid.NewString()
	p.GeneratedByAI = false
	p.Source = SourceFixture
	return p, nil
}

func canonicalWorkoutType(raw string) string {
	if mapped, ok := legacyWorkoutTypes[raw]; ok {
		return string(mapped)
	}
	return raw
}
