package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/stridr/internal/errors"
	"github.com/myrjola/stridr/internal/profile"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// generationDeadline bounds a single plan generation call. Plans are large
// completions and can take a while, but the client should never wait forever.
const generationDeadline = 10 * time.Minute

// aiGenerator generates training plans with the OpenAI API.
type aiGenerator struct {
	client openai.Client
	logger *slog.Logger
}

func newAIGenerator(apiKey string, logger *slog.Logger) *aiGenerator {
	return &aiGenerator{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		logger: logger,
	}
}

func (g *aiGenerator) generate(ctx context.Context, prof profile.Profile, req Request, workoutsPerWeek int) (Plan, error) {
	ctx, cancel := context.WithTimeout(ctx, generationDeadline)
	defer cancel()

	prompt := planPrompt(prof, req, workoutsPerWeek)

	schemaParam := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "training_plan",
		Description: openai.String("A complete multi-week treadmill training plan"),
		Schema:      planJSONSchema{},
		Strict:      openai.Bool(true),
	}

	chat, err := g.client.Chat.Completions.New(ctx,
		openai.ChatCompletionNewParams{ //nolint:exhaustruct // only need to set a few fields.
			Messages: []openai.ChatCompletionMessageParamUnion{
				openai.SystemMessage("You are an experienced running coach who writes structured treadmill training plans."),
				openai.UserMessage(prompt),
			},
			ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
					JSONSchema: schemaParam,
				},
			},
			Model: openai.ChatModelGPT4o2024_08_06,
		})
	if err != nil {
		return Plan{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(chat.Choices) == 0 {
		return Plan{}, errors.New("chat completion returned no choices")
	}

	var payload aiPlanPayload
	if err = json.Unmarshal([]byte(chat.Choices[0].Message.Content), &payload); err != nil {
		return Plan{}, fmt.Errorf("parse plan response: %w", err)
	}

	p, err := payload.toPlan(req, workoutsPerWeek)
	if err != nil {
		return Plan{}, fmt.Errorf("validate generated plan: %w", err)
	}

	g.logger.LogAttrs(ctx, slog.LevelInfo, "generated training plan",
		slog.Int("weeks", p.TotalWeeks),
		slog.Int("workouts", len(p.Workouts)),
		slog.Int64("completion_tokens", chat.Usage.CompletionTokens))

	return p, nil
}

func planPrompt(prof profile.Profile, req Request, workoutsPerWeek int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a %d-week treadmill training plan with exactly %d workouts per week.\n\n", req.Weeks, workoutsPerWeek)
	fmt.Fprintf(&b, "Runner profile:\n")
	fmt.Fprintf(&b, "- Training level: %s\n", prof.Level)
	fmt.Fprintf(&b, "- Goal: %s\n", req.Goal)
	fmt.Fprintf(&b, "- Days available per week: %d\n", prof.WeeklyAvailability)
	if len(prof.AvailableDays) > 0 {
		fmt.Fprintf(&b, "- Preferred weekdays (Monday=1 ... Sunday=7): %v\n", prof.AvailableDays)
	}
	if prof.MaxSpeedKmh != nil {
		fmt.Fprintf(&b, "- Treadmill top speed: %.1f km/h, never prescribe faster\n", *prof.MaxSpeedKmh)
	}
	if prof.MaxInclinePercent != nil {
		fmt.Fprintf(&b, "- Treadmill max incline: %.1f%%, never prescribe steeper\n", *prof.MaxInclinePercent)
	}
	fmt.Fprintf(&b, "- Heart rate sensor available: %t\n", prof.HasHeartRateSensor)
	fmt.Fprintf(&b, "- Comfortable walking speed: %.1f km/h\n", prof.WalkingSpeedKmh)
	fmt.Fprintf(&b, "- Comfortable running speed: %.1f km/h\n", prof.RunningSpeedKmh)
	fmt.Fprintf(&b, "- Sprint speed: %.1f km/h\n", prof.SprintSpeedKmh)
	fmt.Fprintf(&b, "- Usual session length: %d minutes\n", prof.UsualDurationMinutes)
	if len(prof.Experience) > 0 {
		fmt.Fprintf(&b, "- Training background: %s\n", strings.Join(prof.Experience, ", "))
	}
	if prof.Constraints != "" {
		fmt.Fprintf(&b, "- Constraints and injuries to respect: %s\n", prof.Constraints)
	}
	fmt.Fprintf(&b, `
Guidelines:
- Every workout consists of ordered segments with a warm-up first and a cool-down last.
- Give each segment a concrete treadmill speed in km/h and an incline percentage.
- Progress the load gradually from week to week and place harder sessions apart from each other.
- week_number runs from 1 to %d and day_of_week uses Monday=1 through Sunday=7.

The plan must contain exactly %d workouts in total.`, req.Weeks, req.Weeks*workoutsPerWeek)
	return b.String()
}

// aiPlanPayload mirrors the JSON schema the model is asked to fill in.
type aiPlanPayload struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Workouts    []aiWorkout `json:"workouts"`
}

type aiWorkout struct {
	Name                     string      `json:"name"`
	Description              string      `json:"description"`
	WorkoutType              string      `json:"workout_type"`
	EstimatedDurationMinutes int         `json:"estimated_duration_minutes"`
	Difficulty               int         `json:"difficulty"`
	TargetPaceMinPerKm       float64     `json:"target_pace_min_per_km"`
	WeekNumber               int         `json:"week_number"`
	DayOfWeek                int         `json:"day_of_week"`
	Segments                 []aiSegment `json:"segments"`
}

type aiSegment struct {
	Name                 string  `json:"name"`
	DurationSeconds      int     `json:"duration_seconds"`
	TargetSpeedKmh       float64 `json:"target_speed_kmh"`
	TargetInclinePercent float64 `json:"target_incline_percent"`
	Intensity            string  `json:"intensity"`
	RPE                  int     `json:"rpe"`
	Instruction          string  `json:"instruction"`
	RecoveryAfterSeconds int     `json:"recovery_after_seconds"`
}

// toPlan validates the model output and converts it into a Plan. Any
// violation rejects the whole payload so a malformed plan never reaches
// storage.
func (p aiPlanPayload) toPlan(req Request, workoutsPerWeek int) (Plan, error) {
	if p.Name == "" || len(p.Workouts) == 0 {
		return Plan{}, errors.New("plan is missing a name or workouts")
	}

	out := Plan{
		ID:              uuid.NewString(),
		Name:            p.Name,
		Description:     p.Description,
		Goal:            req.Goal,
		TotalWeeks:      req.Weeks,
		WorkoutsPerWeek: workoutsPerWeek,
		StartDate:       req.StartDate,
		EndDate:         planEndDate(req.StartDate, req.Weeks),
		GeneratedByAI:   true,
		Source:          SourceAI,
		Status:          StatusActive,
	}

	for i, w := range p.Workouts {
		workout, err := w.toWorkout(req.Weeks)
		if err != nil {
			return Plan{}, fmt.Errorf("workout %d: %w", i, err)
		}
		out.Workouts = append(out.Workouts, workout)
	}
	return out, nil
}

func (w aiWorkout) toWorkout(totalWeeks int) (Workout, error) {
	workoutType := WorkoutType(w.WorkoutType)
	if !KnownWorkoutType(workoutType) {
		return Workout{}, fmt.Errorf("unknown workout type %q", w.WorkoutType)
	}
	if w.Name == "" {
		return Workout{}, errors.New("missing name")
	}
	if w.EstimatedDurationMinutes <= 0 {
		return Workout{}, fmt.Errorf("estimated duration must be positive, got %d", w.EstimatedDurationMinutes)
	}
	if w.Difficulty < 1 || w.Difficulty > 10 {
		return Workout{}, fmt.Errorf("difficulty out of range 1..10: %d", w.Difficulty)
	}
	if w.WeekNumber < 1 || w.WeekNumber > totalWeeks {
		return Workout{}, fmt.Errorf("week number out of range 1..%d: %d", totalWeeks, w.WeekNumber)
	}
	if w.DayOfWeek < 1 || w.DayOfWeek > daysPerWeek {
		return Workout{}, fmt.Errorf("day of week out of range 1..7: %d", w.DayOfWeek)
	}
	if len(w.Segments) == 0 {
		return Workout{}, errors.New("missing segments")
	}

	out := Workout{
		ID:                       uuid.NewString(),
		Name:                     w.Name,
		Description:              w.Description,
		Type:                     workoutType,
		EstimatedDurationMinutes: w.EstimatedDurationMinutes,
		Difficulty:               w.Difficulty,
		WeekNumber:               w.WeekNumber,
		DayOfWeek:                w.DayOfWeek,
	}
	if w.TargetPaceMinPerKm > 0 {
		pace := w.TargetPaceMinPerKm
		out.TargetPaceMinPerKm = &pace
	}
	for i, seg := range w.Segments {
		segment, err := seg.toSegment()
		if err != nil {
			return Workout{}, fmt.Errorf("segment %d: %w", i, err)
		}
		out.Segments = append(out.Segments, segment)
	}
	out.EstimatedDistanceMeters = estimatedDistanceMeters(out.Segments)
	return out, nil
}

func (s aiSegment) toSegment() (Segment, error) {
	intensity := Intensity(s.Intensity)
	if !KnownIntensity(intensity) {
		return Segment{}, fmt.Errorf("unknown intensity %q", s.Intensity)
	}
	if s.DurationSeconds <= 0 {
		return Segment{}, fmt.Errorf("duration must be positive, got %d", s.DurationSeconds)
	}
	if s.TargetSpeedKmh < 0 || s.TargetInclinePercent < 0 {
		return Segment{}, errors.New("speed and incline must not be negative")
	}
	if s.RPE < 1 || s.RPE > 10 {
		return Segment{}, fmt.Errorf("rpe out of range 1..10: %d", s.RPE)
	}
	out := Segment{
		Name:                 s.Name,
		DurationSeconds:      s.DurationSeconds,
		TargetSpeedKmh:       s.TargetSpeedKmh,
		TargetInclinePercent: s.TargetInclinePercent,
		Intensity:            intensity,
		RPE:                  s.RPE,
		Instruction:          s.Instruction,
	}
	if s.RecoveryAfterSeconds > 0 {
		recovery := s.RecoveryAfterSeconds
		out.RecoveryAfterSeconds = &recovery
	}
	return out, nil
}

type planJSONSchema struct{}

func (planJSONSchema) MarshalJSON() ([]byte, error) {
	workoutTypesJSON, err := json.Marshal(workoutTypes)
	if err != nil {
		return nil, fmt.Errorf("marshal workout types: %w", err)
	}
	intensitiesJSON, err := json.Marshal(intensities)
	if err != nil {
		return nil, fmt.Errorf("marshal intensities: %w", err)
	}

	return []byte(fmt.Sprintf(`{
	  "type": "object",
	  "required": ["name", "description", "workouts"],
	  "properties": {
		"name": {
		  "type": "string",
		  "description": "Short name for the whole plan"
		},
		"description": {
		  "type": "string",
		  "description": "One paragraph summarising the plan's structure and progression"
		},
		"workouts": {
		  "type": "array",
		  "description": "Every workout of the plan across all weeks",
		  "items": {
			"type": "object",
			"required": [
			  "name", "description", "workout_type", "estimated_duration_minutes",
			  "difficulty", "target_pace_min_per_km", "week_number", "day_of_week", "segments"
			],
			"properties": {
			  "name": {"type": "string"},
			  "description": {"type": "string"},
			  "workout_type": {"type": "string", "enum": %s},
			  "estimated_duration_minutes": {"type": "integer"},
			  "difficulty": {"type": "integer", "description": "1 (easiest) to 10 (hardest)"},
			  "target_pace_min_per_km": {"type": "number", "description": "Target pace in minutes per kilometer, 0 when not applicable"},
			  "week_number": {"type": "integer", "description": "1-based plan week"},
			  "day_of_week": {"type": "integer", "description": "Monday=1 through Sunday=7"},
			  "segments": {
				"type": "array",
				"items": {
				  "type": "object",
				  "required": [
					"name", "duration_seconds", "target_speed_kmh", "target_incline_percent",
					"intensity", "rpe", "instruction", "recovery_after_seconds"
				  ],
				  "properties": {
					"name": {"type": "string"},
					"duration_seconds": {"type": "integer"},
					"target_speed_kmh": {"type": "number"},
					"target_incline_percent": {"type": "number"},
					"intensity": {"type": "string", "enum": %s},
					"rpe": {"type": "integer", "description": "Rating of perceived exertion, 1 to 10"},
					"instruction": {"type": "string"},
					"recovery_after_seconds": {"type": "integer", "description": "Rest after the segment, 0 for none"}
				  },
				  "additionalProperties": false
				}
			  }
			},
			"additionalProperties": false
		  }
		}
	  },
	  "additionalProperties": false
	}`, workoutTypesJSON, intensitiesJSON)), nil
}
