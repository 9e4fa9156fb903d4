package plan

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/stridr/internal/contexthelpers"
	"github.com/myrjola/stridr/internal/errors"
	"github.com/myrjola/stridr/internal/profile"
	"github.com/myrjola/stridr/internal/sqlite"
	"github.com/yuin/goldmark"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidRequest marks plan requests that fail validation.
var ErrInvalidRequest = errors.NewSentinel("invalid plan request")

// Options selects the plan generation strategy.
type Options struct {
	// OpenAIAPIKey enables AI generation when set.
	OpenAIAPIKey string
	// Source forces a strategy: "auto", "fixture" or "fallback". Auto uses
	// the AI when a key is configured and falls back otherwise.
	Source string
}

// Service handles the business logic for training plans.
type Service struct {
	repo     *sqliteRepository
	profiles *profile.Service
	primary  generator
	fallback generator
	markdown goldmark.Markdown
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a new plan service.
func NewService(db *sqlite.Database, profiles *profile.Service, opts Options, logger *slog.Logger) *Service {
	s := &Service{
		repo:     newSQLiteRepository(db, logger),
		profiles: profiles,
		fallback: fallbackGenerator{},
		markdown: goldmark.New(),
		logger:   logger,
		now:      time.Now,
	}
	switch {
	case opts.Source == "fixture":
		s.primary = fixtureGenerator{}
	case opts.Source == "fallback":
		s.primary = fallbackGenerator{}
	case opts.OpenAIAPIKey != "":
		s.primary = newAIGenerator(opts.OpenAIAPIKey, logger)
	default:
		s.primary = fallbackGenerator{}
	}
	return s
}

// GenerationResult is a freshly generated plan together with any safety
// adjustment applied to the requested workout count.
type GenerationResult struct {
	Plan                  Plan   `json:"plan"`
	AdjustmentExplanation string `json:"adjustment_explanation,omitempty"`
}

// Generate builds a new plan for the current user and makes it their active
// plan. The weekly workout count is capped by the safety policy, and a failed
// AI generation falls back to the deterministic generator instead of failing
// the request.
func (s *Service) Generate(ctx context.Context, req Request) (GenerationResult, error) {
	userID := contexthelpers.CurrentUserID(ctx)

	prof, err := s.profiles.GetForUser(ctx, userID)
	if err != nil {
		return GenerationResult{}, fmt.Errorf("load profile: %w", err)
	}

	if req.Goal == "" {
		req.Goal = prof.Goal
	}
	if req.StartDate.IsZero() {
		req.StartDate = truncateToDate(s.now().UTC())
	}
	requested := req.WorkoutsPerWeek
	if requested == 0 {
		requested = prof.WeeklyAvailability
	}
	if req.Weeks < 1 {
		return GenerationResult{}, fmt.Errorf("%w: weeks must be at least 1, got %d", ErrInvalidRequest, req.Weeks)
	}
	if requested < 1 {
		return GenerationResult{}, fmt.Errorf("%w: workouts per week must be at least 1, got %d", ErrInvalidRequest, requested)
	}

	workoutsPerWeek, explanation := CapWorkouts(prof.Level, requested, req.Goal, prof.Experience)

	p, err := s.primary.generate(ctx, prof, req, workoutsPerWeek)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "plan generation failed, using fallback",
			errors.SlogError(err))
		if p, err = s.fallback.generate(ctx, prof, req, workoutsPerWeek); err != nil {
			return GenerationResult{}, fmt.Errorf("fallback generation: %w", err)
		}
	}

	if err = s.repo.create(ctx, userID, p); err != nil {
		return GenerationResult{}, fmt.Errorf("store plan: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "created training plan",
		slog.String("plan_id", p.ID),
		slog.String("source", string(p.Source)),
		slog.Int("workouts", len(p.Workouts)))

	return GenerationResult{Plan: p, AdjustmentExplanation: explanation}, nil
}

// Active returns the current user's active plan.
func (s *Service) Active(ctx context.Context) (Plan, error) {
	p, err := s.repo.active(ctx, contexthelpers.CurrentUserID(ctx))
	if err != nil {
		return Plan{}, fmt.Errorf("load active plan: %w", err)
	}
	return p, nil
}

// Get returns one of the current user's plans by ID.
func (s *Service) Get(ctx context.Context, planID string) (Plan, error) {
	p, err := s.repo.get(ctx, contexthelpers.CurrentUserID(ctx), planID)
	if err != nil {
		return Plan{}, fmt.Errorf("load plan %s: %w", planID, err)
	}
	return p, nil
}

// Delete removes a plan and everything attached to it.
func (s *Service) Delete(ctx context.Context, planID string) error {
	if err := s.repo.delete(ctx, contexthelpers.CurrentUserID(ctx), planID); err != nil {
		return fmt.Errorf("delete plan %s: %w", planID, err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "deleted training plan", slog.String("plan_id", planID))
	return nil
}

// PlanSchedule lays a plan's workouts out on the calendar.
func (s *Service) PlanSchedule(ctx context.Context, planID string) ([]WeekSchedule, error) {
	p, err := s.Get(ctx, planID)
	if err != nil {
		return nil, err
	}
	return Schedule(p, s.now()), nil
}

// RescheduleWorkout moves a planned workout to a new calendar date and
// persists the recomputed week/day position. The date must fall inside the
// plan's calendar span.
func (s *Service) RescheduleWorkout(ctx context.Context, workoutID string, newDate time.Time) (ScheduledWorkout, error) {
	userID := contexthelpers.CurrentUserID(ctx)

	planID, err := s.repo.planIDForWorkout(ctx, userID, workoutID)
	if err != nil {
		return ScheduledWorkout{}, fmt.Errorf("resolve plan for workout %s: %w", workoutID, err)
	}
	p, err := s.repo.get(ctx, userID, planID)
	if err != nil {
		return ScheduledWorkout{}, fmt.Errorf("load plan: %w", err)
	}

	var w Workout
	for _, candidate := range p.Workouts {
		if candidate.ID == workoutID {
			w = candidate
			break
		}
	}

	moved, err := Reschedule(p, w, newDate)
	if err != nil {
		return ScheduledWorkout{}, fmt.Errorf("%w: %s", ErrInvalidRequest, err)
	}
	if err = s.repo.updateSchedule(ctx, userID, workoutID, moved.WeekNumber, moved.DayOfWeek); err != nil {
		return ScheduledWorkout{}, fmt.Errorf("store workout schedule: %w", err)
	}

	date := DateFor(p.StartDate, moved.WeekNumber, moved.DayOfWeek)
	s.logger.LogAttrs(ctx, slog.LevelInfo, "rescheduled workout",
		slog.String("workout_id", workoutID),
		slog.String("date", date.Format(time.DateOnly)))

	return ScheduledWorkout{Workout: moved, Date: date, IsToday: sameDate(date, s.now())}, nil
}

// Progress reports how far along the plan the user is. The plan and its
// completed sessions load concurrently.
func (s *Service) Progress(ctx context.Context, planID string) (Progress, error) {
	userID := contexthelpers.CurrentUserID(ctx)

	var (
		p           Plan
		completions map[string]time.Time
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		if p, err = s.repo.get(groupCtx, userID, planID); err != nil {
			return fmt.Errorf("load plan: %w", err)
		}
		return nil
	})
	group.Go(func() error {
		var err error
		if completions, err = s.repo.completions(groupCtx, userID, planID); err != nil {
			return fmt.Errorf("load completions: %w", err)
		}
		return nil
	})
	if err := group.Wait(); err != nil {
		return Progress{}, fmt.Errorf("plan progress: %w", err)
	}

	return computeProgress(p, completions, s.now()), nil
}

// WorkoutDescription is a planned workout with its markdown description
// rendered to HTML for display.
type WorkoutDescription struct {
	Workout         Workout `json:"workout"`
	DescriptionHTML string  `json:"description_html"`
}

// DescribeWorkout loads a planned workout and renders its description.
func (s *Service) DescribeWorkout(ctx context.Context, workoutID string) (WorkoutDescription, error) {
	w, err := s.repo.workout(ctx, contexthelpers.CurrentUserID(ctx), workoutID)
	if err != nil {
		return WorkoutDescription{}, fmt.Errorf("load workout %s: %w", workoutID, err)
	}

	var buf bytes.Buffer
	if err = s.markdown.Convert([]byte(w.Description), &buf); err != nil {
		return WorkoutDescription{}, fmt.Errorf("render description: %w", err)
	}
	return WorkoutDescription{Workout: w, DescriptionHTML: buf.String()}, nil
}
