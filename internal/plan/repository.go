package plan

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/stridr/internal/errors"
	"github.com/myrjola/stridr/internal/sqlite"
)

// ErrNotFound is returned when the requested plan or workout does not exist
// or belongs to another user.
var ErrNotFound = errors.NewSentinel("plan not found")

// sqliteRepository handles database operations for training plans.
type sqliteRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func newSQLiteRepository(db *sqlite.Database, logger *slog.Logger) *sqliteRepository {
	return &sqliteRepository{
		db:     db,
		logger: logger,
	}
}

// create stores a whole plan in one transaction. Any previously active plan
// of the user is archived so there is at most one active plan at a time.
func (r *sqliteRepository) create(ctx context.Context, userID int64, p Plan) (err error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			err = errors.Join(err, fmt.Errorf("rollback: %w", rollbackErr))
		}
	}()

	_, err = tx.ExecContext(ctx, `
		UPDATE training_plans SET status = 'archived'
		WHERE user_id = ? AND status = 'active'`, userID)
	if err != nil {
		return fmt.Errorf("archive previous plans: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO training_plans (
			id, user_id, name, description, goal, total_weeks, workouts_per_week,
			start_date, end_date, generated_by_ai, source, status
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, userID, p.Name, p.Description, p.Goal, p.TotalWeeks, p.WorkoutsPerWeek,
		p.StartDate.UTC().Format(time.RFC3339), p.EndDate.UTC().Format(time.RFC3339),
		p.GeneratedByAI, string(p.Source), string(p.Status))
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	for _, w := range p.Workouts {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO planned_workouts (
				id, plan_id, name, description, workout_type, estimated_duration_minutes,
				estimated_distance_meters, difficulty, target_pace_min_per_km,
				week_number, day_of_week
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			w.ID, p.ID, w.Name, w.Description, string(w.Type), w.EstimatedDurationMinutes,
			w.EstimatedDistanceMeters, w.Difficulty, w.TargetPaceMinPerKm,
			w.WeekNumber, w.DayOfWeek)
		if err != nil {
			return fmt.Errorf("insert workout %s: %w", w.Name, err)
		}
		for i, seg := range w.Segments {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO training_segments (
					workout_id, order_index, name, duration_seconds, distance_meters,
					target_speed_kmh, target_incline_percent, intensity, rpe,
					instruction, recovery_after_seconds
				) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				w.ID, i, seg.Name, seg.DurationSeconds, seg.DistanceMeters,
				seg.TargetSpeedKmh, seg.TargetInclinePercent, string(seg.Intensity),
				seg.RPE, seg.Instruction, seg.RecoveryAfterSeconds)
			if err != nil {
				return fmt.Errorf("insert segment %d of workout %s: %w", i, w.Name, err)
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// active loads the user's active plan with all workouts and segments.
func (r *sqliteRepository) active(ctx context.Context, userID int64) (Plan, error) {
	return r.queryPlan(ctx, `
		SELECT id, name, description, goal, total_weeks, workouts_per_week,
		       start_date, end_date, generated_by_ai, source, status
		FROM training_plans
		WHERE user_id = ? AND status = 'active'`, userID)
}

// get loads a specific plan of the user regardless of its status.
func (r *sqliteRepository) get(ctx context.Context, userID int64, planID string) (Plan, error) {
	return r.queryPlan(ctx, `
		SELECT id, name, description, goal, total_weeks, workouts_per_week,
		       start_date, end_date, generated_by_ai, source, status
		FROM training_plans
		WHERE user_id = ? AND id = ?`, userID, planID)
}

func (r *sqliteRepository) queryPlan(ctx context.Context, query string, args ...any) (Plan, error) {
	var (
		p         Plan
		startDate string
		endDate   string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, query, args...).Scan(
		&p.ID, &p.Name, &p.Description, &p.Goal, &p.TotalWeeks, &p.WorkoutsPerWeek,
		&startDate, &endDate, &p.GeneratedByAI, (*string)(&p.Source), (*string)(&p.Status))
	if errors.Is(err, sql.ErrNoRows) {
		return Plan{}, ErrNotFound
	}
	if err != nil {
		return Plan{}, fmt.Errorf("query plan: %w", err)
	}
	if p.StartDate, err = time.Parse(time.RFC3339, startDate); err != nil {
		return Plan{}, fmt.Errorf("parse start date: %w", err)
	}
	if p.EndDate, err = time.Parse(time.RFC3339, endDate); err != nil {
		return Plan{}, fmt.Errorf("parse end date: %w", err)
	}
	if p.Workouts, err = r.workouts(ctx, p.ID); err != nil {
		return Plan{}, err
	}
	return p, nil
}

func (r *sqliteRepository) workouts(ctx context.Context, planID string) ([]Workout, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT id, name, description, workout_type, estimated_duration_minutes,
		       estimated_distance_meters, difficulty, target_pace_min_per_km,
		       week_number, day_of_week
		FROM planned_workouts
		WHERE plan_id = ?
		ORDER BY week_number, day_of_week`, planID)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		var w Workout
		if err = rows.Scan(
			&w.ID, &w.Name, &w.Description, (*string)(&w.Type), &w.EstimatedDurationMinutes,
			&w.EstimatedDistanceMeters, &w.Difficulty, &w.TargetPaceMinPerKm,
			&w.WeekNumber, &w.DayOfWeek); err != nil {
			return nil, fmt.Errorf("scan workout: %w", err)
		}
		if w.Segments, err = r.segments(ctx, w.ID); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate workouts: %w", err)
	}
	return workouts, nil
}

func (r *sqliteRepository) segments(ctx context.Context, workoutID string) ([]Segment, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT name, duration_seconds, distance_meters, target_speed_kmh,
		       target_incline_percent, intensity, rpe, instruction, recovery_after_seconds
		FROM training_segments
		WHERE workout_id = ?
		ORDER BY order_index`, workoutID)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var segments []Segment
	for rows.Next() {
		var seg Segment
		if err = rows.Scan(
			&seg.Name, &seg.DurationSeconds, &seg.DistanceMeters, &seg.TargetSpeedKmh,
			&seg.TargetInclinePercent, (*string)(&seg.Intensity), &seg.RPE,
			&seg.Instruction, &seg.RecoveryAfterSeconds); err != nil {
			return nil, fmt.Errorf("scan segment: %w", err)
		}
		segments = append(segments, seg)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate segments: %w", err)
	}
	return segments, nil
}

// workout loads a single planned workout, verifying that it belongs to a
// plan of the user.
func (r *sqliteRepository) workout(ctx context.Context, userID int64, workoutID string) (Workout, error) {
	var w Workout
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT w.id, w.name, w.description, w.workout_type, w.estimated_duration_minutes,
		       w.estimated_distance_meters, w.difficulty, w.target_pace_min_per_km,
		       w.week_number, w.day_of_week
		FROM planned_workouts w
		JOIN training_plans p ON p.id = w.plan_id
		WHERE w.id = ? AND p.user_id = ?`, workoutID, userID).Scan(
		&w.ID, &w.Name, &w.Description, (*string)(&w.Type), &w.EstimatedDurationMinutes,
		&w.EstimatedDistanceMeters, &w.Difficulty, &w.TargetPaceMinPerKm,
		&w.WeekNumber, &w.DayOfWeek)
	if errors.Is(err, sql.ErrNoRows) {
		return Workout{}, ErrNotFound
	}
	if err != nil {
		return Workout{}, fmt.Errorf("query workout: %w", err)
	}
	if w.Segments, err = r.segments(ctx, w.ID); err != nil {
		return Workout{}, err
	}
	return w, nil
}

// planIDForWorkout resolves which of the user's plans a workout belongs to.
func (r *sqliteRepository) planIDForWorkout(ctx context.Context, userID int64, workoutID string) (string, error) {
	var planID string
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT p.id
		FROM training_plans p
		JOIN planned_workouts w ON w.plan_id = p.id
		WHERE w.id = ? AND p.user_id = ?`, workoutID, userID).Scan(&planID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("query workout plan: %w", err)
	}
	return planID, nil
}

// updateSchedule moves a planned workout to a new week/day position.
func (r *sqliteRepository) updateSchedule(ctx context.Context, userID int64, workoutID string, weekNumber, dayOfWeek int) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		UPDATE planned_workouts
		SET week_number = ?, day_of_week = ?
		WHERE id = ? AND plan_id IN (SELECT id FROM training_plans WHERE user_id = ?)`,
		weekNumber, dayOfWeek, workoutID, userID)
	if err != nil {
		return fmt.Errorf("update workout schedule: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// delete removes a plan and, through cascading foreign keys, its workouts
// and segments.
func (r *sqliteRepository) delete(ctx context.Context, userID int64, planID string) error {
	result, err := r.db.ReadWrite.ExecContext(ctx, `
		DELETE FROM training_plans WHERE id = ? AND user_id = ?`, planID, userID)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// completions returns the first completed session per planned workout of the
// plan.
func (r *sqliteRepository) completions(ctx context.Context, userID int64, planID string) (map[string]time.Time, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT s.planned_workout_id, MIN(s.ended_at)
		FROM workout_sessions s
		JOIN planned_workouts w ON w.id = s.planned_workout_id
		WHERE s.user_id = ? AND s.status = 'completed' AND w.plan_id = ?
		GROUP BY s.planned_workout_id`, userID, planID)
	if err != nil {
		return nil, fmt.Errorf("query completions: %w", err)
	}
	defer rows.Close()

	completions := make(map[string]time.Time)
	for rows.Next() {
		var (
			workoutID string
			endedAt   string
		)
		if err = rows.Scan(&workoutID, &endedAt); err != nil {
			return nil, fmt.Errorf("scan completion: %w", err)
		}
		completedAt, parseErr := time.Parse(time.RFC3339, endedAt)
		if parseErr != nil {
			return nil, fmt.Errorf("parse completion time: %w", parseErr)
		}
		completions[workoutID] = completedAt
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate completions: %w", err)
	}
	return completions, nil
}
