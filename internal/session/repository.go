package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/stridr/internal/errors"
	"github.com/myrjola/stridr/internal/sqlite"
)

// ErrNotFound is returned when the requested session does not exist or
// belongs to another user.
var ErrNotFound = errors.NewSentinel("session not found")

// sqliteRepository handles database operations for workout sessions.
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

func (r *sqliteRepository) create(ctx context.Context, userID int64, s Session) error {
	_, err := r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO workout_sessions (
			id, user_id, planned_workout_id, workout_name, started_at, status
		) VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, userID, s.PlannedWorkoutID, s.WorkoutName,
		s.StartedAt.UTC().Format(time.RFC3339), string(s.Status))
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (r *sqliteRepository) get(ctx context.Context, userID int64, sessionID string) (Session, error) {
	var (
		s         Session
		startedAt string
		endedAt   sql.NullString
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT id, planned_workout_id, workout_name, started_at, ended_at,
		       status, total_duration_seconds, total_distance_meters
		FROM workout_sessions
		WHERE id = ? AND user_id = ?`, sessionID, userID).Scan(
		&s.ID, &s.PlannedWorkoutID, &s.WorkoutName, &startedAt, &endedAt,
		(*string)(&s.Status), &s.TotalDurationSeconds, &s.TotalDistanceMeters)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}
	if s.StartedAt, err = time.Parse(time.RFC3339, startedAt); err != nil {
		return Session{}, fmt.Errorf("parse started at: %w", err)
	}
	if endedAt.Valid {
		ended, parseErr := time.Parse(time.RFC3339, endedAt.String)
		if parseErr != nil {
			return Session{}, fmt.Errorf("parse ended at: %w", parseErr)
		}
		s.EndedAt = &ended
	}
	return s, nil
}

// hasActive reports whether the user already has a running session.
func (r *sqliteRepository) hasActive(ctx context.Context, userID int64) (bool, error) {
	var count int
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM workout_sessions
		WHERE user_id = ? AND status = 'active'`, userID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count active sessions: %w", err)
	}
	return count > 0, nil
}

// appendEvent adds an event to the session log with the next sequence
// number. The elapsed time must not decrease, checked against the latest
// event inside the same transaction.
func (r *sqliteRepository) appendEvent(ctx context.Context, sessionID string, e Event) (appendedErr error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			appendedErr = errors.Join(appendedErr, fmt.Errorf("rollback: %w", rollbackErr))
		}
	}()

	var (
		lastSeq     sql.NullInt64
		lastElapsed sql.NullFloat64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT seq, elapsed_seconds FROM workout_events
		WHERE session_id = ?
		ORDER BY seq DESC LIMIT 1`, sessionID).Scan(&lastSeq, &lastElapsed)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("query latest event: %w", err)
	}

	seq := 0
	if lastSeq.Valid {
		seq = int(lastSeq.Int64) + 1
		if e.ElapsedSeconds < lastElapsed.Float64 {
			return fmt.Errorf("elapsed %v decreases from %v", e.ElapsedSeconds, lastElapsed.Float64)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO workout_events (
			session_id, seq, event_type, elapsed_seconds, distance_meters,
			speed_kmh, previous_speed_kmh, segment_index, segment_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID, seq, string(e.Type), e.ElapsedSeconds, e.DistanceMeters,
		e.SpeedKmh, e.PreviousSpeedKmh, e.SegmentIndex, e.SegmentName)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *sqliteRepository) events(ctx context.Context, sessionID string) ([]Event, error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT seq, event_type, elapsed_seconds, distance_meters,
		       speed_kmh, previous_speed_kmh, segment_index, segment_name
		FROM workout_events
		WHERE session_id = ?
		ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err = rows.Scan(
			&e.Seq, (*string)(&e.Type), &e.ElapsedSeconds, &e.DistanceMeters,
			&e.SpeedKmh, &e.PreviousSpeedKmh, &e.SegmentIndex, &e.SegmentName); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

// finish completes a session and stores its derived splits in one
// transaction.
func (r *sqliteRepository) finish(ctx context.Context, userID int64, s Session, splits []Split) (finishErr error) {
	tx, err := r.db.ReadWrite.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			finishErr = errors.Join(finishErr, fmt.Errorf("rollback: %w", rollbackErr))
		}
	}()

	var endedAt any
	if s.EndedAt != nil {
		endedAt = s.EndedAt.UTC().Format(time.RFC3339)
	}
	result, err := tx.ExecContext(ctx, `
		UPDATE workout_sessions
		SET ended_at = ?, status = ?, total_duration_seconds = ?, total_distance_meters = ?
		WHERE id = ? AND user_id = ? AND status = 'active'`,
		endedAt, string(s.Status), s.TotalDurationSeconds, s.TotalDistanceMeters,
		s.ID, userID)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	for _, split := range splits {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workout_splits (
				session_id, split_type, split_index, name, start_seconds, end_seconds,
				start_meters, end_meters, duration_seconds, distance_meters,
				average_speed_kmh, average_pace_min_per_km, speed_change_count,
				min_speed_kmh, max_speed_kmh
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, string(split.Type), split.Index, split.Name, split.StartSeconds,
			split.EndSeconds, split.StartMeters, split.EndMeters, split.DurationSeconds,
			split.DistanceMeters, split.AverageSpeedKmh, split.AveragePaceMinPerKm,
			split.SpeedChangeCount, split.MinSpeedKmh, split.MaxSpeedKmh)
		if err != nil {
			return fmt.Errorf("insert split %s %d: %w", split.Type, split.Index, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *sqliteRepository) splits(ctx context.Context, userID int64, sessionID string) ([]Split, error) {
	// Scope the query to the user's own sessions.
	if _, err := r.get(ctx, userID, sessionID); err != nil {
		return nil, err
	}

	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT split_type, split_index, name, start_seconds, end_seconds,
		       start_meters, end_meters, duration_seconds, distance_meters,
		       average_speed_kmh, average_pace_min_per_km, speed_change_count,
		       min_speed_kmh, max_speed_kmh
		FROM workout_splits
		WHERE session_id = ?
		ORDER BY split_type, split_index`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query splits: %w", err)
	}
	defer rows.Close()

	var splits []Split
	for rows.Next() {
		var s Split
		if err = rows.Scan(
			(*string)(&s.Type), &s.Index, &s.Name, &s.StartSeconds, &s.EndSeconds,
			&s.StartMeters, &s.EndMeters, &s.DurationSeconds, &s.DistanceMeters,
			&s.AverageSpeedKmh, &s.AveragePaceMinPerKm, &s.SpeedChangeCount,
			&s.MinSpeedKmh, &s.MaxSpeedKmh); err != nil {
			return nil, fmt.Errorf("scan split: %w", err)
		}
		splits = append(splits, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate splits: %w", err)
	}
	return splits, nil
}

// previousCompleted finds the most recent completed session before the given
// one, preferring sessions of the same workout. The boolean reports whether
// the match is the same workout.
func (r *sqliteRepository) previousCompleted(ctx context.Context, userID int64, current Session) (Session, bool, error) {
	previous, err := r.queryPrevious(ctx, userID, `
		SELECT id FROM workout_sessions
		WHERE user_id = ? AND status = 'completed' AND id != ? AND workout_name = ?
		ORDER BY started_at DESC LIMIT 1`, userID, current.ID, current.WorkoutName)
	if err == nil {
		return previous, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Session{}, false, err
	}

	previous, err = r.queryPrevious(ctx, userID, `
		SELECT id FROM workout_sessions
		WHERE user_id = ? AND status = 'completed' AND id != ?
		ORDER BY started_at DESC LIMIT 1`, userID, current.ID)
	if err != nil {
		return Session{}, false, err
	}
	return previous, false, nil
}

func (r *sqliteRepository) queryPrevious(ctx context.Context, userID int64, query string, args ...any) (Session, error) {
	var sessionID string
	err := r.db.ReadOnly.QueryRowContext(ctx, query, args...).Scan(&sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("query previous session: %w", err)
	}
	return r.get(ctx, userID, sessionID)
}
