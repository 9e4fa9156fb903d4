package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/myrjola/stridr/internal/sqlite"
)

// ErrNotFound is returned when the user has not completed onboarding yet.
var ErrNotFound = errors.New("profile not found")

// sqliteRepository handles database operations for user profiles.
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

func (r *sqliteRepository) get(ctx context.Context, userID int64) (Profile, error) {
	var (
		prof          Profile
		levelStr      string
		daysJSON      string
		experienceJSON string
	)
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT level, goal, weekly_availability, available_days,
		       max_speed_kmh, max_incline_percent, has_heart_rate_sensor,
		       walking_speed_kmh, running_speed_kmh, sprint_speed_kmh,
		       usual_duration_minutes, experience, constraints
		FROM profiles
		WHERE user_id = ?`, userID).Scan(
		&levelStr,
		&prof.Goal,
		&prof.WeeklyAvailability,
		&daysJSON,
		&prof.MaxSpeedKmh,
		&prof.MaxInclinePercent,
		&prof.HasHeartRateSensor,
		&prof.WalkingSpeedKmh,
		&prof.RunningSpeedKmh,
		&prof.SprintSpeedKmh,
		&prof.UsualDurationMinutes,
		&experienceJSON,
		&prof.Constraints,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}

	prof.Level = Level(levelStr)
	if err = json.Unmarshal([]byte(daysJSON), &prof.AvailableDays); err != nil {
		return Profile{}, fmt.Errorf("parse available days: %w", err)
	}
	if err = json.Unmarshal([]byte(experienceJSON), &prof.Experience); err != nil {
		return Profile{}, fmt.Errorf("parse experience tags: %w", err)
	}

	return prof, nil
}

func (r *sqliteRepository) save(ctx context.Context, userID int64, prof Profile) error {
	days := prof.AvailableDays
	if days == nil {
		days = []int{}
	}
	daysJSON, err := json.Marshal(days)
	if err != nil {
		return fmt.Errorf("marshal available days: %w", err)
	}
	experience := prof.Experience
	if experience == nil {
		experience = []string{}
	}
	experienceJSON, err := json.Marshal(experience)
	if err != nil {
		return fmt.Errorf("marshal experience tags: %w", err)
	}

	_, err = r.db.ReadWrite.ExecContext(ctx, `
		INSERT INTO profiles (
			user_id, level, goal, weekly_availability, available_days,
			max_speed_kmh, max_incline_percent, has_heart_rate_sensor,
			walking_speed_kmh, running_speed_kmh, sprint_speed_kmh,
			usual_duration_minutes, experience, constraints
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			level = excluded.level,
			goal = excluded.goal,
			weekly_availability = excluded.weekly_availability,
			available_days = excluded.available_days,
			max_speed_kmh = excluded.max_speed_kmh,
			max_incline_percent = excluded.max_incline_percent,
			has_heart_rate_sensor = excluded.has_heart_rate_sensor,
			walking_speed_kmh = excluded.walking_speed_kmh,
			running_speed_kmh = excluded.running_speed_kmh,
			sprint_speed_kmh = excluded.sprint_speed_kmh,
			usual_duration_minutes = excluded.usual_duration_minutes,
			experience = excluded.experience,
			constraints = excluded.constraints,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')`,
		userID,
		string(prof.Level),
		prof.Goal,
		prof.WeeklyAvailability,
		string(daysJSON),
		prof.MaxSpeedKmh,
		prof.MaxInclinePercent,
		prof.HasHeartRateSensor,
		prof.WalkingSpeedKmh,
		prof.RunningSpeedKmh,
		prof.SprintSpeedKmh,
		prof.UsualDurationMinutes,
		string(experienceJSON),
		prof.Constraints,
	)
	if err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}
