package profile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/myrjola/stridr/internal/contexthelpers"
	"github.com/myrjola/stridr/internal/sqlite"
)

// Service handles the business logic for onboarding profiles.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
}

// NewService creates a new profile service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
	}
}

// Get retrieves the profile of the current user. Returns ErrNotFound when
// onboarding has not been completed.
func (s *Service) Get(ctx context.Context) (Profile, error) {
	userID := contexthelpers.CurrentUserID(ctx)
	prof, err := s.repo.get(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile: %w", err)
	}
	return prof, nil
}

// GetForUser retrieves the profile of a specific user.
func (s *Service) GetForUser(ctx context.Context, userID int64) (Profile, error) {
	prof, err := s.repo.get(ctx, userID)
	if err != nil {
		return Profile{}, fmt.Errorf("get profile for user %d: %w", userID, err)
	}
	return prof, nil
}

// Save validates and upserts the profile of the current user.
func (s *Service) Save(ctx context.Context, prof Profile) error {
	if err := Validate(prof); err != nil {
		return fmt.Errorf("validate profile: %w", err)
	}
	userID := contexthelpers.CurrentUserID(ctx)
	if err := s.repo.save(ctx, userID, prof); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// Validate checks the onboarding answers before they are persisted.
func Validate(prof Profile) error {
	switch prof.Level {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
	default:
		return fmt.Errorf("unknown level %q", prof.Level)
	}
	if prof.WeeklyAvailability < 0 {
		return fmt.Errorf("weekly availability must not be negative, got %d", prof.WeeklyAvailability)
	}
	for _, day := range prof.AvailableDays {
		if day < 1 || day > 7 {
			return fmt.Errorf("available day out of range 1..7: %d", day)
		}
	}
	if prof.WalkingSpeedKmh < 0 || prof.RunningSpeedKmh < 0 || prof.SprintSpeedKmh < 0 {
		return fmt.Errorf("preferred speeds must not be negative")
	}
	if prof.UsualDurationMinutes <= 0 {
		return fmt.Errorf("usual session duration must be positive, got %d", prof.UsualDurationMinutes)
	}
	return nil
}
