package session

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/stridr/internal/contexthelpers"
	"github.com/myrjola/stridr/internal/errors"
	"github.com/myrjola/stridr/internal/ptr"
	"github.com/myrjola/stridr/internal/sqlite"
)

var (
	// ErrActiveSession is returned when starting a session while another one
	// is still running.
	ErrActiveSession = errors.NewSentinel("another session is already active")
	// ErrSessionFinished is returned when appending events to a completed
	// session.
	ErrSessionFinished = errors.NewSentinel("session already finished")
	// ErrInvalidEvent marks events that fail validation.
	ErrInvalidEvent = errors.NewSentinel("invalid session event")
)

// Service handles the business logic for workout sessions.
type Service struct {
	repo   *sqliteRepository
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new session service.
func NewService(db *sqlite.Database, logger *slog.Logger) *Service {
	return &Service{
		repo:   newSQLiteRepository(db, logger),
		logger: logger,
		now:    time.Now,
	}
}

// StartRequest describes the session to start. PlannedWorkoutID is nil for a
// free run.
type StartRequest struct {
	PlannedWorkoutID *string `json:"planned_workout_id,omitempty"`
	WorkoutName      string  `json:"workout_name"`
}

// Start begins a new session for the current user. Only one session can run
// at a time.
func (s *Service) Start(ctx context.Context, req StartRequest) (Session, error) {
	userID := contexthelpers.CurrentUserID(ctx)

	active, err := s.repo.hasActive(ctx, userID)
	if err != nil {
		return Session{}, fmt.Errorf("check active sessions: %w", err)
	}
	if active {
		return Session{}, ErrActiveSession
	}

	name := req.WorkoutName
	if name == "" {
		name = "Free Run"
	}
	sess := Session{
		ID:               uuid.NewString(),
		PlannedWorkoutID: req.PlannedWorkoutID,
		WorkoutName:      name,
		StartedAt:        s.now().UTC(),
		Status:           StatusActive,
	}
	if err = s.repo.create(ctx, userID, sess); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "started workout session",
		slog.String("session_id", sess.ID),
		slog.String("workout", sess.WorkoutName))
	return sess, nil
}

// Get returns one of the current user's sessions.
func (s *Service) Get(ctx context.Context, sessionID string) (Session, error) {
	sess, err := s.repo.get(ctx, contexthelpers.CurrentUserID(ctx), sessionID)
	if err != nil {
		return Session{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	return sess, nil
}

// AppendEvent adds an event to an active session's log. The log gets exactly
// one start event, finish arrives through Finish, and elapsed time must not
// decrease.
func (s *Service) AppendEvent(ctx context.Context, sessionID string, e Event) error {
	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if sess.Status != StatusActive {
		return ErrSessionFinished
	}

	if !KnownEventType(e.Type) {
		return fmt.Errorf("%w: unknown event type %q", ErrInvalidEvent, e.Type)
	}
	if e.Type == EventFinish {
		return fmt.Errorf("%w: finish the session through its finish operation", ErrInvalidEvent)
	}
	if e.ElapsedSeconds < 0 {
		return fmt.Errorf("%w: elapsed must not be negative, got %v", ErrInvalidEvent, e.ElapsedSeconds)
	}

	events, err := s.repo.events(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}
	if e.Type == EventStart && len(events) > 0 {
		return fmt.Errorf("%w: session already has a start event", ErrInvalidEvent)
	}
	if e.Type != EventStart && len(events) == 0 {
		return fmt.Errorf("%w: first event must be start, got %q", ErrInvalidEvent, e.Type)
	}

	if err = s.repo.appendEvent(ctx, sessionID, e); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidEvent, err)
	}
	return nil
}

// Summary is the result of finishing a session: the final row, the derived
// splits and the full analytics.
type Summary struct {
	Session   Session   `json:"session"`
	Splits    []Split   `json:"splits"`
	Analytics Analytics `json:"analytics"`
}

// Finish completes an active session. It seals the event log with a finish
// event, derives segment and kilometer splits, and stores everything in one
// transaction. Finishing is terminal, a second call fails.
func (s *Service) Finish(ctx context.Context, sessionID string) (Summary, error) {
	userID := contexthelpers.CurrentUserID(ctx)

	sess, err := s.Get(ctx, sessionID)
	if err != nil {
		return Summary{}, err
	}
	if sess.Status != StatusActive {
		return Summary{}, ErrSessionFinished
	}

	events, err := s.repo.events(ctx, sessionID)
	if err != nil {
		return Summary{}, fmt.Errorf("load events: %w", err)
	}

	finish := Event{Type: EventFinish, ElapsedSeconds: 0, DistanceMeters: ptr.Ref(0.0)}
	if len(events) > 0 {
		last := events[len(events)-1]
		finish.ElapsedSeconds = last.ElapsedSeconds
		samples := distanceSamples(events)
		finish.DistanceMeters = ptr.Ref(samples[len(samples)-1].distance)
	}
	if err = s.repo.appendEvent(ctx, sessionID, finish); err != nil {
		return Summary{}, fmt.Errorf("append finish event: %w", err)
	}
	events = append(events, finish)

	analytics := Analyze(events)
	splits := SegmentSplits(events)
	splits = append(splits, KilometerSplits(events)...)

	endedAt := s.now().UTC()
	sess.EndedAt = &endedAt
	sess.Status = StatusCompleted
	sess.TotalDurationSeconds = analytics.TotalDurationSeconds
	sess.TotalDistanceMeters = analytics.TotalDistanceMeters

	if err = s.repo.finish(ctx, userID, sess, splits); err != nil {
		return Summary{}, fmt.Errorf("finish session: %w", err)
	}

	s.logger.LogAttrs(ctx, slog.LevelInfo, "finished workout session",
		slog.String("session_id", sess.ID),
		slog.Float64("duration_seconds", sess.TotalDurationSeconds),
		slog.Float64("distance_meters", sess.TotalDistanceMeters))

	return Summary{Session: sess, Splits: splits, Analytics: analytics}, nil
}

// Splits returns the stored splits of a session. Sessions that have not
// finished yet, or covered too little distance, have none.
func (s *Service) Splits(ctx context.Context, sessionID string) ([]Split, error) {
	splits, err := s.repo.splits(ctx, contexthelpers.CurrentUserID(ctx), sessionID)
	if err != nil {
		return nil, fmt.Errorf("load splits: %w", err)
	}
	return splits, nil
}

// SessionAnalytics recomputes a session's analytics from its event log.
func (s *Service) SessionAnalytics(ctx context.Context, sessionID string) (Analytics, error) {
	if _, err := s.Get(ctx, sessionID); err != nil {
		return Analytics{}, err
	}
	events, err := s.repo.events(ctx, sessionID)
	if err != nil {
		return Analytics{}, fmt.Errorf("load events: %w", err)
	}
	return Analyze(events), nil
}

// CompareToPrevious measures a completed session against the user's most
// recent earlier session, preferring one of the same workout. It returns nil
// when there is nothing to compare against.
func (s *Service) CompareToPrevious(ctx context.Context, sessionID string) (*Comparison, error) {
	userID := contexthelpers.CurrentUserID(ctx)

	current, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	previous, sameWorkout, err := s.repo.previousCompleted(ctx, userID, current)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load previous session: %w", err)
	}

	comparison := Compare(current, previous, sameWorkout)
	return &comparison, nil
}
