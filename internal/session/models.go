package session

import (
	"time"
)

// EventType classifies an entry in a session's append-only event log.
type EventType string

const (
	EventStart        EventType = "start"
	EventPause        EventType = "pause"
	EventResume       EventType = "resume"
	EventSpeedChange  EventType = "speed_change"
	EventSegmentStart EventType = "segment_start"
	EventSegmentEnd   EventType = "segment_end"
	EventTick         EventType = "tick"
	EventFinish       EventType = "finish"
)

// KnownEventType reports whether t is one of the canonical event types.
func KnownEventType(t EventType) bool {
	switch t {
	case EventStart, EventPause, EventResume, EventSpeedChange,
		EventSegmentStart, EventSegmentEnd, EventTick, EventFinish:
		return true
	default:
		return false
	}
}

// Event is one entry in the session log. ElapsedSeconds is measured from the
// session start and never decreases within a session.
type Event struct {
	Seq              int       `json:"seq"`
	Type             EventType `json:"event_type"`
	ElapsedSeconds   float64   `json:"elapsed_seconds"`
	DistanceMeters   *float64  `json:"distance_meters,omitempty"`
	SpeedKmh         *float64  `json:"speed_kmh,omitempty"`
	PreviousSpeedKmh *float64  `json:"previous_speed_kmh,omitempty"`
	SegmentIndex     *int      `json:"segment_index,omitempty"`
	SegmentName      *string   `json:"segment_name,omitempty"`
}

// Status marks whether a session is still running.
type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
)

// Session is one tracked treadmill workout. PlannedWorkoutID is nil for free
// runs started outside a plan.
type Session struct {
	ID                   string     `json:"id"`
	PlannedWorkoutID     *string    `json:"planned_workout_id,omitempty"`
	WorkoutName          string     `json:"workout_name"`
	StartedAt            time.Time  `json:"started_at"`
	EndedAt              *time.Time `json:"ended_at,omitempty"`
	Status               Status     `json:"status"`
	TotalDurationSeconds float64    `json:"total_duration_seconds"`
	TotalDistanceMeters  float64    `json:"total_distance_meters"`
}

// SplitType distinguishes the two split breakdowns of a finished session.
type SplitType string

const (
	SplitSegment   SplitType = "segment"
	SplitKilometer SplitType = "kilometer"
)

// Split is a derived summary of one stretch of a finished session, either a
// training segment or a whole kilometer.
type Split struct {
	Type                SplitType `json:"split_type"`
	Index               int       `json:"split_index"`
	Name                string    `json:"name"`
	StartSeconds        float64   `json:"start_seconds"`
	EndSeconds          float64   `json:"end_seconds"`
	StartMeters         float64   `json:"start_meters"`
	EndMeters           float64   `json:"end_meters"`
	DurationSeconds     float64   `json:"duration_seconds"`
	DistanceMeters      float64   `json:"distance_meters"`
	AverageSpeedKmh     float64   `json:"average_speed_kmh"`
	AveragePaceMinPerKm float64   `json:"average_pace_min_per_km"`
	SpeedChangeCount    int       `json:"speed_change_count"`
	MinSpeedKmh         float64   `json:"min_speed_kmh"`
	MaxSpeedKmh         float64   `json:"max_speed_kmh"`
}

// averageSpeedKmh converts meters over seconds into km/h. Zero duration
// yields zero speed.
func averageSpeedKmh(distanceMeters, durationSeconds float64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return distanceMeters / 1000 / (durationSeconds / 3600)
}

// paceMinPerKm converts a speed into minutes per kilometer. Zero speed
// yields zero pace instead of infinity.
func paceMinPerKm(speedKmh float64) float64 {
	if speedKmh <= 0 {
		return 0
	}
	return 60 / speedKmh
}
