package session

import (
	"math"
)

// ProfilePoint is one step of the speed profile. The speed and pace hold
// from ElapsedSeconds until the next point.
type ProfilePoint struct {
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	SpeedKmh       float64 `json:"speed_kmh"`
	PaceMinPerKm   float64 `json:"pace_min_per_km"`
}

// Analytics summarises a finished session from its event log.
type Analytics struct {
	TotalDurationSeconds float64        `json:"total_duration_seconds"`
	TotalDistanceMeters  float64        `json:"total_distance_meters"`
	MovingSeconds        float64        `json:"moving_seconds"`
	PausedSeconds        float64        `json:"paused_seconds"`
	AverageSpeedKmh      float64        `json:"average_speed_kmh"`
	AveragePaceMinPerKm  float64        `json:"average_pace_min_per_km"`
	MinSpeedKmh          float64        `json:"min_speed_kmh"`
	MaxSpeedKmh          float64        `json:"max_speed_kmh"`
	SpeedChangeCount     int            `json:"speed_change_count"`
	PauseCount           int            `json:"pause_count"`
	SpeedProfile         []ProfilePoint `json:"speed_profile"`
}

// Analyze folds a session's event log into its analytics. An empty log
// yields the zero value.
func Analyze(events []Event) Analytics {
	if len(events) == 0 {
		return Analytics{}
	}

	var a Analytics
	a.TotalDurationSeconds = events[len(events)-1].ElapsedSeconds

	samples := distanceSamples(events)
	a.TotalDistanceMeters = samples[len(samples)-1].distance

	pausedAt := -1.0
	for _, e := range events {
		switch e.Type {
		case EventSpeedChange:
			a.SpeedChangeCount++
		case EventPause:
			a.PauseCount++
			pausedAt = e.ElapsedSeconds
		case EventResume:
			if pausedAt >= 0 {
				a.PausedSeconds += e.ElapsedSeconds - pausedAt
				pausedAt = -1
			}
		case EventStart, EventSegmentStart, EventSegmentEnd, EventTick, EventFinish:
		}
	}
	if pausedAt >= 0 {
		// Session ended while paused.
		a.PausedSeconds += a.TotalDurationSeconds - pausedAt
	}
	a.MovingSeconds = a.TotalDurationSeconds - a.PausedSeconds

	a.AverageSpeedKmh = averageSpeedKmh(a.TotalDistanceMeters, a.MovingSeconds)
	a.AveragePaceMinPerKm = paceMinPerKm(a.AverageSpeedKmh)

	// Belt speed extremes come from commanded speeds, pauses do not count
	// as a zero-speed reading.
	first := true
	for _, e := range events {
		if e.SpeedKmh == nil {
			continue
		}
		switch e.Type {
		case EventStart, EventSpeedChange, EventResume:
		default:
			continue
		}
		if first {
			a.MinSpeedKmh = *e.SpeedKmh
			a.MaxSpeedKmh = *e.SpeedKmh
			first = false
			continue
		}
		a.MinSpeedKmh = math.Min(a.MinSpeedKmh, *e.SpeedKmh)
		a.MaxSpeedKmh = math.Max(a.MaxSpeedKmh, *e.SpeedKmh)
	}

	for _, p := range speedTimeline(events) {
		a.SpeedProfile = append(a.SpeedProfile, ProfilePoint{
			ElapsedSeconds: p.at,
			SpeedKmh:       p.speed,
			PaceMinPerKm:   paceMinPerKm(p.speed),
		})
	}

	return a
}
