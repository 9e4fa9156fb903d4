package session

// Comparison measures a session against an earlier one. Every delta is
// oriented so that a positive value reads as an improvement: more distance,
// higher speed, lower raw pace and a shorter total duration. Treating a
// shorter duration as better is a modeling simplification, not coaching
// advice.
type Comparison struct {
	PreviousSessionID    string  `json:"previous_session_id"`
	PreviousWorkoutName  string  `json:"previous_workout_name"`
	SameWorkout          bool    `json:"same_workout"`
	DurationDeltaSeconds float64 `json:"duration_delta_seconds"`
	DistanceDeltaMeters  float64 `json:"distance_delta_meters"`
	SpeedDeltaKmh        float64 `json:"speed_delta_kmh"`
	PaceDeltaMinPerKm    float64 `json:"pace_delta_min_per_km"`
	Improved             bool    `json:"improved"`
}

// Compare measures the current session against a previous one using their
// totals. A session counts as improved when it covered more distance, or the
// same distance in less time.
func Compare(current, previous Session, sameWorkout bool) Comparison {
	currentSpeed := averageSpeedKmh(current.TotalDistanceMeters, current.TotalDurationSeconds)
	previousSpeed := averageSpeedKmh(previous.TotalDistanceMeters, previous.TotalDurationSeconds)

	c := Comparison{
		PreviousSessionID:    previous.ID,
		PreviousWorkoutName:  previous.WorkoutName,
		SameWorkout:          sameWorkout,
		DurationDeltaSeconds: previous.TotalDurationSeconds - current.TotalDurationSeconds,
		DistanceDeltaMeters:  current.TotalDistanceMeters - previous.TotalDistanceMeters,
		SpeedDeltaKmh:        currentSpeed - previousSpeed,
		PaceDeltaMinPerKm:    paceMinPerKm(previousSpeed) - paceMinPerKm(currentSpeed),
	}

	switch {
	case c.DistanceDeltaMeters > 0:
		c.Improved = true
	case c.DistanceDeltaMeters == 0 && c.DurationDeltaSeconds > 0:
		c.Improved = true
	}
	return c
}
