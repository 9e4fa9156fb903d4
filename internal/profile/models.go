package profile

// Level describes the self-reported running experience of the user.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Profile captures the onboarding answers that drive plan generation.
type Profile struct {
	Level              Level  `json:"level"`
	Goal               string `json:"goal"`
	WeeklyAvailability int    `json:"weekly_availability"`
	// AvailableDays holds weekdays the user can train, Monday=1 ... Sunday=7.
	AvailableDays        []int    `json:"available_days"`
	MaxSpeedKmh          *float64 `json:"max_speed_kmh,omitempty"`
	MaxInclinePercent    *float64 `json:"max_incline_percent,omitempty"`
	HasHeartRateSensor   bool     `json:"has_heart_rate_sensor"`
	WalkingSpeedKmh      float64  `json:"walking_speed_kmh"`
	RunningSpeedKmh      float64  `json:"running_speed_kmh"`
	SprintSpeedKmh       float64  `json:"sprint_speed_kmh"`
	UsualDurationMinutes int      `json:"usual_duration_minutes"`
	Experience           []string `json:"experience"`
	Constraints          string   `json:"constraints"`
}
