package plan

import (
	"fmt"
	"strings"

	"github.com/myrjola/stridr/internal/profile"
)

// CapWorkouts limits the weekly workout count to what is sustainable for the
// user's training level. It returns the adjusted count and, when the request
// was reduced, a human-readable explanation for the user. The experience tags
// are part of the policy contract but do not affect the ceiling table yet.
func CapWorkouts(level profile.Level, requested int, goal string, _ []string) (int, string) {
	maxPerWeek, reason := workoutCeiling(level, goal)
	if maxPerWeek == 0 || requested <= maxPerWeek {
		return requested, ""
	}
	explanation := fmt.Sprintf(
		"Adjusted from %d to %d workouts per week. %s", requested, maxPerWeek, reason)
	return maxPerWeek, explanation
}

// workoutCeiling returns the weekly ceiling for a training level. A zero
// ceiling means unlimited.
func workoutCeiling(level profile.Level, goal string) (int, string) {
	switch level {
	case profile.LevelBeginner:
		if strings.Contains(strings.ToLower(goal), "marathon") {
			return 3, "Marathon preparation at beginner level needs rest days between sessions to avoid overuse injuries."
		}
		return 4, "Beginners build fitness more safely with rest days between sessions."
	case profile.LevelIntermediate:
		return 5, "Five sessions per week leaves enough recovery at intermediate level."
	case profile.LevelAdvanced:
		return 0, ""
	default:
		return 4, "Workout count limited to a moderate default until the training level is known."
	}
}
