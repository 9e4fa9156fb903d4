package plan_test

import (
	"strings"
	"testing"

	"github.com/myrjola/stridr/internal/plan"
	"github.com/myrjola/stridr/internal/profile"
)

func TestCapWorkouts(t *testing.T) {
	tests := []struct {
		name            string
		level           profile.Level
		requested       int
		goal            string
		want            int
		wantExplanation bool
	}{
		{
			name:            "beginner marathon capped at three",
			level:           profile.LevelBeginner,
			requested:       5,
			goal:            "First Marathon",
			want:            3,
			wantExplanation: true,
		},
		{
			name:            "beginner marathon case insensitive",
			level:           profile.LevelBeginner,
			requested:       4,
			goal:            "run a MARATHON next spring",
			want:            3,
			wantExplanation: true,
		},
		{
			name:            "beginner non-marathon capped at four",
			level:           profile.LevelBeginner,
			requested:       6,
			goal:            "10k",
			want:            4,
			wantExplanation: true,
		},
		{
			name:            "beginner within cap untouched",
			level:           profile.LevelBeginner,
			requested:       3,
			goal:            "10k",
			want:            3,
			wantExplanation: false,
		},
		{
			name:            "intermediate capped at five",
			level:           profile.LevelIntermediate,
			requested:       7,
			goal:            "marathon",
			want:            5,
			wantExplanation: true,
		},
		{
			name:            "advanced uncapped",
			level:           profile.LevelAdvanced,
			requested:       9,
			goal:            "marathon",
			want:            9,
			wantExplanation: false,
		},
		{
			name:            "unknown level capped at four",
			level:           profile.Level("elite"),
			requested:       6,
			goal:            "5k",
			want:            4,
			wantExplanation: true,
		},
		{
			name:            "request equal to cap untouched",
			level:           profile.LevelIntermediate,
			requested:       5,
			goal:            "half marathon",
			want:            5,
			wantExplanation: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, explanation := plan.CapWorkouts(tt.level, tt.requested, tt.goal,
				[]string{"treadmill running"})
			if got != tt.want {
				t.Errorf("CapWorkouts() = %d, want %d", got, tt.want)
			}
			if tt.wantExplanation && explanation == "" {
				t.Error("CapWorkouts() expected an explanation, got none")
			}
			if !tt.wantExplanation && explanation != "" {
				t.Errorf("CapWorkouts() unexpected explanation: %q", explanation)
			}
			if tt.wantExplanation && !strings.Contains(explanation, "workouts per week") {
				t.Errorf("CapWorkouts() explanation %q does not mention the adjustment", explanation)
			}
		})
	}
}
