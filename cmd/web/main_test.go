package main

import (
	"context"
	"testing"

	"github.com/myrjola/stridr/internal/e2etest"
	"github.com/myrjola/stridr/internal/profile"
)

func testLookupEnv(key string) (string, bool) {
	switch key {
	case "STRIDR_SQLITE_URL":
		return ":memory:", true
	case "STRIDR_ADDR":
		return "localhost:0", true
	case "STRIDR_PLAN_SOURCE":
		// Keep plan generation deterministic and offline in tests.
		return "fixture", true
	default:
		return "", false
	}
}

// completeOnboarding saves a valid profile for the device behind the client.
func completeOnboarding(ctx context.Context, t *testing.T, client *e2etest.Client) profile.Profile {
	t.Helper()
	prof := profile.Profile{
		Level:                profile.LevelIntermediate,
		Goal:                 "Run a 10 km race",
		WeeklyAvailability:   3,
		AvailableDays:        []int{1, 3, 5},
		HasHeartRateSensor:   true,
		WalkingSpeedKmh:      5,
		RunningSpeedKmh:      10,
		SprintSpeedKmh:       16,
		UsualDurationMinutes: 45,
		Experience:           []string{"outdoor running"},
	}
	if err := client.PutJSON(ctx, "/api/profile", prof, nil); err != nil {
		t.Fatalf("Failed to save profile: %v", err)
	}
	return prof
}
