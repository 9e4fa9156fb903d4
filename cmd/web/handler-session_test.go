package main

import (
	"context"
	"math"
	"net/http"
	"testing"

	"github.com/myrjola/stridr/internal/e2etest"
	"github.com/myrjola/stridr/internal/session"
	"github.com/myrjola/stridr/internal/testhelpers"
)

// streamEvents replays a tracker's event log to the server as a device would.
func streamEvents(ctx context.Context, t *testing.T, client *e2etest.Client, sessionID string, tracker *session.Tracker) {
	t.Helper()
	for _, event := range tracker.Events() {
		if err := client.PostJSON(ctx, "/api/sessions/"+sessionID+"/events", event, nil); err != nil {
			t.Fatalf("Failed to append event %d (%s): %v", event.Seq, event.Type, err)
		}
	}
}

func Test_application_workoutSessions(t *testing.T) {
	ctx := t.Context()
	server, err := e2etest.StartServer(t, testhelpers.NewWriter(t), testLookupEnv, run)
	if err != nil {
		t.Fatalf("Failed to start server: %v", err)
	}
	client := server.Client()
	completeOnboarding(ctx, t, client)

	var sess session.Session
	t.Run("start a free run", func(t *testing.T) {
		req := session.StartRequest{WorkoutName: "Free Run"}
		if err = client.PostJSON(ctx, "/api/sessions", req, &sess); err != nil {
			t.Fatalf("Failed to start session: %v", err)
		}
		if sess.Status != session.StatusActive {
			t.Errorf("want active session, got %q", sess.Status)
		}
	})

	t.Run("second session conflicts", func(t *testing.T) {
		req := session.StartRequest{WorkoutName: "Free Run"}
		if err = client.PostJSON(ctx, "/api/sessions", req, nil); err == nil {
			t.Fatal("expected conflict while a session is active")
		}
	})

	t.Run("no comparison before anything finished", func(t *testing.T) {
		var resp *http.Response
		if resp, err = client.Do(ctx, http.MethodGet, "/api/sessions/"+sess.ID+"/comparison", nil); err != nil {
			t.Fatalf("Failed to get comparison: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusNoContent {
			t.Errorf("want status 204, got %d", resp.StatusCode)
		}
	})

	// Simulate a steady 10-minute run at 12 km/h, covering two kilometers.
	tracker := session.NewTracker(nil)
	tracker.Start(12)
	tracker.Advance(600)

	t.Run("stream events", func(t *testing.T) {
		streamEvents(ctx, t, client, sess.ID, tracker)
	})

	t.Run("rejects decreasing elapsed time", func(t *testing.T) {
		event := session.Event{Type: session.EventTick, ElapsedSeconds: 1}
		if err = client.PostJSON(ctx, "/api/sessions/"+sess.ID+"/events", event, nil); err == nil {
			t.Fatal("expected error for elapsed time going backwards")
		}
	})

	var summary session.Summary
	t.Run("finish", func(t *testing.T) {
		if err = client.PostJSON(ctx, "/api/sessions/"+sess.ID+"/finish", nil, &summary); err != nil {
			t.Fatalf("Failed to finish session: %v", err)
		}
		if summary.Session.Status != session.StatusCompleted {
			t.Errorf("want completed session, got %q", summary.Session.Status)
		}
		if got := summary.Session.TotalDurationSeconds; got != 600 {
			t.Errorf("want 600s duration, got %v", got)
		}
		if got := summary.Session.TotalDistanceMeters; !almostEqual(got, 2000, 1) {
			t.Errorf("want 2000m distance, got %v", got)
		}
	})

	t.Run("finishing twice fails", func(t *testing.T) {
		if err = client.PostJSON(ctx, "/api/sessions/"+sess.ID+"/finish", nil, nil); err == nil {
			t.Fatal("expected error when finishing a completed session")
		}
	})

	t.Run("events after finish fail", func(t *testing.T) {
		event := session.Event{Type: session.EventTick, ElapsedSeconds: 700}
		if err = client.PostJSON(ctx, "/api/sessions/"+sess.ID+"/events", event, nil); err == nil {
			t.Fatal("expected error appending to a finished session")
		}
	})

	t.Run("kilometer splits", func(t *testing.T) {
		var splits []session.Split
		if err = client.GetJSON(ctx, "/api/sessions/"+sess.ID+"/splits", &splits); err != nil {
			t.Fatalf("Failed to get splits: %v", err)
		}
		if len(splits) != 2 {
			t.Fatalf("want 2 kilometer splits, got %d", len(splits))
		}
		for i, split := range splits {
			if split.Type != session.SplitKilometer {
				t.Errorf("split %d: want kilometer split, got %q", i, split.Type)
			}
			if !almostEqual(split.DistanceMeters, 1000, 1) {
				t.Errorf("split %d: want 1000m, got %v", i, split.DistanceMeters)
			}
			if !almostEqual(split.AverageSpeedKmh, 12, 0.1) {
				t.Errorf("split %d: want 12 km/h, got %v", i, split.AverageSpeedKmh)
			}
		}
	})

	t.Run("analytics", func(t *testing.T) {
		var analytics session.Analytics
		if err = client.GetJSON(ctx, "/api/sessions/"+sess.ID+"/analytics", &analytics); err != nil {
			t.Fatalf("Failed to get analytics: %v", err)
		}
		if !almostEqual(analytics.AverageSpeedKmh, 12, 0.1) {
			t.Errorf("want 12 km/h average, got %v", analytics.AverageSpeedKmh)
		}
		if !almostEqual(analytics.AveragePaceMinPerKm, 5, 0.05) {
			t.Errorf("want 5 min/km pace, got %v", analytics.AveragePaceMinPerKm)
		}
		if analytics.PausedSeconds != 0 {
			t.Errorf("want no paused time, got %v", analytics.PausedSeconds)
		}
	})

	t.Run("next session compares against the first", func(t *testing.T) {
		var second session.Session
		req := session.StartRequest{WorkoutName: "Free Run"}
		if err = client.PostJSON(ctx, "/api/sessions", req, &second); err != nil {
			t.Fatalf("Failed to start second session: %v", err)
		}

		// A slightly longer run at the same speed counts as an improvement.
		nextRun := session.NewTracker(nil)
		nextRun.Start(12)
		nextRun.Advance(630)
		streamEvents(ctx, t, client, second.ID, nextRun)
		if err = client.PostJSON(ctx, "/api/sessions/"+second.ID+"/finish", nil, nil); err != nil {
			t.Fatalf("Failed to finish second session: %v", err)
		}

		var comparison session.Comparison
		if err = client.GetJSON(ctx, "/api/sessions/"+second.ID+"/comparison", &comparison); err != nil {
			t.Fatalf("Failed to get comparison: %v", err)
		}
		if comparison.PreviousSessionID != sess.ID {
			t.Errorf("want comparison against %s, got %s", sess.ID, comparison.PreviousSessionID)
		}
		if !comparison.SameWorkout {
			t.Error("want same workout comparison")
		}
		if !almostEqual(comparison.DistanceDeltaMeters, 100, 1) {
			t.Errorf("want 100m more distance, got %v", comparison.DistanceDeltaMeters)
		}
		if !comparison.Improved {
			t.Error("want the longer run to count as improved")
		}
	})
}

func almostEqual(got, want, tolerance float64) bool {
	return math.Abs(got-want) <= tolerance
}
