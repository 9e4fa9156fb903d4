package main

import (
	"net/http"
)

// routes wires the JSON API. Every route goes through the base chain; routes
// touching user data additionally resolve the device identity from the
// session cookie.
func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	var (
		base = func(next http.Handler) http.Handler {
			return app.recoverPanic(app.logAndTraceRequest(commonHeaders(next)))
		}
		identified = func(next http.Handler) http.Handler {
			return base(app.sessionManager.LoadAndSave(app.identify(next)))
		}
	)

	mux.Handle("GET /api/healthy", base(http.HandlerFunc(app.healthyGET)))

	mux.Handle("GET /api/profile", identified(http.HandlerFunc(app.profileGET)))
	mux.Handle("PUT /api/profile", identified(http.HandlerFunc(app.profilePUT)))

	mux.Handle("POST /api/plans", identified(http.HandlerFunc(app.plansPOST)))
	mux.Handle("GET /api/plans/active", identified(http.HandlerFunc(app.activePlanGET)))
	mux.Handle("GET /api/plans/{planID}", identified(http.HandlerFunc(app.planGET)))
	mux.Handle("DELETE /api/plans/{planID}", identified(http.HandlerFunc(app.planDELETE)))
	mux.Handle("GET /api/plans/{planID}/schedule", identified(http.HandlerFunc(app.planScheduleGET)))
	mux.Handle("GET /api/plans/{planID}/progress", identified(http.HandlerFunc(app.planProgressGET)))
	mux.Handle("GET /api/workouts/{workoutID}/description", identified(http.HandlerFunc(app.workoutDescriptionGET)))
	mux.Handle("PUT /api/workouts/{workoutID}/schedule", identified(http.HandlerFunc(app.workoutSchedulePUT)))

	mux.Handle("POST /api/sessions", identified(http.HandlerFunc(app.sessionsPOST)))
	mux.Handle("GET /api/sessions/{sessionID}", identified(http.HandlerFunc(app.sessionGET)))
	mux.Handle("POST /api/sessions/{sessionID}/events", identified(http.HandlerFunc(app.sessionEventsPOST)))
	mux.Handle("POST /api/sessions/{sessionID}/finish", identified(http.HandlerFunc(app.sessionFinishPOST)))
	mux.Handle("GET /api/sessions/{sessionID}/splits", identified(http.HandlerFunc(app.sessionSplitsGET)))
	mux.Handle("GET /api/sessions/{sessionID}/analytics", identified(http.HandlerFunc(app.sessionAnalyticsGET)))
	mux.Handle("GET /api/sessions/{sessionID}/comparison", identified(http.HandlerFunc(app.sessionComparisonGET)))

	return mux
}
