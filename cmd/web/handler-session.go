package main

import (
	"net/http"

	"github.com/myrjola/stridr/internal/session"
)

func (app *application) sessionsPOST(w http.ResponseWriter, r *http.Request) {
	var req session.StartRequest
	if err := decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	sess, err := app.sessionService.Start(r.Context(), req)
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, sess)
}

func (app *application) sessionGET(w http.ResponseWriter, r *http.Request) {
	sess, err := app.sessionService.Get(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, sess)
}

func (app *application) sessionEventsPOST(w http.ResponseWriter, r *http.Request) {
	var event session.Event
	if err := decodeJSON(r, &event); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := app.sessionService.AppendEvent(r.Context(), r.PathValue("sessionID"), event); err != nil {
		app.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (app *application) sessionFinishPOST(w http.ResponseWriter, r *http.Request) {
	summary, err := app.sessionService.Finish(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, summary)
}

func (app *application) sessionSplitsGET(w http.ResponseWriter, r *http.Request) {
	splits, err := app.sessionService.Splits(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, splits)
}

func (app *application) sessionAnalyticsGET(w http.ResponseWriter, r *http.Request) {
	analytics, err := app.sessionService.SessionAnalytics(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, analytics)
}

func (app *application) sessionComparisonGET(w http.ResponseWriter, r *http.Request) {
	comparison, err := app.sessionService.CompareToPrevious(r.Context(), r.PathValue("sessionID"))
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	if comparison == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	app.writeJSON(w, r, http.StatusOK, comparison)
}
