package main

import (
	"net/http"
	"time"

	"github.com/myrjola/stridr/internal/plan"
)

func (app *application) plansPOST(w http.ResponseWriter, r *http.Request) {
	var req plan.Request
	if err := decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	result, err := app.planService.Generate(r.Context(), req)
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusCreated, result)
}

func (app *application) activePlanGET(w http.ResponseWriter, r *http.Request) {
	p, err := app.planService.Active(r.Context())
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}

func (app *application) planGET(w http.ResponseWriter, r *http.Request) {
	p, err := app.planService.Get(r.Context(), r.PathValue("planID"))
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, p)
}

func (app *application) planDELETE(w http.ResponseWriter, r *http.Request) {
	if err := app.planService.Delete(r.Context(), r.PathValue("planID")); err != nil {
		app.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) planScheduleGET(w http.ResponseWriter, r *http.Request) {
	weeks, err := app.planService.PlanSchedule(r.Context(), r.PathValue("planID"))
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, weeks)
}

func (app *application) planProgressGET(w http.ResponseWriter, r *http.Request) {
	progress, err := app.planService.Progress(r.Context(), r.PathValue("planID"))
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, progress)
}

type rescheduleRequest struct {
	Date time.Time `json:"date"`
}

func (app *application) workoutSchedulePUT(w http.ResponseWriter, r *http.Request) {
	var req rescheduleRequest
	if err := decodeJSON(r, &req); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	moved, err := app.planService.RescheduleWorkout(r.Context(), r.PathValue("workoutID"), req.Date)
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, moved)
}

func (app *application) workoutDescriptionGET(w http.ResponseWriter, r *http.Request) {
	description, err := app.planService.DescribeWorkout(r.Context(), r.PathValue("workoutID"))
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, description)
}
