package main

import (
	"net/http"

	"github.com/myrjola/stridr/internal/profile"
)

func (app *application) profileGET(w http.ResponseWriter, r *http.Request) {
	prof, err := app.profileService.Get(r.Context())
	if err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, prof)
}

func (app *application) profilePUT(w http.ResponseWriter, r *http.Request) {
	var prof profile.Profile
	if err := decodeJSON(r, &prof); err != nil {
		app.clientError(w, r, http.StatusBadRequest, err)
		return
	}
	if err := profile.Validate(prof); err != nil {
		app.clientError(w, r, http.StatusUnprocessableEntity, err)
		return
	}
	if err := app.profileService.Save(r.Context(), prof); err != nil {
		app.respondError(w, r, err)
		return
	}
	app.writeJSON(w, r, http.StatusOK, prof)
}
