package main

import "net/http"

// healthyGET is used for checking that the server is up and running.
func (app *application) healthyGET(w http.ResponseWriter, r *http.Request) {
	app.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
