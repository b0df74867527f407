package server

import (
	"net/http"

	"github.com/gorilla/mux"
)

// The experience UI ships as a separate frontend; these handlers stand in
// for its entry points so the guard has something to protect and somewhere
// to land unrecoverable sessions.

const experienceShell = `<!DOCTYPE html>
<html>
<head><title>Sign in</title></head>
<body><div id="app"></div></body>
</html>
`

const unknownSessionShell = `<!DOCTYPE html>
<html>
<head><title>Session expired</title></head>
<body><p>Your sign-in session has expired. Please start over from your application.</p></body>
</html>
`

func registerExperienceRoutes(router *mux.Router) {
	router.HandleFunc("/unknown-session", serveShell(unknownSessionShell)).Methods("GET")
	router.PathPrefix("/").HandlerFunc(serveShell(experienceShell)).Methods("GET")
}

func serveShell(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}
