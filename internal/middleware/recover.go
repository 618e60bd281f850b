package middleware

import (
	"encoding/json"
	"log"
	"net/http"
	"runtime/debug"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

const messageInternalError = "internal error"

type errorResponse struct {
	Message string `json:"message"`
}

// Recoverer turns a panic in any handler into a 500 with a generic JSON
// message. The panic value and stack only go to the log.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rvr := recover()
			if rvr == nil {
				return
			}
			if rvr == http.ErrAbortHandler {
				panic(rvr)
			}
			log.Printf("panic [%s] %s %s: %v\n%s",
				chimiddleware.GetReqID(r.Context()), r.Method, r.URL.Path, rvr, debug.Stack())

			if r.Header.Get("Connection") != "Upgrade" {
				writeJSON(w, http.StatusInternalServerError, messageInternalError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// NotFound answers unknown routes with a JSON body.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, "route not found")
}

// MethodNotAllowed answers known routes hit with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Message: message})
}
