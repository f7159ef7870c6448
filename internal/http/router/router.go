// Package router assembles the route table and the middleware chain.
package router

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/aanand-mishra/student-management-api/internal/http/handlers/health"
	"github.com/aanand-mishra/student-management-api/internal/http/handlers/student"
	"github.com/aanand-mishra/student-management-api/internal/http/middleware"
	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/utils/response"
)

// New returns the application's root handler.
//
// Route table:
//
//	GET    /               → health check
//	POST   /students/      → create a student
//	GET    /students/      → list students (?skip=&limit=)
//	GET    /students/{id}  → get one student
//	PUT    /students/{id}  → replace a student
//	DELETE /students/{id}  → delete a student
//
// The collection routes answer with and without the trailing slash.
//
// The middleware wraps the router so unmatched requests (CORS preflights,
// 404 and 405) pass through it too.
func New(s storage.Storage, log *slog.Logger, allowedOrigin string) http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", health.Root()).Methods(http.MethodGet)

	for _, path := range []string{"/students", "/students/"} {
		r.HandleFunc(path, student.New(s, log)).Methods(http.MethodPost)
		r.HandleFunc(path, student.GetList(s, log)).Methods(http.MethodGet)
	}

	r.HandleFunc("/students/{id}", student.GetByID(s, log)).Methods(http.MethodGet)
	r.HandleFunc("/students/{id}", student.Update(s, log)).Methods(http.MethodPut)
	r.HandleFunc("/students/{id}", student.Delete(s, log)).Methods(http.MethodDelete)

	r.NotFoundHandler = statusHandler(http.StatusNotFound)
	r.MethodNotAllowedHandler = statusHandler(http.StatusMethodNotAllowed)

	return middleware.Chain(r,
		middleware.Recover(log),
		middleware.RequestID,
		middleware.Logging(log),
		middleware.CORS(allowedOrigin),
	)
}

func statusHandler(status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, status, response.Detail(http.StatusText(status)))
	})
}
