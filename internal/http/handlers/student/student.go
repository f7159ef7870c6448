// Package student contains the HTTP handlers for the student resource.
//
// Handlers are built by factory functions: each one receives its
// dependencies once, at route registration, and returns the
// http.HandlerFunc the router calls on every request.
//
//	router.HandleFunc("/students/", student.New(storage, log)).Methods(http.MethodPost)
package student

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/aanand-mishra/student-management-api/internal/http/middleware"
	"github.com/aanand-mishra/student-management-api/internal/storage"
	"github.com/aanand-mishra/student-management-api/internal/types"
	"github.com/aanand-mishra/student-management-api/internal/utils/response"
	"github.com/aanand-mishra/student-management-api/internal/validation"
)

// Pagination defaults for GET /students/.
const (
	DefaultSkip  = 0
	DefaultLimit = 100
)

// Client-facing messages.
const (
	msgNotFound     = "Student not found"
	msgEmailTaken   = "Email already registered"
	msgDeleted      = "Student deleted successfully"
	msgEmptyBody    = "request body is empty"
	msgBodyTooLarge = "request body is too large"
	msgInvalidID    = "invalid id: must be an integer"
)

const maxBodyBytes = 1 << 20

var validate = validation.New()

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students/
// Creates a new student from the JSON request body.
//
// Request body:
//
//	{ "name": "Ada", "email": "ada@x.com", "age": 30, "course": "CS" }
//
// Success response (201 Created):
//
//	{ "id": 1, "name": "Ada", "email": "ada@x.com", "age": 30, "course": "CS" }
//
// Error responses:
//
//	400 Bad Request: empty or malformed body, failed validation, email taken
//	500 Internal: database error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(s storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.DebugContext(r.Context(), "creating a student")

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		student, err := s.CreateStudent(r.Context(), in)
		if err != nil {
			writeStorageError(w, r, log, "creating student", err)
			return
		}

		log.InfoContext(r.Context(), "student created",
			slog.Int64("id", student.ID),
			slog.String("request_id", middleware.GetRequestID(r.Context())))

		response.WriteJSON(w, http.StatusCreated, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /students/?skip=0&limit=100
// Returns one page of students in insertion order.
//
// Both query parameters are optional non-negative integers. The response
// is always a JSON array, [] when the page is empty.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(s storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, err := pageParam(r, "skip", DefaultSkip)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}
		limit, err := pageParam(r, "limit", DefaultLimit)
		if err != nil {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
			return
		}

		log.DebugContext(r.Context(), "listing students",
			slog.Int("skip", skip), slog.Int("limit", limit))

		students, err := s.ListStudents(r.Context(), skip, limit)
		if err != nil {
			writeStorageError(w, r, log, "listing students", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /students/{id}
//
// Error responses:
//
//	400 Bad Request: id is not an integer
//	404 Not Found: no student with that id
//	500 Internal: database error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(s storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		student, err := s.GetStudentByID(r.Context(), id)
		if err != nil {
			writeStorageError(w, r, log, "getting student", err)
			return
		}

		response.WriteJSON(w, http.StatusOK, student)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /students/{id}
// Replaces all four business fields of an existing student; the id never
// changes. The body is validated with the same rules as creation.
//
// Error responses:
//
//	400 Bad Request: invalid id, empty body, validation failure, email taken
//	404 Not Found: no student with that id
//	500 Internal: database error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(s storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		updated, err := s.UpdateStudentByID(r.Context(), id, in)
		if err != nil {
			writeStorageError(w, r, log, "updating student", err)
			return
		}

		log.InfoContext(r.Context(), "student updated",
			slog.Int64("id", id),
			slog.String("request_id", middleware.GetRequestID(r.Context())))

		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /students/{id}
//
// Success response (200 OK):
//
//	{ "message": "Student deleted successfully" }
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(s storage.Storage, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		if err := s.DeleteStudentByID(r.Context(), id); err != nil {
			writeStorageError(w, r, log, "deleting student", err)
			return
		}

		log.InfoContext(r.Context(), "student deleted",
			slog.Int64("id", id),
			slog.String("request_id", middleware.GetRequestID(r.Context())))

		response.WriteJSON(w, http.StatusOK, response.Message{Message: msgDeleted})
	}
}

// decodeInput reads and validates a StudentInput from the request body.
// On failure it writes the 400 response and returns ok == false.
func decodeInput(w http.ResponseWriter, r *http.Request) (in types.StudentInput, ok bool) {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)

	err := json.NewDecoder(body).Decode(&in)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest, response.Detail(msgEmptyBody))
		return in, false
	}
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.WriteJSON(w, http.StatusBadRequest, response.Detail(msgBodyTooLarge))
		return in, false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return in, false
	}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(verrs))
		} else {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		}
		return in, false
	}

	return in, true
}

// pathID parses the {id} route variable. On failure it writes the 400
// response and returns ok == false.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.Detail(msgInvalidID))
		return 0, false
	}
	return id, true
}

func pageParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}

	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("query parameter %s must be a non-negative integer", name)
	}
	return v, nil
}

// writeStorageError maps storage sentinel errors to client errors. Anything
// else is logged and reported as a bare 500.
func writeStorageError(w http.ResponseWriter, r *http.Request, log *slog.Logger, op string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		response.WriteJSON(w, http.StatusNotFound, response.Detail(msgNotFound))
	case errors.Is(err, storage.ErrEmailTaken):
		response.WriteJSON(w, http.StatusBadRequest, response.Detail(msgEmailTaken))
	default:
		log.ErrorContext(r.Context(), "error "+op,
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())))
		response.WriteJSON(w, http.StatusInternalServerError, response.InternalError())
	}
}
