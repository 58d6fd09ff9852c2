// Package student contains all HTTP handlers related to the Student resource.
//
// Every exported function is a FACTORY: it takes the storage dependency
// once at startup and returns the http.HandlerFunc the router calls on
// each request.
//
//	router.HandleFunc("POST /students", student.New(storage))
//
// Each handler makes at most one storage call. For PATCH, PUT and DELETE
// the affected-row count of that call is the only "does it exist?" check.
package student

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/student-records-api/internal/storage"
	"github.com/aanand-mishra/student-records-api/internal/types"
	"github.com/aanand-mishra/student-records-api/internal/utils/response"
)

// Storage failures are logged in full but reported to the client with
// these generic messages only.
var (
	ErrFetch  = errors.New("Error fetching data from the database")
	ErrPush   = errors.New("Error pushing data to the database")
	ErrUpdate = errors.New("Error updating data in the database")
	ErrDelete = errors.New("Error deleting data from the database")

	ErrEmptyBody = errors.New("request body is empty")
)

// validate is safe for concurrent use and caches struct metadata.
var validate = validator.New()

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /students
//
// Request body:
//
//	{ "name": "Ada" }
//
// Success response (201 Created):
//
//	{ "message": "Student created with ID: 1" }
//
// ─────────────────────────────────────────────────────────────────────────────
func New(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a student")

		var req types.CreateStudentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		lastID, err := storage.CreateStudent(r.Context(), req.Name)
		if err != nil {
			slog.Error("error creating student", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(ErrPush))
			return
		}

		slog.Info("student created", slog.Int64("id", lastID))
		response.WriteJSON(w, http.StatusCreated, response.Message{
			Message: fmt.Sprintf("Student created with ID: %d", lastID),
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /students
// Returns a JSON array of all students, [] when the table is empty.
// ─────────────────────────────────────────────────────────────────────────────
func GetList(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all students")

		students, err := storage.GetStudents(r.Context())
		if err != nil {
			slog.Error("error getting students", slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(ErrFetch))
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// GetByID handles GET /students/{id}
//
// Success response (200 OK) — always an array:
//
//	[ { "id": 1, "name": "Ada", "created_at": "2024-08-01T10:00:00Z" } ]
//
// 404 when nothing matches.
// ─────────────────────────────────────────────────────────────────────────────
func GetByID(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			response.WriteJSON(w, http.StatusNotFound, response.Message{
				Message: fmt.Sprintf("Student with ID %s not found.", r.PathValue("id")),
			})
			return
		}
		slog.Info("getting a student", slog.Int64("id", id))

		students, err := storage.GetStudentByID(r.Context(), id)
		if err != nil {
			slog.Error("error getting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(ErrFetch))
			return
		}

		if len(students) == 0 {
			response.WriteJSON(w, http.StatusNotFound, response.Message{
				Message: fmt.Sprintf("Student with ID %d not found.", id),
			})
			return
		}

		response.WriteJSON(w, http.StatusOK, students)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Patch handles PATCH /students/{id}
// Renames a student. created_at is left untouched.
//
//	{ "name": "Ada L" }  →  { "message": "User with id 1 updated", "changes": 1 }
//
// ─────────────────────────────────────────────────────────────────────────────
func Patch(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeNotFound(w, r.PathValue("id"))
			return
		}
		slog.Info("renaming a student", slog.Int64("id", id))

		var req types.PatchStudentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		changes, err := storage.UpdateStudentName(r.Context(), id, req.Name)
		if err != nil {
			slog.Error("error renaming student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(ErrUpdate))
			return
		}

		if changes == 0 {
			writeNotFound(w, strconv.FormatInt(id, 10))
			return
		}

		slog.Info("student renamed", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, response.Changes{
			Message: fmt.Sprintf("User with id %d updated", id),
			Changes: changes,
		})
	}
}

// updateResponse is the 200 body of a full update.
type updateResponse struct {
	Message            string    `json:"message"`
	TimestampCreatedAt time.Time `json:"timestamp_created_at"`
	Changes            int64     `json:"changes"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /students/{id}
// Replaces both name and created_at. Mounted behind the API-key gate.
//
// Request body:
//
//	{ "name": "Ada Lovelace", "timestamp": "1843-07-01T00:00:00Z" }
//
// Success response (200 OK):
//
//	{ "message": "User with id 1 updated",
//	  "timestamp_created_at": "1843-07-01T00:00:00Z", "changes": 1 }
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeNotFound(w, r.PathValue("id"))
			return
		}
		slog.Info("updating a student", slog.Int64("id", id))

		var req types.PutStudentRequest
		if !decodeBody(w, r, &req) {
			return
		}

		createdAt := req.Timestamp.UTC()
		changes, err := storage.UpdateStudent(r.Context(), id, req.Name, createdAt)
		if err != nil {
			slog.Error("error updating student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(ErrUpdate))
			return
		}

		if changes == 0 {
			writeNotFound(w, strconv.FormatInt(id, 10))
			return
		}

		slog.Info("student updated", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, updateResponse{
			Message:            fmt.Sprintf("User with id %d updated", id),
			TimestampCreatedAt: createdAt,
			Changes:            changes,
		})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /students/{id}
//
//	→ { "message": "User with id 1 deleted", "changes": 1 }
//
// Deleting the same id twice answers 404 the second time.
// ─────────────────────────────────────────────────────────────────────────────
func Delete(storage storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(r)
		if !ok {
			writeNotFound(w, r.PathValue("id"))
			return
		}
		slog.Info("deleting a student", slog.Int64("id", id))

		changes, err := storage.DeleteStudentByID(r.Context(), id)
		if err != nil {
			slog.Error("error deleting student",
				slog.Int64("id", id),
				slog.String("error", err.Error()))
			response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(ErrDelete))
			return
		}

		if changes == 0 {
			writeNotFound(w, strconv.FormatInt(id, 10))
			return
		}

		slog.Info("student deleted", slog.Int64("id", id))
		response.WriteJSON(w, http.StatusOK, response.Changes{
			Message: fmt.Sprintf("User with id %d deleted", id),
			Changes: changes,
		})
	}
}

// Greeting handles GET /student/1, a fixed resource behind the API-key gate.
func Greeting() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, response.Message{Message: "Hi, I'm student 1"})
	}
}

func writeNotFound(w http.ResponseWriter, id string) {
	response.WriteJSON(w, http.StatusNotFound, response.Changes{
		Message: fmt.Sprintf("Student (ID: %s) not found", id),
		Changes: 0,
	})
}

// pathID parses the {id} path value. An id that is not an int64 can
// never match a row, so callers answer it as not found.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// decodeBody decodes the JSON body into v and runs the validate tags.
// On failure it has already written a 400 and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(ErrEmptyBody))
		return false
	}
	if err != nil {
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return false
	}

	if err := validate.Struct(v); err != nil {
		var validateErrs validator.ValidationErrors
		if errors.As(err, &validateErrs) {
			response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErrs))
		} else {
			response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		}
		return false
	}

	return true
}
