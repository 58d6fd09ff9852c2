// Package identifier serves the UUID utility routes.
package identifier

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/aanand-mishra/student-records-api/internal/utils/response"
)

// canonicalLen is the length of the hyphenated 8-4-4-4-12 form.
const canonicalLen = 36

type generateResponse struct {
	UUID string `json:"uuid"`
}

type validateResponse struct {
	IsValid bool `json:"isValid"`
}

// Generate handles GET /uuid and returns a fresh random (version 4) UUID.
func Generate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response.WriteJSON(w, http.StatusOK, generateResponse{UUID: uuid.NewString()})
	}
}

// Validate handles GET /uuid/{id}.
func Validate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		valid := IsValid(id)

		slog.Debug("validated identifier", slog.String("id", id), slog.Bool("valid", valid))
		response.WriteJSON(w, http.StatusOK, validateResponse{IsValid: valid})
	}
}

// IsValid reports whether s is an RFC 4122 UUID in canonical hyphenated
// form. uuid.Parse alone also accepts urn:uuid:, braced and unhyphenated
// spellings, which are rejected here. The nil and max UUIDs are valid.
func IsValid(s string) bool {
	if len(s) != canonicalLen {
		return false
	}

	u, err := uuid.Parse(s)
	if err != nil {
		return false
	}

	if u == uuid.Nil || u == uuid.Max {
		return true
	}

	v := u.Version()
	return v >= 1 && v <= 8 && u.Variant() == uuid.RFC4122
}
