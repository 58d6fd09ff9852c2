package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/aanand-mishra/student-records-api/internal/config"
)

// DefaultCORS is the policy applied to every route: only the configured
// origins, every verb the API serves.
func DefaultCORS(cfg config.CORS, authHeader string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:       []string{"Content-Type", authHeader},
		OptionsSuccessStatus: http.StatusOK,
	})
}

// ReadCORS is the policy of GET /students/{id}: the default origins plus
// the read-only ones, GET only.
func ReadCORS(cfg config.CORS) *cors.Cors {
	origins := make([]string, 0, len(cfg.AllowedOrigins)+len(cfg.ReadOrigins))
	origins = append(origins, cfg.AllowedOrigins...)
	origins = append(origins, cfg.ReadOrigins...)

	return cors.New(cors.Options{
		AllowedOrigins:       origins,
		AllowedMethods:       []string{http.MethodGet},
		AllowedHeaders:       []string{"Content-Type"},
		OptionsSuccessStatus: http.StatusOK,
	})
}

// Preflight answers an OPTIONS request with 200 and no body. It sits
// behind a cors.Cors handler, which adds the Access-Control headers.
func Preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
