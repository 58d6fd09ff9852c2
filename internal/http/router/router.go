// Package router binds every handler to its method+path pattern and
// wraps it with the access gate, cross-origin policy and metrics it needs.
package router

import (
	"net/http"

	"github.com/aanand-mishra/student-records-api/internal/config"
	"github.com/aanand-mishra/student-records-api/internal/http/docs"
	"github.com/aanand-mishra/student-records-api/internal/http/handlers/identifier"
	"github.com/aanand-mishra/student-records-api/internal/http/handlers/student"
	"github.com/aanand-mishra/student-records-api/internal/http/middleware"
	"github.com/aanand-mishra/student-records-api/internal/metrics"
	"github.com/aanand-mishra/student-records-api/internal/storage"
)

// Deps are the collaborators the routes are built from.
type Deps struct {
	Storage storage.Storage
	Auth    middleware.Authorizer
	Metrics *metrics.Manager

	// CORS and AuthHeader configure the cross-origin policies. The auth
	// header must be allowed in preflights or browsers cannot send it.
	CORS       config.CORS
	AuthHeader string
}

// Route describes one API endpoint.
type Route struct {
	Method   string
	Path     string
	Endpoint string // metrics label
	Handler  http.HandlerFunc

	// Gated routes run behind the Authorizer.
	Gated bool
	// ReadOnly routes use the read CORS policy instead of the default.
	ReadOnly bool
}

// Routes returns the API route table.
//
// PATCH is deliberately ungated while PUT and GET /student/1 are gated.
func Routes(d Deps) []Route {
	s := d.Storage
	return []Route{
		{Method: http.MethodGet, Path: "/uuid", Endpoint: "uuid", Handler: identifier.Generate()},
		{Method: http.MethodGet, Path: "/uuid/{id}", Endpoint: "uuid_id", Handler: identifier.Validate()},
		{Method: http.MethodGet, Path: "/student/1", Endpoint: "student_1", Handler: student.Greeting(), Gated: true},
		{Method: http.MethodGet, Path: "/students", Endpoint: "students", Handler: student.GetList(s)},
		{Method: http.MethodPost, Path: "/students", Endpoint: "students", Handler: student.New(s)},
		{Method: http.MethodGet, Path: "/students/{id}", Endpoint: "students_id", Handler: student.GetByID(s), ReadOnly: true},
		{Method: http.MethodPatch, Path: "/students/{id}", Endpoint: "students_id", Handler: student.Patch(s)},
		{Method: http.MethodPut, Path: "/students/{id}", Endpoint: "students_id", Handler: student.Update(s), Gated: true},
		{Method: http.MethodDelete, Path: "/students/{id}", Endpoint: "students_id", Handler: student.Delete(s)},
	}
}

// New builds the complete HTTP handler: API routes, preflight answers,
// documentation and the metrics endpoint, all behind panic recovery.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	defaultCORS := middleware.DefaultCORS(d.CORS, d.AuthHeader)
	readCORS := middleware.ReadCORS(d.CORS)

	routes := Routes(d)
	for _, rt := range routes {
		h := rt.Handler
		if rt.Gated {
			h = middleware.RequireAuth(d.Auth, h)
		}
		h = middleware.Metrics(d.Metrics, rt.Endpoint, h)

		policy := defaultCORS
		if rt.ReadOnly {
			policy = readCORS
		}
		mux.Handle(rt.Method+" "+rt.Path, policy.Handler(h))
	}

	// Preflights: every API path answers OPTIONS with 200 and an empty
	// body. A preflight for a ReadOnly route's method is judged by the
	// read policy, any other method by the default one. Unknown paths
	// stay 404.
	preflight := http.HandlerFunc(middleware.Preflight)
	defaultPreflight := defaultCORS.Handler(preflight)
	readPreflight := readCORS.Handler(preflight)

	var paths []string
	readMethods := make(map[string]string)
	for _, rt := range routes {
		if _, seen := readMethods[rt.Path]; !seen {
			paths = append(paths, rt.Path)
			readMethods[rt.Path] = ""
		}
		if rt.ReadOnly {
			readMethods[rt.Path] = rt.Method
		}
	}

	for _, path := range paths {
		readMethod := readMethods[path]
		if readMethod == "" {
			mux.Handle("OPTIONS "+path, defaultPreflight)
			continue
		}
		mux.HandleFunc("OPTIONS "+path, func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Access-Control-Request-Method") == readMethod {
				readPreflight.ServeHTTP(w, r)
				return
			}
			defaultPreflight.ServeHTTP(w, r)
		})
	}

	docs.Register(mux)
	mux.Handle("GET /metrics", d.Metrics.Handler())

	return middleware.Recover(mux)
}
