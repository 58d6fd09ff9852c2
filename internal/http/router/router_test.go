package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"
	"gopkg.in/yaml.v3"

	"github.com/aanand-mishra/student-records-api/internal/config"
	"github.com/aanand-mishra/student-records-api/internal/http/docs"
	"github.com/aanand-mishra/student-records-api/internal/http/middleware"
	"github.com/aanand-mishra/student-records-api/internal/metrics"
	"github.com/aanand-mishra/student-records-api/internal/storage/sqlite"
	"github.com/aanand-mishra/student-records-api/internal/types"
)

const apiKey = "abc123"

func newTestDeps(t *testing.T) Deps {
	t.Helper()

	store, err := sqlite.New(&config.Config{StoragePath: filepath.Join(t.TempDir(), "students.db")})
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return Deps{
		Storage: store,
		Auth:    middleware.APIKey{Header: "x-api-key", Key: apiKey},
		Metrics: metrics.NewManager(),
		CORS: config.CORS{
			AllowedOrigins: []string{"http://127.0.0.1:5500"},
			ReadOrigins:    []string{"http://127.0.0.1:9999"},
		},
		AuthHeader: "x-api-key",
	}
}

type request struct {
	method, target, body string
	headers              map[string]string
}

func send(h http.Handler, r request) *httptest.ResponseRecorder {
	body := http.NoBody
	req := httptest.NewRequest(r.method, r.target, body)
	if r.body != "" {
		req = httptest.NewRequest(r.method, r.target, strings.NewReader(r.body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func jsonBody(w *httptest.ResponseRecorder) map[string]any {
	var body map[string]any
	convey.So(json.Unmarshal(w.Body.Bytes(), &body), convey.ShouldBeNil)
	return body
}

func TestStudentLifecycle(t *testing.T) {
	convey.Convey("Given the full router over a fresh database", t, func() {
		h := New(newTestDeps(t))

		convey.Convey("Create, read, rename, delete and read again", func() {
			w := send(h, request{method: http.MethodPost, target: "/students", body: `{"name":"Ada"}`})
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
			convey.So(jsonBody(w)["message"], convey.ShouldEqual, "Student created with ID: 1")

			w = send(h, request{method: http.MethodGet, target: "/students/1"})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			var students []types.Student
			convey.So(json.Unmarshal(w.Body.Bytes(), &students), convey.ShouldBeNil)
			convey.So(len(students), convey.ShouldEqual, 1)
			convey.So(students[0].ID, convey.ShouldEqual, int64(1))
			convey.So(students[0].Name, convey.ShouldEqual, "Ada")
			convey.So(students[0].CreatedAt.IsZero(), convey.ShouldBeFalse)

			w = send(h, request{method: http.MethodPatch, target: "/students/1", body: `{"name":"Ada L"}`})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			body := jsonBody(w)
			convey.So(body["message"], convey.ShouldEqual, "User with id 1 updated")
			convey.So(body["changes"], convey.ShouldEqual, float64(1))

			w = send(h, request{method: http.MethodDelete, target: "/students/1"})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			body = jsonBody(w)
			convey.So(body["message"], convey.ShouldEqual, "User with id 1 deleted")
			convey.So(body["changes"], convey.ShouldEqual, float64(1))

			w = send(h, request{method: http.MethodGet, target: "/students/1"})
			convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestAccessGate(t *testing.T) {
	convey.Convey("Given a router with one student", t, func() {
		h := New(newTestDeps(t))
		send(h, request{method: http.MethodPost, target: "/students", body: `{"name":"Ada"}`})
		put := `{"name":"Mallory","timestamp":"2001-01-01T00:00:00Z"}`

		convey.Convey("A full update without the key is forbidden and changes nothing", func() {
			w := send(h, request{method: http.MethodPut, target: "/students/1", body: put})
			convey.So(w.Code, convey.ShouldEqual, http.StatusForbidden)

			w = send(h, request{method: http.MethodPut, target: "/students/1", body: put,
				headers: map[string]string{"x-api-key": "wrong"}})
			convey.So(w.Code, convey.ShouldEqual, http.StatusForbidden)

			var students []types.Student
			w = send(h, request{method: http.MethodGet, target: "/students/1"})
			convey.So(json.Unmarshal(w.Body.Bytes(), &students), convey.ShouldBeNil)
			convey.So(students[0].Name, convey.ShouldEqual, "Ada")
		})

		convey.Convey("A full update with the key succeeds", func() {
			w := send(h, request{method: http.MethodPut, target: "/students/1", body: put,
				headers: map[string]string{"x-api-key": apiKey}})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(jsonBody(w)["timestamp_created_at"], convey.ShouldEqual, "2001-01-01T00:00:00Z")
		})

		convey.Convey("The fixed resource requires the key", func() {
			w := send(h, request{method: http.MethodGet, target: "/student/1"})
			convey.So(w.Code, convey.ShouldEqual, http.StatusForbidden)

			w = send(h, request{method: http.MethodGet, target: "/student/1",
				headers: map[string]string{"x-api-key": apiKey}})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(jsonBody(w)["message"], convey.ShouldEqual, "Hi, I'm student 1")
		})

		convey.Convey("A partial update needs no key", func() {
			w := send(h, request{method: http.MethodPatch, target: "/students/1", body: `{"name":"Ada L"}`})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})
	})
}

func TestCrossOrigin(t *testing.T) {
	convey.Convey("Given the full router", t, func() {
		h := New(newTestDeps(t))

		preflight := func(target, origin, method string) *httptest.ResponseRecorder {
			return send(h, request{method: http.MethodOptions, target: target, headers: map[string]string{
				"Origin":                        origin,
				"Access-Control-Request-Method": method,
			}})
		}

		convey.Convey("Preflights succeed with an empty body on every route", func() {
			for _, target := range []string{"/students", "/students/1", "/uuid", "/uuid/abc", "/student/1"} {
				w := preflight(target, "http://127.0.0.1:5500", http.MethodGet)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.Len(), convey.ShouldEqual, 0)
			}
		})

		convey.Convey("Unknown paths are 404 for every method", func() {
			for _, method := range []string{http.MethodGet, http.MethodPost, http.MethodOptions} {
				w := send(h, request{method: method, target: "/nowhere"})
				convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
				convey.So(w.Header().Get("Allow"), convey.ShouldBeEmpty)
			}
		})

		convey.Convey("A bare OPTIONS request also succeeds", func() {
			w := send(h, request{method: http.MethodOptions, target: "/students"})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.Len(), convey.ShouldEqual, 0)
		})

		convey.Convey("The read origin is allowed only on GET /students/{id}", func() {
			w := preflight("/students/1", "http://127.0.0.1:9999", http.MethodGet)
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "http://127.0.0.1:9999")

			w = preflight("/students/1", "http://127.0.0.1:9999", http.MethodDelete)
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldBeEmpty)

			w = preflight("/students", "http://127.0.0.1:9999", http.MethodGet)
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldBeEmpty)

			w = send(h, request{method: http.MethodGet, target: "/students/1",
				headers: map[string]string{"Origin": "http://127.0.0.1:9999"}})
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "http://127.0.0.1:9999")
		})

		convey.Convey("The default origin may preflight a gated PUT", func() {
			w := send(h, request{method: http.MethodOptions, target: "/students/1", headers: map[string]string{
				"Origin":                         "http://127.0.0.1:5500",
				"Access-Control-Request-Method":  http.MethodPut,
				"Access-Control-Request-Headers": "content-type,x-api-key",
			}})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Header().Get("Access-Control-Allow-Origin"), convey.ShouldEqual, "http://127.0.0.1:5500")
		})
	})
}

func TestDocsAndMetrics(t *testing.T) {
	convey.Convey("Given the full router", t, func() {
		d := newTestDeps(t)
		h := New(d)

		convey.Convey("The docs page and manifest are served", func() {
			w := send(h, request{method: http.MethodGet, target: "/api-docs"})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "/openapi.yaml")

			w = send(h, request{method: http.MethodGet, target: "/openapi.yaml"})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("The manifest documents every API route", func() {
			var manifest struct {
				Paths map[string]map[string]any `yaml:"paths"`
			}
			convey.So(yaml.Unmarshal(docs.OpenAPI, &manifest), convey.ShouldBeNil)

			for _, rt := range Routes(d) {
				ops, ok := manifest.Paths[rt.Path]
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(ops, convey.ShouldContainKey, strings.ToLower(rt.Method))
			}
		})

		convey.Convey("Requests show up on /metrics", func() {
			send(h, request{method: http.MethodGet, target: "/students"})

			w := send(h, request{method: http.MethodGet, target: "/metrics"})
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, `endpoint="students"`)
		})
	})
}
