package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/smartystreets/goconvey/convey"
)

func TestWriteJSON(t *testing.T) {
	convey.Convey("Given a response recorder", t, func() {
		w := httptest.NewRecorder()

		convey.Convey("When writing a Changes body with 404", func() {
			err := WriteJSON(w, http.StatusNotFound, Changes{Message: "gone", Changes: 0})

			convey.Convey("Then status, content type and body are set", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Code, convey.ShouldEqual, http.StatusNotFound)
				convey.So(w.Header().Get("Content-Type"), convey.ShouldEqual, "application/json")

				var body map[string]any
				convey.So(json.Unmarshal(w.Body.Bytes(), &body), convey.ShouldBeNil)
				convey.So(body["message"], convey.ShouldEqual, "gone")
				convey.So(body["changes"], convey.ShouldEqual, float64(0))
			})
		})
	})
}

func TestGeneralError(t *testing.T) {
	convey.Convey("Given an error", t, func() {
		r := GeneralError(errors.New("boom"))

		convey.So(r.Status, convey.ShouldEqual, StatusError)
		convey.So(r.Error, convey.ShouldEqual, "boom")
	})
}

func TestValidationError(t *testing.T) {
	convey.Convey("Given a struct with two missing required fields", t, func() {
		type payload struct {
			Name  string  `validate:"required"`
			Email *string `validate:"required"`
		}

		err := validator.New().Struct(payload{})
		var verrs validator.ValidationErrors
		convey.So(errors.As(err, &verrs), convey.ShouldBeTrue)

		convey.Convey("Then every field is reported in one message", func() {
			r := ValidationError(verrs)
			convey.So(r.Status, convey.ShouldEqual, StatusError)
			convey.So(r.Error, convey.ShouldEqual, "field Name is required, field Email is required")
		})
	})
}
