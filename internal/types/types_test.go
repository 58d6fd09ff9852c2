package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"
)

func TestTimestamp(t *testing.T) {
	convey.Convey("Given a PUT body", t, func() {
		decode := func(body string) (PutStudentRequest, error) {
			var req PutStudentRequest
			err := json.Unmarshal([]byte(body), &req)
			return req, err
		}

		convey.Convey("RFC 3339 keeps its offset", func() {
			req, err := decode(`{"name":"Ada","timestamp":"2024-01-01T12:00:00+02:00"}`)
			convey.So(err, convey.ShouldBeNil)
			convey.So(req.Timestamp.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)), convey.ShouldBeTrue)
			_, offset := req.Timestamp.Zone()
			convey.So(offset, convey.ShouldEqual, 2*60*60)
		})

		convey.Convey("The SQLite form is read as UTC", func() {
			req, err := decode(`{"name":"Ada","timestamp":"2024-01-01 10:00:00"}`)
			convey.So(err, convey.ShouldBeNil)
			convey.So(req.Timestamp.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)), convey.ShouldBeTrue)
		})

		convey.Convey("Anything else is an error", func() {
			for _, body := range []string{
				`{"timestamp":"01/02/2024"}`,
				`{"timestamp":"2024-01-01"}`,
				`{"timestamp":1704103200}`,
			} {
				_, err := decode(body)
				convey.So(err, convey.ShouldNotBeNil)
			}
		})

		convey.Convey("A missing timestamp stays nil", func() {
			req, err := decode(`{"name":"Ada"}`)
			convey.So(err, convey.ShouldBeNil)
			convey.So(req.Timestamp, convey.ShouldBeNil)
		})
	})
}
