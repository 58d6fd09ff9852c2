// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles —
// handlers, storage, and utils can all import types without depending
// on each other.
package types

import (
	"encoding/json"
	"fmt"
	"time"
)

// Student represents a row of the students table.
//
// ID is assigned by the database on insert and never changes afterwards.
// CreatedAt defaults to the insert time and is only rewritten by a full
// update (PUT).
type Student struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateStudentRequest is the body of POST /students.
//
// validate:"required" is checked by go-playground/validator; an empty
// name is rejected before the database is touched.
type CreateStudentRequest struct {
	Name string `json:"name" validate:"required"`
}

// PatchStudentRequest is the body of PATCH /students/{id}.
// Only the name can be changed through a partial update.
type PatchStudentRequest struct {
	Name string `json:"name" validate:"required"`
}

// PutStudentRequest is the body of PUT /students/{id}.
//
// Timestamp is a pointer so that "required" can tell a missing field
// apart from the zero time.
type PutStudentRequest struct {
	Name      string     `json:"name"      validate:"required"`
	Timestamp *Timestamp `json:"timestamp" validate:"required"`
}

// SQLiteTimestamp is the layout SQLite's CURRENT_TIMESTAMP produces.
const SQLiteTimestamp = "2006-01-02 15:04:05"

// Timestamp is a time decoded from either an RFC 3339 string or the
// SQLite "YYYY-MM-DD HH:MM:SS" form. The latter carries no zone and is
// read as UTC.
type Timestamp struct {
	time.Time
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	if parsed, err := time.Parse(time.RFC3339Nano, s); err == nil {
		t.Time = parsed
		return nil
	}
	parsed, err := time.ParseInLocation(SQLiteTimestamp, s, time.UTC)
	if err != nil {
		return fmt.Errorf("timestamp %q is neither RFC 3339 nor %q", s, SQLiteTimestamp)
	}
	t.Time = parsed
	return nil
}
