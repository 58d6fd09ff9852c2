// Package storage defines the Storage interface — a contract that any
// database backend must satisfy to work with this application.
//
// Handlers depend only on this interface, never on a concrete driver.
// Tests can hand the handlers a fake that returns canned rows or errors.
package storage

import (
	"context"
	"time"

	"github.com/aanand-mishra/student-records-api/internal/types"
)

// Result is what a single write statement reports back.
//
// RowsAffected is the only signal the handlers use to decide whether
// the targeted student existed: zero means "not found".
type Result struct {
	RowsAffected int64
	LastInsertID int64
}

// Storage is the database contract.
type Storage interface {
	// CreateStudent inserts a new student and returns the assigned ID.
	CreateStudent(ctx context.Context, name string) (int64, error)

	// GetStudents returns every student. Never nil.
	GetStudents(ctx context.Context) ([]types.Student, error)

	// GetStudentByID returns the matching rows: an empty slice when the
	// ID does not exist, a single-element slice otherwise.
	GetStudentByID(ctx context.Context, id int64) ([]types.Student, error)

	// UpdateStudentName changes the name only and returns the number of
	// rows changed.
	UpdateStudentName(ctx context.Context, id int64, name string) (int64, error)

	// UpdateStudent rewrites name and created_at and returns the number
	// of rows changed.
	UpdateStudent(ctx context.Context, id int64, name string, createdAt time.Time) (int64, error)

	// DeleteStudentByID removes a student and returns the number of rows
	// deleted.
	DeleteStudentByID(ctx context.Context, id int64) (int64, error)

	// Close releases the underlying connection.
	Close() error
}
