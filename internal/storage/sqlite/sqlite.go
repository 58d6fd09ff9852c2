// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// Every public method is a thin wrapper around one of two primitives:
//
//	query — runs a SELECT and returns the full row set
//	exec  — runs a write and returns rows affected + last insert id
//
// Both take the SQL text and its arguments separately, so user input is
// always bound through ? placeholders and never spliced into the query.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aanand-mishra/student-records-api/internal/config"
	"github.com/aanand-mishra/student-records-api/internal/storage"
	"github.com/aanand-mishra/student-records-api/internal/types"

	// Blank import: side-effect only (registers the "sqlite3" driver).
	_ "github.com/mattn/go-sqlite3"
)

// SQLite is the concrete implementation of storage.Storage.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.StoragePath, creates the students
// table if it does not already exist, and returns a ready-to-use *SQLite.
func New(cfg *config.Config) (*SQLite, error) {
	db, err := sql.Open("sqlite3", cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	// SQLite allows a single writer. One connection lets database/sql
	// queue statements instead of surfacing "database is locked".
	db.SetMaxOpenConns(1)

	// created_at is declared TIMESTAMP so the driver hands it back as a
	// time.Time rather than a raw string.
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS students (
			id         INTEGER   PRIMARY KEY AUTOINCREMENT,
			name       TEXT      NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error {
	return s.Db.Close()
}

// ─────────────────────────────────────────────────────────────────────────────
// query executes a SELECT returning id, name, created_at columns (in that
// order) and collects every row.
//
// The returned slice is never nil so an empty table encodes as [] in JSON.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) query(ctx context.Context, q string, args ...any) ([]types.Student, error) {
	rows, err := s.Db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	students := make([]types.Student, 0)
	for rows.Next() {
		var student types.Student
		if err := rows.Scan(&student.ID, &student.Name, &student.CreatedAt); err != nil {
			return nil, fmt.Errorf("query: scan row: %w", err)
		}
		students = append(students, student)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("query: rows iteration: %w", err)
	}

	return students, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// exec runs a single write statement.
//
// RowsAffected is what the handlers use to detect a missing student: the
// UPDATE/DELETE itself is the existence check, so there is no window
// between a read and the write.
// ─────────────────────────────────────────────────────────────────────────────
func (s *SQLite) exec(ctx context.Context, q string, args ...any) (storage.Result, error) {
	res, err := s.Db.ExecContext(ctx, q, args...)
	if err != nil {
		return storage.Result{}, fmt.Errorf("exec: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return storage.Result{}, fmt.Errorf("exec: rows affected: %w", err)
	}

	lastID, err := res.LastInsertId()
	if err != nil {
		return storage.Result{}, fmt.Errorf("exec: last insert id: %w", err)
	}

	return storage.Result{RowsAffected: affected, LastInsertID: lastID}, nil
}

// CreateStudent inserts a new row; created_at takes the column default.
func (s *SQLite) CreateStudent(ctx context.Context, name string) (int64, error) {
	res, err := s.exec(ctx, "INSERT INTO students (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("CreateStudent: %w", err)
	}

	return res.LastInsertID, nil
}

// GetStudents returns all student rows ordered by id.
func (s *SQLite) GetStudents(ctx context.Context) ([]types.Student, error) {
	// Explicit column list — Scan depends on the order.
	students, err := s.query(ctx, "SELECT id, name, created_at FROM students ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("GetStudents: %w", err)
	}

	return students, nil
}

// GetStudentByID returns zero or one rows. A missing student is not an
// error here; the handler turns the empty slice into a 404.
func (s *SQLite) GetStudentByID(ctx context.Context, id int64) ([]types.Student, error) {
	students, err := s.query(ctx,
		"SELECT id, name, created_at FROM students WHERE id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("GetStudentByID: %w", err)
	}

	return students, nil
}

// UpdateStudentName changes only the name column.
func (s *SQLite) UpdateStudentName(ctx context.Context, id int64, name string) (int64, error) {
	res, err := s.exec(ctx, "UPDATE students SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return 0, fmt.Errorf("UpdateStudentName: %w", err)
	}

	return res.RowsAffected, nil
}

// UpdateStudent rewrites both name and created_at.
//
// Argument order matches the ? order in the SQL: name, created_at, id.
func (s *SQLite) UpdateStudent(ctx context.Context, id int64, name string, createdAt time.Time) (int64, error) {
	res, err := s.exec(ctx,
		"UPDATE students SET name = ?, created_at = ? WHERE id = ?",
		name, createdAt.UTC(), id)
	if err != nil {
		return 0, fmt.Errorf("UpdateStudent: %w", err)
	}

	return res.RowsAffected, nil
}

// DeleteStudentByID removes a student row by primary key.
func (s *SQLite) DeleteStudentByID(ctx context.Context, id int64) (int64, error) {
	res, err := s.exec(ctx, "DELETE FROM students WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("DeleteStudentByID: %w", err)
	}

	return res.RowsAffected, nil
}
