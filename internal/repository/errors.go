// Package repository defines the error kinds shared by every repository.
// Store failures are classified once, at the repository boundary, so
// handlers can tell a duplicate listing from a missing row or an
// unreachable database without inspecting driver errors themselves.
package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Kind is the closed set of store failure categories.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindNotFound
	KindConstraint
	KindConnection
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindConstraint:
		return "constraint violation"
	case KindConnection:
		return "connection error"
	}
	return "unknown error"
}

// Constraint names the kind of rule a KindConstraint error broke.
type Constraint string

const (
	ConstraintUnique     Constraint = "unique"
	ConstraintForeignKey Constraint = "foreign_key"
	ConstraintNotNull    Constraint = "not_null"
	ConstraintOther      Constraint = "other"
)

// Error is a classified store failure.  Op names the repository operation
// (e.g. "venue.create") and Err keeps the driver error for logging.
type Error struct {
	Kind       Kind
	Constraint Constraint
	Op         string
	Err        error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the bare sentinels below by kind, so
// errors.Is(err, ErrNotFound) holds for any not-found error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t.Op != "" || t.Err != nil {
		return false
	}
	return t.Kind == e.Kind
}

var (
	ErrNotFound   = &Error{Kind: KindNotFound}
	ErrConstraint = &Error{Kind: KindConstraint}
	ErrConnection = &Error{Kind: KindConnection}
)

// KindOf reports the kind of err, or KindUnknown when err was not
// produced by this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// ConstraintOf reports which constraint a KindConstraint error broke.
func ConstraintOf(err error) Constraint {
	var e *Error
	if errors.As(err, &e) {
		return e.Constraint
	}
	return ""
}

// MySQL server error numbers that map to constraint violations.
const (
	mysqlDuplicateEntry    = 1062
	mysqlRowIsReferenced   = 1451
	mysqlNoReferencedRow   = 1452
	mysqlBadNullError      = 1048
	mysqlNoDefaultForField = 1364
)

// classify wraps err into an *Error tagged with op.  Errors that are
// already classified are returned unchanged.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return err
	}
	out := &Error{Kind: KindUnknown, Op: op, Err: err}

	var myErr *mysql.MySQLError
	switch {
	case errors.Is(err, sql.ErrNoRows):
		out.Kind = KindNotFound
	case errors.As(err, &myErr):
		switch myErr.Number {
		case mysqlDuplicateEntry:
			out.Kind, out.Constraint = KindConstraint, ConstraintUnique
		case mysqlRowIsReferenced, mysqlNoReferencedRow:
			out.Kind, out.Constraint = KindConstraint, ConstraintForeignKey
		case mysqlBadNullError, mysqlNoDefaultForField:
			out.Kind, out.Constraint = KindConstraint, ConstraintNotNull
		}
	case isSQLiteConstraint(err):
		out.Kind, out.Constraint = KindConstraint, sqliteConstraint(err.Error())
	case isConnectionError(err):
		out.Kind = KindConnection
	}
	return out
}

// isSQLiteConstraint detects SQLITE_CONSTRAINT (extended codes share the
// low byte 19) and falls back to the message for wrapped errors.
func isSQLiteConstraint(err error) bool {
	var coded interface{ Code() int }
	if errors.As(err, &coded) && coded.Code()&0xff == 19 {
		return true
	}
	return strings.Contains(err.Error(), "constraint failed")
}

func sqliteConstraint(msg string) Constraint {
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return ConstraintUnique
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ConstraintForeignKey
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return ConstraintNotNull
	}
	return ConstraintOther
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, mysql.ErrInvalidConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return strings.Contains(err.Error(), "connection refused")
}
