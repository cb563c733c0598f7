// Package repository holds the persistence contract of the POS core and its
// MySQL implementation.  The sentinel values below let the service layer
// tell "row missing" and "unique key violated" apart from every other
// storage failure.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is returned when the requested row does not exist.  The
// service translates it into an invalid-reference error.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique key, such as a
// second payment for the same order.
var ErrDuplicate = errors.New("duplicate")

// mysqlDuplicateEntry is the server error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate-entry error.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
