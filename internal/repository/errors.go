package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrDuplicateKey marks a unique-constraint violation (e.g. two
	// concurrent creates for the same match triple).
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrInvalidState marks a conditional transition whose source-state
	// guard did not hold.
	ErrInvalidState = errors.New("invalid state for transition")
)

const mysqlDuplicateEntry = 1062

// translateDuplicate maps a MySQL duplicate-entry error to ErrDuplicateKey
// so callers can treat the constraint violation as a conflict.
func translateDuplicate(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return ErrDuplicateKey
	}
	return err
}
