package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

// IsUniqueViolation reports whether the provided error is a MySQL duplicate
// key error. When keyName is provided, the helper also looks for the key name
// in the error message.
func IsUniqueViolation(err error, keyName string) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number != mysqlDuplicateEntry {
		return false
	}
	msg := err.Error()
	if keyName != "" {
		return strings.Contains(msg, keyName)
	}
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
