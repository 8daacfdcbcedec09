package db

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrDuplicateEmail is returned by CreateUser when the email already has an
// account, regardless of which store backs the interface.
var ErrDuplicateEmail = errors.New("email already registered")

func IsDupKeyErr(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return strings.Contains(mysqlErr.Error(), "Duplicate")
}
