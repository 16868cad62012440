package repositories

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL duplicate-entry error number.
const mysqlErrDuplicateEntry = 1062

func isDuplicateKey(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrDuplicateEntry
	}
	return false
}
