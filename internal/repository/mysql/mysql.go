// Package mysql implements the repository contracts on MySQL through
// database/sql.
package mysql

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers mapped to repository sentinels.
const (
	errDuplicateEntry = 1062 // ER_DUP_ENTRY
	errNoReferenced   = 1452 // ER_NO_REFERENCED_ROW_2
)

func isMySQLError(err error, number uint16) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == number
}

// likePattern lower-cases term, escapes LIKE wildcards and wraps it for a
// substring match.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(term)) + "%"
}
