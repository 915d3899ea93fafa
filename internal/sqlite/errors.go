package sqlite

import "strings"

// Messages modernc.org/sqlite reports when a row breaks a table constraint.
var constraintMessages = []string{
	"UNIQUE constraint failed",
	"FOREIGN KEY constraint failed",
	"CHECK constraint failed",
	"NOT NULL constraint failed",
}

// isConstraintViolation reports whether err was caused by rejected row data
// rather than by the database itself.
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	for _, m := range constraintMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}
	return false
}
