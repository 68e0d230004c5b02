package services

import (
	"database/sql"
	"errors"
)

// repoNotFound reports whether a repository error means the row was absent.
func repoNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
