package chstore

import (
	"database/sql"
	"errors"
	"strings"
)

// isNoRows reports whether err represents an empty result set from a
// QueryRow call. clickhouse-go's native driver surfaces this as
// sql.ErrNoRows for compatibility with database/sql idioms; the string
// fallback guards against older driver versions that instead return a
// bare "no rows" error.
func isNoRows(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "no rows")
}
