package chstore

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNoRowsNil(t *testing.T) {
	assert.False(t, isNoRows(nil))
}

func TestIsNoRowsSQLSentinel(t *testing.T) {
	assert.True(t, isNoRows(sql.ErrNoRows))
	assert.True(t, isNoRows(fmt.Errorf("wrapped: %w", sql.ErrNoRows)))
}

func TestIsNoRowsStringFallback(t *testing.T) {
	assert.True(t, isNoRows(errors.New("clickhouse: no rows in result set")))
	assert.True(t, isNoRows(errors.New("NO ROWS returned")))
}

func TestIsNoRowsOtherErrorsAreNotNoRows(t *testing.T) {
	assert.False(t, isNoRows(errors.New("connection refused")))
}
