package retry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainswarm/substrate-indexer/internal/cancel"
	"github.com/chainswarm/substrate-indexer/internal/xerrors"
	"github.com/chainswarm/substrate-indexer/internal/xlog"
)

func TestDoSucceedsAfterRetries(t *testing.T) {
	log := xlog.New("test")
	token := cancel.New()

	attempts := 0
	resets := 0
	err := Do(log, token, 0, func() bool { resets++; return true }, func() error {
		attempts++
		if attempts < 3 {
			return xerrors.Retryable(errors.New("transient"), "op")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, 2, resets)
}

func TestDoReturnsFatalImmediately(t *testing.T) {
	log := xlog.New("test")
	token := cancel.New()

	attempts := 0
	err := Do(log, token, 0, nil, func() error {
		attempts++
		return xerrors.Fatal(errors.New("unrecoverable"), "op")
	})

	assert.Error(t, err)
	assert.Equal(t, xerrors.ClassFatal, xerrors.ClassOf(err))
	assert.Equal(t, 1, attempts)
}

func TestDoStopsOnCancellation(t *testing.T) {
	log := xlog.New("test")
	token := cancel.New()
	token.Cancel()

	err := Do(log, token, 0, nil, func() error {
		t.Fatal("op should never run once the token is already cancelled")
		return nil
	})

	assert.True(t, xerrors.IsCancelled(err))
}
