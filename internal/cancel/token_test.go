package cancel

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenCancel(t *testing.T) {
	tok := New()
	assert.False(t, tok.IsCancelled())

	tok.Cancel()
	assert.True(t, tok.IsCancelled())

	select {
	case <-tok.Done():
	default:
		t.Fatal("Done channel should be closed after Cancel")
	}
}

func TestTokenCancelIsIdempotent(t *testing.T) {
	tok := New()
	tok.Cancel()
	assert.NotPanics(t, func() { tok.Cancel() })
}

func TestTokenContextCancelledOnTokenCancel(t *testing.T) {
	tok := New()
	ctx := tok.Context()
	tok.Cancel()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context should have been cancelled")
	}
}
