package xerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassification(t *testing.T) {
	retryable := Retryable(errors.New("connection refused"), "dialing")
	assert.True(t, IsRetryable(retryable))
	assert.False(t, IsCancelled(retryable))

	fatal := Fatal(errors.New("negative balance"), "balance invariant")
	assert.Equal(t, ClassFatal, ClassOf(fatal))

	cancelled := Cancelled()
	assert.True(t, IsCancelled(cancelled))
}

func TestNilErrorsClassifyToNil(t *testing.T) {
	assert.Nil(t, Retryable(nil, "msg"))
	assert.Nil(t, Fatal(nil, "msg"))
}

func TestUnclassifiedErrorDefaultsToFatal(t *testing.T) {
	assert.Equal(t, ClassFatal, ClassOf(errors.New("plain error")))
}

func TestFatalCapturesStackRetryableDoesNot(t *testing.T) {
	fatal := Fatal(errors.New("boom"), "ctx")
	var classified *Classified
	assert.ErrorAs(t, fatal, &classified)
	assert.NotEmpty(t, classified.Stack())

	retryable := Retryable(errors.New("boom"), "ctx")
	assert.ErrorAs(t, retryable, &classified)
	assert.Empty(t, classified.Stack())
}
