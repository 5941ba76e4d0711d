package panicerr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeRecoversPanic(t *testing.T) {
	err := Safe(func() error {
		panic("boom")
	})()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}

func TestSafePassesThroughError(t *testing.T) {
	want := errors.New("plain failure")
	err := Safe(func() error { return want })()
	assert.ErrorIs(t, err, want)
}

func TestSafeContextNoError(t *testing.T) {
	err := SafeContext(func(ctx context.Context) error { return ctx.Err() })(context.Background())
	assert.NoError(t, err)
}
