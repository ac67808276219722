package workflow

import (
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsResult(t *testing.T) {
	res, err := AsResult(nil)
	assert.Nil(t, res)
	assert.NoError(t, err)

	res, err = AsResult(Abort("listing not found"))
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "listing not found", res.Message)

	res, err = AsResult(errors.Wrap(ErrStaleState, "update listing"))
	require.NoError(t, err)
	assert.Equal(t, MsgNotPending, res.Message)

	boom := errors.New("connection reset")
	res, err = AsResult(boom)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, boom)
}
