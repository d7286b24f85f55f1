package clock

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackpascal/ufprog-core-go/internal/ufpstatus"
)

func TestPollReturnsOnDone(t *testing.T) {
	attempts := 0
	err := Poll(Background(), time.Second, "test", func() (bool, error) {
		attempts++
		return attempts == 3, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestPollPropagatesFnError(t *testing.T) {
	boom := ufpstatus.New(ufpstatus.DeviceIoError, "boom")
	err := Poll(Background(), time.Second, "test", func() (bool, error) {
		return false, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestPollTimesOut(t *testing.T) {
	err := Poll(Background(), time.Millisecond, "test", func() (bool, error) {
		return false, nil
	})
	require.Error(t, err)
	k, ok := ufpstatus.KindOf(err)
	require.True(t, ok)
	assert.Equal(t, ufpstatus.Timeout, k)
}

func TestPollCancelledTokenAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tok := NewToken(ctx)

	err := Poll(tok, time.Second, "test", func() (bool, error) {
		return false, nil
	})
	require.Error(t, err)
}

func TestNilTokenNeverCancelled(t *testing.T) {
	var tok *Token
	assert.False(t, tok.Cancelled())
}
