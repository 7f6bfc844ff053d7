package relay

import (
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessage_Base(t *testing.T) {
	t.Run("sender is set at construction", func(t *testing.T) {
		msg := newPing("proc-a", 1)
		assert.Equal(t, "proc-a", msg.Sender())
	})

	t.Run("kind is fixed per type", func(t *testing.T) {
		assert.Equal(t, kindPing, newPing("a", 0).Kind())
		assert.Equal(t, kindPong, newPong("a", 0).Kind())
	})

	t.Run("current process includes executable and pid", func(t *testing.T) {
		id := CurrentProcess()
		require.NotEmpty(t, id)
		assert.Contains(t, id, fmt.Sprintf("-%d", os.Getpid()))
	})
}

func TestMessage_Errors(t *testing.T) {
	t.Run("wait timeout error unwraps to ErrTimeout", func(t *testing.T) {
		err := &WaitTimeoutError{Kinds: []Kind{kindPong}, Timeout: time.Second}
		assert.True(t, errors.Is(err, ErrTimeout))
		assert.Contains(t, err.Error(), "pong")
		assert.Contains(t, err.Error(), "1s")
	})

	t.Run("sentinels are distinct", func(t *testing.T) {
		assert.NotErrorIs(t, ErrEmpty, ErrTimeout)
		assert.NotErrorIs(t, ErrClosed, ErrEmpty)
	})
}
