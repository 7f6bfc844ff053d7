package relay

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_TryTake(t *testing.T) {
	t.Run("empty queue returns ErrEmpty", func(t *testing.T) {
		q := NewQueue(4)
		msg, err := q.TryTake()
		assert.Nil(t, msg)
		assert.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("messages come out in put order", func(t *testing.T) {
		q := NewQueue(8)
		for i := 0; i < 5; i++ {
			require.NoError(t, q.Put(newPing("a", i)))
		}

		for i := 0; i < 5; i++ {
			msg, err := q.TryTake()
			require.NoError(t, err)
			assert.Equal(t, i, msg.(*pingMsg).Value)
		}

		_, err := q.TryTake()
		assert.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("each message is taken exactly once", func(t *testing.T) {
		q := NewQueue(8)
		require.NoError(t, q.Put(newPing("a", 1)))

		_, err := q.TryTake()
		require.NoError(t, err)
		_, err = q.TryTake()
		assert.ErrorIs(t, err, ErrEmpty)
	})
}

func TestQueue_Take(t *testing.T) {
	t.Run("returns buffered message immediately", func(t *testing.T) {
		q := NewQueue(4)
		require.NoError(t, q.Put(newNews("a", "hello")))

		msg, err := q.Take(time.Second)
		require.NoError(t, err)
		assert.Equal(t, "hello", msg.(*newsMsg).Text)
	})

	t.Run("times out when nothing arrives", func(t *testing.T) {
		q := NewQueue(4)

		start := time.Now()
		msg, err := q.Take(50 * time.Millisecond)
		assert.Nil(t, msg)
		assert.ErrorIs(t, err, ErrTimeout)
		assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})

	t.Run("blocks until a message arrives", func(t *testing.T) {
		q := NewQueue(4)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = q.Put(newPing("b", 7))
		}()

		msg, err := q.Take(2 * time.Second)
		require.NoError(t, err)
		assert.Equal(t, 7, msg.(*pingMsg).Value)
	})

	t.Run("zero timeout waits without deadline", func(t *testing.T) {
		q := NewQueue(4)

		go func() {
			time.Sleep(50 * time.Millisecond)
			_ = q.Put(newPing("b", 9))
		}()

		msg, err := q.Take(0)
		require.NoError(t, err)
		assert.Equal(t, 9, msg.(*pingMsg).Value)
	})
}

func TestQueue_Close(t *testing.T) {
	t.Run("put after close fails", func(t *testing.T) {
		q := NewQueue(4)
		q.Close()
		assert.ErrorIs(t, q.Put(newPing("a", 1)), ErrClosed)
	})

	t.Run("buffered messages survive close", func(t *testing.T) {
		q := NewQueue(4)
		require.NoError(t, q.Put(newPing("a", 1)))
		q.Close()

		msg, err := q.TryTake()
		require.NoError(t, err)
		assert.Equal(t, 1, msg.(*pingMsg).Value)

		_, err = q.TryTake()
		assert.ErrorIs(t, err, ErrClosed)
	})

	t.Run("blocked take observes close", func(t *testing.T) {
		q := NewQueue(4)

		errCh := make(chan error, 1)
		go func() {
			_, err := q.Take(0)
			errCh <- err
		}()

		time.Sleep(20 * time.Millisecond)
		q.Close()

		select {
		case err := <-errCh:
			assert.ErrorIs(t, err, ErrClosed)
		case <-time.After(time.Second):
			t.Fatal("take did not return after close")
		}
	})

	t.Run("close is idempotent", func(t *testing.T) {
		q := NewQueue(4)
		q.Close()
		q.Close()
	})
}

func TestQueue_Len(t *testing.T) {
	q := NewQueue(8)
	assert.Equal(t, 0, q.Len())

	require.NoError(t, q.Put(newPing("a", 1)))
	require.NoError(t, q.Put(newPing("a", 2)))
	assert.Equal(t, 2, q.Len())

	_, err := q.TryTake()
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	const producers = 4
	const perProducer = 50

	q := NewQueue(producers * perProducer)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			sender := fmt.Sprintf("producer-%d", p)
			for i := 0; i < perProducer; i++ {
				_ = q.Put(newPing(sender, i))
			}
		}(p)
	}
	wg.Wait()

	// FIFO per producer: each sender's values must come out ascending.
	lastSeen := make(map[string]int)
	for i := 0; i < producers*perProducer; i++ {
		msg, err := q.TryTake()
		require.NoError(t, err)
		ping := msg.(*pingMsg)
		if last, ok := lastSeen[ping.Sender()]; ok {
			assert.Equal(t, last+1, ping.Value, "out of order for %s", ping.Sender())
		} else {
			assert.Equal(t, 0, ping.Value)
		}
		lastSeen[ping.Sender()] = ping.Value
	}

	_, err := q.TryTake()
	assert.True(t, errors.Is(err, ErrEmpty))
}
