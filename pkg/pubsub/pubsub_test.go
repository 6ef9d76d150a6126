package pubsub_test

import (
	"errors"
	"strconv"
	"sync/atomic"
	"testing"

	"overlay/pkg/pubsub"

	"github.com/stretchr/testify/require"
)

func TestPubSub(t *testing.T) {
	assert := require.New(t)

	ps := pubsub.New()

	for topicInt := 0; topicInt < 100; topicInt++ {
		topic := strconv.Itoa(topicInt)

		recieved := atomic.Int64{}

		for i := 0; i < 100; i++ {
			_ = ps.Subscribe(topic, func(message any) error {
				recieved.Add(1)
				return nil
			})
		}

		for j := 0; j < 100; j++ {
			require.NoError(t, ps.Publish(topic, j))
		}

		assert.Equal(int64(100*100), recieved.Load())
	}
}

func TestPublishOrder(t *testing.T) {
	assert := require.New(t)

	ps := pubsub.New()

	var order []int
	for i := 0; i < 10; i++ {
		i := i
		_ = ps.Subscribe("cheer", func(message any) error {
			order = append(order, i)
			return nil
		})
	}

	assert.NoError(ps.Publish("cheer", struct{}{}))
	assert.Equal([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestPublishStopsOnError(t *testing.T) {
	assert := require.New(t)

	ps := pubsub.New()
	boom := errors.New("observer failed")

	calls := 0
	_ = ps.Subscribe("tip", func(message any) error {
		calls++
		return nil
	})
	_ = ps.Subscribe("tip", func(message any) error {
		calls++
		return boom
	})
	_ = ps.Subscribe("tip", func(message any) error {
		calls++
		return nil
	})

	err := ps.Publish("tip", struct{}{})
	assert.ErrorIs(err, boom)
	assert.Equal(2, calls)
}

func TestUnsubscribe(t *testing.T) {
	assert := require.New(t)

	ps := pubsub.New()

	calls := 0
	unsub := ps.Subscribe("follower", func(message any) error {
		calls++
		return nil
	})

	assert.NoError(ps.Publish("follower", struct{}{}))
	unsub()
	assert.NoError(ps.Publish("follower", struct{}{}))

	assert.Equal(1, calls)
}
