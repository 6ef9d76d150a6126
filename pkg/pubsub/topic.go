package pubsub

import (
	"sync"

	"github.com/google/uuid"
)

type subscriber struct {
	id string
	fn Handler
}

type topic struct {
	// slice, not map: observers must fire in registration order
	subscribers []subscriber

	lock sync.Mutex
}

func newTopic() *topic {
	return &topic{}
}

func (t *topic) publish(msg any) error {
	t.lock.Lock()
	defer t.lock.Unlock()

	for _, sub := range t.subscribers {
		if err := sub.fn(msg); err != nil {
			return err
		}
	}

	return nil
}

func (t *topic) subscribe(fn Handler) (unsub func()) {
	t.lock.Lock()
	defer t.lock.Unlock()

	id := uuid.NewString()
	t.subscribers = append(t.subscribers, subscriber{id: id, fn: fn})

	return func() {
		t.lock.Lock()
		defer t.lock.Unlock()

		for i, sub := range t.subscribers {
			if sub.id == id {
				t.subscribers = append(t.subscribers[:i], t.subscribers[i+1:]...)
				break
			}
		}
	}
}
