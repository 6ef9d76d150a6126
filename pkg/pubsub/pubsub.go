// Package pubsub fans normalized events out to registered observers.
//
// Observers are invoked synchronously in registration order with no
// isolation: an observer returning an error aborts the remaining observers
// for that publish call and the error is surfaced to the publisher.
package pubsub

import "sync"

type Handler func(message any) error

type PubSub struct {
	topics map[string]*topic

	lock sync.Mutex
}

func New() *PubSub {
	return &PubSub{
		topics: make(map[string]*topic),
	}
}

func (p *PubSub) initTopic(name string) *topic {
	if _, ok := p.topics[name]; !ok {
		p.topics[name] = newTopic()
	}

	return p.topics[name]
}

func (p *PubSub) Publish(topicName string, message any) error {
	p.lock.Lock()
	t := p.initTopic(topicName)
	p.lock.Unlock()

	return t.publish(message)
}

func (p *PubSub) Subscribe(topicName string, handler Handler) (unsub func()) {
	p.lock.Lock()
	t := p.initTopic(topicName)
	p.lock.Unlock()

	return t.subscribe(handler)
}
