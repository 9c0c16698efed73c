// broker/broker.go
package broker

import (
	"sync"
)

// Broker fans generation status updates out to websocket subscribers by
// topic. Publish never blocks: a subscriber that falls behind loses the
// intermediate update and catches up on the next one.
type Broker struct {
	subscribers map[string][]chan interface{}
	mu          sync.RWMutex
}

func NewBroker() *Broker {
	return &Broker{
		subscribers: make(map[string][]chan interface{}),
	}
}

func (b *Broker) Subscribe(topic string) <-chan interface{} {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan interface{}, 4)
	b.subscribers[topic] = append(b.subscribers[topic], ch)
	return ch
}

func (b *Broker) Unsubscribe(topic string, ch <-chan interface{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	chans, ok := b.subscribers[topic]
	if !ok {
		return
	}
	for i, c := range chans {
		if c == ch {
			b.subscribers[topic] = append(chans[:i], chans[i+1:]...)
			close(c)
			break
		}
	}
	if len(b.subscribers[topic]) == 0 {
		delete(b.subscribers, topic)
	}
}

func (b *Broker) Publish(topic string, msg interface{}) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			// Slow subscriber, drop this update.
		}
	}
}
