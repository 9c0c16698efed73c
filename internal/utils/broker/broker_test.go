package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishReachesSubscribers(t *testing.T) {
	b := NewBroker()
	ch1 := b.Subscribe("topic-a")
	ch2 := b.Subscribe("topic-a")
	other := b.Subscribe("topic-b")

	b.Publish("topic-a", "hello")

	assert.Equal(t, "hello", <-ch1)
	assert.Equal(t, "hello", <-ch2)
	select {
	case msg := <-other:
		t.Fatalf("unexpected message on topic-b: %v", msg)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestPublishWithoutSubscribersDoesNotBlock(t *testing.T) {
	b := NewBroker()
	done := make(chan struct{})
	go func() {
		b.Publish("nobody-home", 1)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked with no subscribers")
	}
}

func TestSlowSubscriberDropsUpdates(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("topic")

	// Fill the buffer and then some; the extras must be dropped, not block.
	for i := 0; i < 10; i++ {
		b.Publish("topic", i)
	}

	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			assert.Equal(t, 4, received) // buffer depth
			return
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe("topic")
	b.Unsubscribe("topic", ch)

	_, open := <-ch
	assert.False(t, open)

	// Publishing after the last unsubscribe is a no-op.
	b.Publish("topic", "ignored")
}
