package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesSubscribers(t *testing.T) {
	hub := NewHub()
	ch1, unsub1 := hub.Subscribe("doc-1")
	ch2, unsub2 := hub.Subscribe("doc-1")
	defer unsub1()
	defer unsub2()

	hub.Publish(StatusEvent{DocumentID: "doc-1", Status: "PROCESSING"})

	for _, ch := range []<-chan StatusEvent{ch1, ch2} {
		select {
		case event := <-ch:
			assert.Equal(t, "PROCESSING", event.Status)
		default:
			t.Fatal("expected a buffered event")
		}
	}
}

func TestPublishScopedToDocument(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe("doc-1")
	defer unsub()

	hub.Publish(StatusEvent{DocumentID: "doc-2", Status: "COMPLETED", Final: true})

	select {
	case <-ch:
		t.Fatal("event for another document leaked into this stream")
	default:
	}
}

func TestUnsubscribeRemovesStream(t *testing.T) {
	hub := NewHub()
	_, unsub := hub.Subscribe("doc-1")
	require.Equal(t, 1, hub.Subscribers("doc-1"))

	unsub()
	assert.Equal(t, 0, hub.Subscribers("doc-1"))

	// Unsubscribing twice is harmless.
	unsub()
	assert.Equal(t, 0, hub.Subscribers("doc-1"))
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	ch, unsub := hub.Subscribe("doc-1")
	defer unsub()

	// Overflow the buffer; Publish must never block.
	for i := 0; i < 32; i++ {
		hub.Publish(StatusEvent{DocumentID: "doc-1", Status: "PROCESSING"})
	}

	assert.Equal(t, 16, len(ch))
}
