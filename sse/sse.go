package sse

import (
	"sync"

	"go.uber.org/zap"

	"finsight/api/logger"
)

// StatusEvent is one document-status update pushed to a subscriber.
type StatusEvent struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
	Final      bool   `json:"final"`
}

// Hub fans document-status events out to per-document subscriber streams.
type Hub struct {
	mu      sync.RWMutex
	streams map[string][]chan StatusEvent
}

func NewHub() *Hub {
	return &Hub{streams: map[string][]chan StatusEvent{}}
}

// Subscribe registers a stream for a document and returns the event channel
// together with an unsubscribe func. The channel is buffered; a slow client
// drops events rather than blocking the publisher.
func (h *Hub) Subscribe(documentID string) (<-chan StatusEvent, func()) {
	ch := make(chan StatusEvent, 16)
	h.mu.Lock()
	h.streams[documentID] = append(h.streams[documentID], ch)
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.streams[documentID]
		for i, sub := range subs {
			if sub == ch {
				h.streams[documentID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		if len(h.streams[documentID]) == 0 {
			delete(h.streams, documentID)
		}
	}
	return ch, unsubscribe
}

// Publish delivers an event to every subscriber of the document.
func (h *Hub) Publish(event StatusEvent) {
	h.mu.RLock()
	subs := h.streams[event.DocumentID]
	h.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			logger.Get().Debug("dropping status event for slow subscriber",
				zap.String("document_id", event.DocumentID))
		}
	}
}

// Subscribers reports the live stream count for a document.
func (h *Hub) Subscribers(documentID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.streams[documentID])
}
