package notifications

import (
	"sync"
	"time"
)

const (
	EventConnected       = "connected"
	EventRegenerated     = "event_regenerated"
	EventLimitReached    = "regeneration_limit_reached"
	subscriberBufferSize = 10
)

type Event struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
}

type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub создает хаб для SSE-подписок.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe подписывает клиента на события прогулки и возвращает канал и функцию отписки.
func (h *Hub) Subscribe(outingID string) (<-chan Event, func()) {
	ch := make(chan Event, subscriberBufferSize)

	h.mu.Lock()
	defer h.mu.Unlock()

	outingSubs, ok := h.subscribers[outingID]
	if !ok {
		outingSubs = make(map[chan Event]struct{})
		h.subscribers[outingID] = outingSubs
	}
	outingSubs[ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if subs, exists := h.subscribers[outingID]; exists {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(h.subscribers, outingID)
				}
			}
			close(ch)
		})
	}
}

// Publish отправляет событие всем подписчикам прогулки. Медленные подписчики пропускают событие.
func (h *Hub) Publish(outingID string, event Event) {
	event.Timestamp = time.Now().UTC()

	h.mu.RLock()
	defer h.mu.RUnlock()

	subs, ok := h.subscribers[outingID]
	if !ok {
		return
	}

	for ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers возвращает число активных подписок прогулки.
func (h *Hub) Subscribers(outingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subscribers[outingID])
}
