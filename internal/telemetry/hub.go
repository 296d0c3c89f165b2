package telemetry

import "sync"

// Handler receives telemetry update events.
type Handler func(*Snapshot)

// Source is the subscription API of a telemetry event producer.
type Source interface {
	// Subscribe registers h for update events. The returned function removes
	// the registration; once it returns no new delivery to h starts.
	Subscribe(h Handler) (unsubscribe func())
}

// Sink accepts telemetry update events from a producer.
type Sink interface {
	Publish(*Snapshot)
}

// Hub fans update events out to subscribers. It is both a Source for the
// card controller and a Sink for producers such as the HTTP endpoint and MQTT.
type Hub struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[uint64]Handler
}

func NewHub() *Hub {
	return &Hub{handlers: make(map[uint64]Handler)}
}

func (h *Hub) Subscribe(handler Handler) func() {
	if handler == nil {
		return func() {}
	}
	h.mu.Lock()
	id := h.nextID
	h.nextID++
	h.handlers[id] = handler
	h.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.handlers, id)
			h.mu.Unlock()
		})
	}
}

// Publish delivers snap to every subscriber. Delivery holds the read lock so
// that an unsubscribe waits for in-progress deliveries.
func (h *Hub) Publish(snap *Snapshot) {
	if snap == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, handler := range h.handlers {
		handler(snap)
	}
}

// Subscribers reports the number of registered handlers.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.handlers)
}
