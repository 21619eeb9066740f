package utilities

import (
	"sync"

	"go.uber.org/zap"
)

type EventHandler func(interface{})

// EventBus fans published events out to subscribers, each handler on its own
// goroutine.
type EventBus struct {
	handlers map[string][]EventHandler
	mu       sync.RWMutex
	inflight sync.WaitGroup
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(event string, handler EventHandler) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.handlers[event] = append(eb.handlers[event], handler)
}

// Publish runs every handler subscribed to event asynchronously. A panicking
// handler is logged and does not affect the others.
func (eb *EventBus) Publish(event string, data interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, handler := range eb.handlers[event] {
		eb.inflight.Add(1)
		go func(h EventHandler) {
			defer eb.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					L().Error("event handler panicked", zap.String("event", event), zap.Any("panic", r))
				}
			}()
			h(data)
		}(handler)
	}
}

// Wait blocks until every handler started so far has returned.
func (eb *EventBus) Wait() {
	eb.inflight.Wait()
}
