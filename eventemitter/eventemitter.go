// Package eventemitter provides typed event handling: listeners are registered
// for named events and called with a context and a payload of type T.
//
// Each listener is called synchronously when an event is emitted.
// If you want asynchronous (non-blocking) listeners, start a goroutine in your listener.
//
// Example:
//
//	e := eventemitter.New[[]string]()
//	token := e.AddListener("stored", func(ctx context.Context, keys []string) { fmt.Println(keys) })
//	e.Emit(ctx, "stored", []string{"user:1"}) // Output: [user:1]
//	e.RemoveListener("stored", token)
package eventemitter

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
)

// ListenerToken is the token returned when a listener is added.
type ListenerToken uint64

var lastToken atomic.Uint64

func nextToken() ListenerToken {
	return ListenerToken(lastToken.Add(1))
}

// Listener handles a single event.
type Listener[T any] func(ctx context.Context, payload T)

// EventTarget represents an event target tied to a specific event name.
type EventTarget[T any] struct {
	eventEmitter *EventEmitter[T]
	eventName    string
}

func NewEventTarget[T any](eventName string) *EventTarget[T] {
	return &EventTarget[T]{New[T](), eventName}
}

func (et *EventTarget[T]) EventName() string {
	return et.eventName
}

func (et *EventTarget[T]) AddListener(listener Listener[T]) ListenerToken {
	return et.eventEmitter.AddListener(et.eventName, listener)
}

func (et *EventTarget[T]) RemoveListener(token ListenerToken) bool {
	return et.eventEmitter.RemoveListener(et.eventName, token)
}

func (et *EventTarget[T]) RemoveAllListeners() bool {
	return et.eventEmitter.RemoveAllListeners(et.eventName)
}

func (et *EventTarget[T]) ListenerCount() int {
	return et.eventEmitter.ListenerCount(et.eventName)
}

func (et *EventTarget[T]) Emit(ctx context.Context, payload T) bool {
	return et.eventEmitter.Emit(ctx, et.eventName, payload)
}

// EventEmitter supports multiple named events sharing one payload type
// and is safe for concurrent use.
type EventEmitter[T any] struct {
	mu     sync.RWMutex
	events map[string][]eventListener[T]
}

type eventListener[T any] struct {
	token   ListenerToken
	handler Listener[T]
}

// New creates a new EventEmitter instance.
func New[T any]() *EventEmitter[T] {
	return &EventEmitter[T]{
		events: make(map[string][]eventListener[T]),
	}
}

// AddListener adds a listener function to a specific event.
func (e *EventEmitter[T]) AddListener(eventName string, listener Listener[T]) ListenerToken {
	e.mu.Lock()
	defer e.mu.Unlock()

	token := nextToken()
	e.events[eventName] = append(e.events[eventName], eventListener[T]{
		token:   token,
		handler: listener,
	})
	return token
}

// RemoveListener removes a listener by token from a specific event.
func (e *EventEmitter[T]) RemoveListener(eventName string, token ListenerToken) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	listeners := e.events[eventName]
	i := slices.IndexFunc(listeners, func(l eventListener[T]) bool { return l.token == token })
	if i < 0 {
		return false
	}
	// Emit may be iterating over the old slice, so never modify it in place.
	e.events[eventName] = slices.Concat(listeners[:i], listeners[i+1:])
	if len(e.events[eventName]) == 0 {
		delete(e.events, eventName)
	}
	return true
}

// RemoveAllListeners removes all listeners for the specified event.
func (e *EventEmitter[T]) RemoveAllListeners(eventName string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.events[eventName]; ok {
		delete(e.events, eventName)
		return true
	}
	return false
}

// ListenerCount returns the number of listeners for the specified event.
func (e *EventEmitter[T]) ListenerCount(eventName string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.events[eventName])
}

// Emit calls each listener synchronously for the given event and reports whether
// any listener was called. Listeners may add or remove listeners while being called.
func (e *EventEmitter[T]) Emit(ctx context.Context, eventName string, payload T) bool {
	e.mu.RLock()
	listeners := e.events[eventName]
	e.mu.RUnlock()

	if len(listeners) == 0 {
		return false
	}
	for _, listener := range listeners {
		listener.handler(ctx, payload)
	}
	return true
}
