package eventemitter

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/holmberd/go-urine/testutil"
	"github.com/stretchr/testify/assert"
)

type ctxKey struct{}

func TestEventEmitter(t *testing.T) {
	ctx := context.Background()

	t.Run("Add listener and emit event", func(t *testing.T) {
		e := New[int]()
		lowerCaseEvent := "my-event"
		upperCaseEvent := "My-Event"
		var called1, called2 bool

		token := e.AddListener(lowerCaseEvent, func(context.Context, int) { called1 = true })
		assert.NotZero(t, token, "should return a valid token")
		result := e.Emit(ctx, lowerCaseEvent, 0)
		assert.True(t, result, "should return true if listeners are triggered")
		assert.True(t, called1, "should have called listener")
		called1 = false

		token = e.AddListener(upperCaseEvent, func(context.Context, int) { called2 = true })
		assert.NotZero(t, token, "should return a valid token")
		result = e.Emit(ctx, upperCaseEvent, 0)
		assert.True(t, result, "should return true if listeners are triggered")
		assert.True(t, called2, "should call listener")
		assert.False(t, called1, "should not have called other listener again")
	})

	t.Run("Emit event with payload and context", func(t *testing.T) {
		e := New[[]string]()
		var received []string
		var value any
		e.AddListener("stored", func(ctx context.Context, keys []string) {
			received = keys
			value = ctx.Value(ctxKey{})
		})

		e.Emit(context.WithValue(ctx, ctxKey{}, "v"), "stored", []string{"a", "b"})
		assert.Equal(t, []string{"a", "b"}, received)
		assert.Equal(t, "v", value)
	})

	t.Run("Emit event with no listeners", func(t *testing.T) {
		e := New[int]()
		assert.False(t, e.Emit(ctx, "no-listeners", 1), "should return false if no listeners exist")
	})

	t.Run("Add multiple listeners and emit event", func(t *testing.T) {
		e := New[int]()
		total := 0
		t1 := e.AddListener("sum", func(_ context.Context, n int) { total += n })
		t2 := e.AddListener("sum", func(_ context.Context, n int) { total += n })
		assert.NotEqual(t, t1, t2, "tokens should be unique")
		assert.Equal(t, 2, e.ListenerCount("sum"))

		assert.True(t, e.Emit(ctx, "sum", 3))
		assert.Equal(t, 6, total, "should call both listeners")
	})

	t.Run("Remove existing listener", func(t *testing.T) {
		e := New[int]()
		called := false
		token := e.AddListener("remove-me", func(context.Context, int) { called = true })

		assert.True(t, e.RemoveListener("remove-me", token), "should successfully remove listener")
		assert.False(t, e.Emit(ctx, "remove-me", 0))
		assert.False(t, called, "should not call listener after removal")
	})

	t.Run("Remove non-existent listener", func(t *testing.T) {
		e := New[int]()
		assert.False(t, e.RemoveListener("missing-event", 12345), "should return false when removing non-existent listener")
	})

	t.Run("Remove all existing listeners", func(t *testing.T) {
		e := New[int]()
		e.AddListener("cleanup", func(context.Context, int) {})
		e.AddListener("cleanup", func(context.Context, int) {})

		assert.True(t, e.RemoveAllListeners("cleanup"), "should return true when listeners are removed")
		assert.False(t, e.Emit(ctx, "cleanup", 0), "should return false after all listeners are removed")
	})

	t.Run("Remove all non-existent listeners", func(t *testing.T) {
		e := New[int]()
		assert.False(t, e.RemoveAllListeners("ghost"), "should return false when trying to remove from an empty event")
	})

	t.Run("Listener removes itself while emitting", func(t *testing.T) {
		e := New[int]()
		calls := 0
		var token ListenerToken
		token = e.AddListener("once", func(context.Context, int) {
			calls++
			e.RemoveListener("once", token)
		})
		e.AddListener("once", func(context.Context, int) { calls++ })

		e.Emit(ctx, "once", 0)
		e.Emit(ctx, "once", 0)
		assert.Equal(t, 3, calls)
	})

	t.Run("Emit concurrent events", func(t *testing.T) {
		e := New[int]()
		const numListeners = 100
		const numEmitters = 50
		var wg sync.WaitGroup
		var called atomic.Int32

		for range numListeners {
			e.AddListener("tick", func(context.Context, int) {
				called.Add(1)
			})
		}
		for range numEmitters {
			wg.Add(1)
			go func() {
				defer wg.Done()
				e.Emit(ctx, "tick", 0)
			}()
		}
		testutil.WaitGroupWithTimeout(t, &wg, time.Second)
		assert.Equal(t, numListeners*numEmitters, int(called.Load()), "should have called all listeners for each emit")
	})
}

func TestEventTarget(t *testing.T) {
	ctx := context.Background()
	et := NewEventTarget[string]("removed")
	assert.Equal(t, "removed", et.EventName())

	var got []string
	token := et.AddListener(func(_ context.Context, s string) { got = append(got, s) })
	assert.Equal(t, 1, et.ListenerCount())

	assert.True(t, et.Emit(ctx, "a"))
	assert.True(t, et.RemoveListener(token))
	assert.False(t, et.Emit(ctx, "b"))
	assert.Equal(t, []string{"a"}, got)

	et.AddListener(func(context.Context, string) {})
	assert.True(t, et.RemoveAllListeners())
	assert.Zero(t, et.ListenerCount())
}
