package reactive

import "sync"

// Disposer unregisters an observer or listener. Calling it more than once is safe.
type Disposer func()

// Observable is the read-only view of a Value handed to other stores.
type Observable[T any] interface {
	Get() T
	Observe(fn func(T)) Disposer
}

type observer[T any] struct {
	id uint64
	fn func(T)
}

// notification is one committed change with the observers registered at
// commit time.
type notification[T any] struct {
	value   T
	targets []func(T)
}

// Value is an observable piece of state.
type Value[T any] struct {
	mu        sync.RWMutex
	current   T
	equal     func(a, b T) bool
	observers []observer[T]
	nextID    uint64
	pending   []notification[T]
	draining  bool
}

// NewValue creates a Value for comparable T using ==.
func NewValue[T comparable](initial T) *Value[T] {
	return NewValueFunc(initial, func(a, b T) bool { return a == b })
}

// NewValueFunc creates a Value with a custom equality, for slices and structs with slices.
func NewValueFunc[T any](initial T, equal func(a, b T) bool) *Value[T] {
	return &Value[T]{current: initial, equal: equal}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set stores next and notifies observers when it differs from the current value.
// It reports whether a change happened.
func (v *Value[T]) Set(next T) bool {
	return v.Update(func(T) T { return next })
}

// Update computes the next value from the current one under the lock, then
// behaves like Set.
//
// Notifications are delivered in commit order. The first setter drains the
// queue; a setter that commits while another goroutine is draining returns
// once its change is queued.
func (v *Value[T]) Update(fn func(T) T) bool {
	v.mu.Lock()
	next := fn(v.current)
	if v.equal(v.current, next) {
		v.mu.Unlock()
		return false
	}
	v.current = next
	targets := make([]func(T), len(v.observers))
	for i, o := range v.observers {
		targets[i] = o.fn
	}
	v.pending = append(v.pending, notification[T]{value: next, targets: targets})
	if v.draining {
		v.mu.Unlock()
		return true
	}
	v.draining = true
	v.mu.Unlock()

	v.drain()
	return true
}

func (v *Value[T]) drain() {
	defer func() {
		if r := recover(); r != nil {
			v.mu.Lock()
			v.pending = nil
			v.draining = false
			v.mu.Unlock()
			panic(r)
		}
	}()
	for {
		v.mu.Lock()
		if len(v.pending) == 0 {
			v.draining = false
			v.mu.Unlock()
			return
		}
		n := v.pending[0]
		v.pending[0] = notification[T]{}
		v.pending = v.pending[1:]
		v.mu.Unlock()

		for _, fn := range n.targets {
			fn(n.value)
		}
	}
}

// Observe registers fn for future changes. It does not fire for the current value.
func (v *Value[T]) Observe(fn func(T)) Disposer {
	v.mu.Lock()
	v.nextID++
	id := v.nextID
	v.observers = append(v.observers, observer[T]{id: id, fn: fn})
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			for i, o := range v.observers {
				if o.id == id {
					v.observers = append(v.observers[:i:i], v.observers[i+1:]...)
					return
				}
			}
		})
	}
}

// ObserverCount returns the number of registered observers.
//
// This is primarily intended for tests and diagnostics.
func (v *Value[T]) ObserverCount() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.observers)
}
