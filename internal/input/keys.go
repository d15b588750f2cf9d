// Package input delivers global key presses to the store graph. Dispatcher
// is the in-process KeySource; Terminal feeds it from a raw-mode terminal.
package input

import (
	"sync"

	"git.home.luguber.info/inful/vpndesk/internal/store/storeapi"
)

type handler struct {
	id uint64
	fn func()
}

// Dispatcher fans key presses out to registered handlers.
type Dispatcher struct {
	mu       sync.Mutex
	handlers map[string][]handler
	nextID   uint64
}

// NewDispatcher returns an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: map[string][]handler{}}
}

// OnKey registers fn for key.
func (d *Dispatcher) OnKey(key string, fn func()) func() {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	d.handlers[key] = append(d.handlers[key], handler{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			hs := d.handlers[key]
			for i, h := range hs {
				if h.id == id {
					d.handlers[key] = append(hs[:i:i], hs[i+1:]...)
					break
				}
			}
			if len(d.handlers[key]) == 0 {
				delete(d.handlers, key)
			}
		})
	}
}

// Press invokes every handler of key and reports whether any was registered.
func (d *Dispatcher) Press(key string) bool {
	d.mu.Lock()
	hs := make([]handler, len(d.handlers[key]))
	copy(hs, d.handlers[key])
	d.mu.Unlock()

	for _, h := range hs {
		h.fn()
	}
	return len(hs) > 0
}

// Handlers returns the number of handlers registered for key.
func (d *Dispatcher) Handlers(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.handlers[key])
}

var _ storeapi.KeySource = (*Dispatcher)(nil)
