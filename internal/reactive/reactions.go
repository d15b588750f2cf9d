package reactive

import "sync"

// Reactions collects disposers so they can be released together.
type Reactions struct {
	mu        sync.Mutex
	disposers []Disposer
}

// Add records d. A nil disposer is ignored.
func (r *Reactions) Add(d Disposer) {
	if d == nil {
		return
	}
	r.mu.Lock()
	r.disposers = append(r.disposers, d)
	r.mu.Unlock()
}

// Len returns the number of registered disposers.
func (r *Reactions) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.disposers)
}

// DisposeAll releases every recorded disposer in reverse registration order.
func (r *Reactions) DisposeAll() {
	r.mu.Lock()
	ds := r.disposers
	r.disposers = nil
	r.mu.Unlock()

	for i := len(ds) - 1; i >= 0; i-- {
		ds[i]()
	}
}
