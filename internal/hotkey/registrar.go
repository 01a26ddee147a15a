// Package hotkey binds the global "toggle overlay" key combination and lets
// other components listen for global mouse-down events on the same tap.
package hotkey

import (
	"log/slog"
	"sync"
)

// Tap is a process-wide keyboard and mouse event hook. Registrations only take
// effect on the next Start; End drops all of them.
type Tap interface {
	RegisterKeys(keys []string, cb func())
	RegisterMouseDown(cb func(x, y int))
	Start()
	End()
}

// Registrar owns the Tap and re-arms it whenever a binding changes.
type Registrar struct {
	tap Tap

	mu        sync.Mutex
	combo     *Combo
	onTrigger func()
	listeners map[int]func(x, y int)
	nextID    int
	running   bool
}

func NewRegistrar(tap Tap) *Registrar {
	return &Registrar{
		tap:       tap,
		listeners: make(map[int]func(x, y int)),
	}
}

// Register binds combo to onTrigger, replacing any previous binding.
func (r *Registrar) Register(combo Combo, onTrigger func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.combo = &combo
	r.onTrigger = onTrigger
	r.rearm()
	slog.Info("global hotkey registered", "combo", combo.String())
}

// Unregister removes the hotkey binding. Calling it when nothing is bound is a
// no-op.
func (r *Registrar) Unregister() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.combo == nil {
		return
	}
	slog.Info("global hotkey unregistered", "combo", r.combo.String())
	r.combo = nil
	r.onTrigger = nil
	r.rearm()
}

// Current returns the bound combo, if any.
func (r *Registrar) Current() (Combo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.combo == nil {
		return Combo{}, false
	}
	return *r.combo, true
}

// OnMouseDown adds a global mouse-down listener. The returned func removes it
// and may be called more than once.
func (r *Registrar) OnMouseDown(fn func(x, y int)) (cancel func()) {
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.rearm()
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			delete(r.listeners, id)
			r.rearm()
		})
	}
}

// Close stops the tap.
func (r *Registrar) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.combo = nil
	r.onTrigger = nil
	r.listeners = make(map[int]func(x, y int))
	r.rearm()
}

// rearm restarts the tap with the current bindings. Callers hold r.mu.
func (r *Registrar) rearm() {
	if r.running {
		r.tap.End()
		r.running = false
	}
	if r.combo == nil && len(r.listeners) == 0 {
		return
	}

	if r.combo != nil {
		r.tap.RegisterKeys(r.combo.Keys(), r.fireHotkey)
	}
	if len(r.listeners) > 0 {
		r.tap.RegisterMouseDown(r.fireMouseDown)
	}
	r.tap.Start()
	r.running = true
}

func (r *Registrar) fireHotkey() {
	r.mu.Lock()
	cb := r.onTrigger
	r.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (r *Registrar) fireMouseDown(x, y int) {
	r.mu.Lock()
	fns := make([]func(x, y int), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()
	for _, fn := range fns {
		fn(x, y)
	}
}
