package world

import "sync"

// pool backs Get/Put, following the teacher's engine.StatePool pattern of a
// package-level sync.Pool plus Reset-on-acquire wrapper functions.
var pool = sync.Pool{
	New: func() any {
		return &World{history: make([]PlayRecord, 0, 13)}
	},
}

// Get acquires a World from the pool, already reset.
func Get() *World {
	w := pool.Get().(*World)
	w.Reset()
	return w
}

// Put returns w to the pool for reuse.
func Put(w *World) {
	pool.Put(w)
}
