// Package observer implementa suscripciones síncronas para el estado de la consola.
package observer

import "sync"

// Registry mantiene los suscriptores de un tipo de evento.
// El valor cero está listo para usarse.
type Registry[E any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[E]
}

type subscriber[E any] struct {
	id int
	fn func(E)
}

// Subscribe registra fn y devuelve la función que la da de baja.
// Llamar a la baja más de una vez no tiene efecto.
func (r *Registry[E]) Subscribe(fn func(E)) (unsubscribe func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs = append(r.subs, subscriber[E]{id: id, fn: fn})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(id) })
	}
}

func (r *Registry[E]) remove(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.subs {
		if s.id == id {
			r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
			return
		}
	}
}

// Notify entrega e a cada suscriptor en orden de alta.
// Los callbacks se ejecutan fuera del lock: pueden suscribirse o darse de baja.
func (r *Registry[E]) Notify(e E) {
	r.mu.Lock()
	subs := make([]subscriber[E], len(r.subs))
	copy(subs, r.subs)
	r.mu.Unlock()

	for _, s := range subs {
		s.fn(e)
	}
}

// Len devuelve la cantidad de suscriptores activos.
func (r *Registry[E]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}
