package ecs

import "github.com/milk9111/liminal/ecs/component"

// Add attaches value to e, overwriting any existing component in place so
// outstanding Ref pointers observe the new value.
func Add[T any](w *World, e Entity, handle component.ComponentHandle[T], value T) error {
	if w == nil || !w.IsAlive(e) {
		return component.ErrEntityNotAlive
	}
	kind := handle.Kind()
	if !kind.Valid() {
		return component.ErrInvalidComponentKind
	}
	s := w.store(kind.ID(), true)
	if existing, ok := s.Get(e).(*T); ok && existing != nil {
		*existing = value
		return nil
	}
	v := value
	s.Set(e, &v)
	return nil
}

func Remove[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.RemoveComponent(e, handle.Kind())
}

func Has[T any](w *World, e Entity, handle component.ComponentHandle[T]) bool {
	return w.HasComponent(e, handle.Kind())
}

// Get returns a copy of e's component.
func Get[T any](w *World, e Entity, handle component.ComponentHandle[T]) (T, bool) {
	var zero T
	ref, ok := Ref(w, e, handle)
	if !ok {
		return zero, false
	}
	return *ref, true
}

// Ref returns a pointer to e's stored component.
func Ref[T any](w *World, e Entity, handle component.ComponentHandle[T]) (*T, bool) {
	if w == nil {
		return nil, false
	}
	ptr, ok := w.store(handle.Kind().ID(), false).Get(e).(*T)
	if !ok || ptr == nil {
		return nil, false
	}
	return ptr, true
}

// ForEach calls fn with a pointer to every stored component of kind.
func ForEach[T any](w *World, kind component.ComponentKind[T], fn func(e Entity, v *T)) {
	if w == nil || fn == nil {
		return
	}
	s := w.store(kind.ID(), false)
	if s == nil {
		return
	}
	ents := append([]Entity(nil), s.Entities()...)
	for _, e := range ents {
		if v, ok := s.Get(e).(*T); ok {
			fn(e, v)
		}
	}
}

// ForEach2 calls fn for entities carrying both kinds.
func ForEach2[A, B any](w *World, ka component.ComponentKind[A], kb component.ComponentKind[B], fn func(e Entity, a *A, b *B)) {
	if w == nil || fn == nil {
		return
	}
	sa, sb := w.store(ka.ID(), false), w.store(kb.ID(), false)
	if sa == nil || sb == nil {
		return
	}
	for _, e := range IntersectEntities(sa, sb) {
		a, okA := sa.Get(e).(*A)
		b, okB := sb.Get(e).(*B)
		if okA && okB {
			fn(e, a, b)
		}
	}
}
