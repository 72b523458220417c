package irqmask

import (
	"irqmask/marker"
)

// Cell holds a value that code and an interrupt handler on the same execution
// unit both touch. Access goes through a live Guard, so the handler can never
// observe a half-finished update made by the code it interrupted.
//
// Cell does not synchronize across cores. Share it between cores only under a
// separate lock.
//
// T must declare HandlerTransferable, so basic types are not accepted as they
// are. Wrap them in a defined type carrying the declaration:
//
//	type ticks uint32
//
//	func (ticks) HandlerTransferable() {}
//
//	c := irqmask.NewCell(ticks(0))
type Cell[T marker.Transferable] struct {
	value T
}

// NewCell returns a Cell holding v.
func NewCell[T marker.Transferable](v T) *Cell[T] {
	return &Cell[T]{value: v}
}

// HandlerShareable marks Cell as safe to reference from a handler: every
// access requires interrupts to be disabled.
func (*Cell[T]) HandlerShareable() {}

// Borrow returns the value for the duration of g. The pointer must not be
// kept after g is restored. Borrow panics if g was already restored.
func (c *Cell[T]) Borrow(g *Guard) *T {
	if g == nil || !g.Live() {
		panic("irqmask: Cell borrowed without a live guard")
	}
	return &c.value
}

// With disables interrupts, runs f on the value and restores them.
func (c *Cell[T]) With(f func(*T)) {
	g := Disable()
	defer g.Restore()
	f(c.Borrow(&g))
}

// Replace stores v and returns the previous value.
func (c *Cell[T]) Replace(v T) T {
	g := Disable()
	defer g.Restore()
	old := c.value
	c.value = v
	return old
}
