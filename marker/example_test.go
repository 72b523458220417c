package marker_test

import (
	"fmt"

	"irqmask/marker"
)

// sample is filled in by an ADC interrupt and read by the main loop.
type sample struct {
	clock uint32
	value int16
}

// Written by hand here; irqmarkgen emits the same lines for a
// //irqmask:derive transferable directive.
func _() {
	marker.AssertScalar[uint32]()
	marker.AssertScalar[int16]()
}

func (sample) HandlerTransferable() {}

func handOff[T marker.Transferable](v T) T {
	return v
}

func Example() {
	s := handOff(sample{clock: 1200, value: -3})
	fmt.Println(s.clock, s.value)
	// Output: 1200 -3
}
