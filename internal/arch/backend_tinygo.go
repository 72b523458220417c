//go:build tinygo && baremetal

package arch

import "runtime/interrupt"

// Name identifies the compiled-in backend.
const Name = "tinygo"

// Flags is the state TinyGo's runtime hands back from interrupt.Disable.
type Flags = interrupt.State

// ReadDisable disables interrupts and returns the previous state.
func ReadDisable() Flags {
	return interrupt.Disable()
}

// Restore restores the interrupt state.
func Restore(state Flags) {
	interrupt.Restore(state)
}
