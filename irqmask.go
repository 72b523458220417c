// Package irqmask temporarily disables interrupts (or, in user mode, signals)
// on the current execution unit and restores the previous state afterwards.
//
// The backend is chosen at build time:
//
//   - bare metal (GOOS=tamago or the baremetal tag) on amd64, arm64 and
//     riscv64 masks hardware interrupts;
//   - TinyGo microcontroller targets delegate to runtime/interrupt;
//   - Linux user mode blocks every maskable signal on the calling thread;
//   - every other target compiles to no-ops.
//
// Masking is best-effort and cooperative: nothing stops code from enabling
// interrupts again behind a Guard's back.
//
//	g := irqmask.Disable()
//	// interrupts are disabled
//	g.Restore()
//	// interrupts are back to their previous state
//
// Do and Call wrap a function in the same pair:
//
//	irqmask.Do(func() {
//		// interrupts are disabled
//	})
package irqmask

import (
	"irqmask/internal/arch"
)

// Backend returns the name of the backend compiled into this build:
// "x86_64", "aarch64", "riscv64", "tinygo", "posix" or "none".
func Backend() string {
	return arch.Name
}

// noCopy may be embedded into structs which must not be copied after first use.
// go vet's copylocks check reports such copies.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Guard keeps interrupts disabled until Restore is called.
//
// Interrupt state belongs to a single execution unit, so a Guard must be
// restored by the goroutine that created it and must not be copied or handed
// to another goroutine. On Linux the creating goroutine stays locked to its OS
// thread while the Guard is live.
//
// # Restore order
//
// Each Guard remembers only the state it found. Restoring guards in a
// different order from the one they were created in can enable interrupts
// while another Guard is still live:
//
//	// interrupts are enabled
//	a := irqmask.Disable()
//	b := irqmask.Disable()
//	a.Restore()
//	// interrupts are enabled although b is live
//	b.Restore()
//
// Using defer right after Disable keeps the order correct.
type Guard struct {
	_        noCopy
	flags    arch.Flags
	restored bool
}

// Disable disables interrupts on the current execution unit and returns a
// Guard holding the previous state.
//
// Disable acts as an acquire barrier and Restore as a release barrier for the
// current execution unit: the backends are assembly or system calls, which
// the compiler never inlines or reorders memory accesses across. That is
// enough to share data with a handler on the same core, not with other cores.
func Disable() Guard {
	return Guard{flags: arch.ReadDisable()}
}

// Restore puts interrupts back into the state they were in when the Guard was
// created. It panics if the Guard was already restored.
func (g *Guard) Restore() {
	if g.restored {
		panic("irqmask: guard restored twice")
	}
	g.restored = true
	arch.Restore(g.flags)
}

// Live reports whether the Guard has not been restored yet.
func (g *Guard) Live() bool {
	return !g.restored
}

// Do runs f with interrupts disabled and restores the previous state when f
// returns or panics. Calls nest: an inner Do finds interrupts disabled and
// leaves them disabled.
func Do(f func()) {
	g := Disable()
	defer g.Restore()
	f()
}

// Call is Do for functions returning a value.
func Call[R any](f func() R) R {
	g := Disable()
	defer g.Restore()
	return f()
}
