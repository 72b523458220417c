// Package emu models a single execution unit in software: one status
// register, a set of interrupt lines with pending bits, and the handlers bound
// to them. The masking backends of internal/arch are replayed against the model
// so their save/disable/restore algorithms can be exercised on any host.
//
// A Core is one execution unit. It is not safe for use from more than one
// goroutine; handlers run synchronously on the caller's stack, the way an
// interrupt preempts the code running on the same core.
package emu

import (
	"irqmask/internal/arch"
)

// Arch selects which register layout a Core models.
type Arch uint8

const (
	X86_64 Arch = iota + 1
	AArch64
	RISCV64
)

func (a Arch) String() string {
	switch a {
	case X86_64:
		return "x86_64"
	case AArch64:
		return "aarch64"
	case RISCV64:
		return "riscv64"
	default:
		return "unknown"
	}
}

// MaxLines is the number of interrupt lines a Core exposes.
const MaxLines = 64

// Handler runs when a raised line is delivered.
type Handler func()

// Core is a software execution unit.
type Core struct {
	arch      Arch
	reg       uint64
	pending   uint64
	handlers  [MaxLines]Handler
	delivered [MaxLines]uint32
	depth     int
	trace     traceRing
}

// NewCore returns a core of the given architecture whose status register
// starts at reg (RFLAGS, DAIF or mstatus).
func NewCore(a Arch, reg uint64) *Core {
	switch a {
	case X86_64, AArch64, RISCV64:
	default:
		panic("emu: unknown architecture")
	}
	return &Core{arch: a, reg: reg}
}

// Arch returns the modelled architecture.
func (c *Core) Arch() Arch {
	return c.arch
}

// Reg returns the raw status register.
func (c *Core) Reg() uint64 {
	return c.reg
}

// Enabled reports whether a raised line would be delivered right now.
func (c *Core) Enabled() bool {
	switch c.arch {
	case X86_64:
		return c.reg&arch.X86InterruptFlag != 0
	case AArch64:
		return c.reg&arch.DAIF_I == 0
	default:
		return c.reg&arch.MStatusMIE != 0
	}
}

// Write replaces the status register, as unrelated kernel code might.
func (c *Core) Write(reg uint64) {
	c.reg = reg
	c.record(EvtWrite, 0)
	c.deliver()
}

// SetBits ORs bits into the status register.
func (c *Core) SetBits(bits uint64) {
	c.Write(c.reg | bits)
}

// ClearBits clears bits in the status register.
func (c *Core) ClearBits(bits uint64) {
	c.Write(c.reg &^ bits)
}

// Handle binds h to line. A nil handler drops deliveries on that line.
func (c *Core) Handle(line uint8, h Handler) {
	c.handlers[checkLine(line)] = h
}

// Raise asserts line. The handler runs before Raise returns when interrupts
// are enabled; otherwise the line stays pending until they are.
func (c *Core) Raise(line uint8) {
	c.pending |= 1 << checkLine(line)
	c.record(EvtRaise, line)
	if !c.Enabled() {
		c.record(EvtDefer, line)
		return
	}
	c.deliver()
}

// Pending reports whether line is raised but not yet delivered.
func (c *Core) Pending(line uint8) bool {
	return c.pending&(1<<checkLine(line)) != 0
}

// Delivered returns how many times line has been delivered.
func (c *Core) Delivered(line uint8) uint32 {
	return c.delivered[checkLine(line)]
}

// InHandler reports whether a handler is currently running.
func (c *Core) InHandler() bool {
	return c.depth > 0
}

func checkLine(line uint8) uint8 {
	if line >= MaxLines {
		panic("emu: interrupt line out of range")
	}
	return line
}

// deliver runs pending handlers, lowest line first, for as long as the core
// accepts interrupts. Handlers run with interrupts masked the way exception
// entry masks them in hardware, and the status register is put back on return.
func (c *Core) deliver() {
	for c.pending != 0 && c.Enabled() {
		var line uint8
		for c.pending&(1<<line) == 0 {
			line++
		}
		c.pending &^= 1 << line

		h := c.handlers[line]
		if h == nil {
			continue
		}

		saved := c.reg
		c.reg = c.entryMask(c.reg)
		c.depth++
		c.delivered[line]++
		c.record(EvtDeliver, line)
		h()
		c.depth--
		c.reg = saved
	}
}

// entryMask returns the status register as seen inside a handler.
func (c *Core) entryMask(reg uint64) uint64 {
	switch c.arch {
	case X86_64:
		return reg &^ arch.X86InterruptFlag
	case AArch64:
		return reg | arch.DAIFMaskedAll | arch.DAIF_D
	default:
		const mpie = 1 << 7
		if reg&arch.MStatusMIE != 0 {
			reg |= mpie
		} else {
			reg &^= mpie
		}
		return reg &^ arch.MStatusMIE
	}
}
