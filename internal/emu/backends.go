package emu

import (
	"irqmask/internal/arch"
)

// Backend is the masking contract shared by every target: capture the current
// condition while disabling, then restore exactly that condition.
type Backend[F comparable] interface {
	ReadDisable() F
	Restore(flags F)
}

// X86 returns the x86-64 backend of c: keep RFLAGS.IF, CLI; STI if IF was set.
func (c *Core) X86() Backend[bool] {
	c.mustBe(X86_64)
	return x86Backend{c}
}

// ARM returns the AArch64 backend of c: read DAIF, set A, I and F; write DAIF back.
func (c *Core) ARM() Backend[uint64] {
	c.mustBe(AArch64)
	return armBackend{c}
}

// RISCV returns the RISC-V backend of c: csrrci mstatus; csrs mstatus.
func (c *Core) RISCV() Backend[uint8] {
	c.mustBe(RISCV64)
	return riscvBackend{c}
}

func (c *Core) mustBe(a Arch) {
	if c.arch != a {
		panic("emu: " + a.String() + " backend requested on " + c.arch.String() + " core")
	}
}

type x86Backend struct{ c *Core }

func (b x86Backend) ReadDisable() bool {
	enabled := arch.X86WasEnabled(b.c.reg)
	b.c.reg &^= arch.X86InterruptFlag
	b.c.record(EvtDisable, 0)
	return enabled
}

func (b x86Backend) Restore(enable bool) {
	b.c.record(EvtRestore, 0)
	if enable {
		b.c.reg |= arch.X86InterruptFlag
		b.c.deliver()
	}
}

type armBackend struct{ c *Core }

func (b armBackend) ReadDisable() uint64 {
	daif := b.c.reg
	b.c.reg = arch.DAIFDisable(daif)
	b.c.record(EvtDisable, 0)
	return daif
}

func (b armBackend) Restore(daif uint64) {
	b.c.reg = daif
	b.c.record(EvtRestore, 0)
	b.c.deliver()
}

type riscvBackend struct{ c *Core }

func (b riscvBackend) ReadDisable() uint8 {
	flags := arch.RISCVCapture(b.c.reg)
	b.c.reg &^= arch.MStatusIE
	b.c.record(EvtDisable, 0)
	return flags
}

func (b riscvBackend) Restore(flags uint8) {
	b.c.reg |= uint64(flags)
	b.c.record(EvtRestore, 0)
	b.c.deliver()
}
