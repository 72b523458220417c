// Package arch holds the per-target interrupt backends. Exactly one backend is
// compiled into a build; each provides
//
//	func ReadDisable() Flags
//	func Restore(flags Flags)
//
// and a Name constant. ReadDisable captures whether asynchronous preemption was
// enabled and disables it in one step. Restore re-establishes exactly the
// captured condition.
//
// The register layouts below are shared with the software cores in
// internal/emu, which replay the same algorithms on plain integers.
package arch

// x86-64 RFLAGS.
const (
	X86InterruptFlag = 1 << 9 // IF
)

// AArch64 DAIF register bits.
const (
	DAIF_F = 1 << 6 // FIQ mask
	DAIF_I = 1 << 7 // IRQ mask
	DAIF_A = 1 << 8 // SError mask
	DAIF_D = 1 << 9 // debug mask

	// DAIFSetAll is the DAIFSet immediate used on disable: A, I and F.
	DAIFSetAll = 0b111
	// DAIFMaskedAll is DAIFSetAll expressed in register bit positions.
	DAIFMaskedAll = DAIF_A | DAIF_I | DAIF_F
)

// RISC-V mstatus bits.
const (
	MStatusSIE = 1 << 1
	MStatusMIE = 1 << 3

	// MStatusIE are the bits cleared on disable and set again on restore.
	MStatusIE = MStatusSIE | MStatusMIE
)

// X86WasEnabled reports whether an RFLAGS image had interrupts enabled.
func X86WasEnabled(rflags uint64) bool {
	return rflags&X86InterruptFlag == X86InterruptFlag
}

// DAIFDisable returns the DAIF image after `msr DAIFSet, #DAIFSetAll`.
func DAIFDisable(daif uint64) uint64 {
	return daif | DAIFMaskedAll
}

// RISCVCapture reduces an mstatus image to the enable bits that restore may set.
// Capturing only these bits keeps restore from re-setting unrelated low-byte
// bits (UIE, SPIE, MPIE) that changed while masked.
func RISCVCapture(mstatus uint64) uint8 {
	return uint8(mstatus & MStatusIE)
}
