//go:build !tinygo && (tamago || baremetal) && riscv64

package arch

// Name identifies the compiled-in backend.
const Name = "riscv64"

// Flags holds the MIE and SIE bits of mstatus as they were before masking.
type Flags = uint8

// ReadDisable atomically clears MIE and SIE, returning their prior values.
func ReadDisable() Flags

// Restore atomically ORs the captured bits back into mstatus.
func Restore(flags Flags)
