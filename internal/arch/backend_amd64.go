//go:build !tinygo && (tamago || baremetal) && amd64

package arch

// Name identifies the compiled-in backend.
const Name = "x86_64"

// Flags records whether IF was set before disabling.
type Flags = bool

// ReadDisable reads RFLAGS, keeps IF and executes CLI.
func ReadDisable() Flags

// Restore executes STI when the captured IF was set, otherwise does nothing.
func Restore(enable Flags)
