//go:build !tinygo && (tamago || baremetal) && arm64

package arch

// Name identifies the compiled-in backend.
const Name = "aarch64"

// Flags is the full DAIF image read before masking.
type Flags = uint64

// ReadDisable reads DAIF and then sets A, I and F.
func ReadDisable() Flags

// Restore writes the captured DAIF image back unconditionally.
func Restore(daif Flags)
