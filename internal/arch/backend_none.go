//go:build (!linux && !tamago && !baremetal) || (!tinygo && (tamago || baremetal) && !amd64 && !arm64 && !riscv64)

package arch

// Name identifies the compiled-in backend.
const Name = "none"

// Flags carries nothing on targets without a masking primitive.
type Flags = struct{}

// ReadDisable is a no-op.
func ReadDisable() Flags {
	return Flags{}
}

// Restore is a no-op.
func Restore(Flags) {}
