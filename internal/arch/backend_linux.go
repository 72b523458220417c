//go:build linux && !tamago && !baremetal

package arch

import (
	"fmt"
	"runtime"
	"syscall"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Name identifies the compiled-in backend.
const Name = "posix"

// Flags is the calling thread's signal mask before masking.
type Flags = unix.Sigset_t

// faultSignals are raised synchronously by the faulting instruction. The
// runtime turns them into panics, which it can only do while they are
// unblocked; a blocked fault kills the process.
var faultSignals = []syscall.Signal{
	unix.SIGSEGV, unix.SIGBUS, unix.SIGFPE, unix.SIGILL, unix.SIGTRAP,
}

var allSignals = fillSigset()

func fillSigset() unix.Sigset_t {
	var set unix.Sigset_t
	for i := range set.Val {
		set.Val[i] = ^set.Val[i]
	}
	bits := int(unsafe.Sizeof(set.Val[0])) * 8
	for _, sig := range faultSignals {
		n := int(sig) - 1
		set.Val[n/bits] &^= 1 << (n % bits)
	}
	return set
}

// ReadDisable pins the goroutine to its thread and blocks every asynchronous
// signal on that thread, returning the previous mask. The fault signals in
// faultSignals stay unblocked so a runtime panic inside the masked region
// still unwinds. The kernel silently ignores SIGKILL and SIGSTOP.
//
// Signal masks are per thread, so the goroutine stays locked until the
// matching Restore. LockOSThread calls nest.
func ReadDisable() Flags {
	runtime.LockOSThread()
	var old unix.Sigset_t
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, &allSignals, &old); err != nil {
		panic(fmt.Errorf("irqmask: block signals: %w", err))
	}
	return old
}

// Restore installs the captured mask again and unpins the goroutine. Pending
// signals that were held back are delivered as the mask drops.
func Restore(old Flags) {
	if err := unix.PthreadSigmask(unix.SIG_SETMASK, &old, nil); err != nil {
		panic(fmt.Errorf("irqmask: restore signal mask: %w", err))
	}
	runtime.UnlockOSThread()
}
