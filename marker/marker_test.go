package marker

import (
	"sync"
	"sync/atomic"
	"testing"
)

type ticks uint32

type owned struct {
	n int
}

func (owned) HandlerTransferable() {}

type shared struct {
	mu sync.Mutex
}

func (*shared) HandlerShareable() {}

var (
	_ Transferable = owned{}
	_ Transferable = (*owned)(nil)
	_ Shareable    = (*shared)(nil)
)

func TestAssertionsInstantiate(t *testing.T) {
	// Each call must compile; the bodies are empty.
	AssertTransferable[owned]()
	AssertShareable[*shared]()
	AssertScalar[uint8]()
	AssertScalar[ticks]()
	AssertScalar[string]()
	AssertSync[sync.Mutex]()
	AssertSync[atomic.Uint64]()
}

func TestPredicatesAreIndependent(t *testing.T) {
	var v any = owned{}
	if _, ok := v.(Shareable); ok {
		t.Error("Expected owned not to be Shareable")
	}
	if _, ok := v.(Transferable); !ok {
		t.Error("Expected owned to be Transferable")
	}

	var p any = &shared{}
	if _, ok := p.(Transferable); ok {
		t.Error("Expected *shared not to be Transferable")
	}
}
