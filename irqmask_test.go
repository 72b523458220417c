package irqmask

import (
	"errors"
	"testing"
)

type counter struct {
	n int
}

func (counter) HandlerTransferable() {}

type ticks uint32

func (ticks) HandlerTransferable() {}

func TestBackendName(t *testing.T) {
	switch name := Backend(); name {
	case "x86_64", "aarch64", "riscv64", "tinygo", "posix", "none":
	default:
		t.Errorf("Unexpected backend name %q", name)
	}
}

func TestGuardRestoreTwicePanics(t *testing.T) {
	g := Disable()
	if !g.Live() {
		t.Fatal("Expected new guard to be live")
	}
	g.Restore()
	if g.Live() {
		t.Fatal("Expected restored guard not to be live")
	}

	defer func() {
		if recover() == nil {
			t.Error("Expected panic on second Restore")
		}
	}()
	g.Restore()
}

func TestDoRunsFunction(t *testing.T) {
	var ran bool
	Do(func() { ran = true })
	if !ran {
		t.Error("Do did not run the function")
	}
}

func TestCallReturnsValue(t *testing.T) {
	got := Call(func() int { return 42 })
	if got != 42 {
		t.Errorf("Expected 42, got %d", got)
	}

	err := Call(func() error { return errors.New("boom") })
	if err == nil || err.Error() != "boom" {
		t.Errorf("Expected boom error, got %v", err)
	}
}

func TestDoPropagatesPanic(t *testing.T) {
	defer func() {
		if r := recover(); r != "inner" {
			t.Errorf("Expected panic value %q, got %v", "inner", r)
		}
	}()
	Do(func() { panic("inner") })
}

func TestNestedCall(t *testing.T) {
	got := Call(func() int {
		return Call(func() int { return 1 }) + 1
	})
	if got != 2 {
		t.Errorf("Expected 2, got %d", got)
	}
}

func TestCellWith(t *testing.T) {
	c := NewCell(counter{})
	for i := 0; i < 3; i++ {
		c.With(func(v *counter) { v.n++ })
	}

	old := c.Replace(counter{n: 10})
	if old.n != 3 {
		t.Errorf("Expected 3, got %d", old.n)
	}

	g := Disable()
	if n := c.Borrow(&g).n; n != 10 {
		t.Errorf("Expected 10, got %d", n)
	}
	g.Restore()
}

func TestCellScalarPayload(t *testing.T) {
	c := NewCell(ticks(0xfffffffe))
	c.With(func(v *ticks) { *v += 3 })

	if got := c.Replace(0); got != 1 {
		t.Errorf("Expected wrapped value 1, got %d", got)
	}
}

func TestCellBorrowWithoutLiveGuardPanics(t *testing.T) {
	c := NewCell(counter{})
	g := Disable()
	g.Restore()

	defer func() {
		if recover() == nil {
			t.Error("Expected panic when borrowing with a restored guard")
		}
	}()
	c.Borrow(&g)
}
