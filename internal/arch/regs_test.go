package arch

import "testing"

func TestX86WasEnabled(t *testing.T) {
	testCases := []struct {
		rflags   uint64
		expected bool
	}{
		{0, false},
		{X86InterruptFlag, true},
		{0x202, true},  // typical user RFLAGS: reserved bit 1 + IF
		{0x002, false}, // reserved bit only
		{^uint64(X86InterruptFlag), false},
	}

	for _, tc := range testCases {
		if got := X86WasEnabled(tc.rflags); got != tc.expected {
			t.Errorf("X86WasEnabled(%#x): expected %v, got %v", tc.rflags, tc.expected, got)
		}
	}
}

func TestDAIFDisable(t *testing.T) {
	if got := DAIFDisable(0); got != DAIF_A|DAIF_I|DAIF_F {
		t.Errorf("Expected A|I|F set, got %#x", got)
	}

	// D is left alone by DAIFSet #0b111
	if got := DAIFDisable(DAIF_D); got&DAIF_D == 0 {
		t.Errorf("Expected D to survive, got %#x", got)
	}
	if got := DAIFDisable(0); got&DAIF_D != 0 {
		t.Errorf("Expected D to stay clear, got %#x", got)
	}
}

func TestRISCVCapture(t *testing.T) {
	testCases := []struct {
		mstatus  uint64
		expected uint8
	}{
		{0, 0},
		{MStatusMIE, MStatusMIE},
		{MStatusSIE, MStatusSIE},
		{0xff, MStatusIE},
		{1<<7 | 1<<5 | 1<<0, 0}, // MPIE, SPIE, UIE only
		{1 << 40, 0},
	}

	for _, tc := range testCases {
		if got := RISCVCapture(tc.mstatus); got != tc.expected {
			t.Errorf("RISCVCapture(%#x): expected %#x, got %#x", tc.mstatus, tc.expected, got)
		}
	}
}
