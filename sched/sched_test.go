package sched

import (
	"testing"
)

func recorder(fired *[]uint32) func(*Timer) uint8 {
	return func(t *Timer) uint8 {
		*fired = append(*fired, t.WakeTime)
		return SF_DONE
	}
}

func TestScheduleOrdersByWakeTime(t *testing.T) {
	q := NewQueue()
	var fired []uint32

	for _, wake := range []uint32{300, 100, 200} {
		q.Schedule(&Timer{WakeTime: wake, Handler: recorder(&fired)})
	}

	if wake, ok := q.Next(); !ok || wake != 100 {
		t.Errorf("Expected next wake 100, got %d (ok=%v)", wake, ok)
	}

	n := q.Dispatch(250)
	if n != 2 {
		t.Errorf("Expected 2 timers to run, got %d", n)
	}
	if len(fired) != 2 || fired[0] != 100 || fired[1] != 200 {
		t.Errorf("Expected [100 200], got %v", fired)
	}
	if q.Len() != 1 {
		t.Errorf("Expected 1 timer left, got %d", q.Len())
	}
}

func TestEqualWakeTimesAreFIFO(t *testing.T) {
	q := NewQueue()
	var order []int

	for i := 0; i < 3; i++ {
		id := i
		q.Schedule(&Timer{WakeTime: 50, Handler: func(*Timer) uint8 {
			order = append(order, id)
			return SF_DONE
		}})
	}

	q.Dispatch(50)
	for i, id := range order {
		if id != i {
			t.Errorf("Expected FIFO order, got %v", order)
			break
		}
	}
}

func TestRescheduleFiresOnLaterDispatch(t *testing.T) {
	q := NewQueue()
	var runs int

	q.Schedule(&Timer{WakeTime: 10, Handler: func(t *Timer) uint8 {
		runs++
		if runs < 3 {
			t.WakeTime += 10
			return SF_RESCHEDULE
		}
		return SF_DONE
	}})

	if n := q.Dispatch(10); n != 1 {
		t.Errorf("Expected 1 run, got %d", n)
	}
	if wake, _ := q.Next(); wake != 20 {
		t.Errorf("Expected rescheduled wake 20, got %d", wake)
	}

	q.Dispatch(20)
	q.Dispatch(30)
	if runs != 3 {
		t.Errorf("Expected 3 runs, got %d", runs)
	}
	if _, ok := q.Next(); ok {
		t.Error("Expected empty queue")
	}
}

func TestRescheduleIntoPastDoesNotLoop(t *testing.T) {
	q := NewQueue()
	q.Schedule(&Timer{WakeTime: 5, Handler: func(*Timer) uint8 { return SF_RESCHEDULE }})

	if n := q.Dispatch(100); n != 1 {
		t.Errorf("Expected exactly 1 run per Dispatch, got %d", n)
	}
	if n := q.Dispatch(100); n != 1 {
		t.Errorf("Expected exactly 1 run per Dispatch, got %d", n)
	}
}

func TestHandlerMaySchedule(t *testing.T) {
	q := NewQueue()
	var fired []uint32

	q.Schedule(&Timer{WakeTime: 1, Handler: func(*Timer) uint8 {
		q.Schedule(&Timer{WakeTime: 2, Handler: recorder(&fired)})
		return SF_DONE
	}})

	if n := q.Dispatch(5); n != 2 {
		t.Errorf("Expected 2 runs, got %d", n)
	}
	if len(fired) != 1 || fired[0] != 2 {
		t.Errorf("Expected [2], got %v", fired)
	}
}

func TestCancel(t *testing.T) {
	q := NewQueue()
	var fired []uint32

	a := &Timer{WakeTime: 10, Handler: recorder(&fired)}
	b := &Timer{WakeTime: 20, Handler: recorder(&fired)}
	q.Schedule(a)
	q.Schedule(b)

	if !q.Cancel(a) {
		t.Error("Expected Cancel to find scheduled timer")
	}
	if q.Cancel(a) {
		t.Error("Expected second Cancel to report false")
	}
	if a.Next != nil {
		t.Error("Expected cancelled timer to be unlinked")
	}

	q.Dispatch(30)
	if len(fired) != 1 || fired[0] != 20 {
		t.Errorf("Expected [20], got %v", fired)
	}
}

func TestWakeTimeWraparound(t *testing.T) {
	q := NewQueue()
	var fired []uint32

	q.Schedule(&Timer{WakeTime: 0x00000010, Handler: recorder(&fired)}) // after wrap
	q.Schedule(&Timer{WakeTime: 0xfffffff0, Handler: recorder(&fired)}) // before wrap

	if wake, _ := q.Next(); wake != 0xfffffff0 {
		t.Errorf("Expected pre-wrap timer first, got %#x", wake)
	}

	q.Dispatch(0xfffffff8)
	if len(fired) != 1 {
		t.Fatalf("Expected 1 timer before wrap, got %d", len(fired))
	}

	q.Dispatch(0x00000020)
	if len(fired) != 2 || fired[1] != 0x10 {
		t.Errorf("Expected post-wrap timer to fire, got %v", fired)
	}
}

func TestRescheduleAfterSelfScheduleQueuesOnce(t *testing.T) {
	q := NewQueue()
	var runs int

	q.Schedule(&Timer{WakeTime: 10, Handler: func(t *Timer) uint8 {
		runs++
		t.WakeTime += 10
		q.Schedule(t)
		return SF_RESCHEDULE
	}})

	q.Dispatch(10)
	if q.Len() != 1 {
		t.Errorf("Expected 1 queued timer, got %d", q.Len())
	}
	if wake, _ := q.Next(); wake != 20 {
		t.Errorf("Expected wake 20, got %d", wake)
	}

	q.Dispatch(20)
	if runs != 2 {
		t.Errorf("Expected 2 runs, got %d", runs)
	}
	if q.Len() != 1 {
		t.Errorf("Expected 1 queued timer, got %d", q.Len())
	}
}
