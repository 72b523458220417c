// Package sched keeps a wake-time ordered list of timers that both the main
// loop and interrupt handlers on the same core may schedule into. The list is
// only touched with interrupts disabled.
package sched

import (
	"irqmask"
)

//go:generate go run irqmask/cmd/irqmarkgen

// Timer represents a scheduled event
type Timer struct {
	WakeTime uint32
	Handler  func(*Timer) uint8
	Next     *Timer
}

// HandlerShareable: a Timer is read and relinked by handlers, always with
// interrupts disabled.
func (*Timer) HandlerShareable() {}

const (
	SF_DONE       = 0
	SF_RESCHEDULE = 1
)

//irqmask:derive transferable
type timerList struct {
	head *Timer
}

// Queue is a sorted timer list shared with interrupt handlers.
type Queue struct {
	list *irqmask.Cell[timerList]
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	return &Queue{list: irqmask.NewCell(timerList{})}
}

// HandlerShareable: every access to the list goes through the Cell.
func (*Queue) HandlerShareable() {}

// before reports whether a is earlier than b on the wrapping 32-bit clock.
func before(a, b uint32) bool {
	return int32(a-b) < 0
}

// Schedule adds a timer to the schedule. t must not already be queued.
func (q *Queue) Schedule(t *Timer) {
	q.list.With(func(l *timerList) {
		l.insert(t)
	})
}

// Cancel removes t if it is scheduled and reports whether it was.
func (q *Queue) Cancel(t *Timer) bool {
	g := irqmask.Disable()
	defer g.Restore()
	return q.list.Borrow(&g).remove(t)
}

// Next returns the earliest wake time, if any timer is scheduled.
func (q *Queue) Next() (wake uint32, ok bool) {
	q.list.With(func(l *timerList) {
		if l.head != nil {
			wake, ok = l.head.WakeTime, true
		}
	})
	return wake, ok
}

// Len returns the number of scheduled timers.
func (q *Queue) Len() int {
	var n int
	q.list.With(func(l *timerList) {
		for t := l.head; t != nil; t = t.Next {
			n++
		}
	})
	return n
}

// Dispatch runs every timer due at now and returns how many ran. Handlers run
// with interrupts disabled. A handler returning SF_RESCHEDULE is put back with
// its (updated) WakeTime once the pass is over, so a timer rescheduled into
// the past fires on the next Dispatch rather than looping here. A timer the
// handler already queued again through Schedule is not inserted a second time.
func (q *Queue) Dispatch(now uint32) int {
	g := irqmask.Disable()
	defer g.Restore()

	var again []*Timer
	n := 0
	for {
		l := q.list.Borrow(&g)
		if l.head == nil || before(now, l.head.WakeTime) {
			break
		}
		timer := l.head
		l.head = timer.Next
		timer.Next = nil // Clear Next pointer to avoid circular references

		n++
		if timer.Handler(timer) == SF_RESCHEDULE {
			again = append(again, timer)
		}
	}

	l := q.list.Borrow(&g)
	for _, timer := range again {
		if !l.contains(timer) {
			l.insert(timer)
		}
	}
	return n
}

// insert inserts a timer in sorted order by WakeTime
func (l *timerList) insert(t *Timer) {
	if l.head == nil || before(t.WakeTime, l.head.WakeTime) {
		t.Next = l.head
		l.head = t
		return
	}

	current := l.head
	for current.Next != nil && !before(t.WakeTime, current.Next.WakeTime) {
		current = current.Next
	}

	t.Next = current.Next
	current.Next = t
}

func (l *timerList) contains(t *Timer) bool {
	for cur := l.head; cur != nil; cur = cur.Next {
		if cur == t {
			return true
		}
	}
	return false
}

func (l *timerList) remove(t *Timer) bool {
	for p := &l.head; *p != nil; p = &(*p).Next {
		if *p == t {
			*p = t.Next
			t.Next = nil
			return true
		}
	}
	return false
}
