package statechart

import (
	"sync"
	"time"
)

// eventRecord is an event name plus its opaque payload (spec.md §3
// "Event").
type eventRecord struct {
	name EventName
	data any
}

// delayedEntry is a scheduled future event (spec.md §3 "Queued delayed
// event").
type delayedEntry struct {
	event    eventRecord
	cancelID string
	timer    *time.Timer
	fired    bool
}

// eventQueue holds the two FIFOs (spec.md §4.2) plus the delayed-event
// registry. fire is invoked (outside the queue's own lock) whenever a
// delayed event's timer elapses; the Interpreter wires it to push the
// event onto the external queue and kick the RTC loop.
type eventQueue struct {
	mu       sync.Mutex
	internal []eventRecord
	external []eventRecord
	delayed  map[string]*delayedEntry
	anonSeq  uint64

	fire func(eventRecord)
}

func newEventQueue() *eventQueue {
	return &eventQueue{delayed: make(map[string]*delayedEntry)}
}

func (q *eventQueue) pushInternal(ev eventRecord) {
	q.mu.Lock()
	q.internal = append(q.internal, ev)
	q.mu.Unlock()
}

func (q *eventQueue) pushExternal(ev eventRecord) {
	q.mu.Lock()
	q.external = append(q.external, ev)
	q.mu.Unlock()
}

func (q *eventQueue) popInternal() (eventRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.internal) == 0 {
		return eventRecord{}, false
	}
	ev := q.internal[0]
	q.internal = q.internal[1:]
	return ev, true
}

func (q *eventQueue) popExternal() (eventRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.external) == 0 {
		return eventRecord{}, false
	}
	ev := q.external[0]
	q.external = q.external[1:]
	return ev, true
}

func (q *eventQueue) hasExternal() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.external) > 0
}

// schedule arranges for ev to be pushed onto the external queue after
// delay elapses. An empty cancelID makes the entry uncancellable except
// by the Interpreter shutting down (an internal sequence number is still
// assigned so two uncancelled delayed events don't collide).
func (q *eventQueue) schedule(ev eventRecord, delay time.Duration, cancelID string) {
	q.mu.Lock()
	key := cancelID
	if key == "" {
		q.anonSeq++
		key = anonCancelKey(q.anonSeq)
	}
	entry := &delayedEntry{event: ev, cancelID: cancelID}
	q.delayed[key] = entry
	q.mu.Unlock()

	entry.timer = time.AfterFunc(delay, func() {
		q.mu.Lock()
		if entry.fired {
			q.mu.Unlock()
			return
		}
		entry.fired = true
		delete(q.delayed, key)
		fire := q.fire
		q.mu.Unlock()
		if fire != nil {
			fire(ev)
		}
	})
}

// cancel removes an as-yet-unfired delayed event matching id; a no-op if
// already fired or unknown (spec.md §5).
func (q *eventQueue) cancel(id string) {
	q.mu.Lock()
	entry, ok := q.delayed[id]
	if ok {
		delete(q.delayed, id)
	}
	q.mu.Unlock()
	if ok && entry.timer != nil {
		entry.timer.Stop()
	}
}

// stopAll cancels every pending delayed event; used when an Interpreter is
// abandoned, so tests don't leak timers.
func (q *eventQueue) stopAll() {
	q.mu.Lock()
	entries := make([]*delayedEntry, 0, len(q.delayed))
	for k, e := range q.delayed {
		entries = append(entries, e)
		delete(q.delayed, k)
	}
	q.mu.Unlock()
	for _, e := range entries {
		if e.timer != nil {
			e.timer.Stop()
		}
	}
}

func anonCancelKey(seq uint64) string {
	const hex = "0123456789abcdef"
	var digits []byte
	if seq == 0 {
		digits = []byte{'0'}
	}
	for seq > 0 {
		digits = append([]byte{hex[seq%16]}, digits...)
		seq /= 16
	}
	return "__anon_" + string(digits)
}
