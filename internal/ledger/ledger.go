// Package ledger keeps a bounded, insertion-ordered history of received
// webhook deliveries in memory.
package ledger

import (
	"sync"

	"github.com/google/uuid"
)

// DefaultCapacity is the number of records kept when no capacity is given.
const DefaultCapacity = 50

// Ledger is a fixed-capacity FIFO ring of records with pub/sub fan-out for
// live viewers. All methods are safe for concurrent use.
type Ledger struct {
	epoch string

	mu    sync.Mutex
	ring  []Record
	start int
	size  int

	nextSeq int64

	subs      map[int]chan Record
	nextSubID int
}

// New creates an empty ledger. A non-positive capacity falls back to
// DefaultCapacity.
func New(capacity int) *Ledger {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Ledger{
		epoch: uuid.NewString(),
		ring:  make([]Record, capacity),
		subs: make(map[int]chan Record),
	}
}

// Append stores rec at the end of the ledger, evicting the oldest record when
// the ledger is full. The stored copy (with its assigned Seq) is returned.
func (l *Ledger) Append(rec Record) Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.nextSeq++
	rec.Seq = l.nextSeq
	rec.Epoch = l.epoch
	l.pushLocked(rec)

	for _, ch := range l.subs {
		// Slow subscribers miss records rather than block ingest.
		select {
		case ch <- rec:
		default:
		}
	}
	return rec
}

// Snapshot returns up to limit of the most recent records, newest first.
func (l *Ledger) Snapshot(limit int) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	if limit <= 0 {
		return []Record{}
	}
	n := min(limit, l.size)
	out := make([]Record, 0, n)
	for i := l.size - 1; i >= l.size-n; i-- {
		out = append(out, l.ring[(l.start+i)%len(l.ring)])
	}
	return out
}

// SnapshotSince returns buffered records with Seq > lastSeq, oldest first.
func (l *Ledger) SnapshotSince(lastSeq int64) []Record {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Record, 0, l.size)
	for i := 0; i < l.size; i++ {
		rec := l.ring[(l.start+i)%len(l.ring)]
		if rec.Seq > lastSeq {
			out = append(out, rec)
		}
	}
	return out
}

// Subscribe registers a live listener. The returned cancel func closes the
// channel and must be called once the caller is done.
func (l *Ledger) Subscribe() (<-chan Record, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	id := l.nextSubID
	l.nextSubID++
	ch := make(chan Record, 64)
	l.subs[id] = ch

	cancel := func() {
		l.mu.Lock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
		l.mu.Unlock()
	}
	return ch, cancel
}

// Len returns the number of records currently held.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

// Total returns how many records were appended since creation.
func (l *Ledger) Total() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.nextSeq
}

// Epoch identifies this ledger instance. Seq values are only comparable
// between records with the same epoch; a restarted receiver starts a new one.
func (l *Ledger) Epoch() string {
	return l.epoch
}

// Capacity returns the fixed capacity.
func (l *Ledger) Capacity() int {
	return len(l.ring)
}

func (l *Ledger) pushLocked(rec Record) {
	capacity := len(l.ring)
	if l.size < capacity {
		l.ring[(l.start+l.size)%capacity] = rec
		l.size++
		return
	}

	// Overwrite oldest.
	l.ring[l.start] = rec
	l.start = (l.start + 1) % capacity
}
