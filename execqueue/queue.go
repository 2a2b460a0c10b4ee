// Package execqueue implements deferred destruction: callbacks scheduled to
// run N frames from now, flushed once per frame by the driver. It exists so
// that a resource's physical GPU object can be destroyed only once the
// frames that might still reference it (via multi-buffering) have retired.
package execqueue

// Callback is invoked once its scheduled frame arrives.
type Callback func()

// Queue accumulates deferred callbacks and releases the ones whose delay has
// elapsed on each Tick.
type Queue interface {
	// Schedule enqueues fn to run after delayFrames more calls to Tick. A
	// delayFrames of 0 runs fn on the very next Tick.
	//
	// Parameters:
	//   - delayFrames: number of Tick calls to wait before running fn
	//   - fn: the callback to run
	Schedule(delayFrames uint32, fn Callback)

	// Tick advances the queue by one frame, running and removing every
	// callback whose countdown has reached zero. Callbacks run in the order
	// they were scheduled.
	Tick()

	// Pending returns the number of callbacks still waiting to run.
	//
	// Returns:
	//   - int: count of unflushed callbacks
	Pending() int
}

type entry struct {
	framesLeft uint32
	fn         Callback
}

type queue struct {
	entries []entry
}

var _ Queue = &queue{}

// New creates an empty deferred-destruction Queue.
//
// Returns:
//   - Queue: a ready-to-use queue
func New() Queue {
	return &queue{}
}

func (q *queue) Schedule(delayFrames uint32, fn Callback) {
	if fn == nil {
		panic("execqueue: Schedule requires a non-nil callback")
	}
	q.entries = append(q.entries, entry{framesLeft: delayFrames, fn: fn})
}

func (q *queue) Tick() {
	remaining := q.entries[:0]
	for _, e := range q.entries {
		if e.framesLeft == 0 {
			e.fn()
			continue
		}
		e.framesLeft--
		remaining = append(remaining, e)
	}
	q.entries = remaining
}

func (q *queue) Pending() int {
	return len(q.entries)
}
