package generate

// State describes the lifecycle of a Generator run:
// Idle -> Running -> Completed | Cancelled | Failed.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// EventKind discriminates the notifications emitted during a run.
type EventKind int

const (
	// EventProgress is emitted after each generated page.
	EventProgress EventKind = iota
	// EventCompleted is the terminal event of a successful run.
	EventCompleted
	// EventCancelled is the terminal event of a run stopped by Cancel.
	// No output artifact is kept.
	EventCancelled
	// EventFailed is the terminal event of an aborted run. No partial
	// output is kept.
	EventFailed
)

// Event is one asynchronous notification from a generation run. Events are
// delivered in the order they are produced; Current is monotonic. Exactly
// one terminal event (Completed, Cancelled or Failed) ends the stream, after
// which the channel is closed.
type Event struct {
	Kind    EventKind
	Current int    // pages produced so far
	Total   int    // total pages requested
	Message string // human-readable progress description

	// Completed only.
	Output   string         // output path, empty when writing to a caller-supplied sink
	Failures []FieldFailure // per-field fit failures that were isolated, if any

	// Failed only.
	Err error
}

// FieldFailure records one field on one row whose text could not be fitted
// even after the retry escalation. The combination is dropped from the
// output page; the run continues.
type FieldFailure struct {
	Row      int    // zero-based row index
	FieldID  string // field identifier
	DataNode string // bound data node name
	Reason   string
}
