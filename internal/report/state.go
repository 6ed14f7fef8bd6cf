package report

import "time"

// Phase is the loading state of a report view.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseLoaded  Phase = "loaded"
	PhaseFailed  Phase = "failed"
)

// LoadFailedMessage is the only failure text shown to users.
const LoadFailedMessage = "Failed to load student reports"

// FailurePolicy decides what a failed load does to the previous report.
type FailurePolicy string

const (
	FailureRetain FailurePolicy = "retain"
	FailureClear  FailurePolicy = "clear"
)

// ViewState is what a report view renders. Values are only produced by
// Reduce and must be treated as read-only by callers.
type ViewState struct {
	Phase      Phase            `json:"phase"`
	Filter     Filter           `json:"filter"`
	Generation uint64           `json:"generation"`
	Students   []StudentSummary `json:"students"`
	Stats      Stats            `json:"stats"`
	Error      string           `json:"error,omitempty"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// NewViewState returns the idle state of a view that never loaded.
func NewViewState() ViewState {
	return ViewState{Phase: PhaseIdle, Filter: Filter{Subject: FilterAll, Semester: FilterAll}, Students: []StudentSummary{}}
}

// Event drives a ViewState transition.
type Event interface{ isEvent() }

// LoadStarted is emitted when a load for Filter begins.
type LoadStarted struct {
	Generation uint64
	Filter     Filter
	At         time.Time
}

// LoadSucceeded carries the computed rows of a finished load.
type LoadSucceeded struct {
	Generation uint64
	Students   []StudentSummary
	At         time.Time
}

// LoadFailed reports a load that could not complete.
type LoadFailed struct {
	Generation uint64
	Err        error
	At         time.Time
}

func (LoadStarted) isEvent()   {}
func (LoadSucceeded) isEvent() {}
func (LoadFailed) isEvent()    {}

// Reduce applies e to s and returns the next state.
//
// Starts must carry a newer generation than s; completions must carry
// exactly s's generation. Anything else is a stale event and leaves s
// unchanged. While loading, the previous rows stay visible.
func Reduce(s ViewState, e Event, policy FailurePolicy) ViewState {
	switch ev := e.(type) {
	case LoadStarted:
		if ev.Generation <= s.Generation && s.Phase != PhaseIdle {
			return s
		}
		next := s
		next.Phase = PhaseLoading
		next.Filter = ev.Filter
		next.Generation = ev.Generation
		next.Error = ""
		next.UpdatedAt = ev.At
		if next.Students == nil {
			next.Students = []StudentSummary{}
		}
		return next

	case LoadSucceeded:
		if ev.Generation != s.Generation || s.Phase != PhaseLoading {
			return s
		}
		rows := make([]StudentSummary, len(ev.Students))
		copy(rows, ev.Students)
		next := s
		next.Phase = PhaseLoaded
		next.Students = rows
		next.Stats = Aggregate(rows)
		next.Error = ""
		next.UpdatedAt = ev.At
		return next

	case LoadFailed:
		if ev.Generation != s.Generation || s.Phase != PhaseLoading {
			return s
		}
		next := s
		next.Phase = PhaseFailed
		next.Error = LoadFailedMessage
		next.UpdatedAt = ev.At
		if policy == FailureClear {
			next.Students = []StudentSummary{}
			next.Stats = Stats{}
		}
		return next
	}
	return s
}
