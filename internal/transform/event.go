package transform

// EventKind identifies what a rule did to a document.
type EventKind int

const (
	// EventURLRemoved is emitted for each url record removed by name.
	EventURLRemoved EventKind = iota
	// EventURLsRemovedTotal is emitted once after name-based removal when at
	// least one record was removed.
	EventURLsRemovedTotal
	// EventURLUpdated is emitted for each url that was rewritten.
	EventURLUpdated
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case EventURLRemoved:
		return "url_removed"
	case EventURLsRemovedTotal:
		return "urls_removed_total"
	case EventURLUpdated:
		return "url_updated"
	default:
		return "unknown"
	}
}

// Event describes one change made by the URL Rewriter.
// Events are emitted as the rewriter works, so a call that later fails may
// already have emitted some of them.
type Event struct {
	Kind EventKind

	// File is the base name of the file being rewritten.
	File string

	// Name is the name of the removed record (EventURLRemoved).
	Name string

	// Before and After hold the url before and after rewriting
	// (EventURLUpdated).
	Before string
	After  string

	// Count is the number of removed records (EventURLsRemovedTotal).
	Count int
}

// EventSink receives rewriter events. A nil sink discards them.
type EventSink func(Event)

func (s EventSink) emit(e Event) {
	if s != nil {
		s(e)
	}
}
