package dims

// EventKind classifies allocation events.
type EventKind int

const (
	EventScopeEnter EventKind = iota
	EventScopeExit
	EventBind
	EventFree
	EventCursor
	EventStash
	EventRestore
)

func (k EventKind) String() string {
	switch k {
	case EventScopeEnter:
		return "scope-enter"
	case EventScopeExit:
		return "scope-exit"
	case EventBind:
		return "bind"
	case EventFree:
		return "free"
	case EventCursor:
		return "cursor"
	case EventStash:
		return "stash"
	case EventRestore:
		return "restore"
	default:
		return "unknown"
	}
}

// Event is one observable allocation step. Scope carries the scope kind
// for enter/exit and stash/restore, and the visibility class for binds.
// Dim carries the binding dim, or the new cursor value for EventCursor.
type Event struct {
	Kind  EventKind
	Scope string
	Name  string
	Dim   int
}
