package session

// EventKind classifies a session notification.
type EventKind int

const (
	// InputsChanged follows every edit, load and reset of the working inputs.
	InputsChanged EventKind = iota
	// ResultsChanged follows a compute, load or update that replaced the series.
	ResultsChanged
	// CasesRefreshed follows every successful refresh of the case listing.
	CasesRefreshed
	// StateChanged follows every transition of the active-case state.
	StateChanged
	// Warning reports a validation failure that aborted an operation.
	Warning
)

func (k EventKind) String() string {
	switch k {
	case InputsChanged:
		return "inputs-changed"
	case ResultsChanged:
		return "results-changed"
	case CasesRefreshed:
		return "cases-refreshed"
	case StateChanged:
		return "state-changed"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Event is one notification.
type Event struct {
	Kind    EventKind
	Message string
}

// Notifier receives session events. Notify is called synchronously after the
// change is applied, with no Manager lock held.
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Event)

// Notify calls f(e).
func (f NotifierFunc) Notify(e Event) {
	f(e)
}

type nopNotifier struct{}

func (nopNotifier) Notify(Event) {}
