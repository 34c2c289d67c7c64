package domain

// Status enumerates the variants of ViewState.
type Status int

const (
	// StatusNotStarted means no fetch has been triggered on the screen yet.
	StatusNotStarted Status = iota

	// StatusFetching means a fetch is in flight.
	StatusFetching

	// StatusSuccess means the last fetch produced a quote and its character.
	StatusSuccess

	// StatusFailed means the last fetch ended with an error.
	StatusFailed
)

// String returns the lower-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusNotStarted:
		return "not_started"
	case StatusFetching:
		return "fetching"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ViewState is what a presentation layer renders for one screen.
// The set of implementations is closed: NotStarted, Fetching, Success and Failed.
// Switch on the concrete type to render it.
type ViewState interface {
	Status() Status
	viewState()
}

// NotStarted is the initial state of every screen.
type NotStarted struct{}

// Fetching is set immediately before a request is issued.
type Fetching struct{}

// Success carries a quote together with its resolved character.
// A quote is never exposed without its character.
type Success struct {
	Quote     Quote
	Character Character
}

// Failed carries the error that terminated the last fetch.
type Failed struct {
	Err error
}

func (NotStarted) Status() Status { return StatusNotStarted }
func (Fetching) Status() Status   { return StatusFetching }
func (Success) Status() Status    { return StatusSuccess }
func (Failed) Status() Status     { return StatusFailed }

func (NotStarted) viewState() {}
func (Fetching) viewState()   {}
func (Success) viewState()    {}
func (Failed) viewState()     {}

// Error returns the failure description, or "" for a nil error.
func (f Failed) Error() string {
	if f.Err == nil {
		return ""
	}

	return f.Err.Error()
}
