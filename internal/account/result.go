package account

import "errors"

// ErrBusy is returned when a write or sign-out is attempted while the
// controller is still loading or saving.
var ErrBusy = errors.New("profile is busy, try again")

// ServiceError wraps any backend failure that is neither an auth failure nor
// an empty profile. Error returns the cause's message so it can be shown as is.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return e.Err.Error()
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// Phase is the lifecycle stage of the profile view.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	default:
		return "unknown"
	}
}

// Status tells which way a controller operation ended.
type Status int

const (
	StatusLoaded Status = iota
	StatusEmpty
	StatusSaved
	StatusSignedOut
	StatusBusy
	StatusStale
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusLoaded:
		return "loaded"
	case StatusEmpty:
		return "empty"
	case StatusSaved:
		return "saved"
	case StatusSignedOut:
		return "signed_out"
	case StatusBusy:
		return "busy"
	case StatusStale:
		return "stale"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// View is what the account page displays. Empty strings mean the field is unset.
type View struct {
	Phase     Phase
	Loading   bool
	UserID    string
	Username  string
	Website   string
	AvatarURL string
}

// Result is the outcome of a controller operation together with the view
// as it stands after the operation.
type Result struct {
	Status Status
	View   View
	Err    error

	// Written reports whether the profile row was upserted. A stale result
	// may still have written it.
	Written bool
	// Replaced is the avatar reference the written row no longer points to.
	Replaced string
}

// OK reports whether the operation needs no notification.
func (r Result) OK() bool {
	return r.Err == nil
}

// Fields is a partial profile update. Nil fields keep the current value.
type Fields struct {
	Username  *string
	Website   *string
	AvatarURL *string
}
