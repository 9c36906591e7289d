package order

import (
	"fmt"
	"strings"

	"batchplant/internal/pkg/errs"
)

// Status is the lifecycle state of a production order.
//
// State transitions:
//
//	Draft ──resume──> Running ──pause──> Paused
//	  │                 ▲  │               │
//	  │                 │  └──complete──> Done
//	  │                 └─────resume───────┤
//	  └──stop──> Stopped <──stop───────────┘
//	               │
//	               └──resume──> Running
//
// Running also stops directly. Done is final.
type Status int

const (
	// Unknown catches uninitialized values.
	Unknown Status = iota

	// Draft is the state of a freshly placed order. No row has been started.
	Draft

	// Running orders may begin rows.
	Running

	// Paused orders keep their ledger but refuse to begin rows until resumed.
	Paused

	// Stopped orders were halted by the operator. They may still be resumed.
	Stopped

	// Done orders have every row done. This is a final state.
	Done
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown: "unknown",
		Draft:   "draft",
		Running: "running",
		Paused:  "paused",
		Stopped: "stopped",
		Done:    "done",
	}
}

// Validate rejects Unknown and out-of-range values, e.g. ones read from storage.
func (s Status) Validate() error {
	if s <= Unknown || s > Done {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the lower-case name used on the wire and in the database.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "unknown"
}

// ParseStatus is the inverse of String. Matching ignores case.
func ParseStatus(s string) (Status, error) {
	for status, name := range getStatusStrings() {
		if status != Unknown && strings.EqualFold(name, s) {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", s))
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Done
}

// ValidateBeginRow returns an IllegalTransitionError unless the order is Running.
// Only running orders may start a discharge.
func (s Status) ValidateBeginRow() error {
	if s != Running {
		return errs.NewIllegalTransitionError("begin row", s.String())
	}
	return nil
}

// Pause transitions Running -> Paused.
func (s Status) Pause() (Status, error) {
	if s != Running {
		return Unknown, errs.NewIllegalTransitionError("pause", s.String())
	}
	return Paused, nil
}

// Resume transitions Draft, Paused or Stopped -> Running.
//
// Resuming a stopped order is permitted: stop halts production, it does not
// cancel the order.
func (s Status) Resume() (Status, error) {
	switch s {
	case Draft, Paused, Stopped:
		return Running, nil
	default:
		return Unknown, errs.NewIllegalTransitionError("resume", s.String())
	}
}

// Stop transitions Draft, Running or Paused -> Stopped.
func (s Status) Stop() (Status, error) {
	switch s {
	case Draft, Running, Paused:
		return Stopped, nil
	default:
		return Unknown, errs.NewIllegalTransitionError("stop", s.String())
	}
}

// Complete transitions Running -> Done. Callers must make sure every row is done.
func (s Status) Complete() (Status, error) {
	if s != Running {
		return Unknown, errs.NewIllegalTransitionError("complete", s.String())
	}
	return Done, nil
}
