package router

import (
	"github.com/pkg/errors"

	"github.com/andina-core/sqs-event-router/internal/forward"
	"github.com/andina-core/sqs-event-router/internal/routing"
)

var (
	ErrUnknownEnvironment = errors.New("unknown environment")
	ErrPanic              = errors.New("panic while processing record")
)

// FailureKind enumerates where in the pipeline a record failed.
type FailureKind int

const (
	// FailNone indicates the downstream service answered 200.
	FailNone FailureKind = iota
	// FailUnknownEnvironment indicates no environment could be read from the queue name.
	FailUnknownEnvironment
	// FailUnknownType indicates no classification rule matched the queue name.
	FailUnknownType
	// FailNoRoute indicates the type has no configured target.
	FailNoRoute
	// FailServiceUnavailable indicates the connection was refused or the host unreachable.
	FailServiceUnavailable
	// FailTimeout indicates the outbound call exceeded its timeout.
	FailTimeout
	// FailTransport indicates any other transport fault, including recovered panics.
	FailTransport
	// FailStatus indicates the service answered with a status other than 200.
	FailStatus
)

var kindNames = map[FailureKind]string{
	FailNone:               "delivered",
	FailUnknownEnvironment: "skipped",
	FailUnknownType:        "skipped",
	FailNoRoute:            "skipped",
	FailServiceUnavailable: "service_unavailable",
	FailTimeout:            "timeout",
	FailTransport:          "unexpected_error",
	FailStatus:             "rejected",
}

// Outcome is the value logged in the "outcome" field.
func (k FailureKind) Outcome() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unexpected_error"
}

// Skipped reports whether the record never reached the network.
func (k FailureKind) Skipped() bool {
	return k == FailUnknownEnvironment || k == FailUnknownType || k == FailNoRoute
}

func kindOf(err error) FailureKind {
	switch {
	case err == nil:
		return FailNone
	case errors.Is(err, ErrUnknownEnvironment):
		return FailUnknownEnvironment
	case errors.Is(err, routing.ErrUnknownType):
		return FailUnknownType
	case errors.Is(err, routing.ErrNoRoute):
		return FailNoRoute
	case errors.Is(err, forward.ErrServiceUnavailable):
		return FailServiceUnavailable
	case errors.Is(err, forward.ErrTimeout):
		return FailTimeout
	case errors.Is(err, forward.ErrUnexpectedStatus):
		return FailStatus
	default:
		return FailTransport
	}
}

// AckPolicy decides whether a failed record is reported back to the trigger
// as a batch item failure. Reported records are redelivered by SQS.
type AckPolicy interface {
	Report(kind FailureKind) bool
}

// AlwaysAcknowledge never reports a failure; every record is treated as
// consumed whatever happened to it.
type AlwaysAcknowledge struct{}

func (AlwaysAcknowledge) Report(FailureKind) bool { return false }

// ReportTransient reports failures a redelivery could fix. Classification and
// routing failures stay acknowledged.
type ReportTransient struct{}

func (ReportTransient) Report(kind FailureKind) bool {
	switch kind {
	case FailServiceUnavailable, FailTimeout, FailTransport, FailStatus:
		return true
	default:
		return false
	}
}
