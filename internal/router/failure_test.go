package router

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/andina-core/sqs-event-router/internal/forward"
	"github.com/andina-core/sqs-event-router/internal/routing"
)

var allKinds = []FailureKind{
	FailNone, FailUnknownEnvironment, FailUnknownType, FailNoRoute,
	FailServiceUnavailable, FailTimeout, FailTransport, FailStatus,
}

func TestAlwaysAcknowledge_NeverReports(t *testing.T) {
	p := AlwaysAcknowledge{}
	for _, k := range allKinds {
		assert.False(t, p.Report(k), "kind=%v", k)
	}
}

func TestReportTransient_Decide(t *testing.T) {
	p := ReportTransient{}
	cases := []struct {
		kind FailureKind
		want bool
	}{
		{FailNone, false},
		{FailUnknownEnvironment, false},
		{FailUnknownType, false},
		{FailNoRoute, false},
		{FailServiceUnavailable, true},
		{FailTimeout, true},
		{FailTransport, true},
		{FailStatus, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, p.Report(tc.kind), tc.kind.Outcome())
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, FailNone, kindOf(nil))
	assert.Equal(t, FailUnknownEnvironment, kindOf(ErrUnknownEnvironment))
	assert.Equal(t, FailUnknownType, kindOf(routing.ErrUnknownType))
	assert.Equal(t, FailNoRoute, kindOf(errors.Wrap(routing.ErrNoRoute, "type x")))
	assert.Equal(t, FailServiceUnavailable, kindOf(errors.Wrap(forward.ErrServiceUnavailable, "dial")))
	assert.Equal(t, FailTimeout, kindOf(errors.Wrap(forward.ErrTimeout, "x")))
	assert.Equal(t, FailStatus, kindOf(errors.Wrap(forward.ErrUnexpectedStatus, "status 500")))
	assert.Equal(t, FailTransport, kindOf(errors.New("other")))
}

func TestFailureKind_Skipped(t *testing.T) {
	for _, k := range allKinds {
		want := k == FailUnknownEnvironment || k == FailUnknownType || k == FailNoRoute
		assert.Equal(t, want, k.Skipped(), k.Outcome())
	}
}
