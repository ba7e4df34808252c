package apiclient

import (
	"context"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/paychain/internal/client/apitest"
	"github.com/dmitrijs2005/paychain/internal/logging"
	"github.com/stretchr/testify/require"
)

func TestReporter_ForwardsErrorResponses(t *testing.T) {
	b := apitest.New(t)
	c := New(b.URL())

	b.FailNext(apitest.RouteHealth, http.StatusInternalServerError)
	err := c.Health(context.Background())
	require.ErrorIs(t, err, ErrServer)

	require.NoError(t, c.Close())

	reports := b.Reports()
	require.Len(t, reports, 1)
	require.EqualValues(t, 500, reports[0]["status"])
	require.Equal(t, "GET", reports[0]["method"])
	require.Equal(t, "/health", reports[0]["url"])
	require.NotEmpty(t, reports[0]["id"])
	require.Equal(t, ReportStats{Sent: 1}, c.Reporter().Stats())
}

func TestReporter_FailuresAreCountedNotPropagated(t *testing.T) {
	b := apitest.New(t)
	c := New(b.URL())

	b.FailNext(apitest.RouteLogError, http.StatusInternalServerError)
	b.FailNext(apitest.RouteHealth, http.StatusBadRequest)

	err := c.Health(context.Background())
	require.ErrorIs(t, err, ErrRequest)
	require.NoError(t, c.Close())

	require.Equal(t, ReportStats{Failed: 1}, c.Reporter().Stats())
	require.Empty(t, b.Reports())
}

func TestReporter_DropsWhenFullOrClosed(t *testing.T) {
	b := apitest.New(t)
	release := b.Hold(apitest.RouteLogError)

	r := NewReporter(b.URL(), nil, logging.NewNop(), 1)
	// first is picked up by the worker and blocks; second fills the queue
	r.Report(ErrorReport{Status: 500})
	require.Eventually(t, func() bool { return b.Hits(apitest.RouteLogError) == 1 }, timeout, tick)
	r.Report(ErrorReport{Status: 501})
	r.Report(ErrorReport{Status: 502})

	release()
	r.Close()
	r.Report(ErrorReport{Status: 503})

	require.Equal(t, ReportStats{Sent: 2, Dropped: 2}, r.Stats())
}
