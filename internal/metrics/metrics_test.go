package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.ObserveSubmission("fourbyfour", "incorrect")
	m.ObserveSubmission("fourbyfour", "incorrect")
	m.ObserveSubmission("fourbyfour", "puzzle_solved")
	m.ObserveResponse("fourbyfour", true)
	m.ObserveReset("fourbyfour")
	m.ObserveRegistration()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("fourbyfour", "incorrect")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.submissions.WithLabelValues("fourbyfour", "puzzle_solved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.responses.WithLabelValues("fourbyfour", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resets.WithLabelValues("fourbyfour")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.visitors))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSubmission("p", "incorrect")
		m.ObserveResponse("p", false)
		m.ObserveReset("p")
		m.ObserveRegistration()
	})
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveResponse("demo", false)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `scavenger_responses_total{correct="false",puzzle="demo"} 1`))
}
