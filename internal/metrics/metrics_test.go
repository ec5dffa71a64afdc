package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordSubmission()
	c.RecordSubmission()
	c.RecordReviewOutcome(OutcomeApproved)
	c.RecordReviewOutcome(OutcomeRejected)
	c.RecordReviewOutcome(OutcomeRejected)
	c.RecordReviewFailure()
	c.RecordReviewLatency(1500 * time.Millisecond)
	c.RecordVote("like")
	c.RecordVote("like")
	c.RecordVote("dislike")

	if got := testutil.ToFloat64(c.submissions); got != 2 {
		t.Errorf("submissions = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.reviewOutcome.WithLabelValues(OutcomeApproved)); got != 1 {
		t.Errorf("reviews approved = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.reviewOutcome.WithLabelValues(OutcomeRejected)); got != 2 {
		t.Errorf("reviews rejected = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.reviewFail); got != 1 {
		t.Errorf("review failures = %v, want 1", got)
	}
	if got := testutil.ToFloat64(c.votes.WithLabelValues("like")); got != 2 {
		t.Errorf("likes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(c.votes.WithLabelValues("dislike")); got != 1 {
		t.Errorf("dislikes = %v, want 1", got)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.RecordSubmission()

	handler := SetupMetricsRoute(reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "ideaswipe_submissions_total 1") {
		t.Errorf("metrics output should contain submission counter:\n%s", rec.Body.String())
	}
}
