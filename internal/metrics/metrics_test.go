package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestCollectorExposesSeries(t *testing.T) {
	c := NewCollector()

	c.EntriesParsed.WithLabelValues("info").Add(3)
	c.EntriesMatched.Inc()
	c.ParseFailures.Inc()
	c.Rotations.Inc()
	c.ExportSent.WithLabelValues("kafka").Add(42)
	c.ExportFailed.WithLabelValues("s3").Inc()

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, req)

	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}

	body := rec.Body.String()
	for _, want := range []string{
		`y2logs_parser_entries_total{level="info"} 3`,
		`y2logs_query_entries_matched_total 1`,
		`y2logs_parser_failures_total 1`,
		`y2logs_follow_rotations_total 1`,
		`y2logs_export_entries_sent_total{sink="kafka"} 42`,
		`y2logs_export_entries_failed_total{sink="s3"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestCollectorsAreIndependent(t *testing.T) {
	a := NewCollector()
	b := NewCollector()

	a.EntriesMatched.Inc()

	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if strings.Contains(rec.Body.String(), "y2logs_query_entries_matched_total 1") {
		t.Error("collectors share a registry")
	}
}
