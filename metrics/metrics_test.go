package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"leadfinder/models"
)

func TestObserveBatch(t *testing.T) {
	m := NewMetrics()
	m.ObserveBatch(models.StepCounts{Input: 10, Recency: 3, Reviews: 2, Output: 5})
	m.ObserveBatch(models.StepCounts{Input: 4, Recency: 1, Output: 3})

	if got := testutil.ToFloat64(m.RowsTotal.WithLabelValues("input")); got != 14 {
		t.Errorf("input rows: got %v, want 14", got)
	}
	if got := testutil.ToFloat64(m.RowsTotal.WithLabelValues("cleaned")); got != 8 {
		t.Errorf("cleaned rows: got %v, want 8", got)
	}
	if got := testutil.ToFloat64(m.DroppedTotal.WithLabelValues("recency")); got != 4 {
		t.Errorf("recency drops: got %v, want 4", got)
	}
}

func TestIncErrorsTotal(t *testing.T) {
	m := NewMetrics()
	m.IncErrorsTotal("read_failed")
	m.IncErrorsTotal("read_failed")
	if got := testutil.ToFloat64(m.ErrorsTotal.WithLabelValues("read_failed")); got != 2 {
		t.Errorf("errors: got %v, want 2", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := NewMetrics()
	m.LeadsFinal.Set(42)

	path := filepath.Join(t.TempDir(), "nested", "leadfinder.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "leadfinder_leads 42") {
		t.Errorf("textfile missing gauge value:\n%s", data)
	}
}
