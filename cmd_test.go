package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"leadfinder/storage"
)

const inputCSV = `Type of Business,Sub-Category,Name of Business,Website,# of Reviews,Rating,Latest Review,Business Address,Phone Number
gyms,gym,iron temple,No website,120,4.8,2 weeks ago on Google,"1 Main St, Charlotte, NC 28006, United States",555-1234
gyms,gym,tiny gym,No website,2,4.1,1 week ago,"2 Main St, Charlotte, NC 28006, United States",555-0002
motels,motel,rest inn,No website,No reviews,No ratings,No review date,"3 Main St, Charlotte, NC 28012, United States",555-0003
`

func setupRunEnv(t *testing.T) (in, out string) {
	t.Helper()
	dir := t.TempDir()
	in = filepath.Join(dir, "Files")
	out = filepath.Join(dir, "Outputs")
	if err := os.MkdirAll(in, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(in, "ListA.csv"), []byte(inputCSV), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("INPUT_DIR", in)
	t.Setenv("OUTPUT_DIR", out)
	t.Setenv("TARGET_BUSINESS_TYPES", "gyms, motels")
	t.Setenv("ZIP_CODES", "28006,28012")
	t.Setenv("STORE_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "data", "leads.db"))
	t.Setenv("METRICS_PATH", filepath.Join(dir, "metrics", "leadfinder.prom"))
	return in, out
}

func TestRunCommand(t *testing.T) {
	_, out := setupRunEnv(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"run"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	header, leads, err := storage.ReadCombined(filepath.Join(out, "leads.xlsx"))
	if err != nil {
		t.Fatalf("ReadCombined: %v", err)
	}
	if len(header) != len(storage.LeadColumns) {
		t.Errorf("header: got %v", header)
	}
	if len(leads) != 1 || leads[0].Name != "Iron Temple" || leads[0].Source != "ListA.csv" {
		t.Fatalf("leads: got %+v", leads)
	}

	data, err := os.ReadFile(filepath.Join(out, "queriesToSearch.txt"))
	if err != nil {
		t.Fatalf("queries file: %v", err)
	}
	want := `"gyms", "gyms near 28012"` + "\n" +
		`"motels", "motels near 28006"` + "\n" +
		`"motels", "motels near 28012"` + "\n"
	if string(data) != want {
		t.Errorf("queries:\ngot  %q\nwant %q", data, want)
	}

	metrics, err := os.ReadFile(os.Getenv("METRICS_PATH"))
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(metrics), "leadfinder_leads 1") {
		t.Errorf("metrics file missing lead gauge")
	}
}

func TestRunCommandFlagOverrides(t *testing.T) {
	_, out := setupRunEnv(t)
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("METRICS_PATH", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"--min-reviews", "1", "--zips", "28006"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	_, leads, err := storage.ReadCombined(filepath.Join(out, "leads.xlsx"))
	if err != nil {
		t.Fatalf("ReadCombined: %v", err)
	}
	if len(leads) != 2 {
		t.Errorf("expected both gyms with --min-reviews 1, got %d", len(leads))
	}
}

func TestRunCommandRequiresZips(t *testing.T) {
	setupRunEnv(t)
	t.Setenv("ZIP_CODES", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"run"})
	if err := cmd.ExecuteContext(context.Background()); err == nil {
		t.Error("expected an error without zip codes")
	}
}

func TestQueriesCommand(t *testing.T) {
	_, out := setupRunEnv(t)
	t.Setenv("STORE_DRIVER", "")

	cmd := newRootCmd()
	cmd.SetArgs([]string{"queries", "--states", "NC"})
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("queries: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "queriesToSearch.txt"))
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// 2 categories × (2 zips + 1 state)
	if len(lines) != 6 {
		t.Errorf("expected 6 queries, got %v", lines)
	}
}
