package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"leadfinder/models"
	"leadfinder/utils"
)

var testSentinels = map[models.Field]string{
	models.FieldReviews: "No reviews",
	models.FieldPhone:   "No phone number",
}

func classifyForTest(name string) (string, int) {
	if name == "default_run.csv" {
		return "Scraped New", models.PriorityFallback
	}
	return name, models.PriorityList
}

func newTestReader(skip ...string) *Reader {
	return NewReader(utils.NewNopLogger(), testSentinels, classifyForTest, skip...)
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestReaderCSVHeadersAndSentinels(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "default_run.csv")
	writeFile(t, path, "\ufeff type of business ,Name of Business,# of Reviews,Phone Number,Extra\n"+
		"Gyms,Iron,\"1,204\",555-1234,x\n"+
		",,,,\n"+
		"Motels,Rest,No reviews,No phone number\n")

	batch, err := newTestReader().ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if batch.Source != "Scraped New" || batch.Priority != models.PriorityFallback {
		t.Errorf("classification: got %q/%d", batch.Source, batch.Priority)
	}
	for _, f := range []models.Field{models.FieldBusinessType, models.FieldName, models.FieldReviews, models.FieldPhone} {
		if !batch.Fields.Has(f) {
			t.Errorf("expected field %v to be present", f)
		}
	}
	if batch.Fields.Has(models.FieldAddress) {
		t.Error("address column should be absent")
	}
	if len(batch.Records) != 2 {
		t.Fatalf("expected 2 records (blank row skipped), got %d", len(batch.Records))
	}

	first, second := batch.Records[0], batch.Records[1]
	if first.Reviews.Value != "1,204" || first.Reviews.Missing {
		t.Errorf("first reviews: %+v", first.Reviews)
	}
	if !second.Reviews.Missing || !second.Phone.Missing {
		t.Errorf("sentinels should mark cells missing: %+v %+v", second.Reviews, second.Phone)
	}
	if second.Name.Value != "Rest" {
		t.Errorf("second name: got %q", second.Name.Value)
	}
}

func TestReaderSentinelsIgnoreCase(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ListA.csv")
	writeFile(t, path, "# of Reviews,Phone Number\n"+
		"no reviews,NO PHONE NUMBER\n"+
		" NO REVIEWS ,no phone number\n"+
		"12,No phone numbers\n")

	batch, err := newTestReader().ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(batch.Records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(batch.Records))
	}
	for i, r := range batch.Records[:2] {
		if !r.Reviews.Missing || !r.Phone.Missing {
			t.Errorf("row %d: sentinels should be missing regardless of case: %+v %+v", i, r.Reviews, r.Phone)
		}
	}
	if last := batch.Records[2]; last.Reviews.Missing || last.Phone.Missing {
		t.Errorf("only exact sentinel text counts: %+v %+v", last.Reviews, last.Phone)
	}
}

func TestReaderXLSXFirstSheet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ListA.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Type of Business", "Business Address", "Phone Number"},
		{"gyms", "1 Main St, NC 28006, United States", "555-1234"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	batch, err := newTestReader().ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if batch.Source != "ListA.xlsx" || batch.Priority != models.PriorityList {
		t.Errorf("classification: got %q/%d", batch.Source, batch.Priority)
	}
	if len(batch.Records) != 1 || batch.Records[0].Address.Value != "1 Main St, NC 28006, United States" {
		t.Errorf("records: %+v", batch.Records)
	}
}

func TestReaderReadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b.csv"), "Name of Business\nB\n")
	writeFile(t, filepath.Join(dir, "a.csv"), "Name of Business\nA\n")
	writeFile(t, filepath.Join(dir, "leads.xlsx"), "not a spreadsheet")
	writeFile(t, filepath.Join(dir, "broken.xlsx"), "not a spreadsheet either")
	writeFile(t, filepath.Join(dir, "notes.txt"), "ignored")
	writeFile(t, filepath.Join(dir, "empty.csv"), "")

	r := newTestReader("Outputs/LEADS.xlsx")
	var failed []string
	r.OnError = func(path string, err error) { failed = append(failed, filepath.Base(path)) }
	batches, err := r.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(failed) != 1 || failed[0] != "broken.xlsx" {
		t.Errorf("OnError: got %v, want [broken.xlsx]", failed)
	}

	var files []string
	for _, b := range batches {
		files = append(files, b.File)
	}
	want := []string{"a.csv", "b.csv", "empty.csv"}
	if len(files) != len(want) {
		t.Fatalf("files: got %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d]: got %q, want %q", i, files[i], want[i])
		}
	}
}

func TestReaderReadDirMissing(t *testing.T) {
	if _, err := newTestReader().ReadDir(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected error for missing directory")
	}
}
