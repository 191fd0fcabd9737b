package medallion

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("cannot parse %s: %v", path, err)
	}
	return records
}

func TestWriteOutputs(t *testing.T) {
	gold := goldFixture()
	star, err := BuildStar(gold)
	if err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "out") // exercise directory creation
	if err := WriteOutputs(dir, gold, star); err != nil {
		t.Fatalf("WriteOutputs() error: %v", err)
	}

	for _, name := range OutputFiles {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}

	goldCSV := readCSV(t, filepath.Join(dir, GoldFile))
	wantHeader := []string{"date", "project_id", "country", "department", "category", "amount", "amount_local", "original_currency", "rate", "amount_eur"}
	if !reflect.DeepEqual(goldCSV[0], wantHeader) {
		t.Errorf("gold header = %v, want %v", goldCSV[0], wantHeader)
	}
	if len(goldCSV) != 1+len(gold) {
		t.Errorf("gold has %d data rows, want %d", len(goldCSV)-1, len(gold))
	}
	// the second gold fixture row has no conversion: empty field, never "0"
	if got := goldCSV[2][9]; got != "" {
		t.Errorf("missing amount_eur serialized as %q, want empty", got)
	}
	if goldCSV[1][0] != "2024-03-31" {
		t.Errorf("gold date = %q, want 2024-03-31", goldCSV[1][0])
	}

	dateCSV := readCSV(t, filepath.Join(dir, DimDateFile))
	wantDateHeader := []string{"date_id", "date", "year", "month", "day", "year_id", "month_id", "month_name", "day_name", "quarter", "is_weekend"}
	if !reflect.DeepEqual(dateCSV[0], wantDateHeader) {
		t.Errorf("dim_date header = %v, want %v", dateCSV[0], wantDateHeader)
	}
	wantJan := []string{"20240131", "2024-01-31", "2024", "1", "31", "2024", "202401", "January", "Wednesday", "1", "false"}
	if !reflect.DeepEqual(dateCSV[1], wantJan) {
		t.Errorf("dim_date row = %v, want %v", dateCSV[1], wantJan)
	}

	projCSV := readCSV(t, filepath.Join(dir, DimProjectFile))
	if !reflect.DeepEqual(projCSV[0], []string{"project_id_numeric", "project_id"}) {
		t.Errorf("dim_project header = %v", projCSV[0])
	}
	if !reflect.DeepEqual(projCSV[1], []string{"1", "BE01"}) {
		t.Errorf("dim_project first row = %v, want [1 BE01]", projCSV[1])
	}

	factCSV := readCSV(t, filepath.Join(dir, FactExpensesFile))
	wantFactHeader := []string{"date_id", "department_id", "country_id", "category_id", "project_id_numeric", "budget_amount", "expense_amount_eur"}
	if !reflect.DeepEqual(factCSV[0], wantFactHeader) {
		t.Errorf("fact header = %v, want %v", factCSV[0], wantFactHeader)
	}
	if len(factCSV) != 1+len(star.Facts) {
		t.Errorf("fact has %d data rows, want %d", len(factCSV)-1, len(star.Facts))
	}
}

func TestWriteOutputsMissingDate(t *testing.T) {
	gold := []GoldRecord{
		{ProjectID: "BE01", Country: "Belgium", Department: "Medical", Category: "Supplies",
			BudgetAmount: decimal.NewFromInt(200)},
	}
	star, err := BuildStar(gold)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := WriteOutputs(dir, gold, star); err != nil {
		t.Fatalf("WriteOutputs() error: %v", err)
	}

	// the zero-date sentinel serializes as a blank row, with no rendered
	// month or weekday names
	dateCSV := readCSV(t, filepath.Join(dir, DimDateFile))
	want := []string{"0", "", "0", "0", "0", "0", "0", "", "", "0", "false"}
	if !reflect.DeepEqual(dateCSV[1], want) {
		t.Errorf("missing-date dim row = %v, want %v", dateCSV[1], want)
	}
	goldCSV := readCSV(t, filepath.Join(dir, GoldFile))
	if goldCSV[1][0] != "" {
		t.Errorf("missing gold date serialized as %q, want empty", goldCSV[1][0])
	}
}

func TestWriteOutputsEmptyRun(t *testing.T) {
	star, err := BuildStar(nil)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := WriteOutputs(dir, nil, star); err != nil {
		t.Fatalf("WriteOutputs() on an empty run: %v", err)
	}
	for _, name := range OutputFiles {
		records := readCSV(t, filepath.Join(dir, name))
		if len(records) != 1 {
			t.Errorf("%s has %d rows, want header only", name, len(records))
		}
	}
}
