package medallion

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
)

// Output file names written to the output directory.
const (
	GoldFile          = "gold.csv"
	DimDateFile       = "dim_date.csv"
	DimDepartmentFile = "dim_department.csv"
	DimCountryFile    = "dim_country.csv"
	DimCategoryFile   = "dim_category.csv"
	DimProjectFile    = "dim_project.csv"
	FactExpensesFile  = "fact_expenses.csv"
)

// OutputFiles lists every file a run writes, in write order.
var OutputFiles = []string{
	GoldFile, DimDateFile, DimDepartmentFile, DimCountryFile,
	DimCategoryFile, DimProjectFile, FactExpensesFile,
}

// nullDec serializes a NullDecimal: missing values are empty fields, never 0.
func nullDec(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// WriteOutputs writes the gold table, the five dimension tables, and the
// fact table as CSV files into dir, creating it if needed. Any write error
// is fatal to the run: partial corrupt rows are never acceptable output.
func WriteOutputs(dir string, gold []GoldRecord, star *Star) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create output directory: %w", err)
	}

	goldRows := make([][]string, len(gold))
	for i, g := range gold {
		goldRows[i] = []string{
			g.Date.String(), g.ProjectID, g.Country, g.Department, g.Category,
			g.BudgetAmount.String(), g.AmountLocal.String(), g.OriginalCurrency,
			nullDec(g.Rate), nullDec(g.AmountEUR),
		}
	}
	if err := writeCSV(filepath.Join(dir, GoldFile),
		[]string{"date", "project_id", "country", "department", "category", "amount", "amount_local", "original_currency", "rate", "amount_eur"},
		goldRows); err != nil {
		return err
	}

	dateRows := make([][]string, len(star.Dates))
	for i, d := range star.Dates {
		dateRows[i] = []string{
			strconv.Itoa(d.ID), d.Date.String(),
			strconv.Itoa(d.Year), strconv.Itoa(d.Month), strconv.Itoa(d.Day),
			strconv.Itoa(d.YearID), strconv.Itoa(d.MonthID),
			d.MonthName, d.DayName,
			strconv.Itoa(d.Quarter), strconv.FormatBool(d.IsWeekend),
		}
	}
	if err := writeCSV(filepath.Join(dir, DimDateFile),
		[]string{"date_id", "date", "year", "month", "day", "year_id", "month_id", "month_name", "day_name", "quarter", "is_weekend"},
		dateRows); err != nil {
		return err
	}

	dims := []struct {
		file   string
		key    string
		column string
		rows   []DimValue
	}{
		{DimDepartmentFile, "department_id", "department", star.Departments},
		{DimCountryFile, "country_id", "country", star.Countries},
		{DimCategoryFile, "category_id", "category", star.Categories},
		{DimProjectFile, "project_id_numeric", "project_id", star.Projects},
	}
	for _, dim := range dims {
		rows := make([][]string, len(dim.rows))
		for i, v := range dim.rows {
			rows[i] = []string{strconv.Itoa(v.ID), v.Value}
		}
		if err := writeCSV(filepath.Join(dir, dim.file), []string{dim.key, dim.column}, rows); err != nil {
			return err
		}
	}

	factRows := make([][]string, len(star.Facts))
	for i, f := range star.Facts {
		factRows[i] = []string{
			strconv.Itoa(f.DateID), strconv.Itoa(f.DepartmentID), strconv.Itoa(f.CountryID),
			strconv.Itoa(f.CategoryID), strconv.Itoa(f.ProjectID),
			f.BudgetAmount.String(), nullDec(f.ExpenseAmountEUR),
		}
	}
	return writeCSV(filepath.Join(dir, FactExpensesFile),
		[]string{"date_id", "department_id", "country_id", "category_id", "project_id_numeric", "budget_amount", "expense_amount_eur"},
		factRows)
}

// writeCSV writes one header and all rows, surfacing deferred writer errors.
func writeCSV(path string, header []string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("cannot write %s: %w", path, err)
	}
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("cannot write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("cannot flush %s: %w", path, err)
	}
	return f.Close()
}
