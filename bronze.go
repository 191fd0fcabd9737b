package medallion

import (
	"database/sql"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	// sqlite driver for the per-project expense databases.
	_ "modernc.org/sqlite"
)

// Bronze layer: raw ingestion of per-project source files. Rows keep the
// source columns untouched (year and month stay strings) plus the metadata
// attached from the reference table. Cleaning belongs to the silver layer.

const (
	budgetFileSuffix  = "_budget.csv"
	expenseFileSuffix = ".db"

	// expenseQuery is the fixed select-all against the known table of every
	// expense database. Columns are resolved by name, not position, because
	// the databases are third-party files whose column order is not ours.
	expenseQuery = "SELECT * FROM expenses"
)

// BudgetRow is one raw budget row tagged with reference metadata.
type BudgetRow struct {
	Amount     decimal.Decimal
	Year       string
	Month      string
	Department string
	Category   string
	Version    string // bookkeeping, dropped by silver
	SourceID   string // bookkeeping, dropped by silver

	// attached from the file name and the reference table
	ProjectID string // as derived from the file name; canonicalized by silver
	Country   string
}

// ExpenseRow is one raw expense row tagged with reference metadata.
type ExpenseRow struct {
	AmountLocal decimal.Decimal
	Year        string
	Month       string
	Department  string
	Category    string
	SourceID    string // bookkeeping, dropped by silver
	// SourceCurrency and SourceAmountEUR come from the database and are not
	// trusted; the reference currency and a fresh conversion replace them.
	SourceCurrency  string
	SourceAmountEUR string

	// attached from the file name and the reference table
	ProjectID        string
	Country          string
	OriginalCurrency string
}

// SourceFile records the outcome of ingesting one source file.
type SourceFile struct {
	Name      string
	ProjectID string
	Rows      int
	Skipped   string // empty when ingested, otherwise the reason
}

// listSourceFiles returns the names of regular files in dir with the given
// suffix, sorted lexicographically so that runs are reproducible regardless
// of directory-listing order. A missing directory is a legitimate empty
// result, logged distinctly.
func listSourceFiles(dir, suffix string, log zerolog.Logger) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Error().Str("dir", dir).Err(err).Msg("data directory not readable, ingesting nothing")
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), suffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

// BronzeBudget ingests every <project>_budget.csv file in dir into a single
// raw row set, in lexicographic file order. A file whose project is unknown
// or whose content fails to parse contributes nothing; the run continues.
func BronzeBudget(dir string, log zerolog.Logger) ([]BudgetRow, []SourceFile) {
	var all []BudgetRow
	var files []SourceFile

	log.Info().Str("dir", dir).Msg("bronze: ingesting budget files")
	for _, name := range listSourceFiles(dir, budgetFileSuffix, log) {
		projectID := strings.TrimSuffix(name, budgetFileSuffix)
		outcome := SourceFile{Name: name, ProjectID: projectID}

		info, ok := LookupProject(projectID)
		if !ok {
			log.Warn().Str("file", name).Str("project", projectID).Msg("project not in reference table, skipping file")
			outcome.Skipped = "unknown project"
			files = append(files, outcome)
			continue
		}

		rows, err := readBudgetCSV(filepath.Join(dir, name), log)
		if err != nil {
			log.Error().Str("file", name).Err(err).Msg("cannot read budget file, treating as empty")
			outcome.Skipped = "parse error"
			files = append(files, outcome)
			continue
		}
		for i := range rows {
			rows[i].ProjectID = projectID
			rows[i].Country = info.Country
		}
		all = append(all, rows...)
		outcome.Rows = len(rows)
		files = append(files, outcome)
		log.Info().Str("file", name).Str("project", projectID).Int("rows", len(rows)).Msg("ingested budget file")
	}
	return all, files
}

// readBudgetCSV parses one budget file. Columns are resolved by header name;
// a row with an unparseable amount is skipped with a warning.
func readBudgetCSV(path string, log zerolog.Logger) ([]BudgetRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no header row in %s", path)
	}

	col, err := headerIndex(records[0], "amount", "year", "month", "department", "category")
	if err != nil {
		return nil, err
	}

	var rows []BudgetRow
	for i, rec := range records[1:] {
		amount, err := decimal.NewFromString(strings.TrimSpace(rec[col["amount"]]))
		if err != nil {
			log.Warn().Str("file", path).Int("row", i+2).Err(err).Msg("unparseable amount, skipping row")
			continue
		}
		rows = append(rows, BudgetRow{
			Amount:     amount,
			Year:       rec[col["year"]],
			Month:      rec[col["month"]],
			Department: rec[col["department"]],
			Category:   rec[col["category"]],
			Version:    optional(rec, col, "version"),
			SourceID:   optional(rec, col, "id"),
		})
	}
	return rows, nil
}

// headerIndex maps column names to indices and checks the required ones.
func headerIndex(header []string, required ...string) (map[string]int, error) {
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
	}
	return col, nil
}

func optional(rec []string, col map[string]int, name string) string {
	if i, ok := col[name]; ok && i < len(rec) {
		return rec[i]
	}
	return ""
}

// BronzeExpenses ingests every <project>.db SQLite database in dir into a
// single raw row set, in lexicographic file order. Each database handle is
// opened read-only and released before the next one; a database that cannot
// be opened or queried contributes nothing.
func BronzeExpenses(dir string, log zerolog.Logger) ([]ExpenseRow, []SourceFile) {
	var all []ExpenseRow
	var files []SourceFile

	log.Info().Str("dir", dir).Msg("bronze: ingesting expense databases")
	for _, name := range listSourceFiles(dir, expenseFileSuffix, log) {
		projectID := strings.TrimSuffix(name, expenseFileSuffix)
		outcome := SourceFile{Name: name, ProjectID: projectID}

		info, ok := LookupProject(projectID)
		if !ok {
			log.Warn().Str("file", name).Str("project", projectID).Msg("project not in reference table, skipping database")
			outcome.Skipped = "unknown project"
			files = append(files, outcome)
			continue
		}

		rows, err := readExpenseDB(filepath.Join(dir, name))
		if err != nil {
			log.Error().Str("file", name).Err(err).Msg("cannot read expense database, treating as empty")
			outcome.Skipped = "read error"
			files = append(files, outcome)
			continue
		}
		for i := range rows {
			rows[i].ProjectID = projectID
			rows[i].Country = info.Country
			rows[i].OriginalCurrency = info.Currency // reference table is the currency truth
		}
		all = append(all, rows...)
		outcome.Rows = len(rows)
		files = append(files, outcome)
		log.Info().Str("file", name).Str("project", projectID).Int("rows", len(rows)).Msg("ingested expense database")
	}
	return all, files
}

// readExpenseDB selects all rows of the expenses table of one database.
// The handle is closed deterministically even on error.
func readExpenseDB(path string) ([]ExpenseRow, error) {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(expenseQuery)
	if err != nil {
		return nil, fmt.Errorf("cannot query expenses in %s: %w", path, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(cols))
	for i, name := range cols {
		col[strings.ToLower(name)] = i
	}
	for _, name := range []string{"amount_local", "year", "month", "department", "category"} {
		if _, ok := col[name]; !ok {
			return nil, fmt.Errorf("expenses table in %s has no %q column", path, name)
		}
	}

	var out []ExpenseRow
	values := make([]sql.NullString, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	field := func(name string) string {
		if i, ok := col[name]; ok {
			return values[i].String
		}
		return ""
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(field("amount_local")))
		if err != nil {
			return nil, fmt.Errorf("unparseable amount_local in %s: %w", path, err)
		}
		out = append(out, ExpenseRow{
			AmountLocal:     amount,
			Year:            field("year"),
			Month:           field("month"),
			Department:      field("department"),
			Category:        field("category"),
			SourceID:        field("id"),
			SourceCurrency:  field("currency"),
			SourceAmountEUR: field("amount_eur"),
		})
	}
	return out, rows.Err()
}
