package medallion

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/hajirufai/medallion/date"
)

// Star schema derived from the gold table: five dimensions and a fact table
// referencing them by surrogate key only.

// DateDim is one row of the date dimension. Its key is the numeric YYYYMMDD
// form of the date, not a sequential surrogate.
type DateDim struct {
	ID        int // YYYYMMDD
	Date      date.Date
	Year      int
	Month     int
	Day       int
	YearID    int // same as Year
	MonthID   int // YYYYMM
	MonthName string
	DayName   string
	Quarter   int
	IsWeekend bool
}

// DimValue is one row of a plain string dimension (department, country,
// category, project), keyed by a sequential surrogate starting at 1.
type DimValue struct {
	ID    int
	Value string
}

// FactRow is one measurement row, carrying surrogate keys only.
type FactRow struct {
	DateID           int
	DepartmentID     int
	CountryID        int
	CategoryID       int
	ProjectID        int // the project_id_numeric surrogate, not the project code
	BudgetAmount     decimal.Decimal
	ExpenseAmountEUR decimal.NullDecimal
}

// Star holds the dimension tables and the fact table of one run.
type Star struct {
	Dates       []DateDim
	Departments []DimValue
	Countries   []DimValue
	Categories  []DimValue
	Projects    []DimValue
	Facts       []FactRow
}

// stringDim builds a sorted, deduplicated dimension with surrogate keys
// 1..n. Sorting makes the keys reproducible across runs; first-seen order
// would be an accidental contract of directory listing.
func stringDim(values []string) ([]DimValue, map[string]int) {
	distinct := make(map[string]bool, len(values))
	for _, v := range values {
		distinct[v] = true
	}
	sorted := make([]string, 0, len(distinct))
	for v := range distinct {
		sorted = append(sorted, v)
	}
	sort.Strings(sorted)

	dim := make([]DimValue, 0, len(sorted))
	keys := make(map[string]int, len(sorted))
	for i, v := range sorted {
		dim = append(dim, DimValue{ID: i + 1, Value: v})
		keys[v] = i + 1
	}
	return dim, keys
}

// dateDim builds the chronologically sorted date dimension.
func dateDim(dates []date.Date) ([]DateDim, map[date.Date]int) {
	distinct := make(map[date.Date]bool, len(dates))
	for _, d := range dates {
		distinct[d] = true
	}
	sorted := make([]date.Date, 0, len(distinct))
	for d := range distinct {
		sorted = append(sorted, d)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	dim := make([]DateDim, 0, len(sorted))
	keys := make(map[date.Date]int, len(sorted))
	for _, d := range sorted {
		row := DateDim{ID: d.Key(), Date: d}
		// The zero date is the explicit missing-period marker: its row
		// carries no calendar attributes, never fabricated ones.
		if !d.IsZero() {
			row.Year = d.Year()
			row.Month = int(d.Month())
			row.Day = d.Day()
			row.YearID = d.Year()
			row.MonthID = d.MonthKey()
			row.MonthName = d.MonthName()
			row.DayName = d.DayName()
			row.Quarter = d.Quarter()
			row.IsWeekend = d.IsWeekend()
		}
		dim = append(dim, row)
		keys[d] = d.Key()
	}
	return dim, keys
}

// BuildStar derives the dimensions from the gold table and rebuilds each
// gold row as a fact row of surrogate keys. Because the dimensions are
// derived from the fact rows themselves, a failed key lookup cannot happen
// on consistent data; it is reported as a loud error, never tolerated as a
// null reference.
func BuildStar(gold []GoldRecord) (*Star, error) {
	var (
		dates       = make([]date.Date, len(gold))
		departments = make([]string, len(gold))
		countries   = make([]string, len(gold))
		categories  = make([]string, len(gold))
		projects    = make([]string, len(gold))
	)
	for i, g := range gold {
		dates[i] = g.Date
		departments[i] = g.Department
		countries[i] = g.Country
		categories[i] = g.Category
		projects[i] = g.ProjectID
	}

	s := &Star{}
	var dateKeys map[date.Date]int
	var deptKeys, countryKeys, catKeys, projKeys map[string]int
	s.Dates, dateKeys = dateDim(dates)
	s.Departments, deptKeys = stringDim(departments)
	s.Countries, countryKeys = stringDim(countries)
	s.Categories, catKeys = stringDim(categories)
	s.Projects, projKeys = stringDim(projects)

	s.Facts = make([]FactRow, 0, len(gold))
	for i, g := range gold {
		f := FactRow{
			BudgetAmount:     g.BudgetAmount,
			ExpenseAmountEUR: g.AmountEUR,
		}
		var ok bool
		if f.DateID, ok = dateKeys[g.Date]; !ok {
			return nil, fmt.Errorf("internal inconsistency: gold row %d date %v missing from date dimension", i, g.Date)
		}
		if f.DepartmentID, ok = deptKeys[g.Department]; !ok {
			return nil, fmt.Errorf("internal inconsistency: gold row %d department %q missing from dimension", i, g.Department)
		}
		if f.CountryID, ok = countryKeys[g.Country]; !ok {
			return nil, fmt.Errorf("internal inconsistency: gold row %d country %q missing from dimension", i, g.Country)
		}
		if f.CategoryID, ok = catKeys[g.Category]; !ok {
			return nil, fmt.Errorf("internal inconsistency: gold row %d category %q missing from dimension", i, g.Category)
		}
		if f.ProjectID, ok = projKeys[g.ProjectID]; !ok {
			return nil, fmt.Errorf("internal inconsistency: gold row %d project %q missing from dimension", i, g.ProjectID)
		}
		s.Facts = append(s.Facts, f)
	}
	return s, nil
}
