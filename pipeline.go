package medallion

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Pipeline wires the whole bronze → silver → gold → star run. It is
// single-threaded and synchronous: each stage consumes the previous one's
// output in full, and per-file failures never abort the run. Running two
// pipelines against the same output directory is not coordinated.
type Pipeline struct {
	DataDir string
	OutDir  string
	Rates   RateProvider
	Log     zerolog.Logger
}

// RunStats accumulates what a run did, for the run report.
type RunStats struct {
	BudgetFiles  []SourceFile
	ExpenseFiles []SourceFile

	BronzeBudgetRows  int
	BronzeExpenseRows int
	SilverBudgetRows  int
	SilverExpenseRows int
	GoldRows          int
	FactRows          int

	// RateSnapshot is the per-currency rate applied to every row of the run.
	RateSnapshot map[string]decimal.NullDecimal

	// Totals over the gold table. TotalExpenseEUR sums only rows with a
	// resolved conversion.
	TotalBudgetEUR  decimal.Decimal
	TotalExpenseEUR decimal.Decimal

	OutDir  string
	Outputs []string
}

// Run executes the full pipeline and writes all output files. Only an
// inconsistent star schema or an output write failure is an error; empty or
// partially skipped input is a legitimate, logged outcome.
func (p *Pipeline) Run() (*RunStats, error) {
	stats := &RunStats{OutDir: p.OutDir}

	budgetRows, budgetFiles := BronzeBudget(p.DataDir, p.Log)
	stats.BudgetFiles = budgetFiles
	stats.BronzeBudgetRows = len(budgetRows)

	expenseRows, expenseFiles := BronzeExpenses(p.DataDir, p.Log)
	stats.ExpenseFiles = expenseFiles
	stats.BronzeExpenseRows = len(expenseRows)

	budget := SilverBudget(budgetRows, p.Log)
	stats.SilverBudgetRows = len(budget)

	expenses, rates := SilverExpenses(expenseRows, p.Rates, p.Log)
	stats.SilverExpenseRows = len(expenses)
	stats.RateSnapshot = rates

	gold := Gold(budget, expenses, p.Log)
	stats.GoldRows = len(gold)
	for _, g := range gold {
		stats.TotalBudgetEUR = stats.TotalBudgetEUR.Add(g.BudgetAmount)
		if g.AmountEUR.Valid {
			stats.TotalExpenseEUR = stats.TotalExpenseEUR.Add(g.AmountEUR.Decimal)
		}
	}

	star, err := BuildStar(gold)
	if err != nil {
		return nil, err
	}
	stats.FactRows = len(star.Facts)

	if err := WriteOutputs(p.OutDir, gold, star); err != nil {
		return nil, err
	}
	stats.Outputs = OutputFiles
	p.Log.Info().Str("dir", p.OutDir).Int("gold", stats.GoldRows).Int("facts", stats.FactRows).Msg("pipeline complete")
	return stats, nil
}
