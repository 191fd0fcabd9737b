package medallion

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hajirufai/medallion/date"
)

// GoldRecord is the denormalized reporting row: one budget row matched with
// one expense row on the natural composite key.
type GoldRecord struct {
	Date             date.Date
	ProjectID        string
	Country          string
	Department       string
	Category         string
	BudgetAmount     decimal.Decimal
	AmountLocal      decimal.Decimal
	OriginalCurrency string
	Rate             decimal.NullDecimal
	AmountEUR        decimal.NullDecimal
}

// goldKey is the natural join key of the gold layer.
type goldKey struct {
	date       date.Date
	projectID  string
	country    string
	department string
	category   string
}

// Gold inner-joins the silver budget and expense records on
// {date, project, country, department, category}. Inner semantics are the
// reporting scope: only periods and segments present on both sides survive.
// Duplicate keys on either side legitimately produce a cross-product of
// matches; callers pre-aggregate if that is unintended. Output order is
// budget-major: budget row order, then matching expense row order.
func Gold(budget []BudgetRecord, expenses []ExpenseRecord, log zerolog.Logger) []GoldRecord {
	byKey := make(map[goldKey][]ExpenseRecord, len(expenses))
	for _, e := range expenses {
		k := goldKey{e.Date, e.ProjectID, e.Country, e.Department, e.Category}
		byKey[k] = append(byKey[k], e)
	}

	var out []GoldRecord
	for _, b := range budget {
		k := goldKey{b.Date, b.ProjectID, b.Country, b.Department, b.Category}
		for _, e := range byKey[k] {
			out = append(out, GoldRecord{
				Date:             b.Date,
				ProjectID:        b.ProjectID,
				Country:          b.Country,
				Department:       b.Department,
				Category:         b.Category,
				BudgetAmount:     b.Amount,
				AmountLocal:      e.AmountLocal,
				OriginalCurrency: e.OriginalCurrency,
				Rate:             e.Rate,
				AmountEUR:        e.AmountEUR,
			})
		}
	}
	log.Info().Int("budget", len(budget)).Int("expenses", len(expenses)).Int("gold", len(out)).Msg("gold: joined")
	return out
}
