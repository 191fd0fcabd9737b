package medallion

import (
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hajirufai/medallion/date"
)

// Silver layer: cleaned, typed records. Bookkeeping columns of the bronze
// rows (version, source id, source currency, source EUR amount) are dropped
// by construction: the record types simply do not carry them.

// BudgetRecord is a cleaned budget row. Immutable once produced.
type BudgetRecord struct {
	Amount     decimal.Decimal
	Department string
	Category   string
	ProjectID  string // canonical
	Country    string
	Date       date.Date // month-end; zero when the source period was unparseable
}

// ExpenseRecord is a cleaned expense row with its EUR conversion.
type ExpenseRecord struct {
	AmountLocal      decimal.Decimal
	Department       string
	Category         string
	ProjectID        string
	Country          string
	OriginalCurrency string
	Date             date.Date // month-end; zero when the source period was unparseable
	// Rate and AmountEUR are invalid when the currency had no resolvable
	// rate. Missing, never zero.
	Rate      decimal.NullDecimal
	AmountEUR decimal.NullDecimal
}

// monthEndDate derives the canonical month-end period marker from the raw
// year and month strings. Unparseable periods coerce to the zero (missing)
// date rather than failing the row.
func monthEndDate(year, month string) date.Date {
	y, err := strconv.Atoi(strings.TrimSpace(year))
	if err != nil || y <= 0 {
		return date.Date{}
	}
	m, err := strconv.Atoi(strings.TrimSpace(month))
	if err != nil || m < 1 || m > 12 {
		return date.Date{}
	}
	return date.MonthEnd(y, time.Month(m))
}

// SilverBudget cleans the bronze budget rows: project-id typos are
// normalized to their canonical form and the period becomes a month-end date.
func SilverBudget(rows []BudgetRow, log zerolog.Logger) []BudgetRecord {
	records := make([]BudgetRecord, 0, len(rows))
	for _, r := range rows {
		d := monthEndDate(r.Year, r.Month)
		if d.IsZero() {
			log.Warn().Str("project", r.ProjectID).Str("year", r.Year).Str("month", r.Month).Msg("unparseable budget period, keeping row with missing date")
		}
		records = append(records, BudgetRecord{
			Amount:     r.Amount,
			Department: r.Department,
			Category:   r.Category,
			ProjectID:  CanonicalProjectID(r.ProjectID),
			Country:    r.Country,
			Date:       d,
		})
	}
	log.Info().Int("rows", len(records)).Msg("silver: budget cleaned")
	return records
}

// SilverExpenses cleans the bronze expense rows and converts each amount to
// EUR using one rate snapshot for the whole run (see RateProvider). The
// resolved snapshot is returned alongside the records for reporting. A row
// whose currency has no resolvable rate keeps an explicitly missing
// AmountEUR rather than a computed zero.
func SilverExpenses(rows []ExpenseRow, p RateProvider, log zerolog.Logger) ([]ExpenseRecord, map[string]decimal.NullDecimal) {
	currencies := make([]string, 0, len(rows))
	for _, r := range rows {
		currencies = append(currencies, r.OriginalCurrency)
	}
	rates := ResolveRates(p, "EUR", currencies, log)

	records := make([]ExpenseRecord, 0, len(rows))
	for _, r := range rows {
		d := monthEndDate(r.Year, r.Month)
		if d.IsZero() {
			log.Warn().Str("project", r.ProjectID).Str("year", r.Year).Str("month", r.Month).Msg("unparseable expense period, keeping row with missing date")
		}
		rec := ExpenseRecord{
			AmountLocal:      r.AmountLocal,
			Department:       r.Department,
			Category:         r.Category,
			ProjectID:        CanonicalProjectID(r.ProjectID),
			Country:          r.Country,
			OriginalCurrency: r.OriginalCurrency,
			Date:             d,
			Rate:             rates[r.OriginalCurrency],
		}
		if rec.Rate.Valid {
			rec.AmountEUR = decimal.NewNullDecimal(r.AmountLocal.Mul(rec.Rate.Decimal))
		}
		records = append(records, rec)
	}
	log.Info().Int("rows", len(records)).Msg("silver: expenses cleaned and converted")
	return records, rates
}
