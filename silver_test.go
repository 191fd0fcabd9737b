package medallion

import (
	"reflect"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/hajirufai/medallion/date"
)

func TestMonthEndDate(t *testing.T) {
	testCases := []struct {
		name        string
		year, month string
		want        date.Date
	}{
		{"31-day month", "2024", "3", date.New(2024, time.March, 31)},
		{"leap February", "2024", "2", date.New(2024, time.February, 29)},
		{"zero-padded month", "2024", "02", date.New(2024, time.February, 29)},
		{"month out of range", "2024", "13", date.Date{}},
		{"unparseable year", "20x4", "3", date.Date{}},
		{"empty fields", "", "", date.Date{}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := monthEndDate(tc.year, tc.month); got != tc.want {
				t.Errorf("monthEndDate(%q, %q) = %v, want %v", tc.year, tc.month, got, tc.want)
			}
		})
	}
}

func TestSilverBudget(t *testing.T) {
	rows := []BudgetRow{
		{Amount: decimal.NewFromInt(100), Year: "2024", Month: "3", Department: "Logistics", Category: "Fuel", Version: "v1", SourceID: "7", ProjectID: "KEO2", Country: "Kenya"},
		{Amount: decimal.NewFromInt(50), Year: "2024", Month: "bad", Department: "Medical", Category: "Supplies", ProjectID: "BE01", Country: "Belgium"},
	}

	records := SilverBudget(rows, zerolog.Nop())

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2 (no rows lost)", len(records))
	}
	if records[0].ProjectID != "KE02" {
		t.Errorf("project = %q, want the KEO2 typo normalized to KE02", records[0].ProjectID)
	}
	if want := date.New(2024, time.March, 31); records[0].Date != want {
		t.Errorf("date = %v, want month-end %v", records[0].Date, want)
	}
	if !records[1].Date.IsZero() {
		t.Errorf("date = %v, want missing sentinel for unparseable period", records[1].Date)
	}
	if records[1].Amount.String() != "50" || records[1].Country != "Belgium" {
		t.Errorf("record mangled: %+v", records[1])
	}
}

func TestSilverBudgetIdempotent(t *testing.T) {
	rows := []BudgetRow{
		{Amount: decimal.NewFromInt(100), Year: "2024", Month: "3", Department: "Logistics", Category: "Fuel", ProjectID: "BE01", Country: "Belgium"},
	}
	first := SilverBudget(rows, zerolog.Nop())
	second := SilverBudget(rows, zerolog.Nop())
	if !reflect.DeepEqual(first, second) {
		t.Errorf("SilverBudget is not deterministic: %+v vs %+v", first, second)
	}
}

func TestSilverExpenses(t *testing.T) {
	rates := fixedRates{"KES": decimal.RequireFromString("0.0077")}
	rows := []ExpenseRow{
		{AmountLocal: decimal.NewFromInt(1000), Year: "2024", Month: "1", Department: "Logistics", Category: "Fuel", ProjectID: "KE01", Country: "Kenya", OriginalCurrency: "KES", SourceID: "1", SourceCurrency: "XOF", SourceAmountEUR: "99"},
		{AmountLocal: decimal.NewFromInt(500), Year: "2024", Month: "1", Department: "Medical", Category: "Supplies", ProjectID: "BE01", Country: "Belgium", OriginalCurrency: "EUR"},
		{AmountLocal: decimal.NewFromInt(300), Year: "2024", Month: "1", Department: "Logistics", Category: "Fuel", ProjectID: "SN01", Country: "Senegal", OriginalCurrency: "XOF"},
	}

	records, snapshot := SilverExpenses(rows, rates, zerolog.Nop())

	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}

	kes := records[0]
	if !kes.Rate.Valid || kes.Rate.Decimal.String() != "0.0077" {
		t.Errorf("KES rate = %+v, want 0.0077", kes.Rate)
	}
	if !kes.AmountEUR.Valid || !kes.AmountEUR.Decimal.Equal(decimal.RequireFromString("7.7")) {
		t.Errorf("amount_eur = %+v, want exactly 1000 × 0.0077 = 7.7", kes.AmountEUR)
	}

	eur := records[1]
	if !eur.Rate.Valid || !eur.Rate.Decimal.Equal(decimal.NewFromInt(1)) {
		t.Errorf("EUR rate = %+v, want identity 1", eur.Rate)
	}
	if !eur.AmountEUR.Valid || !eur.AmountEUR.Decimal.Equal(decimal.NewFromInt(500)) {
		t.Errorf("EUR amount_eur = %+v, want 500", eur.AmountEUR)
	}

	xof := records[2]
	if xof.Rate.Valid || xof.AmountEUR.Valid {
		t.Errorf("XOF conversion = %+v/%+v, want explicitly missing, never zero", xof.Rate, xof.AmountEUR)
	}

	if len(snapshot) != 3 {
		t.Errorf("snapshot has %d currencies, want 3", len(snapshot))
	}
}

func TestSilverExpensesRoundTrip(t *testing.T) {
	// For every converted row, amount_eur == amount_local × rate.
	rates := fixedRates{
		"KES": decimal.RequireFromString("0.0077"),
		"XOF": decimal.RequireFromString("0.0015"),
	}
	rows := []ExpenseRow{
		{AmountLocal: decimal.RequireFromString("123.45"), Year: "2024", Month: "6", ProjectID: "KE02", OriginalCurrency: "KES"},
		{AmountLocal: decimal.RequireFromString("67.8"), Year: "2024", Month: "6", ProjectID: "BF01", OriginalCurrency: "XOF"},
		{AmountLocal: decimal.RequireFromString("9.99"), Year: "2024", Month: "6", ProjectID: "BE55", OriginalCurrency: "EUR"},
	}
	records, _ := SilverExpenses(rows, rates, zerolog.Nop())
	for _, r := range records {
		if !r.AmountEUR.Valid || !r.Rate.Valid {
			t.Fatalf("row %+v missing conversion", r)
		}
		want := r.AmountLocal.Mul(r.Rate.Decimal)
		if !r.AmountEUR.Decimal.Equal(want) {
			t.Errorf("amount_eur = %s, want %s × %s = %s", r.AmountEUR.Decimal, r.AmountLocal, r.Rate.Decimal, want)
		}
	}
}
