package medallion

import (
	"fmt"
	"sort"

	"github.com/Rhymond/go-money"
)

// ProjectInfo describes the curated country and currency of a project.
type ProjectInfo struct {
	Country  string
	Currency string // ISO 4217 code
}

// projectTable is the single source of truth for project country and
// currency, overriding any inconsistencies found in the source data.
// Keys are canonical project identifiers.
var projectTable = map[string]ProjectInfo{
	"BE01": {Country: "Belgium", Currency: "EUR"},
	"BE55": {Country: "Belgium", Currency: "EUR"},
	"KE01": {Country: "Kenya", Currency: "KES"}, // force KES for KE01, source DBs carry XOF
	"KE02": {Country: "Kenya", Currency: "KES"},
	"SN01": {Country: "Senegal", Currency: "XOF"}, // force Senegal for SN01, source DBs carry Kenya
	"SN02": {Country: "Senegal", Currency: "XOF"},
	"BF01": {Country: "Burkina Faso", Currency: "XOF"},
	"BF02": {Country: "Burkina Faso", Currency: "XOF"},
}

// projectAliases maps known misspellings of project identifiers, as they
// appear in source file names, to their canonical form.
var projectAliases = map[string]string{
	"KEO2": "KE02", // letter O instead of zero in some budget file names
}

// CanonicalProjectID resolves known misspellings of a project identifier.
// Identifiers without a known alias are returned unchanged.
func CanonicalProjectID(id string) string {
	if canonical, ok := projectAliases[id]; ok {
		return canonical
	}
	return id
}

// LookupProject returns the curated country and currency for a project
// identifier, resolving aliases first. The second return value is false for
// unknown projects; callers skip those rows with a diagnostic, they are
// never silently defaulted.
func LookupProject(id string) (ProjectInfo, bool) {
	info, ok := projectTable[CanonicalProjectID(id)]
	return info, ok
}

// Projects returns the sorted canonical project identifiers of the
// reference table.
func Projects() []string {
	ids := make([]string, 0, len(projectTable))
	for id := range projectTable {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// validateProjectTable checks that every currency in the reference table is
// a known ISO 4217 code and that aliases resolve to existing entries.
func validateProjectTable() error {
	for id, info := range projectTable {
		if money.GetCurrency(info.Currency) == nil {
			return fmt.Errorf("project %s: unknown currency code %q", id, info.Currency)
		}
		if info.Country == "" {
			return fmt.Errorf("project %s: empty country", id)
		}
	}
	for alias, canonical := range projectAliases {
		if _, ok := projectTable[canonical]; !ok {
			return fmt.Errorf("alias %s points to unknown project %s", alias, canonical)
		}
		if _, ok := projectTable[alias]; ok {
			return fmt.Errorf("alias %s shadows a canonical project", alias)
		}
	}
	return nil
}
