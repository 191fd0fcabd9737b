// Package renderer renders the pipeline run report to a markdown string.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/hajirufai/medallion"
)

//go:embed templates/*.md
var templates embed.FS

// funcs are the helpers available to the report templates.
var funcs = template.FuncMap{
	"eur":     eurString,
	"rate":    rateString,
	"outcome": outcomeString,
}

// eurString formats a decimal EUR amount for display.
func eurString(d decimal.Decimal) string {
	cur := money.GetCurrency(money.EUR)
	return money.New(d.Shift(int32(cur.Fraction)).Round(0).IntPart(), money.EUR).Display()
}

// rateString formats one snapshot entry; a missing rate is called out.
func rateString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "unavailable"
	}
	return d.Decimal.String()
}

// outcomeString summarizes a source file outcome for the sources table.
func outcomeString(f medallion.SourceFile) string {
	if f.Skipped != "" {
		return "skipped: " + f.Skipped
	}
	return "ok"
}

// RunReport renders the markdown report for one pipeline run.
func RunReport(stats *medallion.RunStats) string {
	return renderTemplate("runReport", "templates/run_report.md", stats)
}

// renderTemplate renders a single embedded template with the report helpers.
func renderTemplate(name, file string, data any) string {
	content, err := fs.ReadFile(templates, file)
	if err != nil {
		return fmt.Sprintf("error reading template %q: %v", file, err)
	}
	tmpl, err := template.New(name).Funcs(funcs).Parse(string(content))
	if err != nil {
		return fmt.Sprintf("error parsing template %q: %v", file, err)
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return fmt.Sprintf("error rendering template %q: %v", file, err)
	}
	return sb.String()
}
