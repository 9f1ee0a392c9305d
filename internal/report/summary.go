package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/dagloom-cli/internal/profile"
)

// Summary renders a compact Markdown overview of a profile document, one schema line per
// column in the given order. It is meant as context for narrative generation.
func Summary(name string, doc *profile.Document, columns []string) string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", name))
	}
	info := doc.DatasetInfo
	b.WriteString(fmt.Sprintf("Rows: %d\n", info.Rows))
	b.WriteString(fmt.Sprintf("Columns: %d (missing cells %.1f%%)\n\n", info.Columns, info.MissingPercentage))

	b.WriteString("[SCHEMA]\n")
	for _, col := range columns {
		p, ok := doc.ColumnDescriptions[col]
		if !ok {
			continue
		}
		b.WriteString(schemaLine(col, p))
		b.WriteString("\n")
	}
	if len(doc.Errors) > 0 {
		b.WriteString("\n[WARNINGS]\n")
		for _, e := range doc.Errors {
			b.WriteString("- " + safeVal(e) + "\n")
		}
	}
	return b.String()
}

func schemaLine(col string, p profile.Profile) string {
	switch p := p.(type) {
	case *profile.Continuous:
		line := fmt.Sprintf("- %s: continuous (non-null %d, missing %.1f%%): min %.4g, max %.4g, mean %.4g",
			safeVal(col), p.Count, p.MissingPercentage, p.Min, p.Max, p.Mean)
		if p.Std != nil {
			line += fmt.Sprintf(", std %.4g", *p.Std)
		}
		if p.Outliers.Count > 0 {
			line += fmt.Sprintf("; outliers: %d outside [%.4g, %.4g]", p.Outliers.Count, p.Outliers.LowerBound, p.Outliers.UpperBound)
		}
		return line
	case *profile.Categorical:
		top := make([]string, 0, 5)
		for _, c := range p.Categories[:min(5, len(p.Categories))] {
			top = append(top, fmt.Sprintf("%s(%d)", safeVal(c.Value), c.Count))
		}
		return fmt.Sprintf("- %s: categorical (non-null %d, missing %.1f%%): top: %s; unique=%d",
			safeVal(col), p.Count, p.MissingPercentage, strings.Join(top, ", "), p.UniqueValues)
	case *profile.String:
		ex := make([]string, len(p.SampleValues))
		for i, s := range p.SampleValues {
			ex[i] = safeVal(s)
		}
		return fmt.Sprintf("- %s: string (non-null %d, missing %.1f%%): e.g., %s",
			safeVal(col), p.Count, p.MissingPercentage, strings.Join(ex, " | "))
	case *profile.Boolean:
		return fmt.Sprintf("- %s: boolean (non-null %d, missing %.1f%%): true %.1f%%",
			safeVal(col), p.Count, p.MissingPercentage, p.TruePercentage)
	case *profile.Datetime:
		return fmt.Sprintf("- %s: datetime (non-null %d, missing %.1f%%): %s to %s",
			safeVal(col), p.Count, p.MissingPercentage, p.Min, p.Max)
	default:
		return fmt.Sprintf("- %s: %s (all values missing)", safeVal(col), p.Kind())
	}
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
