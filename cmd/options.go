package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dagloom-cli/internal/config"
	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
	"github.com/KaramelBytes/dagloom-cli/internal/profile"
	"github.com/KaramelBytes/dagloom-cli/internal/relations"
	"github.com/KaramelBytes/dagloom-cli/internal/report"
)

// loadFlags are the dataset-loading flags shared by analyze, analyze-batch and profile.
type loadFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	maxRows    int
	sheetName  string
	sheetIndex int
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	cmd.Flags().StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma' (auto-detect if omitted)")
	cmd.Flags().StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space' (auto-detect if omitted)")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum rows to load (0 = config value)")
	cmd.Flags().StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to load")
	cmd.Flags().IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}

func (f *loadFlags) options(c *cfgpkg.Global) (dataset.Options, error) {
	opt := dataset.DefaultOptions()
	opt.ParseDates = c.ParseDates
	opt.MaxRows = c.MaxRows
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	opt.SheetName, opt.SheetIndex = f.sheetName, f.sheetIndex
	if f.delimiter != "" {
		switch f.delimiter {
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		default:
			return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
		}
	}
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	return opt, nil
}

func relationOptions(c *cfgpkg.Global) relations.Options {
	return relations.Options{SignificanceStdFactor: c.SignificanceStdFactor, Workers: c.Workers}
}

func profileOptions(c *cfgpkg.Global) profile.Options {
	opt := profile.DefaultOptions()
	opt.StringThreshold = c.StringThreshold
	opt.IncludeHistogram = c.IncludeHistogram
	opt.NormalityMaxSample = c.NormalityMaxSample
	opt.NormalityMinSample = c.NormalityMinSample
	opt.Alpha = c.Alpha
	opt.CategoryLimit = c.ProfileCategoryLimit
	opt.TopCategories = c.ProfileTopCategories
	opt.WordTop = c.WordFrequencyTop
	opt.StringSamples = c.StringSamples
	opt.Workers = c.Workers
	return opt
}

func reportOptions(c *cfgpkg.Global) report.Options {
	return report.Options{
		Alpha:          c.Alpha,
		CategoryCap:    c.CategoryStatsCap,
		SignificantCap: c.SignificantCategoriesCap,
		LiftThreshold:  c.LiftThreshold,
	}
}
