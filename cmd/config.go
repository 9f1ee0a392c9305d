package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/dagloom-cli/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set DagLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "string_threshold: %.1f\n", c.StringThreshold)
		fmt.Fprintf(out, "include_histogram: %t\n", c.IncludeHistogram)
		fmt.Fprintf(out, "normality_max_sample: %d\n", c.NormalityMaxSample)
		fmt.Fprintf(out, "normality_min_sample: %d\n", c.NormalityMinSample)
		fmt.Fprintf(out, "profile_category_limit: %d\n", c.ProfileCategoryLimit)
		fmt.Fprintf(out, "profile_top_categories: %d\n", c.ProfileTopCategories)
		fmt.Fprintf(out, "word_frequency_top: %d\n", c.WordFrequencyTop)
		fmt.Fprintf(out, "string_samples: %d\n", c.StringSamples)
		fmt.Fprintf(out, "alpha: %.3f\n", c.Alpha)
		fmt.Fprintf(out, "significance_std_factor: %.3f\n", c.SignificanceStdFactor)
		fmt.Fprintf(out, "category_stats_cap: %d\n", c.CategoryStatsCap)
		fmt.Fprintf(out, "significant_categories_cap: %d\n", c.SignificantCategoriesCap)
		fmt.Fprintf(out, "lift_threshold: %.2f\n", c.LiftThreshold)
		fmt.Fprintf(out, "workers: %d\n", c.Workers)
		if c.MaxRows > 0 {
			fmt.Fprintf(out, "max_rows: %d\n", c.MaxRows)
		}
		fmt.Fprintf(out, "parse_dates: %t\n", c.ParseDates)
		fmt.Fprintf(out, "output_dir: %s\n", c.OutputDir)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := setKey(c, key, val); err != nil {
			return err
		}
		if err := cfgpkg.Save(c, cfgFile); err != nil {
			return err
		}
		cfg = c
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func setKey(c *cfgpkg.Global, key, val string) error {
	parseInt := func(min int) (int, error) {
		i, err := strconv.Atoi(val)
		if err != nil || i < min {
			return 0, fmt.Errorf("invalid int for %s: %v", key, val)
		}
		return i, nil
	}
	parseFloat := func(lo, hi float64) (float64, error) {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < lo || f > hi {
			return 0, fmt.Errorf("invalid float for %s: %v", key, val)
		}
		return f, nil
	}
	parseBool := func() (bool, error) {
		b, err := strconv.ParseBool(val)
		if err != nil {
			return false, fmt.Errorf("invalid bool for %s: %v", key, val)
		}
		return b, nil
	}

	var err error
	switch key {
	case "string_threshold":
		c.StringThreshold, err = parseFloat(0, 1e9)
	case "include_histogram":
		c.IncludeHistogram, err = parseBool()
	case "normality_max_sample":
		c.NormalityMaxSample, err = parseInt(3)
	case "normality_min_sample":
		c.NormalityMinSample, err = parseInt(3)
	case "profile_category_limit":
		c.ProfileCategoryLimit, err = parseInt(1)
	case "profile_top_categories":
		c.ProfileTopCategories, err = parseInt(1)
	case "word_frequency_top":
		c.WordFrequencyTop, err = parseInt(1)
	case "string_samples":
		c.StringSamples, err = parseInt(0)
	case "alpha":
		c.Alpha, err = parseFloat(0, 1)
	case "significance_std_factor":
		c.SignificanceStdFactor, err = parseFloat(0, 1e9)
	case "category_stats_cap":
		c.CategoryStatsCap, err = parseInt(1)
	case "significant_categories_cap":
		c.SignificantCategoriesCap, err = parseInt(1)
	case "lift_threshold":
		c.LiftThreshold, err = parseFloat(0, 1e9)
	case "workers":
		c.Workers, err = parseInt(1)
	case "max_rows":
		c.MaxRows, err = parseInt(0)
	case "parse_dates":
		c.ParseDates, err = parseBool()
	case "output_dir":
		c.OutputDir = val
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return err
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
