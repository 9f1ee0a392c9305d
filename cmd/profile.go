package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
	"github.com/KaramelBytes/dagloom-cli/internal/profile"
	"github.com/KaramelBytes/dagloom-cli/internal/report"
	"github.com/KaramelBytes/dagloom-cli/internal/utils"
)

var (
	profSavePath   string
	profHistogram  bool
	profSummary    bool
	profTokenLimit int
	profLoad       loadFlags
)

var profileCmd = &cobra.Command{
	Use:   "profile <data>",
	Short: "Describe every column of a dataset as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		lopt, err := profLoad.options(c)
		if err != nil {
			return err
		}
		ds, err := dataset.Load(args[0], lopt)
		if err != nil {
			return err
		}
		opt := profileOptions(c)
		if cmd.Flags().Changed("histogram") {
			opt.IncludeHistogram = profHistogram
		}
		id := uuid.NewString()
		res := profile.NewProfiler(opt, logger.With(zap.String("run_id", id))).Analyze(ds)
		doc := profile.NewDocument(ds, res)
		doc.RunID = id
		out := cmd.OutOrStdout()

		if profSavePath != "" {
			if doc.Save(profSavePath, logger) {
				fmt.Fprintf(out, "✓ Saved profile to %s\n", profSavePath)
			} else {
				fmt.Fprintf(out, "⚠ Warning: could not save profile to %s\n", profSavePath)
			}
		}
		if profSummary {
			md := report.Summary(ds.Name, doc, res.Columns)
			if profTokenLimit > 0 {
				md = utils.TruncateToTokenLimit(md, profTokenLimit)
			}
			fmt.Fprint(out, md)
			return nil
		}
		if profSavePath == "" {
			b, err := doc.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(out, string(b))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.Flags().StringVar(&profSavePath, "save", "", "write the profile JSON to this path (failures are reported, not fatal)")
	profileCmd.Flags().BoolVar(&profHistogram, "histogram", false, "include histograms for continuous columns")
	profileCmd.Flags().BoolVar(&profSummary, "summary", false, "print a compact Markdown summary instead of JSON")
	profileCmd.Flags().IntVar(&profTokenLimit, "token-limit", 0, "truncate the summary to roughly this many tokens (0 = no limit)")
	profLoad.register(profileCmd)
}
