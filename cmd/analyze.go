package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cfgpkg "github.com/KaramelBytes/dagloom-cli/internal/config"
	"github.com/KaramelBytes/dagloom-cli/internal/dataset"
	"github.com/KaramelBytes/dagloom-cli/internal/edges"
	"github.com/KaramelBytes/dagloom-cli/internal/profile"
	"github.com/KaramelBytes/dagloom-cli/internal/relations"
	"github.com/KaramelBytes/dagloom-cli/internal/report"
	"github.com/KaramelBytes/dagloom-cli/internal/utils"
)

var (
	anaEdgesPath  string
	anaOutputPath string
	anaJSONPath   string
	anaNoProfile  bool
	anaSave       bool
	anaLoad       loadFlags
)

// run is one complete analysis pass over a dataset.
type run struct {
	id       string
	ds       *dataset.Dataset
	result   *relations.Result
	profiled *profile.Result
	text     string
	doc      *report.Document
}

func analyzeDataset(c *cfgpkg.Global, path string, list []edges.Edge, lopt dataset.Options, withProfile bool) (*run, error) {
	ds, err := dataset.Load(path, lopt)
	if err != nil {
		return nil, err
	}
	r := &run{id: uuid.NewString(), ds: ds}
	log := logger.With(zap.String("run_id", r.id), zap.String("dataset", ds.Name))
	log.Debug("dataset loaded", zap.Int("rows", ds.Rows()), zap.Int("columns", len(ds.Columns)))

	r.result = relations.NewAnalyzer(relationOptions(c), log).Analyze(ds, list)
	var profDoc *profile.Document
	if withProfile {
		r.profiled = profile.NewProfiler(profileOptions(c), log).Analyze(ds)
		profDoc = profile.NewDocument(ds, r.profiled)
		profDoc.RunID = r.id
	}
	renderer := report.NewRenderer(reportOptions(c))
	r.text = renderer.Text(r.result)
	r.doc = renderer.Document(r.id, ds.Name, r.result, profDoc)
	return r, nil
}

// outputBase names report files after the input file and a short run id.
func outputBase(path, runID string) string {
	base := filepath.Base(path)
	safe := strings.TrimSuffix(base, filepath.Ext(base))
	return fmt.Sprintf("%s-%s", safe, runID[:8])
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <data>",
	Short: "Test each edge against a CSV/TSV/XLSX/JSON dataset and print the relationship report",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		path := args[0]
		if anaEdgesPath == "" {
			return fmt.Errorf("--edges is required")
		}
		list, err := edges.LoadFile(anaEdgesPath)
		if err != nil {
			return err
		}
		lopt, err := anaLoad.options(c)
		if err != nil {
			return err
		}
		r, err := analyzeDataset(c, path, list, lopt, !anaNoProfile)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		written := false
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, []byte(r.text)); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(out, "✓ Wrote report to %s\n", anaOutputPath)
			written = true
		}
		if anaJSONPath != "" {
			if err := writeJSON(anaJSONPath, r.doc); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Wrote JSON to %s\n", anaJSONPath)
		}
		if anaSave {
			if err := utils.EnsureDir(c.OutputDir); err != nil {
				return err
			}
			base := filepath.Join(c.OutputDir, outputBase(path, r.id))
			if err := utils.SafeWriteFile(base+".report.txt", []byte(r.text)); err != nil {
				return err
			}
			if err := writeJSON(base+".report.json", r.doc); err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Saved run %s to %s\n", r.id, c.OutputDir)
			written = true
		}
		if !written {
			fmt.Fprintln(out, r.text)
		}
		fmt.Fprintf(out, "✓ %d relations, %d errors (report ≈ %d tokens)\n",
			len(r.result.Relations), len(r.result.Errors), utils.CountTokens(r.text))
		return nil
	},
}

func writeJSON(path string, doc *report.Document) error {
	b, err := doc.JSON()
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaEdgesPath, "edges", "e", "", "edge list file (.yaml/.json or literal dag_edges text)")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the text report")
	analyzeCmd.Flags().StringVar(&anaJSONPath, "json", "", "optional path to write the structured JSON document")
	analyzeCmd.Flags().BoolVar(&anaNoProfile, "no-profile", false, "skip column profiling in the JSON document")
	analyzeCmd.Flags().BoolVar(&anaSave, "save", false, "save text and JSON reports under output_dir")
	anaLoad.register(analyzeCmd)
}
