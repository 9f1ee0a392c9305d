package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dagloom-cli/internal/edges"
	"github.com/KaramelBytes/dagloom-cli/internal/utils"
)

var (
	abEdgesPath string
	abOutDir    string
	abNoProfile bool
	abQuiet     bool
	abLoad      loadFlags
)

// expandInputs resolves globs and literal paths, dropping duplicates, in sorted order.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// freePath returns base+ext, or base__N+ext for the first N >= 2 that does not exist yet.
func freePath(base, ext string) string {
	out := base + ext
	if _, err := os.Stat(out); err != nil {
		return out
	}
	for idx := 2; ; idx++ {
		cand := fmt.Sprintf("%s__%d%s", base, idx, ext)
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple datasets against one edge list with progress",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := currentConfig()
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		if abEdgesPath == "" {
			return fmt.Errorf("--edges is required")
		}
		list, err := edges.LoadFile(abEdgesPath)
		if err != nil {
			return err
		}
		lopt, err := abLoad.options(c)
		if err != nil {
			return err
		}
		outDir := abOutDir
		if outDir == "" {
			outDir = c.OutputDir
		}
		if err := utils.EnsureDir(outDir); err != nil {
			return err
		}
		out := cmd.OutOrStdout()

		total := len(files)
		failed := 0
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			r, err := analyzeDataset(c, path, list, lopt, !abNoProfile)
			if err != nil {
				failed++
				fmt.Fprintf(out, "⚠ Skipping %s: %v\n", filepath.Base(path), err)
				continue
			}
			base := filepath.Base(path)
			stem := filepath.Join(outDir, base[:len(base)-len(filepath.Ext(base))])
			txt := freePath(stem, ".report.txt")
			if txt != stem+".report.txt" && !abQuiet {
				fmt.Fprintf(out, "⚠ Detected existing report, writing to %s to avoid overwrite.\n", filepath.Base(txt))
			}
			if err := utils.SafeWriteFile(txt, []byte(r.text)); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			jsonPath := txt[:len(txt)-len(".txt")] + ".json"
			if err := writeJSON(jsonPath, r.doc); err != nil {
				return err
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ %s: %d relations, %d errors -> %s\n",
					filepath.Base(path), len(r.result.Relations), len(r.result.Errors), filepath.Base(txt))
			}
		}
		if failed == total {
			return fmt.Errorf("all %d datasets failed to load", total)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVarP(&abEdgesPath, "edges", "e", "", "edge list file applied to every dataset")
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "directory for reports (default: output_dir from config)")
	analyzeBatchCmd.Flags().BoolVar(&abNoProfile, "no-profile", false, "skip column profiling in the JSON documents")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
	abLoad.register(analyzeBatchCmd)
}
