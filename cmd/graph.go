package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/dagloom-cli/internal/edges"
)

var graphEdgesPath string

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Print the edge list as a Mermaid flowchart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if graphEdgesPath == "" {
			return fmt.Errorf("--edges is required")
		}
		list, err := edges.LoadFile(graphEdgesPath)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), edges.Mermaid(list))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringVarP(&graphEdgesPath, "edges", "e", "", "edge list file (.yaml/.json or literal dag_edges text)")
}
