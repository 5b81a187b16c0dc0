package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chazu/splinter/pkg/decompose"
)

var levelsCmd = &cobra.Command{
	Use:   "levels",
	Short: "List decomposition levels and their escalation strategies",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, l := range decompose.Levels {
			chain := decompose.Escalation(l)
			names := make([]string, len(chain))
			for i, s := range chain {
				names[i] = s.String()
			}
			if len(names) == 0 {
				names = []string{"-"}
			}
			fmt.Fprintf(out, "%-6s %s\n", l, strings.Join(names, " -> "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(levelsCmd)
}
