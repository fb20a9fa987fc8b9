package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var presetsCmd = &cobra.Command{
	Use:   "presets",
	Short: "List the configured presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tTICKER\tPERIOD\tSTRATEGY")
		for _, p := range a.builder.Catalog().List() {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", p.Key, p.Name, p.Config.Ticker, p.Config.Period, p.Config.Strategy.Name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(presetsCmd)
}
