package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"supplychain-sim/internal/scenario"
)

type presetInfo struct {
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Parameters  []scenario.Parameter `json:"parameters,omitempty"`
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "List preset scenarios, or the editable parameters of one preset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()

			if len(args) == 1 {
				params, err := scenario.EditableParameters(args[0])
				if err != nil {
					return err
				}
				info := presetInfo{Name: args[0], Description: scenario.Describe(args[0]), Parameters: params}
				if structuredOutput(cmd) {
					return writeData(cmd, w, info)
				}
				fmt.Fprintf(w, "%s: %s\n\n", info.Name, info.Description)
				tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "PARAMETER\tDEFAULT\tMIN\tMAX")
				for _, p := range params {
					fmt.Fprintf(tw, "%s\t%g\t%g\t%g\n", p.Path, p.Default, p.Min, p.Max)
				}
				return tw.Flush()
			}

			var infos []presetInfo
			for _, name := range scenario.ListPresets() {
				infos = append(infos, presetInfo{Name: name, Description: scenario.Describe(name)})
			}
			if structuredOutput(cmd) {
				return writeData(cmd, w, infos)
			}
			fmt.Fprintln(w, "Available preset scenarios:")
			fmt.Fprintln(w)
			tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
			for _, p := range infos {
				fmt.Fprintf(tw, "  %s\t%s\n", p.Name, p.Description)
			}
			_ = tw.Flush()
			fmt.Fprintln(w)
			fmt.Fprintln(w, "Example: supplychain-sim run supplier_disruption --iterations 200")
			return nil
		},
	}
}
