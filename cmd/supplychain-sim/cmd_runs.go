package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"supplychain-sim/internal/export"
	"supplychain-sim/internal/store"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect stored simulation runs",
	}
	cmd.AddCommand(newRunsListCmd(), newRunsShowCmd(), newRunsDeleteCmd())
	return cmd
}

func newRunsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetInt("limit")

			sess, err := newSession(cmd, sessionOptions{needsDB: true, noLogDir: true})
			if err != nil {
				return err
			}
			defer sess.Close()

			runs, err := sess.store.ListRuns(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if structuredOutput(cmd) {
				return writeData(cmd, cmd.OutOrStdout(), runs)
			}
			printRuns(cmd.OutOrStdout(), runs)
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Maximum number of runs (0 for all)")
	return cmd
}

func printRuns(w io.Writer, runs []store.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "No stored runs.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSCENARIO\tMODE\tCOMPLETED\tFAILED\tCREATED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.Scenario, r.Mode, r.Completed, r.Failed, r.CreatedAt.Local().Format(time.DateTime))
	}
	_ = tw.Flush()
}

func newRunsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a stored run and its aggregated metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd, sessionOptions{needsDB: true, noLogDir: true})
			if err != nil {
				return err
			}
			defer sess.Close()

			run, err := sess.store.GetRun(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			if v := stringFlag(cmd, "export"); v != "" {
				format, err := export.ParseFormat(v)
				if err != nil {
					return err
				}
				summaries, err := sess.store.Summaries(cmd.Context(), run.ID)
				if err != nil {
					return err
				}
				return export.Write(cmd.OutOrStdout(), format, summaries)
			}

			if structuredOutput(cmd) {
				return writeData(cmd, cmd.OutOrStdout(), run)
			}
			printRun(cmd.OutOrStdout(), run)
			return nil
		},
	}
	cmd.Flags().String("export", "", "Write the run's per-iteration summaries instead: csv or jsonl")
	return cmd
}

func printRun(w io.Writer, r store.Run) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", r.ID)
	fmt.Fprintf(tw, "Scenario\t%s\n", r.Scenario)
	fmt.Fprintf(tw, "Mode\t%s\n", r.Mode)
	fmt.Fprintf(tw, "Iterations\t%d (%d completed, %d failed)\n", r.Iterations, r.Completed, r.Failed)
	fmt.Fprintf(tw, "Seed\t%d\n", r.Config.Simulation.Seed)
	fmt.Fprintf(tw, "Horizon\t%d weeks\n", r.Config.Simulation.HorizonWeeks)
	fmt.Fprintf(tw, "Duration\t%v\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(tw, "Created\t%s\n", r.CreatedAt.Local().Format(time.DateTime))
	_ = tw.Flush()

	if len(r.Stats) == 0 {
		return
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "METRIC\tVALUE")
	for _, k := range slices.Sorted(maps.Keys(r.Stats)) {
		fmt.Fprintf(tw, "%s\t%.4f\n", k, r.Stats[k])
	}
	_ = tw.Flush()
}

func newRunsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := newSession(cmd, sessionOptions{needsDB: true, noLogDir: true})
			if err != nil {
				return err
			}
			defer sess.Close()

			if err := sess.store.DeleteRun(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted run %s\n", args[0])
			return nil
		},
	}
}
