package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/GrayGhostDev/lead-generator/internal/model"
	"github.com/GrayGhostDev/lead-generator/internal/store"
)

var (
	runsStatus string
	runsLimit  int
	runsJSON   bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List past consolidation runs, or show one run in full",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := openStore(ctx, cfg.Store)
		if err != nil {
			return eris.Wrap(err, "runs: open store")
		}
		if st == nil {
			return eris.New("runs: a store driver is required (LEADGEN_STORE_DRIVER)")
		}
		defer st.Close()

		if len(args) == 1 {
			run, err := st.GetRun(ctx, args[0])
			if err != nil {
				return eris.Wrap(err, "runs: get run")
			}
			out, err := json.MarshalIndent(run, "", "  ")
			if err != nil {
				return eris.Wrap(err, "runs: marshal run")
			}
			fmt.Println(string(out))
			return nil
		}

		runs, err := st.ListRuns(ctx, store.RunFilter{
			Status: model.RunStatus(runsStatus),
			Limit:  runsLimit,
		})
		if err != nil {
			return eris.Wrap(err, "runs: list runs")
		}

		if runsJSON {
			out, err := json.MarshalIndent(runs, "", "  ")
			if err != nil {
				return eris.Wrap(err, "runs: marshal runs")
			}
			fmt.Println(string(out))
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tLEADS\tQUALIFIED\tISSUES\tCREATED")
		for _, run := range runs {
			leads, qualified, issues := "-", "-", "-"
			if run.Summary != nil {
				leads = fmt.Sprintf("%d", run.Summary.LeadsTotal)
				qualified = fmt.Sprintf("%d", run.Summary.LeadsQualified)
				issues = fmt.Sprintf("%d", run.Summary.Issues)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				run.ID, run.Status, leads, qualified, issues,
				run.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	runsCmd.Flags().StringVar(&runsStatus, "status", "", "filter by status (running, complete, failed)")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "maximum runs to list")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "emit JSON instead of a table")
	rootCmd.AddCommand(runsCmd)
}
