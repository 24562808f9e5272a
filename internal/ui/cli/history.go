package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

type cmdHistory struct {
	gs      *globalState
	limit   int
	project string
	runID   string
}

func (c *cmdHistory) run(cmd *cobra.Command, _ []string) error {
	a := c.gs.app
	ctx := cmd.Context()

	tw := tabwriter.NewWriter(c.gs.stdout, 0, 0, 2, ' ', 0)
	if c.runID != "" {
		symbols, err := a.RunSymbols(ctx, c.runID)
		if err != nil {
			return err
		}
		fmt.Fprintln(tw, "CHANGE\tSYMBOL\tPATH")
		for _, s := range symbols {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.Change, s.Name, s.Path)
		}
		return tw.Flush()
	}

	runs, err := a.History(ctx, c.project, c.limit)
	if err != nil {
		return err
	}
	fmt.Fprintln(tw, "ID\tTIME\tOLD\tNEW\tADDED\tREMOVED\tCHANGED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			r.ID, r.Timestamp.Local().Format(time.DateTime), r.OldPath, r.NewPath, r.Added, r.Removed, r.Changed)
	}
	return tw.Flush()
}

func getCmdHistory(gs *globalState) *cobra.Command {
	c := &cmdHistory{gs: gs}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List comparisons stored with compare --record",
		Args:  usageArgs(cobra.NoArgs),
		RunE:  c.run,
	}

	flags := cmd.Flags()
	flags.IntVarP(&c.limit, "limit", "n", 20, "number of runs to list, 0 for all")
	flags.StringVar(&c.project, "project", "", "project to list (default from config)")
	flags.StringVar(&c.runID, "run", "", "list the exports recorded for this run id")
	return cmd
}
