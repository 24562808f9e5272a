package cli

import (
	"ksymtypes/internal/ui/report"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type cmdConsolidate struct {
	gs        *globalState
	output    string
	jobs      int
	strict    bool
	keepGoing bool
	conflicts bool
}

func (c *cmdConsolidate) run(cmd *cobra.Command, args []string) error {
	cfg := c.gs.cfg
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Consolidate.Output = c.output
	}
	if flags.Changed("jobs") {
		cfg.Workers.Jobs = c.jobs
	}
	if flags.Changed("strict") {
		cfg.Consolidate.Strict = c.strict
	}
	if flags.Changed("keep-going") {
		cfg.Consolidate.KeepGoing = c.keepGoing
	}
	if err := c.gs.revalidate(); err != nil {
		return err
	}

	a := c.gs.app
	ctx := cmd.Context()
	res, err := a.Consolidate(ctx, args)
	if err != nil {
		return err
	}

	typeConflicts := 0
	for _, cf := range res.Conflicts {
		entry := c.gs.logger.WithFields(logrus.Fields{
			"key":      cf.Key.String(),
			"variants": len(cf.Variants),
		})
		if cf.IsExport() {
			entry.Warn("export defined differently across sources")
		} else {
			typeConflicts++
			entry.Debug("type has multiple variants")
		}
	}
	if typeConflicts > 0 && !c.conflicts {
		c.gs.logger.WithField("types", typeConflicts).Info("types with multiple variants found; see --conflicts")
	}
	if c.conflicts && len(res.Conflicts) > 0 {
		if err := report.WriteConflicts(c.gs.stderr, res.Conflicts, report.Style{
			Color:   colorEnabled(cfg.Compare.Color, c.gs.stderr),
			Context: cfg.Compare.Context,
		}); err != nil {
			return err
		}
	}

	if err := a.WriteConsolidated(ctx, res, cfg.Consolidate.Output, c.gs.stdout); err != nil {
		return err
	}
	return a.ConsolidateOutcome(res)
}

func getCmdConsolidate(gs *globalState) *cobra.Command {
	c := &cmdConsolidate{gs: gs}

	cmd := &cobra.Command{
		Use:   "consolidate [flags] PATH...",
		Short: "Merge symtypes files into one consolidated file",
		Long: `Merge symtypes files into one consolidated file.

Each PATH is a symtypes file or a directory searched recursively for them.
Types defined the same way by several files are written once; types with
several definitions keep every variant and each file records which one it uses.`,
		Args: usageArgs(cobra.MinimumNArgs(1)),
		RunE: c.run,
	}

	flags := cmd.Flags()
	flags.StringVarP(&c.output, "output", "o", "-", "output file, '-' for stdout")
	flags.IntVarP(&c.jobs, "jobs", "j", 0, "number of parallel workers, 0 for one per CPU")
	flags.BoolVar(&c.strict, "strict", false, "fail when a type has more than one variant")
	flags.BoolVar(&c.keepGoing, "keep-going", true, "skip inputs that fail to parse instead of stopping")
	flags.BoolVar(&c.conflicts, "conflicts", false, "print every conflict with a diff of its variants to stderr")
	return cmd
}
