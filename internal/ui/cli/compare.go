package cli

import (
	"io"
	"ksymtypes/internal/core/app"
	"ksymtypes/internal/core/errors"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type cmdCompare struct {
	gs      *globalState
	jobs    int
	format  string
	color   string
	context int
	record  bool
	project string
}

func (c *cmdCompare) run(cmd *cobra.Command, args []string) error {
	cfg := c.gs.cfg
	flags := cmd.Flags()
	if flags.Changed("jobs") {
		cfg.Workers.Jobs = c.jobs
	}
	if flags.Changed("format") {
		cfg.Compare.Format = c.format
	}
	if flags.Changed("color") {
		cfg.Compare.Color = c.color
	}
	if flags.Changed("context") {
		cfg.Compare.Context = c.context
	}
	if flags.Changed("project") {
		cfg.History.Project = c.project
	}
	if err := c.gs.revalidate(); err != nil {
		return err
	}

	a := c.gs.app
	ctx := cmd.Context()
	oldPath, newPath := args[0], args[1]
	res, err := a.Compare(ctx, oldPath, newPath)
	if err != nil {
		return err
	}

	if err := a.WriteComparison(ctx, c.gs.stdout, res, app.ReportOptions{
		Format:  cfg.Compare.Format,
		Color:   colorEnabled(cfg.Compare.Color, c.gs.stdout),
		OldPath: oldPath,
		NewPath: newPath,
	}); err != nil {
		return err
	}

	if c.record || cfg.History.Enabled {
		if _, err := a.RecordRun(ctx, oldPath, newPath, res); err != nil {
			return errors.WithExitCode(err, errors.ExitFailure)
		}
	}
	return app.CompareOutcome(res)
}

func getCmdCompare(gs *globalState) *cobra.Command {
	c := &cmdCompare{gs: gs}

	cmd := &cobra.Command{
		Use:   "compare [flags] OLD NEW",
		Short: "Show ABI differences between two symtypes corpora",
		Long: `Show ABI differences between two symtypes corpora.

OLD and NEW are symtypes files, consolidated files or directories. The command
exits with status 5 when differences are found.`,
		Args: usageArgs(cobra.ExactArgs(2)),
		RunE: c.run,
	}

	flags := cmd.Flags()
	flags.IntVarP(&c.jobs, "jobs", "j", 0, "number of parallel workers, 0 for one per CPU")
	flags.StringVar(&c.format, "format", "text", "report format: text, tsv or markdown")
	flags.StringVar(&c.color, "color", "auto", "colorize diffs: auto, always or never")
	flags.IntVar(&c.context, "context", 3, "unchanged lines shown around each diff hunk")
	flags.BoolVar(&c.record, "record", false, "store the result in the run history")
	flags.StringVar(&c.project, "project", "", "history project the run is recorded under")
	return cmd
}

// colorEnabled resolves a color mode against the writer the report goes to.
func colorEnabled(mode string, w io.Writer) bool {
	switch strings.ToLower(mode) {
	case "always":
		return true
	case "never":
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
