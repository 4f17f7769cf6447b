package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sealint/sealint/internal/store"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database string
	Limit    int
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "Inspect recorded analysis runs",
		Long: `List run history from the database, or show one run's stored report
when a run id is given.

Example:
  sealint runs --db ./history.db
  sealint runs --db ./history.db 0190d1f0-5a2c-7def-8000-3b1f00000000`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runShowRun(opts, args[0], cmd)
			}
			return runListRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	cmd.Flags().IntVar(&opts.Limit, "limit", 20, "max runs to list (0 = all)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runListRuns(opts *RunsOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(cmdContext(cmd), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if out.Format == "json" {
		data, err := json.Marshal(runs)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode runs", err)
		}
		return out.SuccessJSON(data)
	}

	if len(runs) == 0 {
		out.SuccessText("no runs recorded")
		return nil
	}

	var b strings.Builder
	for _, r := range runs {
		fmt.Fprintf(&b, "%s  %s  %s  %d instruction(s), %d critical, %d warning, %d info, %d model error(s)\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.Program,
			r.Instructions, r.Critical, r.Warning, r.Info, r.Failures)
	}
	out.SuccessText(b.String())
	return nil
}

func runShowRun(opts *RunsOptions, runID string, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	run, err := st.ReadRun(cmdContext(cmd), runID)
	if errors.Is(err, store.ErrRunNotFound) {
		return WrapExitError(ExitCommandError, fmt.Sprintf("run %q not found", runID), err)
	}
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}

	if out.Format == "json" {
		// The stored report is already canonical JSON.
		return out.SuccessJSON([]byte(run.Report))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "run %s  %s  program %s\n", run.ID, run.CreatedAt.Format(time.RFC3339), run.Program)
	for _, f := range run.Findings {
		loc := strings.Join(f.Slots, ", ")
		if loc == "" {
			loc = f.Effect
		}
		fmt.Fprintf(&b, "  %-8s %s %s (%s): %s\n", f.Severity, f.Rule, f.Instruction, loc, f.Message)
	}
	fmt.Fprintf(&b, "%d instruction(s), %d critical, %d warning, %d info, %d model error(s)\n",
		run.Instructions, run.Critical, run.Warning, run.Info, run.Failures)
	out.SuccessText(b.String())
	return nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
