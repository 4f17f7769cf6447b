package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sealint/sealint/internal/compiler"
	"github.com/sealint/sealint/internal/config"
	"github.com/sealint/sealint/internal/engine"
	"github.com/sealint/sealint/internal/report"
	"github.com/sealint/sealint/internal/store"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	*RootOptions
	Config   string
	Database string
	Workers  int
}

// NewScanCommand creates the scan command.
func NewScanCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ScanOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "scan <model-dir>",
		Short: "Analyze a program model and report findings",
		Long: `Analyze a compiled program model for account security defects.

Loads the CUE program-model documents from the directory, runs the full
rule set against every instruction, and prints the report. Exit code is
1 when the report contains critical findings, structural failures, or
model validation defects; 2 on command errors.

Example:
  sealint scan ./model
  sealint scan --db ./history.db --workers 8 ./model`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to config file (default <model-dir>/"+config.DefaultFile+")")
	cmd.Flags().StringVar(&opts.Database, "db", "", "record the run in this SQLite database")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "instruction evaluation workers (0 = GOMAXPROCS)")

	return cmd
}

func runScan(opts *ScanOptions, modelDir string, cmd *cobra.Command) error {
	logLevel := slog.LevelWarn
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	configPath := opts.Config
	if configPath == "" {
		configPath = filepath.Join(modelDir, config.DefaultFile)
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	engOpts, err := cfg.Options()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid config", err)
	}

	out.VerboseLog("loading model from %s", modelDir)
	prog, loadErrs := compiler.LoadDir(modelDir, compiler.LoadModeCollectAll)
	if len(loadErrs) > 0 {
		details := make([]string, len(loadErrs))
		for i, e := range loadErrs {
			details[i] = e.Error()
		}
		_ = out.Error(compiler.ErrCodeLoadFailed, "model failed to load", details)
		return NewExitError(ExitCommandError, "model failed to load")
	}

	if verrs := compiler.Validate(prog.Instructions); len(verrs) > 0 {
		details := make([]string, len(verrs))
		for i, e := range verrs {
			details[i] = e.Error()
		}
		_ = out.Error(compiler.ErrCodeBadInstruction, "model validation failed", details)
		return NewExitError(ExitFailure, "model validation failed")
	}

	analyzer, err := engine.NewAnalyzer(prog.Name, prog.Instructions, engOpts, opts.Workers, log)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build analyzer", err)
	}

	ctx := cmdContext(cmd)
	result, err := analyzer.Run(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "analysis failed", err)
	}

	if opts.Database != "" {
		if err := recordRun(ctx, opts.Database, result, out); err != nil {
			return err
		}
	}

	if err := writeReport(out, result); err != nil {
		return WrapExitError(ExitCommandError, "failed to write report", err)
	}

	if result.Blocking() {
		return NewExitError(ExitFailure, fmt.Sprintf(
			"%d critical finding(s), %d model error(s)",
			result.Summary.Critical, result.Summary.Failures))
	}
	return nil
}

func recordRun(ctx context.Context, path string, result *report.Report, out *OutputFormatter) error {
	st, err := store.Open(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	runID, err := st.WriteRun(ctx, result)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to record run", err)
	}
	out.VerboseLog("run recorded as %s", runID)
	return nil
}

func writeReport(out *OutputFormatter, result *report.Report) error {
	if out.Format == "json" {
		data, err := result.CanonicalJSON()
		if err != nil {
			return err
		}
		return out.SuccessJSON(data)
	}
	out.SuccessText(report.Render(result))
	return nil
}
