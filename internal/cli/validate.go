package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sealint/sealint/internal/compiler"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <model-dir>",
		Short: "Check a program model without analyzing it",
		Long: `Load and structurally validate the CUE program-model documents in a
directory. No rules are evaluated; this answers only "is the model
well-formed". Exit code is 1 when the model has defects.

Example:
  sealint validate ./model`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(rootOpts *RootOptions, modelDir string, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    rootOpts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   rootOpts.Verbose,
	}

	prog, loadErrs := compiler.LoadDir(modelDir, compiler.LoadModeCollectAll)
	if len(loadErrs) > 0 {
		details := make([]string, len(loadErrs))
		for i, e := range loadErrs {
			details[i] = e.Error()
		}
		_ = out.Error(compiler.ErrCodeLoadFailed, "model failed to load", details)
		return NewExitError(ExitFailure, "model failed to load")
	}

	if verrs := compiler.Validate(prog.Instructions); len(verrs) > 0 {
		details := make([]string, len(verrs))
		for i, e := range verrs {
			details[i] = e.Error()
		}
		_ = out.Error(compiler.ErrCodeBadInstruction, "model validation failed", details)
		return NewExitError(ExitFailure, "model validation failed")
	}

	if out.Format == "json" {
		summary := fmt.Sprintf(`{"program":%q,"instructions":%d,"files":%d}`,
			prog.Name, len(prog.Instructions), prog.FileCount)
		return out.SuccessJSON([]byte(summary))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "✓ model valid\n")
	fmt.Fprintf(&b, "program %s: %d instruction(s) in %d file(s)\n",
		prog.Name, len(prog.Instructions), prog.FileCount)
	out.SuccessText(b.String())
	return nil
}
