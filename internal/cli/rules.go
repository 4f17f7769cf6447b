package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sealint/sealint/internal/config"
	"github.com/sealint/sealint/internal/engine"
)

// RulesOptions holds flags for the rules command.
type RulesOptions struct {
	*RootOptions
	Config string
}

// NewRulesCommand creates the rules command.
func NewRulesCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RulesOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List the rule set",
		Long: `List every rule with its id, title, and description. With --config,
rules disabled by the config are marked.

Example:
  sealint rules
  sealint rules --config ./model/.sealint.yaml --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRules(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Config, "config", "", "path to config file")

	return cmd
}

type ruleListing struct {
	engine.RuleInfo
	Enabled bool `json:"enabled"`
}

func runRules(opts *RulesOptions, cmd *cobra.Command) error {
	out := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	var engOpts engine.Options
	if opts.Config != "" {
		cfg, err := config.Load(opts.Config)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to load config", err)
		}
		if engOpts, err = cfg.Options(); err != nil {
			return WrapExitError(ExitCommandError, "invalid config", err)
		}
	}

	eng, err := engine.New(nil, engOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to build engine", err)
	}

	var listings []ruleListing
	for _, info := range eng.Rules() {
		listings = append(listings, ruleListing{
			RuleInfo: info,
			Enabled:  eng.Enabled(info.ID),
		})
	}

	if out.Format == "json" {
		data, err := json.Marshal(listings)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to encode rules", err)
		}
		return out.SuccessJSON(data)
	}

	var b strings.Builder
	for _, l := range listings {
		status := ""
		if !l.Enabled {
			status = " (disabled)"
		}
		fmt.Fprintf(&b, "%s  %s%s\n", l.ID, l.Title, status)
		fmt.Fprintf(&b, "        %s\n", l.Description)
	}
	out.SuccessText(b.String())
	return nil
}
