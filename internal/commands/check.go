package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/xtsenc/internal/config"
	"github.com/idelchi/xtsenc/internal/logic"
)

// NewCheckCommand creates a new cobra command for the check subcommand.
// It needs no key: only the file selection is validated.
func NewCheckCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "check [flags] [paths...]",
		Short: "Validate that include/exclude patterns match files",
		Args:  cobra.ArbitraryArgs,
		PreRunE: func(_ *cobra.Command, args []string) error {
			cfg.Files = args
			if len(args) == 0 {
				cfg.Files = []string{"."}
			}

			if err := cobraext.Validate(cfg); err != nil {
				return err //nolint:wrapcheck // already wrapped
			}

			if err := cfg.Validate(cfg.Selection()); err != nil {
				return fmt.Errorf("validating config: %w", err)
			}

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.RunCheck(cmd.ErrOrStderr(), cfg)
		},
	}
}
