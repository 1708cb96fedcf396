package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/xtsenc/internal/config"
	"github.com/idelchi/xtsenc/internal/logic"
)

// NewDecryptCommand creates a new cobra command for the decrypt subcommand.
// Without --output, only files carrying the encrypted suffix are decrypted.
func NewDecryptCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "decrypt [flags] [paths...]",
		Aliases: []string{"dec"},
		Short:   "Decrypt files",
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg, true),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Run(cmd.Context(), cfg)
		},
	}
}
