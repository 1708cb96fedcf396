package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/xtsenc/internal/config"
	"github.com/idelchi/xtsenc/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:     "encrypt [flags] [paths...]",
		Aliases: []string{"enc"},
		Short:   "Encrypt files",
		Args:    cobra.ArbitraryArgs,
		PreRunE: preRun(cfg, false),
		RunE: func(cmd *cobra.Command, _ []string) error {
			return logic.Run(cmd.Context(), cfg)
		},
	}
}
