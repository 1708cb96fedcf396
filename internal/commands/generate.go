package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/idelchi/xtsenc/internal/encryption"
)

// NewGenerateCommand creates a new cobra command that prints a random hex-encoded key.
func NewGenerateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "generate",
		Aliases: []string{"gen"},
		Short:   "Generate a new encryption key",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			key, err := encryption.GenerateKey()
			if err != nil {
				return err //nolint:wrapcheck // already wrapped
			}

			fmt.Fprintln(cmd.OutOrStdout(), key.AsHex())

			return nil
		},
	}
}
