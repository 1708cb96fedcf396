package commands

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/xtsenc/internal/config"
)

// preRun returns a PreRunE handler that resolves positional args into cfg.Files
// and validates the configuration.
// Without args or a files-from list, the current directory is processed.
func preRun(cfg *config.Config, decrypt bool) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		cfg.Decrypt = decrypt
		cfg.Files = args

		if len(args) == 0 && viper.GetString("files-from") == "" {
			cfg.Files = []string{"."}
		}

		return cobraext.Validate(cfg, cfg) //nolint:wrapcheck // already wrapped
	}
}
