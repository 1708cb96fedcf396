package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/xtsenc/internal/config"
)

// NewRootCommand creates the root command with common configuration.
// Every flag can also be set through an XTSENC_* environment variable, e.g. XTSENC_UNIT_SIZE.
// Flags are persistent, so they may be given before or after the subcommand.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "xtsenc [flags] command [flags]"
	root.Short = "Parallel AES-XTS file encryption utility"
	root.Long = `A file encryption utility using AES-128 in XTS mode.
Files are split into fixed-size data units that are encrypted in parallel, unit i with tweak i,
so the output has the size of the input and does not depend on the number of workers.
Directories are walked, with --include/--exclude selecting the files by find -path patterns.`

	flags := root.PersistentFlags()
	flags.SortFlags = false

	flags.BoolP("show", "s", false, "Show the configuration and exit")
	flags.IntP("parallel", "j", runtime.NumCPU(), "Number of workers per file, defaults to number of CPUs")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")
	flags.Bool("stats", false, "Print a summary after processing")
	flags.Bool("dry", false, "Show what would be processed without writing anything")
	flags.BoolP("delete", "d", false, "Delete the original file after successful encryption/decryption")
	flags.Bool("preserve-timestamps", false, "Copy the modification time of each input to its output")

	flags.StringP("passphrase", "p", "", "Passphrase to derive the key from")
	flags.StringP("key", "k", "", "Encryption key (32 bytes, hex-encoded)")
	flags.StringP("key-file", "f", "", "Path to the key file with the encryption key (32 bytes, hex-encoded)")

	flags.StringP("unit-size", "u", "1KiB", "Data unit size, a multiple of 16 bytes")
	flags.StringP("output", "o", "", "Output path, only valid with a single input file")
	flags.String("files-from", "", "JSONC file with an array of input paths")
	flags.String("metrics-textfile", "", "Write Prometheus metrics to this file when done")

	flags.StringSliceP("include", "i", nil, "Only process walked files matching these patterns")
	flags.StringSliceP("exclude", "e", nil, "Skip walked files matching these patterns")
	flags.String("include-from", "", "JSONC file with an array of include patterns")
	flags.String("exclude-from", "", "JSONC file with an array of exclude patterns")

	flags.String("encrypt-ext", ".xts", "Suffix to append to encrypted files")
	flags.String("decrypt-ext", "", "Suffix to append to decrypted files, after stripping the encrypted suffix")

	// Traverse looks flags up on root.Flags() before the persistent set is merged into it.
	root.Flags().AddFlagSet(flags)

	root.AddCommand(
		NewEncryptCommand(cfg),
		NewDecryptCommand(cfg),
		NewCheckCommand(cfg),
		NewGenerateCommand(),
	)

	return root
}
