// Package config holds the runtime configuration of xtsenc and its validation.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/gogen/pkg/validator"
	"github.com/idelchi/xtsenc/internal/dispatch"
)

const (
	// MinUnitSize is one AES block.
	MinUnitSize = 16
	// unitSizeLimit is the exclusive upper bound on data units accepted by XTS.
	unitSizeLimit = 1 << 24
)

var (
	// ErrNoInput is returned when neither positional files nor a files-from list were given.
	ErrNoInput = errors.New("no input files")
	// ErrOutputWithMany is returned when an explicit output path is combined with several inputs.
	ErrOutputWithMany = errors.New("--output requires exactly one input file")
	// ErrInvalidUnitSize is returned for unit sizes that XTS cannot use.
	ErrInvalidUnitSize = errors.New("invalid data unit size")
)

// Config holds the configuration for the application.
// Field names map to flags and XTSENC_* environment variables through their mapstructure tags.
type Config struct {
	// Show prints the resolved configuration, key material masked, and exits.
	Show bool
	// Parallel is the number of workers per file. Non-positive values fall back to one worker.
	Parallel int
	// Quiet suppresses non-error output.
	Quiet bool
	// Stats prints a summary after processing.
	Stats bool
	// Dry lists what would be processed without touching any file.
	Dry bool
	// Delete removes each input after it was processed successfully.
	Delete bool
	// PreserveTimestamps copies the input's modification time to the output.
	PreserveTimestamps bool `mapstructure:"preserve-timestamps"`

	// Key sources, exactly one of which must be set.
	Passphrase string `mapstructure:"passphrase" mask:"fixed" validate:"required_without_all=Key KeyFile,exclusive=Key KeyFile"` //nolint:lll
	Key        string `mapstructure:"key"        mask:"fixed" validate:"omitempty,hexadecimal,len=64,exclusive=KeyFile"`
	KeyFile    string `mapstructure:"key-file"                validate:"omitempty,file"`

	// UnitSize is the data unit size, in bytes or with a unit suffix such as "4KiB".
	UnitSize string `mapstructure:"unit-size"`
	// Output overrides the derived output path of a single input.
	Output string
	// FilesFrom names a JSONC file holding an array of input paths.
	FilesFrom string `mapstructure:"files-from" validate:"omitempty,file"`
	// MetricsTextfile receives Prometheus metrics in textfile collector format.
	MetricsTextfile string `mapstructure:"metrics-textfile"`

	// Include and Exclude select the files found when walking directories.
	Include     []string
	Exclude     []string
	IncludeFrom string `mapstructure:"include-from" validate:"omitempty,file"`
	ExcludeFrom string `mapstructure:"exclude-from" validate:"omitempty,file"`

	EncryptExt string `mapstructure:"encrypt-ext"`
	DecryptExt string `mapstructure:"decrypt-ext"`

	// Decrypt is set by the decrypt command.
	Decrypt bool `mapstructure:"-"`
	// Files are the positional arguments.
	Files []string `mapstructure:"-"`
	// UnitBytes is UnitSize parsed by Validate.
	UnitBytes int `mapstructure:"-"`
}

// Selection is the part of the configuration that picks input files.
// It is validated on its own by commands that need no key.
type Selection struct {
	Files       []string `validate:"min=1"`
	Include     []string
	Exclude     []string
	IncludeFrom string `mapstructure:"include-from" validate:"omitempty,file"`
	ExcludeFrom string `mapstructure:"exclude-from" validate:"omitempty,file"`
}

// Selection returns the file selection part of the configuration.
func (c *Config) Selection() *Selection {
	return &Selection{
		Files:       c.Files,
		Include:     c.Include,
		Exclude:     c.Exclude,
		IncludeFrom: c.IncludeFrom,
		ExcludeFrom: c.ExcludeFrom,
	}
}

// Display reports whether the configuration should be printed instead of acted upon.
func (c *Config) Display() bool {
	return c.Show
}

// Validate checks config, either the Config itself or its Selection, against its struct tags.
// For the Config it also applies the cross-field rules and resolves UnitBytes.
func (c *Config) Validate(config any) error {
	validate := validator.NewValidator()

	if err := registerExclusive(validate); err != nil {
		return err
	}

	if errs := validate.Validate(config); len(errs) > 0 {
		return errors.Join(errs...)
	}

	if config != c {
		return nil
	}

	size, err := ParseUnitSize(c.UnitSize)
	if err != nil {
		return err
	}

	c.UnitBytes = size

	if len(c.Files) == 0 && c.FilesFrom == "" {
		return ErrNoInput
	}

	if c.Output != "" && (len(c.Files) != 1 || c.FilesFrom != "") {
		return ErrOutputWithMany
	}

	return nil
}

// ParseUnitSize parses a data unit size such as "1024", "4KiB" or "64 KB".
// The size must be a multiple of the AES block size and below 16 MiB.
func ParseUnitSize(s string) (int, error) {
	if s == "" {
		return dispatch.DefaultUnitSize, nil
	}

	size, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidUnitSize, err)
	}

	if size < MinUnitSize || size >= unitSizeLimit || size%MinUnitSize != 0 {
		return 0, fmt.Errorf("%w: %s must be a multiple of %d below %s",
			ErrInvalidUnitSize, humanize.IBytes(size), MinUnitSize, humanize.IBytes(unitSizeLimit))
	}

	return int(size), nil
}

// Direction returns the cipher direction selected by the command.
func (c *Config) Direction() dispatch.Direction {
	if c.Decrypt {
		return dispatch.Inverse
	}

	return dispatch.Forward
}

// OutputPath derives the output path for an input file: the encrypt suffix is appended on
// encryption, and stripped (then the decrypt suffix appended) on decryption.
func (c *Config) OutputPath(input string) string {
	if c.Output != "" {
		return c.Output
	}

	ext := c.EncryptExt

	if c.Decrypt {
		input = strings.TrimSuffix(input, c.EncryptExt)
		ext = c.DecryptExt
	}

	return filepath.Join(filepath.Dir(input), filepath.Base(input)+ext)
}
