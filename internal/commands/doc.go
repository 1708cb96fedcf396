// Package commands provides the command-line interface for the xtsenc tool.
//
// It implements commands for:
//   - encryption
//   - decryption
//   - checking include/exclude patterns
//   - key generation
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra and viper, set up by gogen's cobraext.
package commands
