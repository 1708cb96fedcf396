// Command xtsenc encrypts and decrypts files with AES-128-XTS on a pool of workers.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/xtsenc/internal/commands"
	"github.com/idelchi/xtsenc/internal/config"
)

// version is set at build time.
var version = "unknown - unofficial & generated by unknown"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cfg := &config.Config{}

	err := commands.NewRootCommand(cfg, version).ExecuteContext(ctx)

	stop()

	if err != nil && !errors.Is(err, cobraext.ErrExitGracefully) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
