// Command modelgraph inspects and edits modeling projects stored as TOML
// documents, and serves them over HTTP.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/matzehuels/modelgraph/internal/cli"
	mgerrors "github.com/matzehuels/modelgraph/pkg/errors"
)

// exitInterrupted follows the shell convention of 128+SIGINT.
const exitInterrupted = 130

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRoot().ExecuteContext(ctx)
	stop()

	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		os.Exit(exitInterrupted)
	default:
		cli.PrintError(os.Stderr, mgerrors.UserMessage(err))
		os.Exit(1)
	}
}

// newRoot builds the command tree with a --verbose flag that lowers the
// log level before any subcommand runs.
func newRoot() *cobra.Command {
	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()
	root.SilenceErrors = true

	verbose := root.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	attach := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if *verbose {
			c.SetLogLevel(cli.LogDebug)
		}
		return attach(cmd, args)
	}
	return root
}
