// Command inspect runs a script under the Node.js inspector on a free port
// and exits with the script's exit code.
package main

import (
	"context"
	"os"

	"github.com/ctagard/inspect/internal/cli"
)

func main() {
	os.Exit(cli.Run(context.Background(), os.Args[1:], cli.Streams{
		Out: os.Stdout,
		Err: os.Stderr,
	}))
}
