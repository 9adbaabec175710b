// Command matcher builds predicates over model attributes, evaluates them
// against JSON objects and compiles them to SQL.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/matcher/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		// Commands report their own errors; anything else came from cobra.
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
