// Command tagwire exercises the encode/decode/get/patch/import operations
// of the tagwire packages against files or stdin/stdout, grounded on
// the teacher's own cmd/genji and cmd/chai command trees.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "tagwire"
	app.Usage = "inspect and mutate tagwire-encoded documents"
	app.Commands = []*cli.Command{
		encodeCommand,
		decodeCommand,
		getCommand,
		patchCommand,
		importCommand,
	}

	if err := app.Run(os.Args); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "tagwire: error: %v\n", err)
		os.Exit(1)
	}
}
