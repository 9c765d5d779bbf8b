package main

import (
	"bytes"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tagwire/tagwire/jsonproj"
	"github.com/tagwire/tagwire/reader"
)

var decodeCommand = &cli.Command{
	Name:      "decode",
	Usage:     "project a tagwire binary document back to JSON text",
	UsageText: "tagwire decode [file.tw]",
	Action: func(c *cli.Context) error {
		data, err := readInput(c.Args().First())
		if err != nil {
			return err
		}

		var out bytes.Buffer
		if err := jsonproj.Print(reader.New(data), &out); err != nil {
			return err
		}
		out.WriteByte('\n')
		_, err = os.Stdout.Write(out.Bytes())
		return err
	},
}
