package main

import (
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/tagwire/tagwire/jsonimport"
	"github.com/tagwire/tagwire/writer"
)

var encodeCommand = &cli.Command{
	Name:      "encode",
	Usage:     "encode a JSON document into tagwire binary form",
	UsageText: "tagwire encode [-o out] [file.json]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, defaults to stdout"},
	},
	Action: func(c *cli.Context) error {
		data, err := readInput(c.Args().First())
		if err != nil {
			return err
		}

		sink := writer.NewBufferSink()
		w := writer.New(sink)
		if err := jsonimport.Import(w, data); err != nil {
			return err
		}

		return writeOutput(c.String("out"), sink.Buf)
	},
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
