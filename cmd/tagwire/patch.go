package main

import (
	"strconv"
	"strings"

	"github.com/golang-module/carbon/v2"
	"github.com/urfave/cli/v2"

	rerrors "github.com/tagwire/tagwire/internal/errors"
	"github.com/tagwire/tagwire/jsonimport"
	"github.com/tagwire/tagwire/patch"
	"github.com/tagwire/tagwire/writer"
)

var patchCommand = &cli.Command{
	Name:      "patch",
	Usage:     "apply path=json updates to a tagwire binary document",
	UsageText: `tagwire patch -i in.tw -o out.tw 'path=json' ['path=json' ...]`,
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "in", Aliases: []string{"i"}, Usage: `input file ("-" reads stdin)`, Required: true},
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file, defaults to stdout"},
	},
	Action: func(c *cli.Context) error {
		data, err := readInput(c.String("in"))
		if err != nil {
			return err
		}

		updates := make([]*patch.Update, 0, c.Args().Len())
		for _, arg := range c.Args().Slice() {
			p, jsonText, ok := strings.Cut(arg, "=")
			if !ok {
				return rerrors.Errorf("tagwire patch: malformed update %q, want path=json", arg)
			}
			raw := []byte(jsonText)
			updates = append(updates, patch.NewUpdate([]byte(p), func(w *writer.Writer) error {
				return jsonimport.Import(w, raw)
			}))
		}

		sink := writer.NewBufferSink()
		if err := patch.ApplyUpdates(data, sink, updates); err != nil {
			return err
		}

		if err := writeOutput(c.String("out"), sink.Buf); err != nil {
			return err
		}

		now := carbon.Now()
		_, _ = c.App.Writer.Write([]byte(
			"patched " + strconv.Itoa(len(updates)) + " path(s) at " + now.ToDateTimeString() + "\n",
		))
		return nil
	},
}
