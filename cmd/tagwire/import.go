package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/golang-module/carbon/v2"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	rerrors "github.com/tagwire/tagwire/internal/errors"
	"github.com/tagwire/tagwire/jsonimport"
	"github.com/tagwire/tagwire/writer"
)

var importCommand = &cli.Command{
	Name:      "import",
	Usage:     "encode one or more JSON files to tagwire binary form in an output directory",
	UsageText: "tagwire import -o outdir file.json [file.json ...]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output directory", Required: true},
		&cli.IntFlag{Name: "concurrency", Aliases: []string{"j"}, Usage: "max files imported in parallel", Value: 4},
	},
	Action: func(c *cli.Context) error {
		files := c.Args().Slice()
		if len(files) == 0 {
			return rerrors.New("tagwire import: no input files given")
		}
		outDir := c.String("out")
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return rerrors.Wrap(err, "tagwire import: creating output directory")
		}

		g := new(errgroup.Group)
		g.SetLimit(c.Int("concurrency"))
		for _, f := range files {
			f := f
			g.Go(func() error {
				return importFile(f, outDir)
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		now := carbon.Now()
		_, _ = c.App.Writer.Write([]byte(
			now.ToDateTimeString() + ": imported " + strconv.Itoa(len(files)) + " file(s) into " + outDir + "\n",
		))
		return nil
	},
}

func importFile(inPath, outDir string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return rerrors.Wrapf(err, "tagwire import: reading %s", inPath)
	}

	sink := writer.NewBufferSink()
	w := writer.New(sink)
	if err := jsonimport.Import(w, data); err != nil {
		return rerrors.Wrapf(err, "tagwire import: encoding %s", inPath)
	}

	outName := trimExt(filepath.Base(inPath)) + ".tw"
	outPath := filepath.Join(outDir, outName)
	if err := os.WriteFile(outPath, sink.Buf, 0o644); err != nil {
		return rerrors.Wrapf(err, "tagwire import: writing %s", outPath)
	}
	return nil
}

func trimExt(name string) string {
	ext := filepath.Ext(name)
	return name[:len(name)-len(ext)]
}
