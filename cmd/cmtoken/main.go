// cmtoken is the CLI front-end for the token and label packages,
// grounded on akavel-vfmd/cmd/vfmd/vfmd.go's -i/-o flag shape but
// split into subcommands via github.com/alecthomas/kong, the way
// inful-docbuilder/cmd/docbuilder/main.go structures its own CLI.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/cockroachdb/errors"
)

var cli struct {
	Tokenize struct {
		File string `arg:"" help:"Markdown file to tokenize, or - for standard input."`
	} `cmd:"" help:"Print the resolved event log for a document."`

	Render struct {
		File string `arg:"" help:"Markdown file to render, or - for standard input."`
	} `cmd:"" help:"Tokenize a document and render it to HTML."`

	Watch struct {
		File string `arg:"" help:"Markdown file to watch and re-render on save."`
	} `cmd:"" help:"Re-tokenize and render a file each time it changes."`
}

func main() {
	ctx := kong.Parse(&cli)
	var err error
	switch ctx.Command() {
	case "tokenize <file>":
		err = runTokenize(cli.Tokenize.File)
	case "render <file>":
		err = runRender(cli.Render.File)
	case "watch <file>":
		err = runWatch(cli.Watch.File)
	default:
		err = errors.Newf("unknown command %q", ctx.Command())
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "reading standard input")
		}
		return b, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	return b, nil
}
