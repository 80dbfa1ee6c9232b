package main

import (
	"os"

	"github.com/cockroachdb/errors"

	"github.com/akavel/cmtoken/htmlrender"
	"github.com/akavel/cmtoken/inline"
)

func runRender(path string) error {
	raw, err := readInput(path)
	if err != nil {
		return err
	}
	log, src, defs := inline.Document(raw)
	if err := htmlrender.Render(os.Stdout, log, src, defs); err != nil {
		return errors.Wrap(err, "rendering HTML")
	}
	return nil
}
