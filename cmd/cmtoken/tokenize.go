package main

import (
	"fmt"
	"os"

	"github.com/akavel/cmtoken/inline"
	"github.com/akavel/cmtoken/token"
)

// runTokenize prints one line per event: kind, type, and start/end
// points -- a direct, human-facing window into the tokenizer's
// behavior.
func runTokenize(path string) error {
	raw, err := readInput(path)
	if err != nil {
		return err
	}
	log, _, _ := inline.Document(raw)
	for _, ev := range log {
		printEvent(os.Stdout, ev)
	}
	return nil
}

func printEvent(w *os.File, ev token.Event) {
	kind := "enter"
	if ev.Kind == token.Exit {
		kind = "exit"
	}
	fmt.Fprintf(w, "%-5s %-24s %d:%d-%d:%d\n",
		kind, ev.Token.Type,
		ev.Token.Start.Line, ev.Token.Start.Column,
		ev.Token.End.Line, ev.Token.End.Column)
}
