package token

// Log is the ordered event sequence the label package's resolvers
// scan backwards through and splice. It owns no buffer; positions
// refer back into whatever []byte the tokenizer was fed.
type Log []Event

// Splice replaces events[from:to] with repl, returning the new log.
func (l Log) Splice(from, to int, repl []Event) Log {
	out := make(Log, 0, len(l)-(to-from)+len(repl))
	out = append(out, l[:from]...)
	out = append(out, repl...)
	out = append(out, l[to:]...)
	return out
}

// LastUnbalancedOpener scans backwards from (but not including) index
// end for the nearest Enter event whose token is a LabelImage or
// LabelLink with State != Balanced.
func (l Log) LastUnbalancedOpener(end int) (index int, ok bool) {
	for i := end - 1; i >= 0; i-- {
		ev := l[i]
		if ev.Kind != Enter {
			continue
		}
		t := ev.Token.Type
		if t != LabelImage && t != LabelLink {
			continue
		}
		if ev.Token.State == Balanced {
			continue
		}
		return i, true
	}
	return 0, false
}

// MarkState rewrites the State of the Enter event for the opener at
// index i; the paired Exit event keeps its State. Flags are monotonic
// writes; callers never clear a flag once set.
func (l Log) MarkState(i int, state OpenState) {
	l[i].Token.State = state
}
