package lens

import (
	"fmt"
	"io"
	"strings"

	"github.com/dekarrin/lens/internal/reader"
)

// tracer is the debug facility SPEC_FULL.md §4 adds beyond spec.md's
// distillation (ported from pylens/debug.py): it logs every lens's GET/PUT
// entry and exit, indented by nesting depth, the same way
// tunascript/syntax/ast.go's tree dump indents nested nodes.
type tracer struct {
	w     io.Writer
	depth int
}

func newTracer(w io.Writer) *tracer {
	return &tracer{w: w}
}

func (t *tracer) indent() string {
	return strings.Repeat("  ", t.depth)
}

func (t *tracer) enter(l Lens, mode string, rd *reader.Reader) {
	pos := "-"
	if rd != nil {
		pos = fmt.Sprintf("%d", rd.PeekPos())
	}
	fmt.Fprintf(t.w, "%s-> %s %s @%s\n", t.indent(), mode, describeLens(l), pos)
	t.depth++
}

func (t *tracer) exit(l Lens, mode string, err error) {
	if t.depth > 0 {
		t.depth--
	}
	status := "ok"
	if err != nil {
		status = fmt.Sprintf("err: %v", err)
	}
	fmt.Fprintf(t.w, "%s<- %s %s (%s)\n", t.indent(), mode, describeLens(l), status)
}

// SetTraceWriter enables (or, given nil, disables) tracing on s: every
// subsequent Get/Put call made with s logs each lens's GET/PUT entry and
// exit to w. Intended for diagnosing why a lens didn't match or PUT the way
// expected; cmd/lensctl exposes it behind a -trace flag.
func (s *Settings) SetTraceWriter(w io.Writer) {
	if w == nil {
		s.traceWriter = nil
		return
	}
	s.traceWriter = w
}
