// Package debug provides the leveled-less, context-prefixed logger used
// throughout the server. Every component derives its own Debugger from its
// parent's with WithContext, so contexts nest and a socket's log lines
// read "Server: Namespace /chat: Socket <id>: ...".
package debug

import (
	"fmt"
	"io"
	"os"

	"github.com/karagenc/sio-server/internal/sync"
	"github.com/xiegeo/coloredgoroutine"
)

type (
	Debugger interface {
		Log(main string, v ...any)
		WithContext(context string) Debugger
		WithDynamicContext(context string, dynamicContext func() string) Debugger
	}

	noopDebugger struct{}

	printDebugger struct {
		w              io.Writer
		context        string
		dynamicContext func() string
	}
)

func NewNoopDebugger() Debugger {
	return noopDebugger{}
}

func (d noopDebugger) Log(main string, _v ...any) {}

func (d noopDebugger) WithContext(context string) Debugger { return d }

func (d noopDebugger) WithDynamicContext(context string, _ func() string) Debugger { return d }

// NewPrintDebugger writes to stdout, coloring each line by the goroutine that logged it.
func NewPrintDebugger() Debugger {
	return NewWriterDebugger(coloredgoroutine.Colors(os.Stdout))
}

func NewWriterDebugger(w io.Writer) Debugger {
	return &printDebugger{w: w}
}

var printMu sync.Mutex

// Log each field, adding colon if there's a subsequent field.
func (d *printDebugger) Log(main string, _v ...any) {
	printMu.Lock()
	defer printMu.Unlock()

	fields := make([]any, 0, 3+len(_v))
	if d.context != "" {
		fields = append(fields, d.context)
	}
	if d.dynamicContext != nil {
		if dc := d.dynamicContext(); dc != "" {
			fields = append(fields, dc)
		}
	}
	if main != "" {
		fields = append(fields, main)
	}
	fields = append(fields, _v...)

	for i, f := range fields {
		if i != 0 {
			fmt.Fprint(d.w, ": ")
		}
		fmt.Fprint(d.w, f)
	}
	fmt.Fprint(d.w, "\n")
}

func (d printDebugger) WithContext(context string) Debugger {
	d.context = joinContext(d.context, context)
	d.dynamicContext = nil
	return &d
}

func (d printDebugger) WithDynamicContext(context string, dynamicContext func() string) Debugger {
	d.context = joinContext(d.context, context)
	d.dynamicContext = dynamicContext
	return &d
}

func joinContext(parent, context string) string {
	if parent == "" {
		return context
	}
	if context == "" {
		return parent
	}
	return parent + ": " + context
}
