package engine

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
)

// DebugLevel gates the trace output of the engine
type DebugLevel int

const (
	DebugOff DebugLevel = iota
	// DebugSQL prints every statement and its parameters
	DebugSQL
	// DebugTrace also prints routing decisions and composite step outcomes
	DebugTrace
)

func (l DebugLevel) String() string {
	switch l {
	case DebugSQL:
		return "sql"
	case DebugTrace:
		return "trace"
	default:
		return "off"
	}
}

// ParseDebugLevel accepts "off", "sql" and "trace"; anything else is DebugOff
func ParseDebugLevel(s string) DebugLevel {
	switch s {
	case "sql":
		return DebugSQL
	case "trace":
		return DebugTrace
	default:
		return DebugOff
	}
}

// DebugContext says where and how much the engine traces
type DebugContext struct {
	Level       DebugLevel
	Writer      io.Writer
	ColorOutput bool
}

func DefaultDebugContext() *DebugContext {
	return &DebugContext{
		Level:       DebugOff,
		Writer:      os.Stdout,
		ColorOutput: false,
	}
}

func (d *DebugContext) shouldDebug() bool {
	return d != nil && d.Writer != nil && d.Level >= DebugSQL
}

func (d *DebugContext) shouldTrace() bool {
	return d != nil && d.Writer != nil && d.Level >= DebugTrace
}

func (d *DebugContext) logStatement(stmt Statement) {
	if !d.shouldDebug() {
		return
	}
	d.tag(color.FgCyan, "[SQL]")
	fmt.Fprintf(d.Writer, " %s\n", stmt.SQL)
	if !stmt.Params.IsEmpty() {
		d.tag(color.FgBlue, "[PARAMS]")
		fmt.Fprintf(d.Writer, " %s\n", stmt.Params)
	}
}

// Tracef prints a routing or coordination note at DebugTrace
func (d *DebugContext) Tracef(format string, args ...interface{}) {
	if !d.shouldTrace() {
		return
	}
	d.tag(color.FgYellow, "[TRACE]")
	fmt.Fprintf(d.Writer, " "+format+"\n", args...)
}

func (d *DebugContext) tag(attr color.Attribute, label string) {
	if d.ColorOutput {
		c := color.New(attr)
		c.EnableColor()
		c.Fprint(d.Writer, label)
		return
	}
	fmt.Fprint(d.Writer, label)
}
