package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// stderrLogger adapts the engine's logging interface to colored stderr
// output.
type stderrLogger struct{}

func (stderrLogger) Debug(msg string, kv ...interface{}) {
	color.New(color.FgHiBlack).Fprintln(os.Stderr, format("DBG", msg, kv))
}

func (stderrLogger) Info(msg string, kv ...interface{}) {
	fmt.Fprintln(os.Stderr, format("INF", msg, kv))
}

func (stderrLogger) Error(msg string, kv ...interface{}) {
	color.New(color.FgRed).Fprintln(os.Stderr, format("ERR", msg, kv))
}

func format(level, msg string, kv []interface{}) string {
	out := level + " " + msg
	for i := 0; i+1 < len(kv); i += 2 {
		out += fmt.Sprintf(" %v=%v", kv[i], kv[i+1])
	}
	return out
}
