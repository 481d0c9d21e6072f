// util/error.go
// Copyright(c) 2022-2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/railsim/bve5c/log"
)

// File header errors, shared by all the text formats.
var (
	ErrMissingHeader      = errors.New("Missing file header")
	ErrUnsupportedVersion = errors.New("Unsupported file version")
)

// Pos identifies a location in a source file. Line and Column are
// 1-based; a zero Line means the position refers to the file as a whole.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	if p.Line == 0 {
		return p.File
	}
	return p.File + ":" + strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

type Diagnostic struct {
	Severity Severity
	Pos      Pos
	Context  string
	Message  string
}

func (d Diagnostic) String() string {
	var sb strings.Builder
	if d.Pos.File != "" {
		sb.WriteString(d.Pos.String())
		sb.WriteString(": ")
	}
	sb.WriteString(d.Severity.String())
	sb.WriteString(": ")
	if d.Context != "" {
		sb.WriteString(d.Context)
		sb.WriteString(": ")
	}
	sb.WriteString(d.Message)
	return sb.String()
}

// ErrorLogger accumulates the recoverable problems found while compiling
// a route. It tracks context about what is currently being processed via
// Push() and Pop() so that diagnostics can be reported after the fact
// while compilation carries on.
type ErrorLogger struct {
	// Tracked via Push()/Pop() calls to remember what we're looking at if
	// an error is found.
	hierarchy []string
	diags     []Diagnostic
	nerrors   int
}

func (e *ErrorLogger) Push(s string) {
	e.hierarchy = append(e.hierarchy, s)
}

func (e *ErrorLogger) Pop() {
	e.hierarchy = e.hierarchy[:len(e.hierarchy)-1]
}

func (e *ErrorLogger) add(sev Severity, p Pos, msg string) {
	e.diags = append(e.diags, Diagnostic{
		Severity: sev,
		Pos:      p,
		Context:  strings.Join(e.hierarchy, " / "),
		Message:  msg,
	})
	if sev == SeverityError {
		e.nerrors++
	}
}

func (e *ErrorLogger) ErrorString(s string, args ...interface{}) {
	e.add(SeverityError, Pos{}, fmt.Sprintf(s, args...))
}

func (e *ErrorLogger) Error(err error) {
	e.add(SeverityError, Pos{}, err.Error())
}

// Errorf records an error at the given position.
func (e *ErrorLogger) Errorf(p Pos, s string, args ...interface{}) {
	e.add(SeverityError, p, fmt.Sprintf(s, args...))
}

// Warnf records a warning at the given position.
func (e *ErrorLogger) Warnf(p Pos, s string, args ...interface{}) {
	e.add(SeverityWarning, p, fmt.Sprintf(s, args...))
}

func (e *ErrorLogger) HaveErrors() bool {
	return e.nerrors > 0
}

func (e *ErrorLogger) HaveWarnings() bool {
	return len(e.diags) > e.nerrors
}

func (e *ErrorLogger) Diagnostics() []Diagnostic {
	return e.diags
}

func (e *ErrorLogger) Errors() []Diagnostic {
	return e.filter(SeverityError)
}

func (e *ErrorLogger) Warnings() []Diagnostic {
	return e.filter(SeverityWarning)
}

func (e *ErrorLogger) filter(sev Severity) []Diagnostic {
	var r []Diagnostic
	for _, d := range e.diags {
		if d.Severity == sev {
			r = append(r, d)
		}
	}
	return r
}

// PrintDiagnostics writes diags to w, one per line, and also logs them to
// lg if it is non-nil.
func PrintDiagnostics(w io.Writer, diags []Diagnostic, lg *log.Logger) {
	// Two loops so they aren't interleaved with logging to stdout
	if lg != nil {
		for _, d := range diags {
			if d.Severity == SeverityError {
				lg.Errorf("%s", d)
			} else {
				lg.Warnf("%s", d)
			}
		}
	}
	for _, d := range diags {
		fmt.Fprintln(w, d)
	}
}

func (e *ErrorLogger) String() string {
	var s []string
	for _, d := range e.diags {
		s = append(s, d.String())
	}
	return strings.Join(s, "\n")
}

func (e *ErrorLogger) CurrentDepth() int {
	if e == nil {
		return 0
	}
	return len(e.hierarchy)
}
