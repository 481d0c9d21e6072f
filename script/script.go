// script/script.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package script turns route-map text into position-tagged expressions
// and separates each expression into a command and its arguments.
package script

import (
	"fmt"
	"strings"

	"github.com/railsim/bve5c/util"
)

const (
	// HeaderPrefix starts the first line of every route map file.
	HeaderPrefix = "BveTs Map"
	// MaxVersion is the newest route map format that is understood.
	MaxVersion = 2.02

	maxIncludeDepth = 32
)

// Expression is a single semicolon-delimited piece of a route map.
type Expression struct {
	Text string
	Pos  util.Pos
}

func (e Expression) String() string {
	return e.Pos.String() + ": " + e.Text
}

// Source provides the decoded lines of the text files a route map refers
// to. *util.FileCache implements it.
type Source interface {
	ReadLines(path string) ([]string, error)
}

// Split breaks lines into expressions. Semicolons inside parentheses don't
// end an expression. firstLine gives the 1-based line number of lines[0].
// Columns count expressions within a line, starting at 1.
func Split(file string, lines []string, firstLine int) []Expression {
	var exprs []Expression
	for i, line := range lines {
		line = util.StripComment(line)

		level, start, col := 0, 0, 0
		emit := func(end int) {
			t := strings.TrimSpace(line[start:end])
			if t != "" {
				exprs = append(exprs, Expression{
					Text: t,
					Pos:  util.Pos{File: file, Line: firstLine + i, Column: col + 1},
				})
			}
			col++
		}
		for j := 0; j < len(line); j++ {
			switch line[j] {
			case '(':
				level++
			case ')':
				level--
			case ';':
				if level == 0 {
					emit(j)
					start = j + 1
				}
			}
		}
		if start < len(line) {
			emit(len(line))
		}
	}
	return exprs
}

// CheckHeader examines the first line of a route map. It returns the
// number of lines taken by the header (0 or 1). A missing header is
// reported as a warning; a version newer than MaxVersion is an error.
func CheckHeader(file string, lines []string, e *util.ErrorLogger) (int, error) {
	if len(lines) == 0 {
		e.Warnf(util.Pos{File: file}, "empty file")
		return 0, nil
	}
	version, hasPrefix, ok := util.ParseVersion(lines[0], HeaderPrefix)
	if !hasPrefix {
		e.Warnf(util.Pos{File: file, Line: 1, Column: 1}, "missing %q header", HeaderPrefix)
		return 0, nil
	}
	if !ok {
		e.Warnf(util.Pos{File: file, Line: 1, Column: 1}, "unable to parse the file version")
	} else if version > MaxVersion {
		return 1, fmt.Errorf("%s: version %.2f: %w", file, version, util.ErrUnsupportedVersion)
	}
	return 1, nil
}

// includePath extracts the file name from an include expression, or
// returns false if expr isn't one.
func includePath(text string) (string, bool) {
	if len(text) < 7 || !strings.EqualFold(text[:7], "include") {
		return "", false
	}
	rest := strings.TrimSpace(text[7:])
	if rest != "" && rest[0] != '\'' && rest[0] != '(' && rest[0] != '"' {
		// e.g. "includes.foo(...)"; not an include.
		return "", false
	}
	if i, j := strings.IndexByte(rest, '\''), strings.LastIndexByte(rest, '\''); i != -1 && j > i {
		return rest[i+1 : j], true
	}
	rest = strings.TrimSuffix(strings.TrimPrefix(rest, "("), ")")
	return util.TrimQuotes(rest), true
}

// Load reads the route map at path and returns its expressions with all
// include directives replaced, recursively and in place, by the
// expressions of the files they name. Problems with included files are
// recoverable; a bad header on the top-level file is not.
func Load(path string, src Source, e *util.ErrorLogger) ([]Expression, error) {
	lines, err := src.ReadLines(path)
	if err != nil {
		return nil, err
	}
	skip, err := CheckHeader(path, lines, e)
	if err != nil {
		return nil, err
	}
	return expandIncludes(Split(path, lines[skip:], skip+1), src, e, 0), nil
}

func expandIncludes(exprs []Expression, src Source, e *util.ErrorLogger, depth int) []Expression {
	var result []Expression
	for _, expr := range exprs {
		name, ok := includePath(expr.Text)
		if !ok {
			result = append(result, expr)
			continue
		}

		if depth >= maxIncludeDepth {
			e.Errorf(expr.Pos, "includes nested too deeply; is %q including itself?", name)
			continue
		}
		path, found := util.ResolvePath(expr.Pos.File, name)
		if !found {
			e.Errorf(expr.Pos, "%s: included file not found", name)
			continue
		}
		lines, err := src.ReadLines(path)
		if err != nil {
			e.Errorf(expr.Pos, "%s: %v", name, err)
			continue
		}

		e.Push(path)
		skip, err := CheckHeader(path, lines, e)
		if err != nil {
			e.Errorf(expr.Pos, "%v", err)
		} else {
			included := Split(path, lines[skip:], skip+1)
			result = append(result, expandIncludes(included, src, e, depth+1)...)
		}
		e.Pop()
	}
	return result
}
