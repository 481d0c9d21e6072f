// script/statement.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package script

import (
	"strconv"
	"strings"

	"github.com/railsim/bve5c/util"
)

type Kind int

const (
	// KindCommand is a command such as structure[key].put(...).
	KindCommand Kind = iota
	// KindTrackPosition is a bare number that moves the track position.
	KindTrackPosition
	// KindEmpty is an expression with nothing left to execute once it has
	// been cleaned up.
	KindEmpty
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindTrackPosition:
		return "track position"
	default:
		return "empty"
	}
}

// Statement is an expression separated into its parts. For
// "Structure['pole'].Put0('r', 1, 5)", Name is "structure.put0", Key is
// "pole" and Args is ["r", "1", "5"].
type Statement struct {
	Kind Kind
	Pos  util.Pos

	TrackPosition float64

	// Name is the lowercased command with any [key] index removed.
	Name string
	// Key is the unquoted contents of the [key] index, case preserved.
	Key    string
	HasKey bool
	// Args are the unquoted, trimmed arguments.
	Args []string
}

// Namespace returns the part of Name before the first '.'.
func (s Statement) Namespace() string {
	ns, _, _ := strings.Cut(s.Name, ".")
	return ns
}

// Arg returns the i'th argument or "" if there aren't that many.
func (s Statement) Arg(i int) string {
	if i < len(s.Args) {
		return s.Args[i]
	}
	return ""
}

// Float parses the i'th argument; missing or malformed arguments give
// def. A malformed (but present) argument is reported.
func (s Statement) Float(i int, def float64, e *util.ErrorLogger) float64 {
	a := s.Arg(i)
	if a == "" {
		return def
	}
	if v, ok := util.ParseFloat(a); ok {
		return v
	}
	e.Errorf(s.Pos, "%s: argument %d %q is not a valid number", s.Name, i+1, a)
	return def
}

// Int is the integer equivalent of Float.
func (s Statement) Int(i int, def int, e *util.ErrorLogger) int {
	a := s.Arg(i)
	if a == "" {
		return def
	}
	if v, ok := util.ParseInt(a); ok {
		return v
	}
	e.Errorf(s.Pos, "%s: argument %d %q is not a valid integer", s.Name, i+1, a)
	return def
}

// repairParens rewrites parentheses nested inside the first argument of a
// parenthesized group to brackets so that indexed commands written with
// parentheses still parse. Parentheses nested after an argument separator
// are reported, unclosed groups are closed, and stray closing parentheses
// are reported.
func repairParens(text string, pos util.Pos, e *util.ErrorLogger) string {
	b := []byte(text)
	reportedOpen, reportedClose := false, false
	for i := 0; i < len(b); i++ {
		switch b[i] {
		case '(':
			// Nested groups; true for those rewritten to brackets.
			var nested []bool
			separator, closed := false, false
			for i++; i < len(b) && !closed; i++ {
				switch b[i] {
				case ',', ';':
					separator = true
				case '(':
					if separator {
						if !reportedOpen {
							e.Errorf(pos, "invalid opening parenthesis in %q", text)
							reportedOpen = true
						}
					} else {
						b[i] = '['
					}
					nested = append(nested, !separator)
				case ')':
					if n := len(nested); n > 0 {
						if nested[n-1] {
							b[i] = ']'
						}
						nested = nested[:n-1]
					} else {
						closed = true
					}
				}
			}
			i--
			if !closed {
				if !reportedClose {
					e.Errorf(pos, "missing closing parenthesis in %q", text)
					reportedClose = true
				}
				for n := len(nested) - 1; n >= 0; n-- {
					if nested[n] {
						b = append(b, ']')
					} else {
						b = append(b, ')')
					}
				}
				b = append(b, ')')
				i = len(b)
			}
		case ')':
			if !reportedClose {
				e.Errorf(pos, "invalid closing parenthesis in %q", text)
				reportedClose = true
			}
		}
	}
	return string(b)
}

// splitArgs splits an argument sequence at commas outside quotes. A
// trailing empty argument is dropped.
func splitArgs(seq string) []string {
	seq = strings.TrimSpace(seq)
	if seq == "" {
		return nil
	}
	var args []string
	quoted, start := false, 0
	for i := 0; i < len(seq); i++ {
		switch seq[i] {
		case '\'':
			quoted = !quoted
		case ',':
			if !quoted {
				args = append(args, util.TrimQuotes(seq[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(seq[start:]); rest != "" {
		args = append(args, util.TrimQuotes(rest))
	}
	return args
}

// matchingOpen returns the index of the '(' that matches the ')' at the
// end of s, or -1.
func matchingOpen(s string) int {
	level := 0
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ')':
			level++
		case '(':
			level--
			if level == 0 {
				return i
			}
		}
	}
	return -1
}

// Parse separates an expression into a Statement.
func Parse(expr Expression, e *util.ErrorLogger) Statement {
	s := Statement{Kind: KindEmpty, Pos: expr.Pos}

	text := strings.TrimSpace(strings.TrimSuffix(expr.Text, ";"))
	if text == "" {
		return s
	}
	if v, err := strconv.ParseFloat(text, 64); err == nil && floatStart(text[0]) {
		s.Kind = KindTrackPosition
		s.TrackPosition = v
		return s
	}

	text = repairParens(text, expr.Pos, e)

	var command, args string
	if strings.HasSuffix(text, ")") {
		if i := matchingOpen(text); i > 0 {
			command, args = text[:i], text[i+1:len(text)-1]
		} else {
			command = text
		}
	} else if i := strings.IndexFunc(text, isSpace); i != -1 && !strings.ContainsAny(text, "([") {
		// Arguments separated from the command by whitespace.
		command, args = text[:i], text[i+1:]
	} else {
		command = text
	}

	command = strings.TrimSpace(command)
	if strings.HasSuffix(command, ",") {
		e.Errorf(expr.Pos, "invalid trailing comma in %q", command)
		command = strings.TrimRight(command, ",")
	}

	// Pull out the [key] index.
	if i := strings.IndexByte(command, '['); i != -1 {
		j := strings.LastIndexByte(command, ']')
		if j < i {
			e.Errorf(expr.Pos, "missing closing bracket in %q", command)
			j = len(command)
			command += "]"
		}
		s.Key = util.TrimQuotes(command[i+1 : j])
		s.HasKey = true
		command = command[:i] + command[j+1:]
	}

	s.Name = strings.ToLower(strings.Join(strings.Fields(command), ""))
	if s.Name == "" {
		e.Errorf(expr.Pos, "%q: missing command name", expr.Text)
		return s
	}
	s.Kind = KindCommand
	s.Args = splitArgs(args)
	return s
}

// floatStart excludes "inf" and "nan" from being taken as positions.
func floatStart(c byte) bool {
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t'
}
