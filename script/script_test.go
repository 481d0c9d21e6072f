// script/script_test.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package script

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/railsim/bve5c/util"
)

func TestSplit(t *testing.T) {
	lines := []string{
		"0; curve.begin(500, 10); # a comment",
		"  station['a'].put(1, -5, 5);structure['x'].put0('r', 0, 0) // trailing",
		"",
		"fog.set(0.5; ignored)",
	}
	got := Split("map.txt", lines, 2)

	expected := []Expression{
		{Text: "0", Pos: util.Pos{File: "map.txt", Line: 2, Column: 1}},
		{Text: "curve.begin(500, 10)", Pos: util.Pos{File: "map.txt", Line: 2, Column: 2}},
		{Text: "station['a'].put(1, -5, 5)", Pos: util.Pos{File: "map.txt", Line: 3, Column: 1}},
		{Text: "structure['x'].put0('r', 0, 0)", Pos: util.Pos{File: "map.txt", Line: 3, Column: 2}},
		{Text: "fog.set(0.5; ignored)", Pos: util.Pos{File: "map.txt", Line: 5, Column: 1}},
	}
	if diff := cmp.Diff(expected, got); diff != "" {
		t.Errorf("expressions mismatch (-want +got):\n%s", diff)
	}
}

func TestParse(t *testing.T) {
	for _, test := range []struct {
		text     string
		expected Statement
		errors   int
	}{
		{
			text:     "25",
			expected: Statement{Kind: KindTrackPosition, TrackPosition: 25},
		},
		{
			text:     "-12.5;",
			expected: Statement{Kind: KindTrackPosition, TrackPosition: -12.5},
		},
		{
			text: "Structure['Pole'].Put0('r', 1, 5)",
			expected: Statement{Kind: KindCommand, Name: "structure.put0", Key: "Pole", HasKey: true,
				Args: []string{"r", "1", "5"}},
		},
		{
			text: "Track['R2'].X.Interpolate(3.8)",
			expected: Statement{Kind: KindCommand, Name: "track.x.interpolate", Key: "R2", HasKey: true,
				Args: []string{"3.8"}},
		},
		{
			text: "signal['home'](0, , 3)",
			expected: Statement{Kind: KindCommand, Name: "signal", Key: "home", HasKey: true,
				Args: []string{"0", "", "3"}},
		},
		{
			text:     "curve.end()",
			expected: Statement{Kind: KindCommand, Name: "curve.end"},
		},
		{
			text:     "legacy.curve 600, 105",
			expected: Statement{Kind: KindCommand, Name: "legacy.curve", Args: []string{"600", "105"}},
		},
		{
			text:     "speedlimit.begin(60,)",
			expected: Statement{Kind: KindCommand, Name: "speedlimit.begin", Args: []string{"60"}},
		},
		{
			text:     "station.put(a(b), 2)",
			expected: Statement{Kind: KindCommand, Name: "station.put", Args: []string{"a[b]", "2"}},
		},
		{
			text:     "curve.begin(500, 10",
			expected: Statement{Kind: KindCommand, Name: "curve.begin", Args: []string{"500", "10"}},
			errors:   1,
		},
		{
			text:     "section.begin(0, (1), 2)",
			expected: Statement{Kind: KindCommand, Name: "section.begin", Args: []string{"0", "(1)", "2"}},
			errors:   1,
		},
		{
			text:     "background.change('a,b')",
			expected: Statement{Kind: KindCommand, Name: "background.change", Args: []string{"a,b"}},
		},
	} {
		var e util.ErrorLogger
		got := Parse(Expression{Text: test.text}, &e)
		if diff := cmp.Diff(test.expected, got); diff != "" {
			t.Errorf("%q: mismatch (-want +got):\n%s", test.text, diff)
		}
		if n := len(e.Errors()); n != test.errors {
			t.Errorf("%q: got %d errors, expected %d: %s", test.text, n, test.errors, e.String())
		}
	}
}

func TestRepairParens(t *testing.T) {
	for _, test := range []struct {
		text, expected string
		errors         int
	}{
		{"a(b)", "a(b)", 0},
		{"a(b(c))", "a(b[c])", 0},
		{"a(b(c)", "a(b[c])", 1},
		{"a)b", "a)b", 1},
		{"a(b, (c))", "a(b, (c))", 1},
	} {
		var e util.ErrorLogger
		if got := repairParens(test.text, util.Pos{}, &e); got != test.expected {
			t.Errorf("%q: got %q, expected %q", test.text, got, test.expected)
		}
		if n := len(e.Errors()); n != test.errors {
			t.Errorf("%q: got %d errors, expected %d", test.text, n, test.errors)
		}
	}
}

func TestStatementArgs(t *testing.T) {
	var e util.ErrorLogger
	s := Parse(Expression{Text: "legacy.fog(10, x, , 200)"}, &e)
	if v := s.Float(0, 0, &e); v != 10 {
		t.Errorf("arg 0: got %v, expected 10", v)
	}
	if v := s.Int(1, 128, &e); v != 128 {
		t.Errorf("arg 1: got %v, expected default 128", v)
	}
	if v := s.Int(2, 128, &e); v != 128 {
		t.Errorf("arg 2: got %v, expected default 128", v)
	}
	if v := s.Int(7, 5, &e); v != 5 {
		t.Errorf("arg 7: got %v, expected default 5", v)
	}
	if n := len(e.Errors()); n != 1 {
		t.Errorf("got %d errors, expected 1 for the malformed argument", n)
	}
	if s.Namespace() != "legacy" {
		t.Errorf("got namespace %q, expected legacy", s.Namespace())
	}
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLoadIncludes(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "map.txt")
	writeFile(t, main, "BveTs Map 2.02\n0;\ninclude 'parts/a.txt';\n100;\n")
	writeFile(t, filepath.Join(dir, "parts", "a.txt"), "BveTs Map 2.02\ncurve.begin(300, 0);\ninclude 'b.txt';\n")
	writeFile(t, filepath.Join(dir, "parts", "b.txt"), "curve.end();\n")

	var e util.ErrorLogger
	exprs, err := Load(main, util.NewFileCache(8, ""), &e)
	if err != nil {
		t.Fatal(err)
	}

	var texts []string
	for _, ex := range exprs {
		texts = append(texts, ex.Text)
	}
	expected := []string{"0", "curve.begin(300, 0)", "curve.end()", "100"}
	if diff := cmp.Diff(expected, texts); diff != "" {
		t.Errorf("expressions mismatch (-want +got):\n%s", diff)
	}
	if exprs[1].Pos.Line != 2 || !strings.HasSuffix(exprs[1].Pos.File, "a.txt") {
		t.Errorf("included expression has position %s", exprs[1].Pos)
	}
	// b.txt has no header, which is only a warning.
	if e.HaveErrors() || len(e.Warnings()) != 1 {
		t.Errorf("unexpected diagnostics: %s", e.String())
	}
}

func TestLoadRecursiveInclude(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "map.txt")
	writeFile(t, main, "BveTs Map 2.02\ninclude 'map.txt';\n")

	var e util.ErrorLogger
	if _, err := Load(main, util.NewFileCache(8, ""), &e); err != nil {
		t.Fatal(err)
	}
	if !e.HaveErrors() {
		t.Errorf("expected an error for a self-including file")
	}
}

func TestLoadVersion(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "map.txt")
	writeFile(t, main, "BveTs Map 9.00\n0;\n")

	var e util.ErrorLogger
	if _, err := Load(main, util.NewFileCache(8, ""), &e); !errors.Is(err, util.ErrUnsupportedVersion) {
		t.Errorf("got error %v, expected ErrUnsupportedVersion", err)
	}
}

func TestIncludePath(t *testing.T) {
	for text, expected := range map[string]string{
		"include 'a.txt'":     "a.txt",
		"Include('b\\c.txt')": "b\\c.txt",
		"include \"d.txt\"":   "d.txt",
	} {
		if got, ok := includePath(text); !ok || got != expected {
			t.Errorf("%q: got (%q, %v), expected %q", text, got, ok, expected)
		}
	}
	if _, ok := includePath("includes.x(1)"); ok {
		t.Errorf("includes.x should not be an include")
	}
}
