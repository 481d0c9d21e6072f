// util/text.go
// Copyright(c) 2022-2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"hash/fnv"
	"io"
	"iter"
	gomath "math"
	"strconv"
	"strings"
	"unicode"
)

// TrimInside removes every whitespace character from s, not just the
// leading and trailing ones.
func TrimInside(s string) string {
	if strings.IndexFunc(s, unicode.IsSpace) == -1 {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for _, ch := range s {
		if !unicode.IsSpace(ch) {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}

// floatPrefix returns the length of the longest prefix of s that is a
// decimal floating-point literal: an optional sign, digits with an
// optional decimal point and an optional exponent.
func floatPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && s[i] >= '0' && s[i] <= '9' {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && s[k] >= '0' && s[k] <= '9' {
			k++
		}
		if k > j {
			i = k
		}
	}
	return i
}

// ParseFloat parses s leniently: whitespace anywhere is ignored and
// trailing garbage after the longest numeric prefix is dropped, so
// "12.5m" yields 12.5. It reports false if no prefix is numeric.
func ParseFloat(s string) (float64, bool) {
	s = TrimInside(s)
	n := floatPrefix(s)
	if n == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s[:n], 64)
	if err != nil {
		// Only out-of-range values get here.
		return 0, false
	}
	return v, true
}

// ParseInt parses s like ParseFloat and rounds half to even. Values
// outside the int32 range are rejected.
func ParseInt(s string) (int, bool) {
	v, ok := ParseFloat(s)
	if !ok || v < gomath.MinInt32 || v > gomath.MaxInt32 {
		return 0, false
	}
	return int(gomath.RoundToEven(v)), true
}

// ParseTime converts "H", "H:M" or "H:M:S" into seconds since midnight.
func ParseTime(s string) (float64, bool) {
	s = TrimInside(s)
	if s == "" {
		return 0, false
	}
	f := strings.Split(s, ":")
	if len(f) > 3 {
		return 0, false
	}
	var t float64
	scale := 3600.0
	for _, c := range f {
		v, err := strconv.Atoi(c)
		if err != nil {
			return 0, false
		}
		t += scale * float64(v)
		scale /= 60
	}
	return t, true
}

// ParseVersion extracts the version number that follows prefix at the
// start of a file's header line, e.g. "BveTs Map 2.02:utf-8" with prefix
// "bvets map" gives 2.02. The prefix is matched case-insensitively and
// anything from the first ':' on names the encoding and is ignored.
func ParseVersion(header, prefix string) (version float64, hasPrefix bool, ok bool) {
	header = strings.TrimPrefix(header, "\ufeff")
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return 0, false, false
	}
	rest := header[len(prefix):]
	if i := strings.IndexByte(rest, ':'); i != -1 {
		rest = rest[:i]
	}
	rest = strings.TrimSpace(rest)
	end := 0
	for end < len(rest) && (rest[end] == '.' || (rest[end] >= '0' && rest[end] <= '9')) {
		end++
	}
	version, ok = ParseFloat(rest[:end])
	return version, true, ok
}

// StripComment removes a trailing '#' or "//" comment. Comment markers
// inside single-quoted strings are left alone.
func StripComment(line string) string {
	quoted := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\'':
			quoted = !quoted
		case '#':
			if !quoted {
				return line[:i]
			}
		case '/':
			if !quoted && i+1 < len(line) && line[i+1] == '/' {
				return line[:i]
			}
		}
	}
	return line
}

// TrimQuotes strips a single pair of matching surrounding quotes.
func TrimQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func HashString64(s string) uint64 {
	hash := fnv.New64a()
	io.Copy(hash, strings.NewReader(s))
	return hash.Sum64()
}

// SelectInTwoEdits returns the strings from seq that are within one and
// two edits of str, respectively. It's used to suggest what a misspelled
// command or key was meant to be.
// https://en.wikipedia.org/wiki/Levenshtein_distance
func SelectInTwoEdits(str string, seq iter.Seq[string]) (dist1, dist2 []string) {
	var cur, prev []int
	n := len(str)
	for str2 := range seq {
		if str == str2 {
			continue
		}

		n2 := len(str2)
		if d := n - n2; d > 2 || d < -2 {
			continue
		}
		if m := max(n, n2); m >= len(cur) {
			cur = make([]int, m+1)
			prev = make([]int, m+1)
		}

		for i := range n2 + 1 {
			prev[i] = i
		}

		far := false
		for y := 1; y <= n && !far; y++ {
			cur[0] = y
			rowBest := y
			for x := 1; x <= n2; x++ {
				cost := 0
				if str[y-1] != str2[x-1] {
					cost = 1
				}
				cur[x] = min(prev[x-1]+cost, cur[x-1]+1, prev[x]+1)
				rowBest = min(rowBest, cur[x])
			}
			far = rowBest > 2
			cur, prev = prev, cur
		}

		if far {
			continue
		}
		switch prev[n2] {
		case 1:
			dist1 = append(dist1, str2)
		case 2:
			dist2 = append(dist2, str2)
		}
	}
	return
}

// Suggest returns the closest candidate to str, preferring one-edit
// matches, or "" if nothing is within two edits.
func Suggest(str string, seq iter.Seq[string]) string {
	d1, d2 := SelectInTwoEdits(str, seq)
	if len(d1) > 0 {
		return d1[0]
	} else if len(d2) > 0 {
		return d2[0]
	}
	return ""
}
