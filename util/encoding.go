// util/encoding.go
// Copyright(c) 2025 bve5c contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xef, 0xbb, 0xbf}
	bomUTF16LE = []byte{0xff, 0xfe}
	bomUTF16BE = []byte{0xfe, 0xff}
)

// HeaderEncoding returns the encoding named in a header line of the form
// "BveTs Map 2.02:shift_jis" or "BveTs Structure List 1.00:utf-8,foo".
// The name is whatever follows the first ':' up to an optional ','. An
// empty string is returned if the header doesn't name one.
func HeaderEncoding(header string) string {
	_, rest, ok := strings.Cut(header, ":")
	if !ok {
		return ""
	}
	name, _, _ := strings.Cut(rest, ",")
	return strings.TrimSpace(name)
}

// LookupEncoding maps an encoding label such as "shift_jis", "euc-jp" or
// "utf-16" to an encoding. Labels follow the WHATWG encoding standard.
func LookupEncoding(name string) (encoding.Encoding, error) {
	switch strings.ToLower(name) {
	case "", "utf-8", "utf8":
		return unicode.UTF8, nil
	case "utf-16", "utf16":
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM), nil
	}
	e, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("%s: unknown text encoding", name)
	}
	return e, nil
}

// DetectEncoding sniffs the encoding of a text file from its byte order
// mark or, failing that, from the encoding name in its first line. It
// returns the encoding along with the label it was chosen by.
func DetectEncoding(data []byte) (encoding.Encoding, string) {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return unicode.UTF8BOM, "utf-8"
	case bytes.HasPrefix(data, bomUTF16LE):
		return unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM), "utf-16le"
	case bytes.HasPrefix(data, bomUTF16BE):
		return unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM), "utf-16be"
	}

	// The header line itself is ASCII in every supported encoding.
	line := data
	if i := bytes.IndexAny(line, "\r\n"); i != -1 {
		line = line[:i]
	}
	if name := HeaderEncoding(string(line)); name != "" {
		if e, err := LookupEncoding(name); err == nil {
			return e, strings.ToLower(name)
		}
	}
	return unicode.UTF8, "utf-8"
}

// DecodeText converts the contents of a text file to a UTF-8 string. If
// forced is non-empty it names the encoding to use; otherwise the encoding
// is sniffed with DetectEncoding. Line endings are normalized to "\n".
func DecodeText(data []byte, forced string) (string, error) {
	var e encoding.Encoding
	if forced != "" {
		var err error
		if e, err = LookupEncoding(forced); err != nil {
			return "", err
		}
	} else {
		e, _ = DetectEncoding(data)
	}

	b, err := e.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}
	b = bytes.TrimPrefix(b, bomUTF8)
	s := strings.ReplaceAll(string(b), "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n"), nil
}
