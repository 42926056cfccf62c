package wire

import (
	"strings"
	"unicode/utf8"
)

const lineBreak = "\r\n"

// ParseRequestBytes validates b as UTF-8 before parsing it.
func ParseRequestBytes(b []byte) (*Request, error) {
	if !utf8.Valid(b) {
		return nil, ErrInvalidUTF8
	}
	return ParseRequest(string(b))
}

// ParseRequest parses a request line and header block. Header lines are
// read until the first empty line; lines without a colon are skipped.
// Anything after the header block is ignored.
func ParseRequest(data string) (*Request, error) {
	lines := strings.Split(data, lineBreak)
	req, err := parseRequestLine(lines[0])
	if err != nil {
		return nil, err
	}
	for _, line := range lines[1:] {
		if line == "" {
			break
		}
		h, ok := ParseHeader(line)
		if !ok {
			continue
		}
		req.Headers = append(req.Headers, h)
	}
	return req, nil
}

func parseRequestLine(line string) (*Request, error) {
	tokens := strings.Fields(line)
	if len(tokens) != 3 {
		return nil, ErrBadRequestLine
	}
	m, ok := ParseMethod(tokens[0])
	if !ok {
		return nil, ErrUnknownMethod
	}
	v, ok := ParseVersion(tokens[2])
	if !ok {
		return nil, ErrUnknownVersion
	}
	return &Request{Method: m, Resource: tokens[1], Version: v}, nil
}

// FirstLine returns the raw first line of data, used to log requests that
// failed to parse.
func FirstLine(data []byte) string {
	s := string(data)
	if i := strings.Index(s, lineBreak); i >= 0 {
		s = s[:i]
	}
	return strings.ToValidUTF8(strings.TrimRight(s, "\x00"), "?")
}
