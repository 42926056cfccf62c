package wire

import "strings"

// Method is a recognized request method. The zero value is not a method.
type Method uint8

const (
	MethodGet Method = iota + 1
	MethodHead
	MethodPost
	MethodPut
	MethodDelete
	MethodOptions
)

// ParseMethod matches s case-insensitively against the recognized methods.
func ParseMethod(s string) (Method, bool) {
	switch strings.ToUpper(s) {
	case "GET":
		return MethodGet, true
	case "HEAD":
		return MethodHead, true
	case "POST":
		return MethodPost, true
	case "PUT":
		return MethodPut, true
	case "DELETE":
		return MethodDelete, true
	case "OPTIONS":
		return MethodOptions, true
	}
	return 0, false
}

func (m Method) String() string {
	switch m {
	case MethodGet:
		return "GET"
	case MethodHead:
		return "HEAD"
	case MethodPost:
		return "POST"
	case MethodPut:
		return "PUT"
	case MethodDelete:
		return "DELETE"
	case MethodOptions:
		return "OPTIONS"
	}
	return ""
}

// Version is an HTTP version tag. It carries no version specific behavior.
type Version uint8

const (
	Version10 Version = iota + 1
	Version11
	Version20
	Version30
)

// ParseVersion requires an exact match, e.g. "HTTP/1.1".
func ParseVersion(s string) (Version, bool) {
	switch s {
	case "HTTP/1.0":
		return Version10, true
	case "HTTP/1.1":
		return Version11, true
	case "HTTP/2.0":
		return Version20, true
	case "HTTP/3.0":
		return Version30, true
	}
	return 0, false
}

func (v Version) String() string {
	switch v {
	case Version10:
		return "HTTP/1.0"
	case Version11:
		return "HTTP/1.1"
	case Version20:
		return "HTTP/2.0"
	case Version30:
		return "HTTP/3.0"
	}
	return ""
}

// Header is a single name/value pair. Order and duplicates are preserved by
// the slices that hold them.
type Header struct {
	Name  string
	Value string
}

// ParseHeader splits line on its first colon. Lines without a colon or with
// an empty name are rejected.
func ParseHeader(line string) (Header, bool) {
	name, value, ok := strings.Cut(line, ":")
	if !ok {
		return Header{}, false
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Header{}, false
	}
	return Header{Name: name, Value: strings.TrimSpace(value)}, true
}

// Equal compares trimmed names case-sensitively and trimmed values.
func (h Header) Equal(o Header) bool {
	return strings.TrimSpace(h.Name) == strings.TrimSpace(o.Name) &&
		strings.TrimSpace(h.Value) == strings.TrimSpace(o.Value)
}

func (h Header) String() string {
	return strings.TrimSpace(h.Name) + ": " + strings.TrimSpace(h.Value)
}

// Request is a parsed request head. Body is never populated by the parser.
type Request struct {
	Method   Method
	Resource string
	Version  Version
	Headers  []Header
	Body     []byte
}

// RequestLine rebuilds the request line from the parsed tokens.
func (r *Request) RequestLine() string {
	return r.Method.String() + " " + r.Resource + " " + r.Version.String()
}

// Header returns the value of the first header named name.
func (r *Request) Header(name string) (string, bool) {
	return lookup(r.Headers, name)
}

func lookup(hs []Header, name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, h := range hs {
		if strings.TrimSpace(h.Name) == name {
			return strings.TrimSpace(h.Value), true
		}
	}
	return "", false
}
