package wire

import (
	"io"
	"strconv"
	"strings"
)

// Response is an outgoing message. Headers are appended by handlers in the
// order they should appear on the wire.
type Response struct {
	Version Version
	Status  Status
	Headers []Header
	Body    []byte
}

func NewResponse(v Version, s Status) *Response {
	return &Response{Version: v, Status: s}
}

func (r *Response) AddHeader(name, value string) {
	r.Headers = append(r.Headers, Header{Name: name, Value: value})
}

func (r *Response) Header(name string) (string, bool) {
	return lookup(r.Headers, name)
}

// SetBody replaces the body. A non-empty body gets Content-type and
// Content-length headers; contentType is ignored for an empty body.
func (r *Response) SetBody(contentType string, body []byte) {
	r.Body = body
	if len(body) == 0 {
		return
	}
	r.AddHeader("Content-type", contentType)
	r.AddHeader("Content-length", strconv.Itoa(len(body)))
}

// StatusLine renders "<version> <code> <reason>".
func (r *Response) StatusLine() (string, error) {
	info, ok := r.Status.info()
	if !ok {
		return "", ErrUnknownStatus
	}
	return r.Version.String() + " " + strconv.Itoa(info.code) + " " + info.reason, nil
}

// AppendTo appends the wire form of r to dst. The body is copied as raw
// bytes without any text decoding.
func (r *Response) AppendTo(dst []byte) ([]byte, error) {
	line, err := r.StatusLine()
	if err != nil {
		return dst, err
	}
	dst = append(dst, line...)
	dst = append(dst, lineBreak...)
	for i, h := range r.Headers {
		if i > 0 {
			dst = append(dst, lineBreak...)
		}
		dst = append(dst, h.String()...)
	}
	if len(r.Headers) > 0 {
		dst = append(dst, lineBreak...)
	}
	dst = append(dst, lineBreak...)
	dst = append(dst, r.Body...)
	return dst, nil
}

// Bytes returns the serialized response.
func (r *Response) Bytes() ([]byte, error) {
	return r.AppendTo(make([]byte, 0, 128+len(r.Body)))
}

func (r *Response) WriteTo(w io.Writer) (int64, error) {
	b, err := r.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// String renders the head of the response for debugging.
func (r *Response) String() string {
	line, err := r.StatusLine()
	if err != nil {
		line = "<" + err.Error() + ">"
	}
	var sb strings.Builder
	sb.WriteString(line)
	for _, h := range r.Headers {
		sb.WriteString(lineBreak)
		sb.WriteString(h.String())
	}
	return sb.String()
}
