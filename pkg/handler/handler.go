package handler

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/valyala/bytebufferpool"

	"tinyhttpd/pkg/files"
	"tinyhttpd/pkg/journal"
	"tinyhttpd/pkg/metrics"
	"tinyhttpd/pkg/state/logger"
	"tinyhttpd/pkg/wire"
)

// DefaultReadBufferSize is the largest request head read from a
// connection. Longer requests are truncated and usually fail to parse.
const DefaultReadBufferSize = 512

// FileReader is the static file collaborator used for GET.
type FileReader interface {
	Read(resource string) ([]byte, error)
}

// Recorder receives one entry per served connection.
type Recorder interface {
	Record(e journal.Entry) error
}

type Options struct {
	Files          FileReader
	Journal        Recorder
	ReadBufferSize int
	Now            func() time.Time
}

// Handler serves exactly one request per connection.
type Handler struct {
	files    FileReader
	journal  Recorder
	readSize int
	now      func() time.Time
}

func New(opts Options) *Handler {
	h := &Handler{
		files:    opts.Files,
		journal:  opts.Journal,
		readSize: opts.ReadBufferSize,
		now:      opts.Now,
	}
	if h.readSize <= 0 {
		h.readSize = DefaultReadBufferSize
	}
	if h.now == nil {
		h.now = time.Now
	}
	return h
}

// ServeConn reads one request head, writes the response and closes conn.
func (h *Handler) ServeConn(conn net.Conn) {
	// TODO: read/write deadlines. A silent peer holds its worker until the
	// connection is reset.
	start := time.Now()
	remote := conn.RemoteAddr().String()
	logger.Debug("connection_received", "remote", remote)
	defer closeConn(conn)

	in := bytebufferpool.Get()
	defer bytebufferpool.Put(in)
	if cap(in.B) < h.readSize {
		in.B = make([]byte, h.readSize)
	}
	in.B = in.B[:h.readSize]

	n, err := conn.Read(in.B)
	if n == 0 {
		logger.Warn("connection_read_failed", "remote", remote, "error", err)
		return
	}
	raw := in.B[:n]

	resp, line := h.Respond(raw)

	out := bytebufferpool.Get()
	defer bytebufferpool.Put(out)
	out.B, err = resp.AppendTo(out.B[:0])
	if err != nil {
		// unreachable: handlers only build known statuses
		logger.Error("response_serialize_failed", "remote", remote, "error", err)
		return
	}
	written, err := conn.Write(out.B)
	if err != nil {
		logger.Warn("connection_write_failed", "remote", remote, "error", err)
		return
	}

	elapsed := time.Since(start)
	date, _ := resp.Header("Date")
	code := resp.Status.Code()
	logger.Info("request_served", "date", date, "request_line", line, "status", code, "remote", remote)
	metrics.ObserveResponse(code)
	metrics.RequestDuration.Observe(elapsed.Seconds())

	if h.journal != nil {
		e := journal.Entry{
			Time:        h.now().UTC(),
			Remote:      remote,
			RequestLine: line,
			Status:      code,
			Bytes:       written,
			Duration:    elapsed,
		}
		if err := h.journal.Record(e); err != nil {
			logger.Warn("journal_record_failed", "error", err)
		}
	}
}

// Respond builds the response for a raw request head and returns it with
// the request line used for logging. It never returns nil.
func (h *Handler) Respond(raw []byte) (*wire.Response, string) {
	resp, line := h.respondSafely(raw)
	resp.AddHeader("Date", h.now().UTC().Format(DateLayout))
	return resp, line
}

func (h *Handler) respondSafely(raw []byte) (resp *wire.Response, line string) {
	line = wire.FirstLine(raw)
	defer func() {
		if r := recover(); r != nil {
			logger.Error("handler_panicked", "request_line", line, "panic", fmt.Sprint(r))
			resp = InternalError()
		}
	}()

	req, err := wire.ParseRequestBytes(raw)
	if err != nil {
		logger.Debug("request_rejected", "request_line", line, "error", err)
		return BadRequest(), line
	}
	return h.Dispatch(req), req.RequestLine()
}

// Dispatch routes a parsed request by method.
func (h *Handler) Dispatch(req *wire.Request) *wire.Response {
	switch req.Method {
	case wire.MethodGet:
		return h.get(req)
	case wire.MethodPost:
		return wire.NewResponse(wire.Version11, wire.StatusOK)
	default:
		resp := wire.NewResponse(req.Version, wire.StatusNotImplemented)
		resp.SetBody("text/html", []byte(notImplementedPage))
		return resp
	}
}

func (h *Handler) get(req *wire.Request) *wire.Response {
	var (
		data []byte
		err  = files.ErrNotFound
	)
	if h.files != nil {
		data, err = h.files.Read(req.Resource)
	}
	if err != nil {
		if !errors.Is(err, files.ErrNotFound) {
			logger.Warn("file_lookup_failed", "resource", req.Resource, "error", err)
		}
		resp := wire.NewResponse(req.Version, wire.StatusNotFound)
		resp.SetBody("text/html", []byte(notFoundPage))
		return resp
	}
	resp := wire.NewResponse(req.Version, wire.StatusOK)
	resp.SetBody("text/html", data)
	return resp
}

// BadRequest is the response for anything that fails to parse.
func BadRequest() *wire.Response {
	resp := wire.NewResponse(wire.Version11, wire.StatusBadRequest)
	resp.SetBody("text/plain", []byte(invalidRequestBody))
	return resp
}

func InternalError() *wire.Response {
	resp := wire.NewResponse(wire.Version11, wire.StatusInternalServerError)
	resp.SetBody("text/plain", []byte(internalErrorBody))
	return resp
}

func closeConn(conn net.Conn) {
	if rc, ok := conn.(interface{ CloseRead() error }); ok {
		_ = rc.CloseRead()
	}
	_ = conn.Close()
}
