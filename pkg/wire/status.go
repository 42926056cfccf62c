package wire

import "strconv"

// Status is a closed set of response codes. StatusUnknown stands for any
// other numeric code and cannot be serialized.
type Status uint8

const (
	StatusUnknown Status = iota
	StatusOK
	StatusBadRequest
	StatusUnauthorized
	StatusForbidden
	StatusNotFound
	StatusMethodNotAllowed
	StatusInternalServerError
	StatusNotImplemented
	StatusBadGateway
	StatusServiceUnavailable
	StatusGatewayTimeout
	StatusHTTPVersionNotSupported

	statusCount
)

type statusInfo struct {
	code   int
	reason string
}

// statusTable is indexed by Status and has exactly one entry per constant.
// The StatusUnknown entry is the zero statusInfo.
var statusTable = [statusCount]statusInfo{
	StatusUnknown:                 {},
	StatusOK:                      {200, "OK"},
	StatusBadRequest:              {400, "Bad Request"},
	StatusUnauthorized:            {401, "Unauthorized"},
	StatusForbidden:               {403, "Forbidden"},
	StatusNotFound:                {404, "Not Found"},
	StatusMethodNotAllowed:        {405, "Method Not Allowed"},
	StatusInternalServerError:     {500, "Internal Server Error"},
	StatusNotImplemented:          {501, "Not Implemented"},
	StatusBadGateway:              {502, "Bad Gateway"},
	StatusServiceUnavailable:      {503, "Service Unavailable"},
	StatusGatewayTimeout:          {504, "Gateway Timeout"},
	StatusHTTPVersionNotSupported: {505, "HTTP Version Not Supported"},
}

// StatusFromCode maps a numeric code onto the closed set.
func StatusFromCode(code int) Status {
	for s := StatusOK; s < statusCount; s++ {
		if statusTable[s].code == code {
			return s
		}
	}
	return StatusUnknown
}

func (s Status) info() (statusInfo, bool) {
	if s >= statusCount || s == StatusUnknown {
		return statusInfo{}, false
	}
	return statusTable[s], true
}

// Code returns the numeric code, 0 for StatusUnknown.
func (s Status) Code() int {
	info, _ := s.info()
	return info.code
}

// Reason returns the reason phrase, "" for StatusUnknown.
func (s Status) Reason() string {
	info, _ := s.info()
	return info.reason
}

func (s Status) String() string {
	info, ok := s.info()
	if !ok {
		return "unknown"
	}
	return strconv.Itoa(info.code) + " " + info.reason
}
