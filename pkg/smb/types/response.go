package types

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// Response is a decoded response body
type Response interface {
	Unmarshal(buf []byte) error
}

// ErrorResponse represents an SMB2 ERROR response body
type ErrorResponse struct {
	StructureSize     uint16 // 9
	ErrorContextCount uint8
	Reserved          uint8
	ByteCount         uint32
	ErrorData         []byte
}

// Unmarshal deserializes an error response
func (r *ErrorResponse) Unmarshal(buf []byte) error {
	if err := need(buf, 8, "error response"); err != nil {
		return err
	}
	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.ErrorContextCount = buf[2]
	r.Reserved = buf[3]
	r.ByteCount = encoding.Uint32LE(buf[4:8])
	end := min(8+int(r.ByteCount), len(buf))
	r.ErrorData = append([]byte(nil), buf[8:end]...)
	return nil
}

// NewResponse returns an empty response value for cmd. Commands the fuzzer
// never sends have no response type.
func NewResponse(cmd Command) (Response, error) {
	switch cmd {
	case CommandNegotiate:
		return &NegotiateResponse{}, nil
	case CommandSessionSetup:
		return &SessionSetupResponse{}, nil
	case CommandTreeConnect:
		return &TreeConnectResponse{}, nil
	case CommandCreate:
		return &CreateResponse{}, nil
	case CommandQueryInfo:
		return &QueryInfoResponse{}, nil
	case CommandClose:
		return &CloseResponse{}, nil
	case CommandEcho:
		return &EchoResponse{}, nil
	}
	return nil, &DecodeError{Field: "response command", Code: uint64(cmd)}
}

// DecodeResponseBody decodes body according to the header's command and
// status. Failed requests carry an error body, except the session setup
// continuation which carries a normal one.
func DecodeResponseBody(h *Header, body []byte) (Response, error) {
	var r Response
	if h.Status.IsError() && !(h.Command == CommandSessionSetup && h.Status == StatusMoreProcessingReq) {
		r = &ErrorResponse{}
	} else {
		var err error
		if r, err = NewResponse(h.Command); err != nil {
			return nil, err
		}
	}
	if err := r.Unmarshal(body); err != nil {
		return nil, err
	}
	return r, nil
}
