package types

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// EchoRequest represents an SMB2 ECHO request
type EchoRequest struct {
	StructureSize uint16 // 4
	Reserved      uint16
}

// NewEchoRequest creates an ECHO request
func NewEchoRequest() *EchoRequest {
	return &EchoRequest{StructureSize: 4}
}

// Command returns CommandEcho
func (r *EchoRequest) Command() Command { return CommandEcho }

// Fields lists the request fields in wire order
func (r *EchoRequest) Fields() []Field {
	return []Field{
		fixed("StructureSize", encoding.LE16(r.StructureSize)),
		fixed("Reserved", encoding.LE16(r.Reserved)),
	}
}

// Marshal serializes the ECHO request
func (r *EchoRequest) Marshal() []byte {
	return MarshalFields(r.Fields())
}

// Unmarshal deserializes an ECHO request
func (r *EchoRequest) Unmarshal(buf []byte) error {
	if err := need(buf, 4, "echo request"); err != nil {
		return err
	}
	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.Reserved = encoding.Uint16LE(buf[2:4])
	return nil
}

// EchoResponse represents an SMB2 ECHO response
type EchoResponse struct {
	StructureSize uint16 // 4
	Reserved      uint16
}

// Unmarshal deserializes an ECHO response
func (r *EchoResponse) Unmarshal(buf []byte) error {
	if err := need(buf, 4, "echo response"); err != nil {
		return err
	}
	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.Reserved = encoding.Uint16LE(buf[2:4])
	return nil
}
