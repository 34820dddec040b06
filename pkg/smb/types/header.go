package types

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// Header represents an SMB2 sync message header (64 bytes)
type Header struct {
	ProtocolID    [4]byte     // 0xFE 'S' 'M' 'B'
	StructureSize uint16      // Always 64
	CreditCharge  uint16      // Number of credits consumed
	Status        NTStatus    // NT Status code (response) / ChannelSequence (request)
	Command       Command     // Command code
	CreditRequest uint16      // Credits requested (request) / Credits granted (response)
	Flags         HeaderFlags // Flags
	NextCommand   uint32      // Offset to next command (for compounding)
	MessageID     uint64      // Message identifier
	Reserved      uint32      // Reserved (or async ID high bits)
	TreeID        uint32      // Tree identifier
	SessionID     uint64      // Session identifier
	Signature     [16]byte    // Signature for signed messages
}

// HeaderDefaults are the per-request header values the handshake uses
type HeaderDefaults struct {
	CreditCharge  uint16
	CreditRequest uint16
	MessageID     uint64
}

// NewRequestHeader creates a request header flagged as a DFS operation.
// Tree and session ids start at zero until a response supplies them.
func NewRequestHeader(cmd Command, d HeaderDefaults, treeID uint32, sessionID uint64) *Header {
	return &Header{
		ProtocolID:    SMB2ProtocolID,
		StructureSize: SMB2HeaderSize,
		CreditCharge:  d.CreditCharge,
		Command:       cmd,
		CreditRequest: d.CreditRequest,
		Flags:         FlagsDFSOperations,
		MessageID:     d.MessageID,
		TreeID:        treeID,
		SessionID:     sessionID,
	}
}

// Marshal serializes the header to bytes
func (h *Header) Marshal() []byte {
	buf := make([]byte, SMB2HeaderSize)

	copy(buf[0:4], h.ProtocolID[:])
	encoding.PutUint16LE(buf[4:6], h.StructureSize)
	encoding.PutUint16LE(buf[6:8], h.CreditCharge)
	encoding.PutUint32LE(buf[8:12], uint32(h.Status))
	encoding.PutUint16LE(buf[12:14], uint16(h.Command))
	encoding.PutUint16LE(buf[14:16], h.CreditRequest)
	encoding.PutUint32LE(buf[16:20], uint32(h.Flags))
	encoding.PutUint32LE(buf[20:24], h.NextCommand)
	encoding.PutUint64LE(buf[24:32], h.MessageID)
	encoding.PutUint32LE(buf[32:36], h.Reserved)
	encoding.PutUint32LE(buf[36:40], h.TreeID)
	encoding.PutUint64LE(buf[40:48], h.SessionID)
	copy(buf[48:64], h.Signature[:])

	return buf
}

// Unmarshal reads a header from fixed byte ranges. Content is not
// validated: a fuzzing peer may answer with anything.
func (h *Header) Unmarshal(buf []byte) error {
	if err := need(buf, SMB2HeaderSize, "header"); err != nil {
		return err
	}

	copy(h.ProtocolID[:], buf[0:4])
	h.StructureSize = encoding.Uint16LE(buf[4:6])
	h.CreditCharge = encoding.Uint16LE(buf[6:8])
	h.Status = NTStatus(encoding.Uint32LE(buf[8:12]))
	h.Command = Command(encoding.Uint16LE(buf[12:14]))
	h.CreditRequest = encoding.Uint16LE(buf[14:16])
	h.Flags = HeaderFlags(encoding.Uint32LE(buf[16:20]))
	h.NextCommand = encoding.Uint32LE(buf[20:24])
	h.MessageID = encoding.Uint64LE(buf[24:32])
	h.Reserved = encoding.Uint32LE(buf[32:36])
	h.TreeID = encoding.Uint32LE(buf[36:40])
	h.SessionID = encoding.Uint64LE(buf[40:48])
	copy(h.Signature[:], buf[48:64])

	return nil
}

// DecodeHeader decodes the first 64 bytes of buf
func DecodeHeader(buf []byte) (*Header, error) {
	h := &Header{}
	if err := h.Unmarshal(buf); err != nil {
		return nil, err
	}
	return h, nil
}

// IsResponse returns true if this is a response from the server
func (h *Header) IsResponse() bool {
	return h.Flags&FlagsServerToRedir != 0
}

// IsAsync returns true if this is an async response
func (h *Header) IsAsync() bool {
	return h.Flags&FlagsAsyncCommand != 0
}

// HasSMB2Magic reports whether the protocol id is 0xFE 'SMB'
func (h *Header) HasSMB2Magic() bool {
	return h.ProtocolID == SMB2ProtocolID
}
