package types

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// SessionSetupRequestFixedSize is the fixed part of a SESSION_SETUP request
const SessionSetupRequestFixedSize = 24

// SessionSetupRequest represents an SMB2 SESSION_SETUP request
type SessionSetupRequest struct {
	StructureSize        uint16 // 25
	Flags                SessionSetupFlags
	SecurityMode         uint8 // SecurityMode in one byte
	Capabilities         Capabilities
	Channel              uint32
	SecurityBufferOffset uint16
	SecurityBufferLength uint16
	PreviousSessionID    uint64
	SecurityBuffer       []byte // SPNEGO/NTLMSSP token
}

// NewSessionSetupRequest creates a session setup request whose buffer
// offset and length describe securityBuffer.
func NewSessionSetupRequest(flags SessionSetupFlags, mode SecurityMode, securityBuffer []byte) *SessionSetupRequest {
	return &SessionSetupRequest{
		StructureSize:        25,
		Flags:                flags,
		SecurityMode:         uint8(mode),
		Capabilities:         GlobalCapDFS,
		SecurityBufferOffset: SMB2HeaderSize + SessionSetupRequestFixedSize,
		SecurityBufferLength: uint16(len(securityBuffer)),
		SecurityBuffer:       securityBuffer,
	}
}

// Command returns CommandSessionSetup
func (r *SessionSetupRequest) Command() Command { return CommandSessionSetup }

// Fields lists the request fields in wire order
func (r *SessionSetupRequest) Fields() []Field {
	return []Field{
		fixed("StructureSize", encoding.LE16(r.StructureSize)),
		fixed("Flags", []byte{byte(r.Flags)}),
		fixed("SecurityMode", []byte{r.SecurityMode}),
		fixed("Capabilities", encoding.LE32(uint32(r.Capabilities))),
		fixed("Channel", encoding.LE32(r.Channel)),
		fixed("SecurityBufferOffset", encoding.LE16(r.SecurityBufferOffset)),
		fixed("SecurityBufferLength", encoding.LE16(r.SecurityBufferLength)),
		fixed("PreviousSessionID", encoding.LE64(r.PreviousSessionID)),
		variable("Buffer", append([]byte(nil), r.SecurityBuffer...)),
	}
}

// Marshal serializes the session setup request
func (r *SessionSetupRequest) Marshal() []byte {
	return MarshalFields(r.Fields())
}

// Unmarshal reads the fixed part; everything after it is the buffer.
func (r *SessionSetupRequest) Unmarshal(buf []byte) error {
	if err := need(buf, SessionSetupRequestFixedSize, "session setup request"); err != nil {
		return err
	}
	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.Flags = SessionSetupFlags(buf[2])
	r.SecurityMode = buf[3]
	r.Capabilities = Capabilities(encoding.Uint32LE(buf[4:8]))
	r.Channel = encoding.Uint32LE(buf[8:12])
	r.SecurityBufferOffset = encoding.Uint16LE(buf[12:14])
	r.SecurityBufferLength = encoding.Uint16LE(buf[14:16])
	r.PreviousSessionID = encoding.Uint64LE(buf[16:24])
	r.SecurityBuffer = append([]byte(nil), buf[24:]...)
	return nil
}

// SessionSetupResponse represents an SMB2 SESSION_SETUP response
type SessionSetupResponse struct {
	StructureSize        uint16 // 9
	SessionFlags         SessionFlags
	SecurityBufferOffset uint16
	SecurityBufferLength uint16
	SecurityBuffer       []byte // SPNEGO/NTLMSSP token
}

// Unmarshal deserializes a session setup response. The security buffer is
// taken from directly after the fixed part, clamped to what was received.
func (r *SessionSetupResponse) Unmarshal(buf []byte) error {
	if err := need(buf, 8, "session setup response"); err != nil {
		return err
	}

	r.StructureSize = encoding.Uint16LE(buf[0:2])

	flags, err := ParseSessionFlags(encoding.Uint16LE(buf[2:4]))
	if err != nil {
		return err
	}
	r.SessionFlags = flags

	r.SecurityBufferOffset = encoding.Uint16LE(buf[4:6])
	r.SecurityBufferLength = encoding.Uint16LE(buf[6:8])

	end := min(8+int(r.SecurityBufferLength), len(buf))
	r.SecurityBuffer = append([]byte(nil), buf[8:end]...)
	return nil
}

// IsGuest returns true if this is a guest session
func (r *SessionSetupResponse) IsGuest() bool {
	return r.SessionFlags&SessionFlagIsGuest != 0
}

// IsNull returns true if this is a null/anonymous session
func (r *SessionSetupResponse) IsNull() bool {
	return r.SessionFlags&SessionFlagIsNull != 0
}
