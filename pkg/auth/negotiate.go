package auth

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// negotiateMessageSize covers the fixed part plus the version
const negotiateMessageSize = 40

// NegotiateMessage represents NTLMSSP Type 1 message (NEGOTIATE_MESSAGE)
type NegotiateMessage struct {
	Signature         [8]byte
	MessageType       uint32 // Always 1
	NegotiateFlags    uint32
	DomainNameFields  SecurityBuffer
	WorkstationFields SecurityBuffer
	Version           NTLMVersion
}

// NewNegotiateMessage creates a Type 1 message with empty domain and
// workstation fields pointing at the end of the message.
func NewNegotiateMessage() *NegotiateMessage {
	empty := SecurityBuffer{Offset: negotiateMessageSize}
	return &NegotiateMessage{
		Signature:         ntlmSignature,
		MessageType:       NtLmNegotiate,
		NegotiateFlags:    NegotiateFlags,
		DomainNameFields:  empty,
		WorkstationFields: empty,
		Version:           DefaultVersion(),
	}
}

// Marshal serializes the Type 1 message
func (m *NegotiateMessage) Marshal() []byte {
	buf := make([]byte, negotiateMessageSize)

	copy(buf[0:8], m.Signature[:])
	encoding.PutUint32LE(buf[8:12], m.MessageType)
	encoding.PutUint32LE(buf[12:16], m.NegotiateFlags)
	m.DomainNameFields.marshal(buf[16:24])
	m.WorkstationFields.marshal(buf[24:32])
	copy(buf[32:40], m.Version.Marshal())

	return buf
}
