// Package auth implements the NTLM messages exchanged inside SMB2 session
// setup: Challenge parsing, Authenticate construction, AV pairs and the
// GSS envelope around them.
package auth

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// NTLM message signatures and types
var ntlmSignature = [8]byte{'N', 'T', 'L', 'M', 'S', 'S', 'P', 0}

const (
	NtLmNegotiate    uint32 = 0x00000001 // Type 1
	NtLmChallenge    uint32 = 0x00000002 // Type 2
	NtLmAuthenticate uint32 = 0x00000003 // Type 3
)

// NTLMSSP negotiate flags
const (
	NtlmsspNegotiateUnicode                 uint32 = 0x00000001
	NtlmsspNegotiateOEM                     uint32 = 0x00000002
	NtlmsspRequestTarget                    uint32 = 0x00000004
	NtlmsspNegotiateSign                    uint32 = 0x00000010
	NtlmsspNegotiateSeal                    uint32 = 0x00000020
	NtlmsspNegotiateLmKey                   uint32 = 0x00000080
	NtlmsspNegotiateNTLM                    uint32 = 0x00000200
	NtlmsspNegotiateAnonymous               uint32 = 0x00000800
	NtlmsspNegotiateAlwaysSign              uint32 = 0x00008000
	NtlmsspTargetTypeDomain                 uint32 = 0x00010000
	NtlmsspTargetTypeServer                 uint32 = 0x00020000
	NtlmsspNegotiateExtendedSessionSecurity uint32 = 0x00080000
	NtlmsspNegotiateTargetInfo              uint32 = 0x00800000
	NtlmsspNegotiateVersion                 uint32 = 0x02000000
	NtlmsspNegotiate128                     uint32 = 0x20000000
	NtlmsspNegotiateKeyExchange             uint32 = 0x40000000
	NtlmsspNegotiate56                      uint32 = 0x80000000
)

// AuthenticateFlags is the flag set sent in AUTHENTICATE
const AuthenticateFlags = NtlmsspNegotiateNTLM | NtlmsspNegotiateUnicode | NtlmsspNegotiateVersion

// NegotiateFlags is the flag set sent in the initial NEGOTIATE
const NegotiateFlags = NtlmsspNegotiateUnicode | NtlmsspRequestTarget | NtlmsspNegotiateNTLM

// NTLMVersion represents the Version field in NTLM messages
type NTLMVersion struct {
	ProductMajorVersion uint8
	ProductMinorVersion uint8
	ProductBuild        uint16
	Reserved            [3]byte
	NTLMRevisionCurrent uint8
}

// DefaultVersion returns Windows 7 / revision 15
func DefaultVersion() NTLMVersion {
	return NTLMVersion{
		ProductMajorVersion: 6,
		ProductMinorVersion: 1,
		NTLMRevisionCurrent: 15, // NTLMSSP_REVISION_W2K3
	}
}

// Marshal serializes the version
func (v NTLMVersion) Marshal() []byte {
	buf := make([]byte, 8)
	buf[0] = v.ProductMajorVersion
	buf[1] = v.ProductMinorVersion
	encoding.PutUint16LE(buf[2:4], v.ProductBuild)
	copy(buf[4:7], v.Reserved[:])
	buf[7] = v.NTLMRevisionCurrent
	return buf
}

func unmarshalVersion(buf []byte) NTLMVersion {
	var v NTLMVersion
	v.ProductMajorVersion = buf[0]
	v.ProductMinorVersion = buf[1]
	v.ProductBuild = encoding.Uint16LE(buf[2:4])
	copy(v.Reserved[:], buf[4:7])
	v.NTLMRevisionCurrent = buf[7]
	return v
}

// SecurityBuffer represents the Len/MaxLen/Offset structure
type SecurityBuffer struct {
	Len    uint16
	MaxLen uint16
	Offset uint32
}

func (s SecurityBuffer) marshal(buf []byte) {
	encoding.PutUint16LE(buf[0:2], s.Len)
	encoding.PutUint16LE(buf[2:4], s.MaxLen)
	encoding.PutUint32LE(buf[4:8], s.Offset)
}

func unmarshalSecurityBuffer(buf []byte) SecurityBuffer {
	return SecurityBuffer{
		Len:    encoding.Uint16LE(buf[0:2]),
		MaxLen: encoding.Uint16LE(buf[2:4]),
		Offset: encoding.Uint32LE(buf[4:8]),
	}
}

// slice returns the payload region a security buffer points at, or nil
// when it falls outside data.
func (s SecurityBuffer) slice(data []byte) []byte {
	start := int(s.Offset)
	end := start + int(s.Len)
	if s.Len == 0 || end > len(data) {
		return nil
	}
	return append([]byte(nil), data[start:end]...)
}
