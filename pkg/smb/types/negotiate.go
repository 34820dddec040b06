package types

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// NegotiateRequestFixedSize is the fixed part of a NEGOTIATE request
const NegotiateRequestFixedSize = 36

// DefaultPreauthSalt is the salt advertised by the default preauth context
var DefaultPreauthSalt = []byte{
	0x79, 0x13, 0x02, 0xd4, 0xd7, 0x0c, 0x2a, 0x12, 0x50, 0x84, 0xba, 0xa6, 0x03, 0xae, 0xda, 0xe4,
	0x12, 0xe8, 0x0b, 0x6e, 0x96, 0xf7, 0xdb, 0xa9, 0x46, 0xdf, 0x3e, 0xdc, 0x16, 0xe8, 0x4a, 0x5a,
}

// NegotiateRequest represents an SMB2 NEGOTIATE request
type NegotiateRequest struct {
	StructureSize          uint16 // 36
	DialectCount           uint16 // Number of dialects
	SecurityMode           SecurityMode
	Reserved               uint16
	Capabilities           Capabilities
	ClientGUID             [16]byte
	NegotiateContextOffset uint32 // SMB 3.1.1
	NegotiateContextCount  uint16 // SMB 3.1.1
	Reserved2              uint16
	Dialects               []Dialect
	Padding                []byte // aligns the context list to 8 bytes
	NegotiateContexts      []NegotiateContext
}

// NewNegotiateRequest builds a request whose count, offset and padding
// fields match the dialect and context lists.
func NewNegotiateRequest(dialects []Dialect, mode SecurityMode, caps Capabilities, guid [16]byte, contexts []NegotiateContext) *NegotiateRequest {
	r := &NegotiateRequest{
		StructureSize:         NegotiateRequestFixedSize,
		DialectCount:          uint16(len(dialects)),
		SecurityMode:          mode,
		Capabilities:          caps,
		ClientGUID:            guid,
		NegotiateContextCount: uint16(len(contexts)),
		Dialects:              dialects,
		NegotiateContexts:     contexts,
	}
	if len(contexts) > 0 {
		end := NegotiateRequestFixedSize + 2*len(dialects)
		pad := AlignmentPadding(end)
		r.Padding = encoding.Zeros(pad)
		r.NegotiateContextOffset = uint32(SMB2HeaderSize + end + pad)
	}
	return r
}

// DefaultNegotiateContexts returns the preauth, compression and netname
// contexts sent by the handshake.
func DefaultNegotiateContexts(netname string) []NegotiateContext {
	return []NegotiateContext{
		NewPreauthIntegrityCapabilities([]HashAlgorithm{HashAlgorithmSHA512}, append([]byte(nil), DefaultPreauthSalt...)),
		NewCompressionCapabilities(CompressionFlagNone, []CompressionAlgorithm{
			CompressionLZ77, CompressionLZ77Huffman, CompressionLZNT1,
		}),
		&NetnameNegotiateContextID{NetName: encoding.ToUTF16LE(netname)},
	}
}

// DefaultNegotiateRequest offers every dialect with all capabilities set
func DefaultNegotiateRequest(netname string) *NegotiateRequest {
	caps := encoding.Union(CapabilityValues[:6])
	return NewNegotiateRequest(append([]Dialect(nil), Dialects...), NegotiateSigningEnabled, caps, [16]byte{}, DefaultNegotiateContexts(netname))
}

// Command returns CommandNegotiate
func (r *NegotiateRequest) Command() Command { return CommandNegotiate }

// Fields lists the request fields in wire order
func (r *NegotiateRequest) Fields() []Field {
	dialects := make([]byte, 0, 2*len(r.Dialects))
	for _, d := range r.Dialects {
		dialects = append(dialects, encoding.LE16(uint16(d))...)
	}
	fields := []Field{
		fixed("StructureSize", encoding.LE16(r.StructureSize)),
		fixed("DialectCount", encoding.LE16(r.DialectCount)),
		fixed("SecurityMode", encoding.LE16(uint16(r.SecurityMode))),
		fixed("Reserved", encoding.LE16(r.Reserved)),
		fixed("Capabilities", encoding.LE32(uint32(r.Capabilities))),
		fixed("ClientGUID", append([]byte(nil), r.ClientGUID[:]...)),
		fixed("NegotiateContextOffset", encoding.LE32(r.NegotiateContextOffset)),
		fixed("NegotiateContextCount", encoding.LE16(r.NegotiateContextCount)),
		fixed("Reserved2", encoding.LE16(r.Reserved2)),
		variable("Dialects", dialects),
		variable("Padding", append([]byte(nil), r.Padding...)),
	}
	for _, e := range MarshalNegotiateContextEntries(r.NegotiateContexts) {
		fields = append(fields, variable("NegotiateContext", e))
	}
	return fields
}

// Marshal serializes the negotiate request
func (r *NegotiateRequest) Marshal() []byte {
	return MarshalFields(r.Fields())
}

// Unmarshal reads a negotiate request. Contexts are read from the declared
// context offset, which is relative to the start of the header.
func (r *NegotiateRequest) Unmarshal(buf []byte) error {
	if err := need(buf, NegotiateRequestFixedSize, "negotiate request"); err != nil {
		return err
	}

	// Offset 0: Structure size (36)
	r.StructureSize = encoding.Uint16LE(buf[0:2])

	// Offset 2: Dialect count
	r.DialectCount = encoding.Uint16LE(buf[2:4])

	// Offset 4: Security mode (2 bytes)
	r.SecurityMode = SecurityMode(encoding.Uint16LE(buf[4:6]))

	// Offset 6: Reserved (2 bytes)
	r.Reserved = encoding.Uint16LE(buf[6:8])

	// Offset 8: Capabilities (4 bytes)
	r.Capabilities = Capabilities(encoding.Uint32LE(buf[8:12]))

	// Offset 12: Client GUID (16 bytes)
	copy(r.ClientGUID[:], buf[12:28])

	// Offset 28: NegotiateContextOffset (4 bytes, SMB 3.1.1)
	r.NegotiateContextOffset = encoding.Uint32LE(buf[28:32])

	// Offset 32: NegotiateContextCount (2 bytes, SMB 3.1.1)
	r.NegotiateContextCount = encoding.Uint16LE(buf[32:34])

	// Offset 34: Reserved2 (2 bytes)
	r.Reserved2 = encoding.Uint16LE(buf[34:36])

	// Dialects (variable, 2 bytes each)
	end := NegotiateRequestFixedSize + 2*int(r.DialectCount)
	if err := need(buf, end, "negotiate dialects"); err != nil {
		return err
	}
	r.Dialects = make([]Dialect, 0, r.DialectCount)
	for off := NegotiateRequestFixedSize; off < end; off += 2 {
		d, err := ParseDialect(encoding.Uint16LE(buf[off : off+2]))
		if err != nil {
			return err
		}
		r.Dialects = append(r.Dialects, d)
	}

	r.Padding = nil
	r.NegotiateContexts = nil
	if r.NegotiateContextCount == 0 {
		return nil
	}
	start := int(r.NegotiateContextOffset) - SMB2HeaderSize
	if start < end {
		return &DecodeError{Field: "negotiate context offset", Code: uint64(r.NegotiateContextOffset)}
	}
	if err := need(buf, start, "negotiate padding"); err != nil {
		return err
	}
	r.Padding = append([]byte(nil), buf[end:start]...)

	contexts, err := UnmarshalNegotiateContexts(buf[start:], int(r.NegotiateContextCount), int(r.NegotiateContextOffset))
	if err != nil {
		return err
	}
	r.NegotiateContexts = contexts
	return nil
}

// NegotiateResponse represents an SMB2 NEGOTIATE response
type NegotiateResponse struct {
	StructureSize          uint16
	SecurityMode           SecurityMode
	DialectRevision        Dialect
	NegotiateContextCount  uint16 // SMB 3.1.1
	ServerGUID             [16]byte
	Capabilities           Capabilities
	MaxTransactSize        uint32
	MaxReadSize            uint32
	MaxWriteSize           uint32
	SystemTime             uint64 // FILETIME
	ServerStartTime        uint64 // FILETIME
	SecurityBufferOffset   uint16
	SecurityBufferLength   uint16
	NegotiateContextOffset uint32 // SMB 3.1.1
	SecurityBuffer         []byte // GSS token (SPNEGO)
	Padding                []byte
	NegotiateContexts      []NegotiateContext
}

// Unmarshal deserializes a negotiate response body
func (r *NegotiateResponse) Unmarshal(buf []byte) error {
	if err := need(buf, 64, "negotiate response"); err != nil {
		return err
	}

	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.SecurityMode = SecurityMode(encoding.Uint16LE(buf[2:4]))

	dialect, err := ParseDialect(encoding.Uint16LE(buf[4:6]))
	if err != nil {
		return err
	}
	r.DialectRevision = dialect

	r.NegotiateContextCount = encoding.Uint16LE(buf[6:8])
	copy(r.ServerGUID[:], buf[8:24])
	r.Capabilities = Capabilities(encoding.Uint32LE(buf[24:28]))
	r.MaxTransactSize = encoding.Uint32LE(buf[28:32])
	r.MaxReadSize = encoding.Uint32LE(buf[32:36])
	r.MaxWriteSize = encoding.Uint32LE(buf[36:40])
	r.SystemTime = encoding.Uint64LE(buf[40:48])
	r.ServerStartTime = encoding.Uint64LE(buf[48:56])
	r.SecurityBufferOffset = encoding.Uint16LE(buf[56:58])
	r.SecurityBufferLength = encoding.Uint16LE(buf[58:60])
	r.NegotiateContextOffset = encoding.Uint32LE(buf[60:64])

	// The security buffer directly follows the fixed part
	bufferEnd := 64 + int(r.SecurityBufferLength)
	if err := need(buf, bufferEnd, "negotiate security buffer"); err != nil {
		return err
	}
	r.SecurityBuffer = append([]byte(nil), buf[64:bufferEnd]...)

	if r.DialectRevision != DialectSMB3_1_1 || r.NegotiateContextCount == 0 {
		return nil
	}

	start := int(r.NegotiateContextOffset) - SMB2HeaderSize
	if start < bufferEnd {
		return &DecodeError{Field: "negotiate context offset", Code: uint64(r.NegotiateContextOffset)}
	}
	if err := need(buf, start, "negotiate padding"); err != nil {
		return err
	}
	r.Padding = append([]byte(nil), buf[bufferEnd:start]...)

	contexts, err := UnmarshalNegotiateContexts(buf[start:], int(r.NegotiateContextCount), int(r.NegotiateContextOffset))
	if err != nil {
		return err
	}
	r.NegotiateContexts = contexts
	return nil
}

// IsSMB3 returns true if SMB3.x was negotiated
func (r *NegotiateResponse) IsSMB3() bool {
	return r.DialectRevision >= DialectSMB3_0
}

// RequiresSigning returns true if signing is required
func (r *NegotiateResponse) RequiresSigning() bool {
	return r.SecurityMode&NegotiateSigningRequired != 0
}
