package types

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// QueryInfoRequestFixedSize is the fixed part of a QUERY_INFO request
const QueryInfoRequestFixedSize = 40

// QueryInfoRequest represents an SMB2 QUERY_INFO request
type QueryInfoRequest struct {
	StructureSize      uint16 // 41
	InfoType           InfoType
	FileInfoClass      uint8
	OutputBufferLength uint32
	InputBufferOffset  uint16
	Reserved           uint16
	InputBufferLength  uint32
	AdditionalInfo     uint32
	Flags              uint32
	FileID             FileID
	Buffer             []byte
}

// NewQueryInfoRequest creates a QUERY_INFO request with an empty input
// buffer. The single buffer byte satisfies the odd structure size.
func NewQueryInfoRequest(infoType InfoType, infoClass uint8, fileID FileID) *QueryInfoRequest {
	return &QueryInfoRequest{
		StructureSize:      41,
		InfoType:           infoType,
		FileInfoClass:      infoClass,
		OutputBufferLength: 0xFFFF,
		FileID:             fileID,
		Buffer:             []byte{0},
	}
}

// Command returns CommandQueryInfo
func (r *QueryInfoRequest) Command() Command { return CommandQueryInfo }

// Fields lists the request fields in wire order
func (r *QueryInfoRequest) Fields() []Field {
	return []Field{
		fixed("StructureSize", encoding.LE16(r.StructureSize)),
		fixed("InfoType", []byte{byte(r.InfoType)}),
		fixed("FileInfoClass", []byte{r.FileInfoClass}),
		fixed("OutputBufferLength", encoding.LE32(r.OutputBufferLength)),
		fixed("InputBufferOffset", encoding.LE16(r.InputBufferOffset)),
		fixed("Reserved", encoding.LE16(r.Reserved)),
		fixed("InputBufferLength", encoding.LE32(r.InputBufferLength)),
		fixed("AdditionalInformation", encoding.LE32(r.AdditionalInfo)),
		fixed("Flags", encoding.LE32(r.Flags)),
		fixed("FileID", r.FileID.Marshal()),
		variable("Buffer", append([]byte(nil), r.Buffer...)),
	}
}

// Marshal serializes the QUERY_INFO request
func (r *QueryInfoRequest) Marshal() []byte {
	return MarshalFields(r.Fields())
}

// Unmarshal deserializes a QUERY_INFO request
func (r *QueryInfoRequest) Unmarshal(buf []byte) error {
	if err := need(buf, QueryInfoRequestFixedSize, "query info request"); err != nil {
		return err
	}
	it, err := ParseInfoType(buf[2])
	if err != nil {
		return err
	}
	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.InfoType = it
	r.FileInfoClass = buf[3]
	r.OutputBufferLength = encoding.Uint32LE(buf[4:8])
	r.InputBufferOffset = encoding.Uint16LE(buf[8:10])
	r.Reserved = encoding.Uint16LE(buf[10:12])
	r.InputBufferLength = encoding.Uint32LE(buf[12:16])
	r.AdditionalInfo = encoding.Uint32LE(buf[16:20])
	r.Flags = encoding.Uint32LE(buf[20:24])
	r.FileID.Unmarshal(buf[24:40])
	r.Buffer = append([]byte(nil), buf[40:]...)
	return nil
}

// QueryInfoResponse represents an SMB2 QUERY_INFO response
type QueryInfoResponse struct {
	StructureSize      uint16 // 9
	OutputBufferOffset uint16
	OutputBufferLength uint32
	Buffer             []byte
}

// Unmarshal deserializes a QUERY_INFO response. The output buffer is read
// from its declared offset and clamped to what was received.
func (r *QueryInfoResponse) Unmarshal(buf []byte) error {
	if err := need(buf, 8, "query info response"); err != nil {
		return err
	}
	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.OutputBufferOffset = encoding.Uint16LE(buf[2:4])
	r.OutputBufferLength = encoding.Uint32LE(buf[4:8])

	start := int(r.OutputBufferOffset) - SMB2HeaderSize
	if start < 8 || start > len(buf) {
		start = 8
	}
	end := min(start+int(r.OutputBufferLength), len(buf))
	r.Buffer = append([]byte(nil), buf[start:end]...)
	return nil
}
