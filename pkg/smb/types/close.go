package types

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// CloseRequest represents an SMB2 CLOSE request
type CloseRequest struct {
	StructureSize uint16 // 24
	Flags         CloseFlags
	Reserved      uint32
	FileID        FileID
}

// NewCloseRequest creates a CLOSE request
func NewCloseRequest(flags CloseFlags, fileID FileID) *CloseRequest {
	return &CloseRequest{
		StructureSize: 24,
		Flags:         flags,
		FileID:        fileID,
	}
}

// Command returns CommandClose
func (r *CloseRequest) Command() Command { return CommandClose }

// Fields lists the request fields in wire order
func (r *CloseRequest) Fields() []Field {
	return []Field{
		fixed("StructureSize", encoding.LE16(r.StructureSize)),
		fixed("Flags", encoding.LE16(uint16(r.Flags))),
		fixed("Reserved", encoding.LE32(r.Reserved)),
		fixed("FileID", r.FileID.Marshal()),
	}
}

// Marshal serializes the CLOSE request
func (r *CloseRequest) Marshal() []byte {
	return MarshalFields(r.Fields())
}

// Unmarshal deserializes a CLOSE request
func (r *CloseRequest) Unmarshal(buf []byte) error {
	if err := need(buf, 24, "close request"); err != nil {
		return err
	}
	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.Flags = CloseFlags(encoding.Uint16LE(buf[2:4]))
	r.Reserved = encoding.Uint32LE(buf[4:8])
	r.FileID.Unmarshal(buf[8:24])
	return nil
}

// CloseResponse represents an SMB2 CLOSE response
type CloseResponse struct {
	StructureSize  uint16 // 60
	Flags          CloseFlags
	Reserved       uint32
	CreationTime   uint64
	LastAccessTime uint64
	LastWriteTime  uint64
	ChangeTime     uint64
	AllocationSize uint64
	EndOfFile      uint64
	FileAttributes FileAttributes
}

// Unmarshal deserializes a CLOSE response
func (r *CloseResponse) Unmarshal(buf []byte) error {
	if err := need(buf, 60, "close response"); err != nil {
		return err
	}

	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.Flags = CloseFlags(encoding.Uint16LE(buf[2:4]))
	r.Reserved = encoding.Uint32LE(buf[4:8])
	r.CreationTime = encoding.Uint64LE(buf[8:16])
	r.LastAccessTime = encoding.Uint64LE(buf[16:24])
	r.LastWriteTime = encoding.Uint64LE(buf[24:32])
	r.ChangeTime = encoding.Uint64LE(buf[32:40])
	r.AllocationSize = encoding.Uint64LE(buf[40:48])
	r.EndOfFile = encoding.Uint64LE(buf[48:56])
	r.FileAttributes = FileAttributes(encoding.Uint32LE(buf[56:60]))

	return nil
}
