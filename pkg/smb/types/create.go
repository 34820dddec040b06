package types

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// FileID represents a 16-byte file handle
type FileID struct {
	Persistent [8]byte
	Volatile   [8]byte
}

// Marshal serializes the FileID
func (f FileID) Marshal() []byte {
	buf := make([]byte, 16)
	copy(buf[0:8], f.Persistent[:])
	copy(buf[8:16], f.Volatile[:])
	return buf
}

// Unmarshal deserializes a FileID
func (f *FileID) Unmarshal(buf []byte) {
	if len(buf) >= 16 {
		copy(f.Persistent[:], buf[0:8])
		copy(f.Volatile[:], buf[8:16])
	}
}

// IsZero returns true if the FileID is zero/invalid
func (f FileID) IsZero() bool {
	return f == FileID{}
}

// CreateRequestFixedSize is the fixed part of a CREATE request
const CreateRequestFixedSize = 56

// CreateRequest represents an SMB2 CREATE request
type CreateRequest struct {
	StructureSize        uint16 // 57
	SecurityFlags        uint8
	RequestedOplockLevel OplockLevel
	ImpersonationLevel   ImpersonationLevel
	SmbCreateFlags       uint64
	Reserved             uint64
	DesiredAccess        AccessMask
	FileAttributes       FileAttributes
	ShareAccess          ShareAccess
	CreateDisposition    CreateDisposition
	CreateOptions        CreateOptions
	NameOffset           uint16
	NameLength           uint16
	CreateContextsOffset uint32
	CreateContextsLength uint32
	Buffer               []byte // Filename (UTF-16LE) with terminator
}

// CreateParams holds the choosable CREATE fields
type CreateParams struct {
	Oplock        OplockLevel
	Impersonation ImpersonationLevel
	Access        AccessMask
	Attributes    FileAttributes
	Share         ShareAccess
	Disposition   CreateDisposition
	Options       CreateOptions
}

// DefaultCreateParams opens an existing file for reading
var DefaultCreateParams = CreateParams{
	Oplock:        OplockLevelNone,
	Impersonation: ImpersonationImpersonation,
	Access:        FileReadData | FileReadEA | FileReadAttributes | ReadControl | Synchronize,
	Attributes:    0,
	Share:         FileShareRead | FileShareWrite,
	Disposition:   FileOpen,
	Options:       FileNonDirectoryFile,
}

// NewCreateRequest creates a CREATE request for name. The name length
// excludes the terminator carried in the buffer.
func NewCreateRequest(p CreateParams, name string) *CreateRequest {
	return &CreateRequest{
		StructureSize:        57,
		RequestedOplockLevel: p.Oplock,
		ImpersonationLevel:   p.Impersonation,
		DesiredAccess:        p.Access,
		FileAttributes:       p.Attributes,
		ShareAccess:          p.Share,
		CreateDisposition:    p.Disposition,
		CreateOptions:        p.Options,
		NameOffset:           SMB2HeaderSize + CreateRequestFixedSize, // 0x78
		NameLength:           uint16(len(encoding.ToUTF16LE(name))),
		Buffer:               encoding.ToUTF16LEWithNull(name),
	}
}

// Command returns CommandCreate
func (r *CreateRequest) Command() Command { return CommandCreate }

// Fields lists the request fields in wire order
func (r *CreateRequest) Fields() []Field {
	return []Field{
		fixed("StructureSize", encoding.LE16(r.StructureSize)),
		fixed("SecurityFlags", []byte{r.SecurityFlags}),
		fixed("RequestedOplockLevel", []byte{byte(r.RequestedOplockLevel)}),
		fixed("ImpersonationLevel", encoding.LE32(uint32(r.ImpersonationLevel))),
		fixed("SmbCreateFlags", encoding.LE64(r.SmbCreateFlags)),
		fixed("Reserved", encoding.LE64(r.Reserved)),
		fixed("DesiredAccess", encoding.LE32(uint32(r.DesiredAccess))),
		fixed("FileAttributes", encoding.LE32(uint32(r.FileAttributes))),
		fixed("ShareAccess", encoding.LE32(uint32(r.ShareAccess))),
		fixed("CreateDisposition", encoding.LE32(uint32(r.CreateDisposition))),
		fixed("CreateOptions", encoding.LE32(uint32(r.CreateOptions))),
		fixed("NameOffset", encoding.LE16(r.NameOffset)),
		fixed("NameLength", encoding.LE16(r.NameLength)),
		fixed("CreateContextsOffset", encoding.LE32(r.CreateContextsOffset)),
		fixed("CreateContextsLength", encoding.LE32(r.CreateContextsLength)),
		variable("Buffer", append([]byte(nil), r.Buffer...)),
	}
}

// Marshal serializes the CREATE request
func (r *CreateRequest) Marshal() []byte {
	return MarshalFields(r.Fields())
}

// Unmarshal reads a CREATE request. Enumerated fields must carry known codes.
func (r *CreateRequest) Unmarshal(buf []byte) error {
	if err := need(buf, CreateRequestFixedSize, "create request"); err != nil {
		return err
	}

	oplock, err := ParseOplockLevel(buf[3])
	if err != nil {
		return err
	}
	imp, err := ParseImpersonationLevel(encoding.Uint32LE(buf[4:8]))
	if err != nil {
		return err
	}
	disp, err := ParseCreateDisposition(encoding.Uint32LE(buf[36:40]))
	if err != nil {
		return err
	}

	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.SecurityFlags = buf[2]
	r.RequestedOplockLevel = oplock
	r.ImpersonationLevel = imp
	r.SmbCreateFlags = encoding.Uint64LE(buf[8:16])
	r.Reserved = encoding.Uint64LE(buf[16:24])
	r.DesiredAccess = AccessMask(encoding.Uint32LE(buf[24:28]))
	r.FileAttributes = FileAttributes(encoding.Uint32LE(buf[28:32]))
	r.ShareAccess = ShareAccess(encoding.Uint32LE(buf[32:36]))
	r.CreateDisposition = disp
	r.CreateOptions = CreateOptions(encoding.Uint32LE(buf[40:44]))
	r.NameOffset = encoding.Uint16LE(buf[44:46])
	r.NameLength = encoding.Uint16LE(buf[46:48])
	r.CreateContextsOffset = encoding.Uint32LE(buf[48:52])
	r.CreateContextsLength = encoding.Uint32LE(buf[52:56])
	r.Buffer = append([]byte(nil), buf[56:]...)
	return nil
}

// CreateResponse represents an SMB2 CREATE response
type CreateResponse struct {
	StructureSize        uint16 // 89
	OplockLevel          uint8
	Flags                uint8
	CreateAction         uint32
	CreationTime         uint64
	LastAccessTime       uint64
	LastWriteTime        uint64
	ChangeTime           uint64
	AllocationSize       uint64
	EndOfFile            uint64
	FileAttributes       FileAttributes
	Reserved2            uint32
	FileID               FileID
	CreateContextsOffset uint32
	CreateContextsLength uint32
}

// CreateResponseFileIDOffset is where the file id starts in a CREATE response body
const CreateResponseFileIDOffset = 64

// Unmarshal deserializes a CREATE response
func (r *CreateResponse) Unmarshal(buf []byte) error {
	if err := need(buf, 88, "create response"); err != nil {
		return err
	}

	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.OplockLevel = buf[2]
	r.Flags = buf[3]
	r.CreateAction = encoding.Uint32LE(buf[4:8])
	r.CreationTime = encoding.Uint64LE(buf[8:16])
	r.LastAccessTime = encoding.Uint64LE(buf[16:24])
	r.LastWriteTime = encoding.Uint64LE(buf[24:32])
	r.ChangeTime = encoding.Uint64LE(buf[32:40])
	r.AllocationSize = encoding.Uint64LE(buf[40:48])
	r.EndOfFile = encoding.Uint64LE(buf[48:56])
	r.FileAttributes = FileAttributes(encoding.Uint32LE(buf[56:60]))
	r.Reserved2 = encoding.Uint32LE(buf[60:64])
	r.FileID.Unmarshal(buf[64:80])
	r.CreateContextsOffset = encoding.Uint32LE(buf[80:84])
	r.CreateContextsLength = encoding.Uint32LE(buf[84:88])

	return nil
}

// FileIDFromCreateResponse extracts only the file id, needing 80 bytes
func FileIDFromCreateResponse(body []byte) (FileID, error) {
	var id FileID
	if err := need(body, CreateResponseFileIDOffset+16, "create response file id"); err != nil {
		return id, err
	}
	id.Unmarshal(body[CreateResponseFileIDOffset : CreateResponseFileIDOffset+16])
	return id, nil
}
