package types

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// TreeConnectRequestFixedSize is the fixed part of a TREE_CONNECT request
const TreeConnectRequestFixedSize = 8

// TreeConnectRequest represents an SMB2 TREE_CONNECT request
type TreeConnectRequest struct {
	StructureSize uint16 // 9
	Flags         TreeConnectFlags
	PathOffset    uint16
	PathLength    uint16
	Path          []byte // UNC path (UTF-16LE)
}

// NewTreeConnectRequest creates a tree connect request for a UTF-16LE path
func NewTreeConnectRequest(flags TreeConnectFlags, path []byte) *TreeConnectRequest {
	return &TreeConnectRequest{
		StructureSize: 9,
		Flags:         flags,
		PathOffset:    SMB2HeaderSize + TreeConnectRequestFixedSize,
		PathLength:    uint16(len(path)),
		Path:          path,
	}
}

// UNCPath formats \\host\share as UTF-16LE without a terminator
func UNCPath(host, share string) []byte {
	return encoding.ToUTF16LE(`\\` + host + `\` + share)
}

// Command returns CommandTreeConnect
func (r *TreeConnectRequest) Command() Command { return CommandTreeConnect }

// Fields lists the request fields in wire order
func (r *TreeConnectRequest) Fields() []Field {
	return []Field{
		fixed("StructureSize", encoding.LE16(r.StructureSize)),
		fixed("Flags", encoding.LE16(uint16(r.Flags))),
		fixed("PathOffset", encoding.LE16(r.PathOffset)),
		fixed("PathLength", encoding.LE16(r.PathLength)),
		variable("Buffer", append([]byte(nil), r.Path...)),
	}
}

// Marshal serializes the tree connect request
func (r *TreeConnectRequest) Marshal() []byte {
	return MarshalFields(r.Fields())
}

// Unmarshal reads the fixed part; everything after it is the path.
func (r *TreeConnectRequest) Unmarshal(buf []byte) error {
	if err := need(buf, TreeConnectRequestFixedSize, "tree connect request"); err != nil {
		return err
	}
	r.StructureSize = encoding.Uint16LE(buf[0:2])
	r.Flags = TreeConnectFlags(encoding.Uint16LE(buf[2:4]))
	r.PathOffset = encoding.Uint16LE(buf[4:6])
	r.PathLength = encoding.Uint16LE(buf[6:8])
	r.Path = append([]byte(nil), buf[8:]...)
	return nil
}

// TreeConnectResponse represents an SMB2 TREE_CONNECT response
type TreeConnectResponse struct {
	StructureSize uint16 // 16
	ShareType     ShareType
	Reserved      uint8
	ShareFlags    uint32
	Capabilities  uint32
	MaximalAccess AccessMask
}

// Unmarshal deserializes a tree connect response
func (r *TreeConnectResponse) Unmarshal(buf []byte) error {
	if err := need(buf, 16, "tree connect response"); err != nil {
		return err
	}

	r.StructureSize = encoding.Uint16LE(buf[0:2])

	st, err := ParseShareType(buf[2])
	if err != nil {
		return err
	}
	r.ShareType = st

	r.Reserved = buf[3]
	r.ShareFlags = encoding.Uint32LE(buf[4:8])
	r.Capabilities = encoding.Uint32LE(buf[8:12])
	r.MaximalAccess = AccessMask(encoding.Uint32LE(buf[12:16]))

	return nil
}
