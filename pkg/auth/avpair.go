package auth

import (
	"fmt"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
)

// AvID identifies an AV_PAIR
type AvID uint16

// AV_PAIR IDs
const (
	MsvAvEOL             AvID = 0x0000 // End of list
	MsvAvNbComputerName  AvID = 0x0001 // NetBIOS computer name
	MsvAvNbDomainName    AvID = 0x0002 // NetBIOS domain name
	MsvAvDnsComputerName AvID = 0x0003 // DNS computer name
	MsvAvDnsDomainName   AvID = 0x0004 // DNS domain name
	MsvAvDnsTreeName     AvID = 0x0005 // DNS tree name
	MsvAvFlags           AvID = 0x0006 // Flags
	MsvAvTimestamp       AvID = 0x0007 // Timestamp
	MsvAvSingleHost      AvID = 0x0008 // Single Host Data
	MsvAvTargetName      AvID = 0x0009 // Target name (SPN)
	MsvAvChannelBindings AvID = 0x000A // Channel Bindings
)

// ParseAvID maps a wire code to an AvID
func ParseAvID(code uint16) (AvID, error) {
	if code > uint16(MsvAvChannelBindings) {
		return 0, &types.DecodeError{Field: "av pair id", Code: uint64(code)}
	}
	return AvID(code), nil
}

// AvPair represents an AV_PAIR structure in TargetInfo
type AvPair struct {
	ID    AvID
	Value []byte
}

// ParseAvPairs parses an AV_PAIR list. Decoding stops at the end of data or
// after consuming MsvAvEOL, which is not included in the result.
func ParseAvPairs(data []byte) ([]AvPair, error) {
	var pairs []AvPair
	offset := 0

	for offset+4 <= len(data) {
		id, err := ParseAvID(encoding.Uint16LE(data[offset : offset+2]))
		if err != nil {
			return nil, err
		}
		avLen := int(encoding.Uint16LE(data[offset+2 : offset+4]))
		offset += 4

		if id == MsvAvEOL {
			break
		}
		if offset+avLen > len(data) {
			return nil, fmt.Errorf("av pair %d: %w", id, types.ErrBufferTooSmall)
		}

		pairs = append(pairs, AvPair{
			ID:    id,
			Value: append([]byte(nil), data[offset:offset+avLen]...),
		})
		offset += avLen
	}

	return pairs, nil
}

// MarshalAvPairs serializes pairs and terminates the list with MsvAvEOL
func MarshalAvPairs(pairs []AvPair) []byte {
	var buf []byte

	for _, p := range pairs {
		pair := make([]byte, 4+len(p.Value))
		encoding.PutUint16LE(pair[0:2], uint16(p.ID))
		encoding.PutUint16LE(pair[2:4], uint16(len(p.Value)))
		copy(pair[4:], p.Value)
		buf = append(buf, pair...)
	}

	return append(buf, 0, 0, 0, 0)
}

// FindAvPair finds an AV_PAIR by ID
func FindAvPair(pairs []AvPair, id AvID) *AvPair {
	for i := range pairs {
		if pairs[i].ID == id {
			return &pairs[i]
		}
	}
	return nil
}
