package types

import (
	"fmt"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// NegotiateContextType tags a negotiate context
type NegotiateContextType uint16

const (
	PreauthIntegrityCapabilitiesType NegotiateContextType = 0x0001
	EncryptionCapabilitiesType       NegotiateContextType = 0x0002
	CompressionCapabilitiesType      NegotiateContextType = 0x0003
	NetnameNegotiateContextIDType    NegotiateContextType = 0x0005
	TransportCapabilitiesType        NegotiateContextType = 0x0006
	RdmaTransformCapabilitiesType    NegotiateContextType = 0x0007
)

// NegotiateContextTypes lists every context type
var NegotiateContextTypes = []NegotiateContextType{
	PreauthIntegrityCapabilitiesType,
	EncryptionCapabilitiesType,
	CompressionCapabilitiesType,
	NetnameNegotiateContextIDType,
	TransportCapabilitiesType,
	RdmaTransformCapabilitiesType,
}

// ParseNegotiateContextType maps a wire code to a NegotiateContextType
func ParseNegotiateContextType(code uint16) (NegotiateContextType, error) {
	return parseEnum("negotiate context type", NegotiateContextType(code), NegotiateContextTypes)
}

// HashAlgorithm for preauth integrity
type HashAlgorithm uint16

const HashAlgorithmSHA512 HashAlgorithm = 0x0001

// HashAlgorithms lists every hash algorithm
var HashAlgorithms = []HashAlgorithm{HashAlgorithmSHA512}

// ParseHashAlgorithm maps a wire code to a HashAlgorithm
func ParseHashAlgorithm(code uint16) (HashAlgorithm, error) {
	return parseEnum("hash algorithm", HashAlgorithm(code), HashAlgorithms)
}

// Cipher for SMB 3.x encryption
type Cipher uint16

const (
	CipherAES128CCM Cipher = 0x0001
	CipherAES128GCM Cipher = 0x0002
	CipherAES256CCM Cipher = 0x0003
	CipherAES256GCM Cipher = 0x0004
)

// Ciphers lists every cipher
var Ciphers = []Cipher{CipherAES128CCM, CipherAES128GCM, CipherAES256CCM, CipherAES256GCM}

// ParseCipher maps a wire code to a Cipher
func ParseCipher(code uint16) (Cipher, error) {
	return parseEnum("cipher", Cipher(code), Ciphers)
}

// CompressionAlgorithm for SMB 3.1.1 compression
type CompressionAlgorithm uint16

const (
	CompressionNone        CompressionAlgorithm = 0x0000
	CompressionLZNT1       CompressionAlgorithm = 0x0001
	CompressionLZ77        CompressionAlgorithm = 0x0002
	CompressionLZ77Huffman CompressionAlgorithm = 0x0003
	CompressionPatternV1   CompressionAlgorithm = 0x0004
)

// CompressionAlgorithms lists every compression algorithm
var CompressionAlgorithms = []CompressionAlgorithm{
	CompressionNone, CompressionLZNT1, CompressionLZ77, CompressionLZ77Huffman, CompressionPatternV1,
}

// ParseCompressionAlgorithm maps a wire code to a CompressionAlgorithm
func ParseCompressionAlgorithm(code uint16) (CompressionAlgorithm, error) {
	return parseEnum("compression algorithm", CompressionAlgorithm(code), CompressionAlgorithms)
}

// CompressionFlags for the compression capabilities context
type CompressionFlags uint32

const (
	CompressionFlagNone    CompressionFlags = 0x00000000
	CompressionFlagChained CompressionFlags = 0x00000001
)

// CompressionFlagValues lists every compression flag value
var CompressionFlagValues = []CompressionFlags{CompressionFlagNone, CompressionFlagChained}

// ParseCompressionFlags maps a wire code to CompressionFlags
func ParseCompressionFlags(code uint32) (CompressionFlags, error) {
	return parseEnum("compression flags", CompressionFlags(code), CompressionFlagValues)
}

// RdmaTransform identifies an RDMA transform
type RdmaTransform uint16

const (
	RdmaTransformNone       RdmaTransform = 0x0000
	RdmaTransformEncryption RdmaTransform = 0x0001
)

// RdmaTransforms lists every RDMA transform
var RdmaTransforms = []RdmaTransform{RdmaTransformNone, RdmaTransformEncryption}

// ParseRdmaTransform maps a wire code to an RdmaTransform
func ParseRdmaTransform(code uint16) (RdmaTransform, error) {
	return parseEnum("rdma transform", RdmaTransform(code), RdmaTransforms)
}

// NegotiateContext is one of the six negotiate context kinds. The set is
// closed: only this package can add members.
type NegotiateContext interface {
	ContextType() NegotiateContextType
	// Data serializes the type-specific payload
	Data() []byte
	negotiateContext()
}

// PreauthIntegrityCapabilities context (type 1)
type PreauthIntegrityCapabilities struct {
	HashAlgorithmCount uint16
	SaltLength         uint16
	HashAlgorithms     []HashAlgorithm
	Salt               []byte
}

// NewPreauthIntegrityCapabilities fills in count and length fields
func NewPreauthIntegrityCapabilities(algs []HashAlgorithm, salt []byte) *PreauthIntegrityCapabilities {
	return &PreauthIntegrityCapabilities{
		HashAlgorithmCount: uint16(len(algs)),
		SaltLength:         uint16(len(salt)),
		HashAlgorithms:     algs,
		Salt:               salt,
	}
}

func (c *PreauthIntegrityCapabilities) ContextType() NegotiateContextType {
	return PreauthIntegrityCapabilitiesType
}

func (c *PreauthIntegrityCapabilities) Data() []byte {
	buf := encoding.LE16(c.HashAlgorithmCount)
	buf = append(buf, encoding.LE16(c.SaltLength)...)
	for _, a := range c.HashAlgorithms {
		buf = append(buf, encoding.LE16(uint16(a))...)
	}
	return append(buf, c.Salt...)
}

// EncryptionCapabilities context (type 2)
type EncryptionCapabilities struct {
	CipherCount uint16
	Ciphers     []Cipher
}

// NewEncryptionCapabilities fills in the cipher count
func NewEncryptionCapabilities(ciphers []Cipher) *EncryptionCapabilities {
	return &EncryptionCapabilities{CipherCount: uint16(len(ciphers)), Ciphers: ciphers}
}

func (c *EncryptionCapabilities) ContextType() NegotiateContextType {
	return EncryptionCapabilitiesType
}

func (c *EncryptionCapabilities) Data() []byte {
	buf := encoding.LE16(c.CipherCount)
	for _, ci := range c.Ciphers {
		buf = append(buf, encoding.LE16(uint16(ci))...)
	}
	return buf
}

// CompressionCapabilities context (type 3)
type CompressionCapabilities struct {
	CompressionAlgorithmCount uint16
	Padding                   uint16
	Flags                     CompressionFlags
	CompressionAlgorithms     []CompressionAlgorithm
}

// NewCompressionCapabilities fills in the algorithm count
func NewCompressionCapabilities(flags CompressionFlags, algs []CompressionAlgorithm) *CompressionCapabilities {
	return &CompressionCapabilities{
		CompressionAlgorithmCount: uint16(len(algs)),
		Flags:                     flags,
		CompressionAlgorithms:     algs,
	}
}

func (c *CompressionCapabilities) ContextType() NegotiateContextType {
	return CompressionCapabilitiesType
}

func (c *CompressionCapabilities) Data() []byte {
	buf := encoding.LE16(c.CompressionAlgorithmCount)
	buf = append(buf, encoding.LE16(c.Padding)...)
	buf = append(buf, encoding.LE32(uint32(c.Flags))...)
	for _, a := range c.CompressionAlgorithms {
		buf = append(buf, encoding.LE16(uint16(a))...)
	}
	return buf
}

// NetnameNegotiateContextID context (type 5). NetName is UTF-16LE.
type NetnameNegotiateContextID struct {
	NetName []byte
}

func (c *NetnameNegotiateContextID) ContextType() NegotiateContextType {
	return NetnameNegotiateContextIDType
}

func (c *NetnameNegotiateContextID) Data() []byte {
	return append([]byte(nil), c.NetName...)
}

// TransportCapabilities context (type 6)
type TransportCapabilities struct {
	Reserved uint32
}

func (c *TransportCapabilities) ContextType() NegotiateContextType {
	return TransportCapabilitiesType
}

func (c *TransportCapabilities) Data() []byte {
	return encoding.LE32(c.Reserved)
}

// RdmaTransformCapabilities context (type 7)
type RdmaTransformCapabilities struct {
	TransformCount uint16
	Reserved1      uint16
	Reserved2      uint32
	TransformIDs   []RdmaTransform
}

// NewRdmaTransformCapabilities fills in the transform count
func NewRdmaTransformCapabilities(ids []RdmaTransform) *RdmaTransformCapabilities {
	return &RdmaTransformCapabilities{TransformCount: uint16(len(ids)), TransformIDs: ids}
}

func (c *RdmaTransformCapabilities) ContextType() NegotiateContextType {
	return RdmaTransformCapabilitiesType
}

func (c *RdmaTransformCapabilities) Data() []byte {
	buf := encoding.LE16(c.TransformCount)
	buf = append(buf, encoding.LE16(c.Reserved1)...)
	buf = append(buf, encoding.LE32(c.Reserved2)...)
	for _, id := range c.TransformIDs {
		buf = append(buf, encoding.LE16(uint16(id))...)
	}
	return buf
}

func (*PreauthIntegrityCapabilities) negotiateContext() {}
func (*EncryptionCapabilities) negotiateContext()       {}
func (*CompressionCapabilities) negotiateContext()      {}
func (*NetnameNegotiateContextID) negotiateContext()    {}
func (*TransportCapabilities) negotiateContext()        {}
func (*RdmaTransformCapabilities) negotiateContext()    {}

// NegotiateContextHeaderSize covers type, data length and reserved
const NegotiateContextHeaderSize = 8

// AlignmentPadding returns the zero bytes needed after an entry ending at
// offset. The result is 8, not 0, when offset is already aligned; peers
// have only ever seen that layout.
func AlignmentPadding(offset int) int {
	return 8 - offset%8
}

// MarshalNegotiateContext serializes one context. The data length is
// always computed from the payload.
func MarshalNegotiateContext(c NegotiateContext) []byte {
	data := c.Data()
	buf := make([]byte, NegotiateContextHeaderSize, NegotiateContextHeaderSize+len(data))
	encoding.PutUint16LE(buf[0:2], uint16(c.ContextType()))
	encoding.PutUint16LE(buf[2:4], uint16(len(data)))
	return append(buf, data...)
}

// MarshalNegotiateContextEntries serializes each context with its trailing
// alignment padding. The terminal entry is not padded.
func MarshalNegotiateContextEntries(list []NegotiateContext) [][]byte {
	entries := make([][]byte, 0, len(list))
	for i, c := range list {
		entry := MarshalNegotiateContext(c)
		if i < len(list)-1 {
			entry = append(entry, encoding.Zeros(AlignmentPadding(len(entry)-NegotiateContextHeaderSize))...)
		}
		entries = append(entries, entry)
	}
	return entries
}

// MarshalNegotiateContexts serializes a context list
func MarshalNegotiateContexts(list []NegotiateContext) []byte {
	var buf []byte
	for _, e := range MarshalNegotiateContextEntries(list) {
		buf = append(buf, e...)
	}
	return buf
}

// UnmarshalNegotiateContexts walks count contexts starting at buf[0]. Each
// entry spans data_length+8 bytes followed by the alignment padding.
// base is the frame offset of buf[0], used only for the padding rule.
func UnmarshalNegotiateContexts(buf []byte, count int, base int) ([]NegotiateContext, error) {
	list := make([]NegotiateContext, 0, count)
	offset := 0
	for i := 0; i < count; i++ {
		if err := need(buf[min(offset, len(buf)):], NegotiateContextHeaderSize, fmt.Sprintf("negotiate context %d", i)); err != nil {
			return nil, err
		}
		typ, err := ParseNegotiateContextType(encoding.Uint16LE(buf[offset : offset+2]))
		if err != nil {
			return nil, err
		}
		dataLen := int(encoding.Uint16LE(buf[offset+2 : offset+4]))
		start := offset + NegotiateContextHeaderSize
		if err := need(buf[start:], dataLen, fmt.Sprintf("negotiate context %d data", i)); err != nil {
			return nil, err
		}
		c, err := unmarshalContextData(typ, buf[start:start+dataLen])
		if err != nil {
			return nil, err
		}
		list = append(list, c)

		end := start + dataLen
		offset = end + AlignmentPadding(base+end)
	}
	return list, nil
}

func unmarshalContextData(typ NegotiateContextType, data []byte) (NegotiateContext, error) {
	switch typ {
	case PreauthIntegrityCapabilitiesType:
		if err := need(data, 4, "preauth integrity capabilities"); err != nil {
			return nil, err
		}
		c := &PreauthIntegrityCapabilities{
			HashAlgorithmCount: encoding.Uint16LE(data[0:2]),
			SaltLength:         encoding.Uint16LE(data[2:4]),
		}
		off := 4
		for i := 0; i < int(c.HashAlgorithmCount); i++ {
			if err := need(data[off:], 2, "hash algorithms"); err != nil {
				return nil, err
			}
			a, err := ParseHashAlgorithm(encoding.Uint16LE(data[off : off+2]))
			if err != nil {
				return nil, err
			}
			c.HashAlgorithms = append(c.HashAlgorithms, a)
			off += 2
		}
		if err := need(data[off:], int(c.SaltLength), "salt"); err != nil {
			return nil, err
		}
		c.Salt = append([]byte(nil), data[off:off+int(c.SaltLength)]...)
		return c, nil

	case EncryptionCapabilitiesType:
		if err := need(data, 2, "encryption capabilities"); err != nil {
			return nil, err
		}
		c := &EncryptionCapabilities{CipherCount: encoding.Uint16LE(data[0:2])}
		ids, err := parseCodes16(data[2:], int(c.CipherCount), "ciphers", ParseCipher)
		if err != nil {
			return nil, err
		}
		c.Ciphers = ids
		return c, nil

	case CompressionCapabilitiesType:
		if err := need(data, 8, "compression capabilities"); err != nil {
			return nil, err
		}
		flags, err := ParseCompressionFlags(encoding.Uint32LE(data[4:8]))
		if err != nil {
			return nil, err
		}
		c := &CompressionCapabilities{
			CompressionAlgorithmCount: encoding.Uint16LE(data[0:2]),
			Padding:                   encoding.Uint16LE(data[2:4]),
			Flags:                     flags,
		}
		algs, err := parseCodes16(data[8:], int(c.CompressionAlgorithmCount), "compression algorithms", ParseCompressionAlgorithm)
		if err != nil {
			return nil, err
		}
		c.CompressionAlgorithms = algs
		return c, nil

	case NetnameNegotiateContextIDType:
		return &NetnameNegotiateContextID{NetName: append([]byte(nil), data...)}, nil

	case TransportCapabilitiesType:
		if err := need(data, 4, "transport capabilities"); err != nil {
			return nil, err
		}
		return &TransportCapabilities{Reserved: encoding.Uint32LE(data[0:4])}, nil

	case RdmaTransformCapabilitiesType:
		if err := need(data, 8, "rdma transform capabilities"); err != nil {
			return nil, err
		}
		c := &RdmaTransformCapabilities{
			TransformCount: encoding.Uint16LE(data[0:2]),
			Reserved1:      encoding.Uint16LE(data[2:4]),
			Reserved2:      encoding.Uint32LE(data[4:8]),
		}
		ids, err := parseCodes16(data[8:], int(c.TransformCount), "rdma transforms", ParseRdmaTransform)
		if err != nil {
			return nil, err
		}
		c.TransformIDs = ids
		return c, nil
	}
	return nil, &DecodeError{Field: "negotiate context type", Code: uint64(typ)}
}

func parseCodes16[T any](data []byte, count int, what string, parse func(uint16) (T, error)) ([]T, error) {
	if err := need(data, count*2, what); err != nil {
		return nil, err
	}
	out := make([]T, 0, count)
	for i := 0; i < count; i++ {
		v, err := parse(encoding.Uint16LE(data[i*2 : i*2+2]))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}
