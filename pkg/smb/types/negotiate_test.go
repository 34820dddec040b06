package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlignmentPadding(t *testing.T) {
	cases := []struct {
		offset int
		want   int
	}{
		{offset: 38, want: 2},
		{offset: 46, want: 2},
		{offset: 4, want: 4},
		{offset: 7, want: 1},
		{offset: 8, want: 8},
		{offset: 0, want: 8},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, AlignmentPadding(tc.offset), "offset %d", tc.offset)
	}
}

func TestNegotiateContextsRoundTrip(t *testing.T) {
	list := []NegotiateContext{
		NewEncryptionCapabilities([]Cipher{CipherAES128GCM, CipherAES128CCM, CipherAES256GCM}), // data 8, pads 8
		NewPreauthIntegrityCapabilities([]HashAlgorithm{HashAlgorithmSHA512}, []byte{1, 2, 3}),
		NewCompressionCapabilities(CompressionFlagChained, []CompressionAlgorithm{CompressionPatternV1}),
		&NetnameNegotiateContextID{NetName: []byte{'a', 0, 'b', 0, 'c', 0}},
		&TransportCapabilities{Reserved: 1},
		NewRdmaTransformCapabilities([]RdmaTransform{RdmaTransformEncryption, RdmaTransformNone}),
	}

	entries := MarshalNegotiateContextEntries(list)
	require.Len(t, entries, len(list))

	// 8 byte context header + 8 byte payload + a full 8 byte pad
	assert.Len(t, entries[0], 24)
	assert.Equal(t, []byte{0x02, 0x00, 0x08, 0x00}, entries[0][0:4])
	assert.Equal(t, make([]byte, 8), entries[0][16:24])

	// terminal entry is not padded
	assert.Len(t, entries[5], 8+8+4)

	for i, e := range entries[:len(entries)-1] {
		assert.Zero(t, len(e)%8, "entry %d not aligned", i)
	}

	decoded, err := UnmarshalNegotiateContexts(MarshalNegotiateContexts(list), len(list), 0x70)
	require.NoError(t, err)
	require.Len(t, decoded, len(list))
	for i := range list {
		assert.Equal(t, list[i].ContextType(), decoded[i].ContextType())
		assert.Equal(t, list[i].Data(), decoded[i].Data())
	}
}

func TestUnmarshalNegotiateContextsUnknownType(t *testing.T) {
	buf := []byte{0x04, 0x00, 0x00, 0x00, 0, 0, 0, 0}
	_, err := UnmarshalNegotiateContexts(buf, 1, 0)
	assert.ErrorIs(t, err, ErrUnmappedCode)
}

func TestDefaultNegotiateRequest(t *testing.T) {
	req := DefaultNegotiateRequest("192.168.0.171")

	assert.Equal(t, uint16(5), req.DialectCount)
	assert.Equal(t, Capabilities(0x3f), req.Capabilities)
	assert.Equal(t, uint32(0x70), req.NegotiateContextOffset)
	assert.Equal(t, uint16(3), req.NegotiateContextCount)
	assert.Len(t, req.Padding, 2)

	buf := req.Marshal()
	ctxStart := int(req.NegotiateContextOffset) - SMB2HeaderSize
	assert.Equal(t, []byte{0x01, 0x00, 0x26, 0x00}, buf[ctxStart:ctxStart+4])

	var out NegotiateRequest
	require.NoError(t, out.Unmarshal(buf))
	assert.Equal(t, req.Dialects, out.Dialects)
	assert.Equal(t, req.Padding, out.Padding)
	require.Len(t, out.NegotiateContexts, 3)
	netname, ok := out.NegotiateContexts[2].(*NetnameNegotiateContextID)
	require.True(t, ok)
	assert.Len(t, netname.NetName, 26)
	assert.Equal(t, req.Marshal(), out.Marshal())
}

func TestNegotiateRequestWithoutContexts(t *testing.T) {
	req := NewNegotiateRequest([]Dialect{DialectSMB2_1}, NegotiateSigningRequired, GlobalCapDFS, [16]byte{1}, nil)
	assert.Zero(t, req.NegotiateContextOffset)
	assert.Empty(t, req.Padding)
	assert.Len(t, req.Marshal(), 38)
}

func TestNegotiateResponseDecode(t *testing.T) {
	body := []byte{
		0x41, 0x00, 0x01, 0x00, 0x11, 0x03, 0x02, 0x00, 0x72, 0x61, 0x73, 0x70, 0x62, 0x65, 0x72, 0x72,
		0x79, 0x70, 0x69, 0x00, 0x00, 0x00, 0x00, 0x00, 0x07, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0x00,
		0x00, 0x00, 0x80, 0x00, 0x00, 0x00, 0x80, 0x00, 0x9e, 0xfb, 0x27, 0x7c, 0x52, 0x1e, 0xd7, 0x01,
		0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x80, 0x00, 0x4a, 0x00, 0xd0, 0x00, 0x00, 0x00,
		0x60, 0x48, 0x06, 0x06, 0x2b, 0x06, 0x01, 0x05, 0x05, 0x02, 0xa0, 0x3e, 0x30, 0x3c, 0xa0, 0x0e,
		0x30, 0x0c, 0x06, 0x0a, 0x2b, 0x06, 0x01, 0x04, 0x01, 0x82, 0x37, 0x02, 0x02, 0x0a, 0xa3, 0x2a,
		0x30, 0x28, 0xa0, 0x26, 0x1b, 0x24, 0x6e, 0x6f, 0x74, 0x5f, 0x64, 0x65, 0x66, 0x69, 0x6e, 0x65,
		0x64, 0x5f, 0x69, 0x6e, 0x5f, 0x52, 0x46, 0x43, 0x34, 0x31, 0x37, 0x38, 0x40, 0x70, 0x6c, 0x65,
		0x61, 0x73, 0x65, 0x5f, 0x69, 0x67, 0x6e, 0x6f, 0x72, 0x65, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x01, 0x00, 0x26, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x20, 0x00, 0x01, 0x00, 0x8c, 0x24,
		0x4b, 0x62, 0x9b, 0x11, 0xba, 0x46, 0x2c, 0x73, 0x00, 0xeb, 0x9f, 0x9a, 0xf3, 0xfc, 0xc7, 0x3d,
		0xf4, 0x86, 0xb6, 0x8c, 0x5b, 0x4d, 0x7d, 0x61, 0xf0, 0x86, 0x1c, 0x1f, 0xaf, 0x90, 0x00, 0x00,
		0x02, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x00, 0x01, 0x00,
	}

	var r NegotiateResponse
	require.NoError(t, r.Unmarshal(body))

	assert.Equal(t, uint16(65), r.StructureSize)
	assert.Equal(t, NegotiateSigningEnabled, r.SecurityMode)
	assert.Equal(t, DialectSMB3_1_1, r.DialectRevision)
	assert.Equal(t, uint16(2), r.NegotiateContextCount)
	assert.Len(t, r.SecurityBuffer, 0x4a)
	assert.Len(t, r.Padding, 6)
	require.Len(t, r.NegotiateContexts, 2)

	preauth, ok := r.NegotiateContexts[0].(*PreauthIntegrityCapabilities)
	require.True(t, ok)
	assert.Equal(t, []HashAlgorithm{HashAlgorithmSHA512}, preauth.HashAlgorithms)
	assert.Len(t, preauth.Salt, 32)

	enc, ok := r.NegotiateContexts[1].(*EncryptionCapabilities)
	require.True(t, ok)
	assert.Equal(t, []Cipher{CipherAES128CCM}, enc.Ciphers)
}
