package types

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

func TestDefaultCreateRequest(t *testing.T) {
	h := NewRequestHeader(CommandCreate, HeaderDefaults{CreditCharge: 1, CreditRequest: 7968, MessageID: 4},
		encoding.Uint32LE([]byte{0, 1, 2, 3}), encoding.Uint64LE([]byte{0, 1, 2, 3, 4, 5, 6, 7}))
	req := NewCreateRequest(DefaultCreateParams, "read_test.txt")

	_, body, err := SplitFrame(EncodeFrame(h, req))
	require.NoError(t, err)

	var got CreateRequest
	require.NoError(t, got.Unmarshal(body))

	assert.Equal(t, AccessMask(0x00120089), got.DesiredAccess)
	assert.Equal(t, ShareAccess(0x00000003), got.ShareAccess)
	assert.Equal(t, FileOpen, got.CreateDisposition)
	assert.Equal(t, uint16(0x78), got.NameOffset)
	assert.Equal(t, uint16(0x1a), got.NameLength)
	assert.Equal(t, encoding.ToUTF16LEWithNull("read_test.txt"), got.Buffer)
	assert.Len(t, got.Buffer, 28)
}

func TestFixedBodyRoundTrip(t *testing.T) {
	fileID := FileID{
		Persistent: [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
		Volatile:   [8]byte{9, 10, 11, 12, 13, 14, 15, 16},
	}

	t.Run("close", func(t *testing.T) {
		in := NewCloseRequest(CloseFlagPostQueryAttrib, fileID)
		in.Reserved = 0xDEADBEEF
		var out CloseRequest
		require.NoError(t, out.Unmarshal(in.Marshal()))
		assert.Equal(t, *in, out)
	})

	t.Run("echo", func(t *testing.T) {
		in := &EchoRequest{StructureSize: 0xFFFF, Reserved: 0x1234}
		var out EchoRequest
		require.NoError(t, out.Unmarshal(in.Marshal()))
		assert.Equal(t, *in, out)
	})

	t.Run("query info", func(t *testing.T) {
		in := NewQueryInfoRequest(InfoTypeSecurity, 0, fileID)
		in.AdditionalInfo = 7
		in.Flags = 3
		var out QueryInfoRequest
		require.NoError(t, out.Unmarshal(in.Marshal()))
		assert.Equal(t, *in, out)
	})

	t.Run("create", func(t *testing.T) {
		in := NewCreateRequest(CreateParams{
			Oplock:        OplockLevelBatch,
			Impersonation: ImpersonationDelegate,
			Access:        GenericAll | Delete,
			Attributes:    FileAttributeHidden,
			Share:         FileShareDelete,
			Disposition:   FileOverwriteIf,
			Options:       FileDeleteOnClose,
		}, "x")
		in.SmbCreateFlags = 0x1122334455667788
		var out CreateRequest
		require.NoError(t, out.Unmarshal(in.Marshal()))
		assert.Equal(t, *in, out)
	})

	t.Run("session setup", func(t *testing.T) {
		in := NewSessionSetupRequest(SessionSetupFlagBinding, NegotiateSigningRequired, []byte{1, 2, 3})
		in.PreviousSessionID = 42
		var out SessionSetupRequest
		require.NoError(t, out.Unmarshal(in.Marshal()))
		assert.Equal(t, *in, out)
	})

	t.Run("tree connect", func(t *testing.T) {
		in := NewTreeConnectRequest(TreeConnectFlagExtensionPresent, UNCPath("192.168.0.171", "share"))
		var out TreeConnectRequest
		require.NoError(t, out.Unmarshal(in.Marshal()))
		assert.Equal(t, *in, out)
		assert.Equal(t, uint16(0x48), out.PathOffset)
		assert.Equal(t, uint16(0x2a), out.PathLength)
	})
}

func TestFieldWidthsMatchMarshal(t *testing.T) {
	bodies := []Body{
		DefaultNegotiateRequest("192.168.0.171"),
		NewSessionSetupRequest(0, NegotiateSigningEnabled, []byte{1, 2}),
		NewTreeConnectRequest(0, UNCPath("h", "s")),
		NewCreateRequest(DefaultCreateParams, "read_test.txt"),
		NewQueryInfoRequest(InfoTypeFile, FileAllInformation, FileID{}),
		NewCloseRequest(0, FileID{}),
		NewEchoRequest(),
	}
	for _, b := range bodies {
		t.Run(b.Command().String(), func(t *testing.T) {
			for _, f := range b.Fields() {
				if f.Fixed() {
					assert.Len(t, f.Value, f.Width, f.Name)
				}
			}
			assert.Equal(t, MarshalFields(b.Fields()), b.Marshal())
		})
	}
}

func TestRawBodyMarshalsVerbatim(t *testing.T) {
	b := &RawBody{Cmd: CommandEcho, List: []Field{
		{Name: "StructureSize", Width: 2, Value: []byte{1, 2, 3}},
		{Name: "Reserved", Width: 2, Value: nil},
	}}
	assert.Equal(t, []byte{1, 2, 3}, b.Marshal())
	assert.Equal(t, CommandEcho, b.Command())
}

func TestUnmappedCodes(t *testing.T) {
	_, err := ParseDialect(0x0999)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnmappedCode))

	var de *DecodeError
	require.True(t, errors.As(err, &de))
	assert.Equal(t, "dialect", de.Field)
	assert.Equal(t, uint64(0x0999), de.Code)

	_, err = ParseCommand(0x0013)
	assert.ErrorIs(t, err, ErrUnmappedCode)

	c, err := ParseCommand(0x0012)
	require.NoError(t, err)
	assert.Equal(t, CommandOplockBreak, c)

	_, err = ParseSessionFlags(0x0003)
	assert.ErrorIs(t, err, ErrUnmappedCode)

	_, err = ParseShareType(0)
	assert.ErrorIs(t, err, ErrUnmappedCode)
}

func TestCreateResponseFileID(t *testing.T) {
	body := make([]byte, 88)
	body[0] = 89
	for i := 64; i < 80; i++ {
		body[i] = byte(i)
	}

	id, err := FileIDFromCreateResponse(body)
	require.NoError(t, err)
	assert.Equal(t, body[64:80], id.Marshal())

	var resp CreateResponse
	require.NoError(t, resp.Unmarshal(body))
	assert.Equal(t, id, resp.FileID)

	_, err = FileIDFromCreateResponse(body[:79])
	assert.ErrorIs(t, err, ErrBufferTooSmall)
}

func TestDecodeResponseBody(t *testing.T) {
	h := &Header{Command: CommandSessionSetup, Status: StatusMoreProcessingReq}
	body := []byte{9, 0, 0, 0, 0x48, 0, 3, 0, 0xAA, 0xBB, 0xCC}

	r, err := DecodeResponseBody(h, body)
	require.NoError(t, err)
	ss, ok := r.(*SessionSetupResponse)
	require.True(t, ok)
	assert.Equal(t, []byte{0xAA, 0xBB, 0xCC}, ss.SecurityBuffer)

	h = &Header{Command: CommandTreeConnect, Status: StatusBadNetworkName}
	r, err = DecodeResponseBody(h, []byte{9, 0, 0, 0, 0, 0, 0, 0, 0})
	require.NoError(t, err)
	_, ok = r.(*ErrorResponse)
	assert.True(t, ok)

	h = &Header{Command: CommandRead}
	_, err = DecodeResponseBody(h, make([]byte, 16))
	assert.ErrorIs(t, err, ErrUnmappedCode)
}

func TestQueryInfoResponseClampsBuffer(t *testing.T) {
	body := []byte{9, 0, 0x48, 0, 0xFF, 0, 0, 0, 1, 2, 3}
	var r QueryInfoResponse
	require.NoError(t, r.Unmarshal(body))
	assert.True(t, bytes.Equal([]byte{1, 2, 3}, r.Buffer))
}
