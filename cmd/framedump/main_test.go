package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
)

func responseFrame(cmd types.Command, status types.NTStatus, body []byte) []byte {
	h := types.NewRequestHeader(cmd, types.HeaderDefaults{MessageID: 3}, 5, 7)
	h.Flags |= types.FlagsServerToRedir
	h.Status = status
	return types.Frame(append(h.Marshal(), body...))
}

func TestDumpTreeConnect(t *testing.T) {
	body := encoding.LE16(16)
	body = append(body, byte(types.ShareTypeDisk), 0)
	body = append(body, encoding.LE32(0)...)
	body = append(body, encoding.LE32(0)...)
	body = append(body, encoding.LE32(0x001F01FF)...)

	var out bytes.Buffer
	require.NoError(t, dump(&out, responseFrame(types.CommandTreeConnect, types.StatusSuccess, body)))

	s := out.String()
	assert.Contains(t, s, "=== HEADER ===")
	assert.Contains(t, s, "TREE_CONNECT")
	assert.Contains(t, s, "TreeID:     0x00000005")
	assert.Contains(t, s, "Access:     0x001F01FF")
	assert.Contains(t, s, "response=true async=false")
	assert.NotContains(t, s, "Warning")
}

func TestDumpErrorBody(t *testing.T) {
	body := append(encoding.LE16(9), make([]byte, 7)...)

	var out bytes.Buffer
	require.NoError(t, dump(&out, responseFrame(types.CommandCreate, types.StatusAccessDenied, body)))

	assert.Contains(t, out.String(), "STATUS_ACCESS_DENIED")
	assert.Contains(t, out.String(), "Error data: 0 bytes")
}

func TestDumpTruncated(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, dump(&out, []byte{0, 0, 0, 4, 0xFE}))
}

func TestDecodeHex(t *testing.T) {
	b, err := decodeHex("fe 53\n4d 42\t")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFE, 'S', 'M', 'B'}, b)

	_, err = decodeHex("zz")
	assert.Error(t, err)
}
