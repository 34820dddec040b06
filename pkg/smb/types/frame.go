package types

import (
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// MaxFrameLength is the largest payload the 24-bit length prefix can carry
const MaxFrameLength = 0xFFFFFF

// EncodeFrame serializes header and body behind the NetBIOS session prefix:
// one zero byte and a 24-bit big-endian payload length.
func EncodeFrame(h *Header, b Body) []byte {
	payload := h.Marshal()
	if b != nil {
		payload = append(payload, b.Marshal()...)
	}
	return Frame(payload)
}

// Frame prefixes an already serialized payload
func Frame(payload []byte) []byte {
	frame := make([]byte, FramePrefixSize+len(payload))
	encoding.PutUint24BE(frame[1:4], uint32(len(payload)))
	copy(frame[FramePrefixSize:], payload)
	return frame
}

// SplitFrame separates a received frame into header and body bytes. The
// declared length is trusted only up to what was actually received.
func SplitFrame(frame []byte) (*Header, []byte, error) {
	if err := need(frame, FramePrefixSize+SMB2HeaderSize, "frame"); err != nil {
		return nil, nil, err
	}
	end := FramePrefixSize + int(encoding.Uint24BE(frame[1:4]))
	if end > len(frame) || end < FramePrefixSize+SMB2HeaderSize {
		end = len(frame)
	}
	h, err := DecodeHeader(frame[FramePrefixSize:end])
	if err != nil {
		return nil, nil, err
	}
	return h, frame[FramePrefixSize+SMB2HeaderSize : end], nil
}
