package encoding

import (
	"encoding/binary"
	"unicode/utf16"
)

// ToUTF16LE converts a Go string to UTF-16LE bytes, the string encoding used
// by SMB2 and NTLM payloads.
func ToUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	b := make([]byte, 0, len(units)*2)
	for _, u := range units {
		b = binary.LittleEndian.AppendUint16(b, u)
	}
	return b
}

// ToUTF16LEWithNull is ToUTF16LE plus a two-byte terminator.
func ToUTF16LEWithNull(s string) []byte {
	return append(ToUTF16LE(s), 0, 0)
}

// FromUTF16LE decodes UTF-16LE bytes. A trailing odd byte is dropped.
func FromUTF16LE(b []byte) string {
	units := make([]uint16, len(b)/2)
	for i := range units {
		units[i] = binary.LittleEndian.Uint16(b[i*2:])
	}
	for len(units) > 0 && units[len(units)-1] == 0 {
		units = units[:len(units)-1]
	}
	return string(utf16.Decode(units))
}
