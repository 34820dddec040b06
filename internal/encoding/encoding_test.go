package encoding

import (
	"bytes"
	"testing"
)

func TestLittleEndianHelpers(t *testing.T) {
	if got := LE16(0x0311); !bytes.Equal(got, []byte{0x11, 0x03}) {
		t.Errorf("LE16: got %x", got)
	}
	if got := LE32(0x00120089); !bytes.Equal(got, []byte{0x89, 0x00, 0x12, 0x00}) {
		t.Errorf("LE32: got %x", got)
	}
	if got := LE64(1); !bytes.Equal(got, []byte{1, 0, 0, 0, 0, 0, 0, 0}) {
		t.Errorf("LE64: got %x", got)
	}

	buf := make([]byte, 4)
	PutUint32LE(buf, 0xdeadbeef)
	if Uint32LE(buf) != 0xdeadbeef {
		t.Errorf("Uint32LE round trip failed: %x", buf)
	}
}

func TestUint24BE(t *testing.T) {
	buf := make([]byte, 3)
	PutUint24BE(buf, 0x01020c)
	if !bytes.Equal(buf, []byte{0x01, 0x02, 0x0c}) {
		t.Errorf("PutUint24BE: got %x", buf)
	}
	if v := Uint24BE(buf); v != 0x01020c {
		t.Errorf("Uint24BE: got %x", v)
	}
}

func TestZeros(t *testing.T) {
	if len(Zeros(16)) != 16 {
		t.Error("expected 16 zero bytes")
	}
	if len(Zeros(-1)) != 0 {
		t.Error("negative length should yield an empty buffer")
	}
}

func TestUnion(t *testing.T) {
	if got := Union([]uint32{0x1, 0x2, 0x1, 0x80}); got != 0x83 {
		t.Errorf("Union: got %#x", got)
	}
	if got := Union[uint16](nil); got != 0 {
		t.Errorf("Union of nothing: got %#x", got)
	}
}

func TestSubset(t *testing.T) {
	set := []string{"a", "b", "c"}
	i := 0
	pick := func(n int) int {
		i++
		return i % n
	}
	got := Subset(set, 4, pick)
	want := []string{"b", "c", "a", "b"}
	if len(got) != len(want) {
		t.Fatalf("expected %d picks, got %d", len(want), len(got))
	}
	for k := range want {
		if got[k] != want[k] {
			t.Errorf("pick %d: expected %s, got %s", k, want[k], got[k])
		}
	}
	if Subset(set, 0, pick) != nil {
		t.Error("zero count should yield nil")
	}
}

func TestUTF16LE(t *testing.T) {
	want := []byte{
		0x72, 0x00, 0x65, 0x00, 0x61, 0x00, 0x64, 0x00, 0x5f, 0x00, 0x74, 0x00, 0x65, 0x00,
		0x73, 0x00, 0x74, 0x00, 0x2e, 0x00, 0x74, 0x00, 0x78, 0x00, 0x74, 0x00, 0x00, 0x00,
	}
	got := ToUTF16LEWithNull("read_test.txt")
	if !bytes.Equal(got, want) {
		t.Errorf("ToUTF16LEWithNull: got %x", got)
	}
	if s := FromUTF16LE(got); s != "read_test.txt" {
		t.Errorf("FromUTF16LE: got %q", s)
	}
}
