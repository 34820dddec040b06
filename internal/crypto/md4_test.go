package crypto

import (
	"encoding/hex"
	"testing"
)

func TestMD4Hash(t *testing.T) {
	// RFC 1320 test vector
	got := hex.EncodeToString(MD4Hash([]byte("abc")))
	if got != "a448017aaf21d8525fc10ae87aa6729d" {
		t.Errorf("unexpected MD4 digest %s", got)
	}
}

func TestHMACMD5Parts(t *testing.T) {
	key := []byte("key")
	whole := HMACMD5(key, []byte("The quick brown fox jumps over the lazy dog"))
	split := HMACMD5(key, []byte("The quick brown "), []byte("fox jumps over the lazy dog"))
	if hex.EncodeToString(whole) != "80070713463e7749b90c2dc24911e275" {
		t.Errorf("unexpected HMAC-MD5 %x", whole)
	}
	if hex.EncodeToString(split) != hex.EncodeToString(whole) {
		t.Error("HMAC over parts should equal HMAC over the joined input")
	}
}
