// Package crypto provides the hash primitives behind the NTLMv2 proof.
package crypto

import (
	"crypto/hmac"
	"crypto/md5"

	"golang.org/x/crypto/md4"
)

// MD4Hash computes the MD4 hash of data
func MD4Hash(data []byte) []byte {
	h := md4.New()
	h.Write(data)
	return h.Sum(nil)
}

// HMACMD5 computes HMAC-MD5 over the concatenation of parts
func HMACMD5(key []byte, parts ...[]byte) []byte {
	h := hmac.New(md5.New, key)
	for _, p := range parts {
		h.Write(p)
	}
	return h.Sum(nil)
}
