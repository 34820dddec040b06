package auth

import (
	"bytes"

	"github.com/jcmturner/gokrb5/v8/spnego"
)

// spnegoInitPrefix is the NegTokenInit wrapper around a 40-byte NTLM
// NEGOTIATE offering only the NTLMSSP mechanism.
var spnegoInitPrefix = []byte{
	0x60, 0x48, 0x06, 0x06, 0x2b, 0x06, 0x01, 0x05, 0x05, 0x02, 0xa0, 0x3e, 0x30, 0x3c, 0xa0, 0x0e,
	0x30, 0x0c, 0x06, 0x0a, 0x2b, 0x06, 0x01, 0x04, 0x01, 0x82, 0x37, 0x02, 0x02, 0x0a, 0xa2, 0x2a,
	0x04, 0x28,
}

// InitialSecurityBlob returns the SPNEGO token sent with the first session setup
func InitialSecurityBlob() []byte {
	return append(append([]byte(nil), spnegoInitPrefix...), NewNegotiateMessage().Marshal()...)
}

// GSSPrefixSize is the length of the envelope WrapAuthenticate adds
const GSSPrefixSize = 16

// WrapAuthenticate places an NTLM AUTHENTICATE inside a NegTokenResp
// responseToken. Every DER length uses the two-byte long form.
func WrapAuthenticate(ntlm []byte) []byte {
	l := len(ntlm)
	prefix := []byte{
		0xa1, 0x82, byte((l + 12) >> 8), byte(l + 12),
		0x30, 0x82, byte((l + 8) >> 8), byte(l + 8),
		0xa2, 0x82, byte((l + 4) >> 8), byte(l + 4),
		0x04, 0x82, byte(l >> 8), byte(l),
	}
	return append(prefix, ntlm...)
}

// UnwrapSecurityBlob extracts the NTLM message from a server security
// buffer. A NegTokenResp is decoded first; otherwise the blob is searched
// for the NTLMSSP signature.
func UnwrapSecurityBlob(blob []byte) ([]byte, error) {
	var resp spnego.NegTokenResp
	if err := resp.Unmarshal(blob); err == nil && bytes.HasPrefix(resp.ResponseToken, ntlmSignature[:]) {
		return resp.ResponseToken, nil
	}
	if i := bytes.Index(blob, ntlmSignature[:]); i >= 0 {
		return blob[i:], nil
	}
	return nil, ErrNoNTLMToken
}
