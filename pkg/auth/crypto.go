package auth

import (
	"strings"

	"github.com/mellowCS/SMB-Fuzzer/internal/crypto"
	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// ClientNonce is the fixed client challenge carried in the NTLMv2 block
var ClientNonce = [8]byte{0x22, 0x10, 0x50, 0xcd, 0x22, 0xf4, 0xa4, 0x14}

// ntProofSize is the length of NTProofStr
const ntProofSize = 16

// clientChallengeFixedSize covers RespType through Reserved3
const clientChallengeFixedSize = 28

// NTLMv2ClientChallenge is the NTLMv2_CLIENT_CHALLENGE block
type NTLMv2ClientChallenge struct {
	RespType            uint8 // 1
	HiRespType          uint8 // 1
	Reserved1           uint16
	Reserved2           uint32
	TimeStamp           [8]byte
	ChallengeFromClient [8]byte
	Reserved3           uint32
	AvPairs             []AvPair // Terminated by MsvAvEOL on the wire
}

// Marshal serializes the block
func (c *NTLMv2ClientChallenge) Marshal() []byte {
	buf := make([]byte, clientChallengeFixedSize)
	buf[0] = c.RespType
	buf[1] = c.HiRespType
	encoding.PutUint16LE(buf[2:4], c.Reserved1)
	encoding.PutUint32LE(buf[4:8], c.Reserved2)
	copy(buf[8:16], c.TimeStamp[:])
	copy(buf[16:24], c.ChallengeFromClient[:])
	encoding.PutUint32LE(buf[24:28], c.Reserved3)
	return append(buf, MarshalAvPairs(c.AvPairs)...)
}

// NTChallengeResponseLength is 44 + the serialized AV pairs, EOL included
func NTChallengeResponseLength(pairs []AvPair) int {
	n := ntProofSize + clientChallengeFixedSize
	for _, p := range pairs {
		n += 4 + len(p.Value)
	}
	return n + 4
}

// NTHash computes the NT hash from a password
// NT Hash = MD4(UTF-16LE(password))
func NTHash(password string) []byte {
	return crypto.MD4Hash(encoding.ToUTF16LE(password))
}

// NTLMv2Hash computes the NTLMv2 hash
// NTLMv2 Hash = HMAC-MD5(NT Hash, UPPERCASE(username) + domain)
func NTLMv2Hash(ntHash []byte, username, domain string) []byte {
	return crypto.HMACMD5(ntHash, encoding.ToUTF16LE(strings.ToUpper(username)+domain))
}

// NTProof computes NTProofStr = HMAC-MD5(NTLMv2 Hash, ServerChallenge + Blob)
func NTProof(ntlmv2Hash, serverChallenge, blob []byte) []byte {
	return crypto.HMACMD5(ntlmv2Hash, serverChallenge, blob)
}
