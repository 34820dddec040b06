package auth

import (
	"fmt"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// authenticateFixedSize is the fixed part including version and MIC
const authenticateFixedSize = 88

// AuthenticateMessage represents NTLMSSP Type 3 message (AUTHENTICATE_MESSAGE)
type AuthenticateMessage struct {
	Signature                       [8]byte
	MessageType                     uint32 // Always 3
	LmChallengeResponseFields       SecurityBuffer
	NtChallengeResponseFields       SecurityBuffer
	DomainNameFields                SecurityBuffer
	UserNameFields                  SecurityBuffer
	WorkstationFields               SecurityBuffer
	EncryptedRandomSessionKeyFields SecurityBuffer
	NegotiateFlags                  uint32
	Version                         NTLMVersion
	MIC                             [16]byte

	// Payload data
	LmChallengeResponse       []byte
	NtChallengeResponse       []byte
	DomainName                []byte
	UserName                  []byte
	Workstation               []byte
	EncryptedRandomSessionKey []byte
}

// AuthenticateOptions configures Type 3 message generation
type AuthenticateOptions struct {
	Domain      string
	Username    string
	Workstation string
	// Host adds an MsvAvTargetName of cifs/<Host> when set
	Host string
	// Password switches the zero proof for a real NTLMv2 proof
	Password string
}

// DefaultAuthenticateOptions returns the fixed identity the fuzzer presents
func DefaultAuthenticateOptions() AuthenticateOptions {
	return AuthenticateOptions{
		Domain:      "WORKGROUP",
		Username:    "tom",
		Workstation: "TOM",
	}
}

// NewAuthenticateMessage answers challenge. The timestamp is copied from
// the challenge target info and its absence is an error.
func NewAuthenticateMessage(challenge *ChallengeMessage, opts AuthenticateOptions) (*AuthenticateMessage, error) {
	timestamp, err := challenge.Timestamp()
	if err != nil {
		return nil, err
	}
	if len(timestamp) != 8 {
		return nil, fmt.Errorf("%w: timestamp is %d bytes", ErrMissingTimestamp, len(timestamp))
	}

	block := &NTLMv2ClientChallenge{
		RespType:            1,
		HiRespType:          1,
		ChallengeFromClient: ClientNonce,
		AvPairs:             echoTargetInfo(challenge.AvPairs, opts.Host),
	}
	copy(block.TimeStamp[:], timestamp)
	blob := block.Marshal()

	proof := make([]byte, ntProofSize)
	if opts.Password != "" {
		hash := NTLMv2Hash(NTHash(opts.Password), opts.Username, opts.Domain)
		proof = NTProof(hash, challenge.ServerChallenge[:], blob)
	}

	m := &AuthenticateMessage{
		Signature:                 ntlmSignature,
		MessageType:               NtLmAuthenticate,
		NegotiateFlags:            AuthenticateFlags,
		Version:                   DefaultVersion(),
		LmChallengeResponse:       []byte{},
		NtChallengeResponse:       append(proof, blob...),
		DomainName:                encoding.ToUTF16LE(opts.Domain),
		UserName:                  encoding.ToUTF16LE(opts.Username),
		Workstation:               encoding.ToUTF16LE(opts.Workstation),
		EncryptedRandomSessionKey: []byte{},
	}
	m.layout()
	return m, nil
}

// echoTargetInfo copies the server pairs and appends the SPN when a host is known
func echoTargetInfo(server []AvPair, host string) []AvPair {
	pairs := make([]AvPair, 0, len(server)+1)
	for _, p := range server {
		if p.ID != MsvAvEOL {
			pairs = append(pairs, p)
		}
	}
	if host != "" {
		pairs = append(pairs, AvPair{ID: MsvAvTargetName, Value: encoding.ToUTF16LE("cifs/" + host)})
	}
	return pairs
}

// layout derives every security buffer from the payload that follows
// the fixed part.
func (m *AuthenticateMessage) layout() {
	offset := uint32(authenticateFixedSize)
	place := func(data []byte) SecurityBuffer {
		sb := SecurityBuffer{Len: uint16(len(data)), MaxLen: uint16(len(data)), Offset: offset}
		offset += uint32(len(data))
		return sb
	}
	m.LmChallengeResponseFields = place(m.LmChallengeResponse)
	m.NtChallengeResponseFields = place(m.NtChallengeResponse)
	m.DomainNameFields = place(m.DomainName)
	m.UserNameFields = place(m.UserName)
	m.WorkstationFields = place(m.Workstation)
	m.EncryptedRandomSessionKeyFields = place(m.EncryptedRandomSessionKey)
}

// Marshal serializes the Type 3 message. Security buffers are written as
// set; payloads follow the fixed part in field order.
func (m *AuthenticateMessage) Marshal() []byte {
	buf := make([]byte, authenticateFixedSize)

	copy(buf[0:8], m.Signature[:])
	encoding.PutUint32LE(buf[8:12], m.MessageType)
	m.LmChallengeResponseFields.marshal(buf[12:20])
	m.NtChallengeResponseFields.marshal(buf[20:28])
	m.DomainNameFields.marshal(buf[28:36])
	m.UserNameFields.marshal(buf[36:44])
	m.WorkstationFields.marshal(buf[44:52])
	m.EncryptedRandomSessionKeyFields.marshal(buf[52:60])
	encoding.PutUint32LE(buf[60:64], m.NegotiateFlags)
	copy(buf[64:72], m.Version.Marshal())
	copy(buf[72:88], m.MIC[:])

	buf = append(buf, m.LmChallengeResponse...)
	buf = append(buf, m.NtChallengeResponse...)
	buf = append(buf, m.DomainName...)
	buf = append(buf, m.UserName...)
	buf = append(buf, m.Workstation...)
	return append(buf, m.EncryptedRandomSessionKey...)
}
