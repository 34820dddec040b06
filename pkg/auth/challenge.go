package auth

import (
	"fmt"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
)

// ChallengeMessage represents NTLMSSP Type 2 message (CHALLENGE_MESSAGE)
type ChallengeMessage struct {
	Signature        [8]byte
	MessageType      uint32 // Always 2
	TargetNameFields SecurityBuffer
	NegotiateFlags   uint32
	ServerChallenge  [8]byte
	Reserved         [8]byte
	TargetInfoFields SecurityBuffer
	Version          NTLMVersion
	TargetName       []byte   // From payload
	TargetInfo       []byte   // From payload
	AvPairs          []AvPair // Parsed from TargetInfo
}

// ParseChallengeMessage parses a Type 2 message
func ParseChallengeMessage(data []byte) (*ChallengeMessage, error) {
	if len(data) < 32 {
		return nil, fmt.Errorf("challenge: %w (%d bytes)", ErrMessageTooShort, len(data))
	}

	m := &ChallengeMessage{}

	copy(m.Signature[:], data[0:8])
	if m.Signature != ntlmSignature {
		return nil, ErrInvalidSignature
	}

	m.MessageType = encoding.Uint32LE(data[8:12])
	if m.MessageType != NtLmChallenge {
		return nil, fmt.Errorf("%w: type %d", ErrNotChallenge, m.MessageType)
	}

	m.TargetNameFields = unmarshalSecurityBuffer(data[12:20])
	m.NegotiateFlags = encoding.Uint32LE(data[20:24])
	copy(m.ServerChallenge[:], data[24:32])

	if len(data) >= 40 {
		copy(m.Reserved[:], data[32:40])
	}
	if len(data) >= 48 {
		m.TargetInfoFields = unmarshalSecurityBuffer(data[40:48])
	}
	if len(data) >= 56 && m.NegotiateFlags&NtlmsspNegotiateVersion != 0 {
		m.Version = unmarshalVersion(data[48:56])
	}

	m.TargetName = m.TargetNameFields.slice(data)
	m.TargetInfo = m.TargetInfoFields.slice(data)
	if len(m.TargetInfo) > 0 {
		pairs, err := ParseAvPairs(m.TargetInfo)
		if err != nil {
			return nil, fmt.Errorf("challenge target info: %w", err)
		}
		m.AvPairs = pairs
	}

	return m, nil
}

// Timestamp returns the MsvAvTimestamp value from the target info
func (m *ChallengeMessage) Timestamp() ([]byte, error) {
	pair := FindAvPair(m.AvPairs, MsvAvTimestamp)
	if pair == nil {
		return nil, ErrMissingTimestamp
	}
	return pair.Value, nil
}

// TargetNameString returns the target name as string
func (m *ChallengeMessage) TargetNameString() string {
	return encoding.FromUTF16LE(m.TargetName)
}
