package auth

import "errors"

var (
	// ErrMessageTooShort indicates an NTLM message shorter than its fixed part
	ErrMessageTooShort = errors.New("ntlm message too short")
	// ErrInvalidSignature indicates a message not starting with NTLMSSP\0
	ErrInvalidSignature = errors.New("invalid NTLMSSP signature")
	// ErrNotChallenge indicates a message whose type is not CHALLENGE
	ErrNotChallenge = errors.New("not a challenge message")
	// ErrMissingTimestamp indicates target info without MsvAvTimestamp
	ErrMissingTimestamp = errors.New("challenge target info has no timestamp")
	// ErrNoNTLMToken indicates a security blob carrying no NTLM message
	ErrNoNTLMToken = errors.New("no NTLMSSP token in security blob")
)
