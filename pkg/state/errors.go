package state

import (
	"errors"
	"fmt"
)

var (
	// ErrIllegalMessage is returned for a message that may not be fuzzed in a state
	ErrIllegalMessage = errors.New("message is not legal in state")
	// ErrUnknownToken is returned for an unrecognized command line token
	ErrUnknownToken = errors.New("unknown token")
	// ErrNoChallenge means the session setup response held no NTLM challenge
	ErrNoChallenge = errors.New("no NTLM challenge from session setup")
	// ErrNoResponse means a step needed a reply that never arrived
	ErrNoResponse = errors.New("no response")
)

// ValidationError reports an illegal (message, state) pair
type ValidationError struct {
	Message Message
	State   State
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s is not legal in state %s", e.Message, e.State)
}

func (e *ValidationError) Unwrap() error {
	return ErrIllegalMessage
}
