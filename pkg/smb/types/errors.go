package types

import (
	"errors"
	"fmt"
)

// ErrBufferTooSmall indicates the buffer is too small for the message
var ErrBufferTooSmall = errors.New("buffer too small")

// ErrUnmappedCode indicates an enumerated wire code with no known meaning
var ErrUnmappedCode = errors.New("unmapped wire code")

// DecodeError reports an enumerated field whose wire code is not mapped
type DecodeError struct {
	Field string
	Code  uint64
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("%s: %s 0x%X", ErrUnmappedCode, e.Field, e.Code)
}

func (e *DecodeError) Unwrap() error {
	return ErrUnmappedCode
}

type enumCode interface {
	~uint8 | ~uint16 | ~uint32
}

// parseEnum accepts code only if it is one of the legal values.
func parseEnum[T enumCode](field string, code T, legal []T) (T, error) {
	for _, v := range legal {
		if v == code {
			return code, nil
		}
	}
	return 0, &DecodeError{Field: field, Code: uint64(code)}
}

func need(buf []byte, n int, what string) error {
	if len(buf) < n {
		return fmt.Errorf("%s: %w (have %d, need %d)", what, ErrBufferTooSmall, len(buf), n)
	}
	return nil
}
