// Package fuzz builds mutated SMB2 requests and drives fuzzing runs
package fuzz

import (
	"errors"
	"fmt"

	"github.com/mellowCS/SMB-Fuzzer/pkg/state"
)

// Strategy is how much structure a fuzzed message keeps
type Strategy int

const (
	// Predefined samples enumerated fields from their legal values and
	// keeps every derived length, offset and count consistent
	Predefined Strategy = iota
	// RandomFields fills every field with random bytes of its wire width
	RandomFields
	// CompletelyRandom fills every field with random bytes of random length
	CompletelyRandom
)

func (s Strategy) String() string {
	switch s {
	case Predefined:
		return "Predefined"
	case RandomFields:
		return "RandomFields"
	case CompletelyRandom:
		return "CompletelyRandom"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

var strategyTokens = map[string]Strategy{
	"-pre": Predefined, "--predefined": Predefined, "--Predefined": Predefined,
	"-rf": RandomFields, "--random_fields": RandomFields, "--Random_fields": RandomFields,
	"-cran": CompletelyRandom, "--completely_random": CompletelyRandom, "--Completely_random": CompletelyRandom,
}

// ParseStrategy maps a strategy selector such as -pre
func ParseStrategy(token string) (Strategy, error) {
	if s, ok := strategyTokens[token]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("%w: strategy %q", state.ErrUnknownToken, token)
}

// ErrIncompleteDirective is returned when a selector is missing
var ErrIncompleteDirective = errors.New("message, strategy and state are all required")

// DefaultIterations is the number of attempts when none is configured
const DefaultIterations = 100

// Directive says which message to fuzz, how, in which state, and how often.
// Iterations of zero means run until connecting fails.
type Directive struct {
	Message    state.Message
	State      state.State
	Strategy   Strategy
	Iterations int
}

// NewDirective parses the three selectors and checks legality
func NewDirective(messageToken, strategyToken, stateToken string, iterations int) (Directive, error) {
	var d Directive

	if messageToken == "" || strategyToken == "" || stateToken == "" {
		return d, ErrIncompleteDirective
	}

	msg, err := state.ParseMessage(messageToken)
	if err != nil {
		return d, err
	}
	strategy, err := ParseStrategy(strategyToken)
	if err != nil {
		return d, err
	}
	st, err := state.ParseState(stateToken)
	if err != nil {
		return d, err
	}

	d = Directive{Message: msg, State: st, Strategy: strategy, Iterations: iterations}
	return d, d.Validate()
}

// Validate checks the directive before any network activity
func (d Directive) Validate() error {
	if d.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative: %d", d.Iterations)
	}
	if _, ok := strategyNames[d.Strategy]; !ok {
		return fmt.Errorf("%w: strategy %d", state.ErrUnknownToken, int(d.Strategy))
	}
	return state.Validate(d.Message, d.State)
}

var strategyNames = map[Strategy]bool{Predefined: true, RandomFields: true, CompletelyRandom: true}
