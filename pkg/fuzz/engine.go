package fuzz

import (
	"fmt"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
	"github.com/mellowCS/SMB-Fuzzer/pkg/auth"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
	"github.com/mellowCS/SMB-Fuzzer/pkg/state"
)

// Default sampling limits
const (
	DefaultRandomCap  = 10000
	DefaultMaxSamples = 100
	maxContexts       = 10
	maxSaltLength     = 32
	maxNetnameLength  = 100
)

// Engine builds fuzzed request bodies
type Engine struct {
	Src        Source
	RandomCap  int // exclusive bound for random lengths
	MaxSamples int // exclusive bound for Predefined sample counts
	Host       string
	Share      string
	File       string
	Password   string
}

func (e *Engine) options() state.Options {
	return state.Options{Host: e.Host, Share: e.Share, File: e.File, Password: e.Password}
}

func (e *Engine) randomCap() int {
	if e.RandomCap <= 0 {
		return DefaultRandomCap
	}
	return e.RandomCap
}

func (e *Engine) samples() int {
	if e.MaxSamples <= 0 {
		return e.Src.Intn(DefaultMaxSamples)
	}
	return e.Src.Intn(e.MaxSamples)
}

// Build returns the body for msg mutated by strategy. Carried identifiers
// are copied into the body unchanged.
func (e *Engine) Build(msg state.Message, strategy Strategy, c state.Carried) (types.Body, error) {
	switch strategy {
	case Predefined:
		return e.predefined(msg, c)
	case RandomFields, CompletelyRandom:
		skeleton, err := e.Skeleton(msg, c)
		if err != nil {
			return nil, err
		}
		var fields []types.Field
		if strategy == RandomFields {
			fields = RandomizeFields(e.Src, skeleton.Fields(), e.randomCap())
		} else {
			fields = ScrambleFields(e.Src, skeleton.Fields(), e.randomCap())
		}
		return &types.RawBody{Cmd: skeleton.Command(), List: fields}, nil
	}
	return nil, fmt.Errorf("unknown strategy %s", strategy)
}

// Skeleton returns the well-formed default body for msg
func (e *Engine) Skeleton(msg state.Message, c state.Carried) (types.Body, error) {
	switch msg {
	case state.MessageNegotiate:
		return types.DefaultNegotiateRequest(e.Host), nil
	case state.MessageSessionSetupNegotiate:
		return types.NewSessionSetupRequest(types.SessionSetupFlagNone, types.NegotiateSigningEnabled, auth.InitialSecurityBlob()), nil
	case state.MessageSessionSetupAuthenticate:
		blob, err := state.AuthenticateBlob(c, e.options())
		if err != nil {
			return nil, err
		}
		return types.NewSessionSetupRequest(types.SessionSetupFlagNone, types.NegotiateSigningEnabled, blob), nil
	case state.MessageTreeConnect:
		return types.NewTreeConnectRequest(0, types.UNCPath(e.Host, e.Share)), nil
	case state.MessageCreate:
		return types.NewCreateRequest(types.DefaultCreateParams, e.File), nil
	case state.MessageQueryInfo:
		return types.NewQueryInfoRequest(types.InfoTypeFile, types.FileAllInformation, c.FileID), nil
	case state.MessageClose:
		return types.NewCloseRequest(0, c.FileID), nil
	case state.MessageEcho:
		return types.NewEchoRequest(), nil
	}
	return nil, fmt.Errorf("unknown message %s", msg)
}

func pick[T any](src Source, set []T) T {
	return set[src.Intn(len(set))]
}

func sampleFlags[T encoding.Flag](e *Engine, set []T) T {
	return encoding.Union(encoding.Subset(set, e.samples(), e.Src.Intn))
}

func sampleList[T any](e *Engine, set []T) []T {
	return encoding.Subset(set, e.samples(), e.Src.Intn)
}
