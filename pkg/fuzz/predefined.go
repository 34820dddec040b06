package fuzz

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
	"github.com/mellowCS/SMB-Fuzzer/pkg/auth"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
	"github.com/mellowCS/SMB-Fuzzer/pkg/state"
)

var sessionSetupFlags = []types.SessionSetupFlags{types.SessionSetupFlagNone, types.SessionSetupFlagBinding}

var closeFlags = []types.CloseFlags{0, types.CloseFlagPostQueryAttrib}

// predefined samples the enumerated fields of msg. Builders recompute
// every count, length and offset from the sampled values.
func (e *Engine) predefined(msg state.Message, c state.Carried) (types.Body, error) {
	switch msg {
	case state.MessageNegotiate:
		return e.predefinedNegotiate()
	case state.MessageSessionSetupNegotiate:
		return types.NewSessionSetupRequest(pick(e.Src, sessionSetupFlags), pick(e.Src, types.SecurityModes), auth.InitialSecurityBlob()), nil
	case state.MessageSessionSetupAuthenticate:
		blob, err := state.AuthenticateBlob(c, e.options())
		if err != nil {
			return nil, err
		}
		return types.NewSessionSetupRequest(pick(e.Src, sessionSetupFlags), pick(e.Src, types.SecurityModes), blob), nil
	case state.MessageTreeConnect:
		return types.NewTreeConnectRequest(sampleFlags(e, types.TreeConnectFlagValues), types.UNCPath(e.Host, e.Share)), nil
	case state.MessageCreate:
		p := types.CreateParams{
			Oplock:        pick(e.Src, types.OplockLevels),
			Impersonation: pick(e.Src, types.ImpersonationLevels),
			Access:        sampleFlags(e, types.AccessMasks),
			Attributes:    sampleFlags(e, types.FileAttributeValues),
			Share:         sampleFlags(e, types.ShareAccessValues),
			Disposition:   pick(e.Src, types.CreateDispositions),
			Options:       sampleFlags(e, types.CreateOptionValues),
		}
		return types.NewCreateRequest(p, e.File), nil
	case state.MessageQueryInfo:
		infoType := pick(e.Src, types.InfoTypes)
		return types.NewQueryInfoRequest(infoType, pick(e.Src, types.InfoClasses[infoType]), c.FileID), nil
	case state.MessageClose:
		return types.NewCloseRequest(pick(e.Src, closeFlags), c.FileID), nil
	case state.MessageEcho:
		return types.NewEchoRequest(), nil
	}
	return nil, fmt.Errorf("unknown message %s", msg)
}

func (e *Engine) predefinedNegotiate() (*types.NegotiateRequest, error) {
	guid, err := uuid.NewRandomFromReader(e.Src)
	if err != nil {
		return nil, err
	}

	contexts := make([]types.NegotiateContext, e.Src.Intn(maxContexts))
	for i := range contexts {
		contexts[i] = e.sampleContext()
	}

	return types.NewNegotiateRequest(
		sampleList(e, types.Dialects),
		pick(e.Src, types.SecurityModes),
		sampleFlags(e, types.CapabilityValues),
		guid,
		contexts,
	), nil
}

func (e *Engine) sampleContext() types.NegotiateContext {
	switch pick(e.Src, types.NegotiateContextTypes) {
	case types.PreauthIntegrityCapabilitiesType:
		return types.NewPreauthIntegrityCapabilities(sampleList(e, types.HashAlgorithms), randomBytes(e.Src, e.Src.Intn(maxSaltLength)))
	case types.EncryptionCapabilitiesType:
		return types.NewEncryptionCapabilities(sampleList(e, types.Ciphers))
	case types.CompressionCapabilitiesType:
		return types.NewCompressionCapabilities(pick(e.Src, types.CompressionFlagValues), sampleList(e, types.CompressionAlgorithms))
	case types.NetnameNegotiateContextIDType:
		return &types.NetnameNegotiateContextID{NetName: randomBytes(e.Src, e.Src.Intn(maxNetnameLength))}
	case types.TransportCapabilitiesType:
		return &types.TransportCapabilities{Reserved: encoding.Uint32LE(randomBytes(e.Src, 4))}
	default:
		return types.NewRdmaTransformCapabilities(sampleList(e, types.RdmaTransforms))
	}
}
