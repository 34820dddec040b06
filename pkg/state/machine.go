package state

import (
	"context"
	"fmt"

	"github.com/mellowCS/SMB-Fuzzer/pkg/auth"
	"github.com/mellowCS/SMB-Fuzzer/pkg/console"
	"github.com/mellowCS/SMB-Fuzzer/pkg/metrics"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
)

// Carried holds the identifiers earlier responses hand to later requests
type Carried struct {
	SessionID uint64
	TreeID    uint32
	FileID    types.FileID
	Challenge *auth.ChallengeMessage
}

// Transport sends frames and reads replies. *smb.Conn implements it.
type Transport interface {
	WriteFrame(frame []byte) error
	ReadResponse() ([]byte, error)
}

// Conn is a Transport that can be closed
type Conn interface {
	Transport
	Close() error
}

// DialFunc opens a fresh connection to the target
type DialFunc func(ctx context.Context) (Conn, error)

// Options holds the target details the handshake needs
type Options struct {
	Host     string
	Share    string
	File     string
	Password string
}

func (o Options) authenticateOptions() auth.AuthenticateOptions {
	opts := auth.DefaultAuthenticateOptions()
	opts.Host = o.Host
	opts.Password = o.Password
	return opts
}

// Step performs one handshake transition. Write and read failures are
// logged and do not stop the step; only a missing field a later request
// depends on is an error.
type Step func(ctx context.Context, t Transport, c Carried) (Carried, error)

// Steps returns the transitions leading from Initial to target, in order
func Steps(target State, opts Options) []Step {
	all := []Step{
		negotiateStep(opts),
		sessionSetupNegotiateStep(),
		sessionSetupAuthenticateStep(opts),
		treeConnectStep(opts),
		createStep(opts),
		closeStep(),
	}
	n := int(target)
	if n < 0 {
		n = 0
	}
	return all[:min(n, len(all))]
}

// Reach dials a fresh connection and replays the handshake up to target.
// The connection is closed when a step fails.
func Reach(ctx context.Context, dial DialFunc, target State, opts Options) (Conn, Carried, error) {
	conn, err := dial(ctx)
	if err != nil {
		return nil, Carried{}, err
	}

	c, err := Replay(ctx, conn, target, opts)
	if err != nil {
		conn.Close()
		return nil, c, err
	}
	return conn, c, nil
}

// Replay runs the steps leading to target over an open connection
func Replay(ctx context.Context, t Transport, target State, opts Options) (Carried, error) {
	var c Carried
	var err error

	for i, step := range Steps(target, opts) {
		if err := ctx.Err(); err != nil {
			return c, err
		}
		if c, err = step(ctx, t, c); err != nil {
			return c, fmt.Errorf("reaching %s: %s: %w", target, States[i+1], err)
		}
	}

	metrics.LastState.Set(float64(target))
	return c, nil
}

// Exchange writes one frame and performs one bounded read. A failed write
// is logged as a connection reset and yields no response.
func Exchange(t Transport, h *types.Header, body types.Body, kind string) []byte {
	name := h.Command.String()

	if err := t.WriteFrame(types.EncodeFrame(h, body)); err != nil {
		console.Warn("%s: connection reset by peer: %v", name, err)
		metrics.TransportErrors.WithLabelValues("write").Inc()
		return nil
	}
	metrics.FramesSent.WithLabelValues(name, kind).Inc()

	resp, err := t.ReadResponse()
	if err != nil {
		console.Warn("%s: no response: %v", name, err)
		metrics.TransportErrors.WithLabelValues("read").Inc()
	}
	if rh, _, derr := types.SplitFrame(resp); derr == nil {
		console.Debug("%s: %s", name, smb.StatusName(rh.Status))
	}
	return resp
}

func handshake(t Transport, msg Message, c Carried, body types.Body) []byte {
	return Exchange(t, msg.Header(c), body, "handshake")
}

// decode splits a reply and decodes its body. An error status yields an
// *smb.NTStatusError.
func decode(resp []byte) (*types.Header, types.Response, error) {
	if len(resp) == 0 {
		return nil, nil, ErrNoResponse
	}
	h, body, err := types.SplitFrame(resp)
	if err != nil {
		return nil, nil, err
	}
	r, err := types.DecodeResponseBody(h, body)
	if err != nil {
		return h, nil, err
	}
	if er, ok := r.(*types.ErrorResponse); ok {
		return h, er, smb.StatusError(h.Status)
	}
	return h, r, nil
}

func negotiateStep(opts Options) Step {
	return func(ctx context.Context, t Transport, c Carried) (Carried, error) {
		handshake(t, MessageNegotiate, c, types.DefaultNegotiateRequest(opts.Host))
		return c, nil
	}
}

func sessionSetupNegotiateStep() Step {
	return func(ctx context.Context, t Transport, c Carried) (Carried, error) {
		body := types.NewSessionSetupRequest(types.SessionSetupFlagNone, types.NegotiateSigningEnabled, auth.InitialSecurityBlob())
		resp := handshake(t, MessageSessionSetupNegotiate, c, body)

		h, r, err := decode(resp)
		if err != nil {
			return c, fmt.Errorf("%w: %v", ErrNoChallenge, err)
		}
		c.SessionID = h.SessionID

		ss, ok := r.(*types.SessionSetupResponse)
		if !ok {
			return c, ErrNoChallenge
		}
		token, err := auth.UnwrapSecurityBlob(ss.SecurityBuffer)
		if err != nil {
			return c, fmt.Errorf("%w: %v", ErrNoChallenge, err)
		}
		ch, err := auth.ParseChallengeMessage(token)
		if err != nil {
			return c, fmt.Errorf("%w: %v", ErrNoChallenge, err)
		}
		c.Challenge = ch
		return c, nil
	}
}

// AuthenticateBlob builds the GSS-wrapped NTLM Authenticate for c's challenge
func AuthenticateBlob(c Carried, opts Options) ([]byte, error) {
	if c.Challenge == nil {
		return nil, ErrNoChallenge
	}
	msg, err := auth.NewAuthenticateMessage(c.Challenge, opts.authenticateOptions())
	if err != nil {
		return nil, err
	}
	return auth.WrapAuthenticate(msg.Marshal()), nil
}

func sessionSetupAuthenticateStep(opts Options) Step {
	return func(ctx context.Context, t Transport, c Carried) (Carried, error) {
		blob, err := AuthenticateBlob(c, opts)
		if err != nil {
			return c, err
		}
		body := types.NewSessionSetupRequest(types.SessionSetupFlagNone, types.NegotiateSigningEnabled, blob)
		resp := handshake(t, MessageSessionSetupAuthenticate, c, body)

		// Failed logons are tolerated; later requests keep the first session id
		if h, _, err := decode(resp); err == nil && h.SessionID != 0 {
			c.SessionID = h.SessionID
		} else if err != nil {
			console.Debug("session setup: %v", err)
		}
		return c, nil
	}
}

func treeConnectStep(opts Options) Step {
	return func(ctx context.Context, t Transport, c Carried) (Carried, error) {
		body := types.NewTreeConnectRequest(0, types.UNCPath(opts.Host, opts.Share))
		resp := handshake(t, MessageTreeConnect, c, body)

		if h, _, err := types.SplitFrame(resp); err == nil {
			c.TreeID = h.TreeID
		}
		return c, nil
	}
}

func createStep(opts Options) Step {
	return func(ctx context.Context, t Transport, c Carried) (Carried, error) {
		resp := handshake(t, MessageCreate, c, types.NewCreateRequest(types.DefaultCreateParams, opts.File))

		h, body, err := types.SplitFrame(resp)
		if err != nil {
			return c, fmt.Errorf("create response: %w", err)
		}
		if serr := smb.StatusError(h.Status); serr != nil {
			return c, serr
		}
		id, err := types.FileIDFromCreateResponse(body)
		if err != nil {
			return c, err
		}
		c.FileID = id
		return c, nil
	}
}

func closeStep() Step {
	return func(ctx context.Context, t Transport, c Carried) (Carried, error) {
		handshake(t, MessageClose, c, types.NewCloseRequest(0, c.FileID))
		return c, nil
	}
}
