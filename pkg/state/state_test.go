package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
	"github.com/mellowCS/SMB-Fuzzer/pkg/auth"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
)

var testTimestamp = []byte{0x9e, 0xfb, 0x27, 0x7c, 0x52, 0x1e, 0xd7, 0x01}

// challengeToken builds a raw NTLM CHALLENGE carrying a timestamp
func challengeToken() []byte {
	info := auth.MarshalAvPairs([]auth.AvPair{
		{ID: auth.MsvAvNbComputerName, Value: encoding.ToUTF16LE("SRV")},
		{ID: auth.MsvAvTimestamp, Value: testTimestamp},
	})
	buf := make([]byte, 56)
	copy(buf[0:8], "NTLMSSP\x00")
	encoding.PutUint32LE(buf[8:12], auth.NtLmChallenge)
	encoding.PutUint32LE(buf[16:20], 56)
	encoding.PutUint32LE(buf[20:24], auth.NtlmsspNegotiateUnicode|auth.NtlmsspNegotiateTargetInfo)
	copy(buf[24:32], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	encoding.PutUint16LE(buf[40:42], uint16(len(info)))
	encoding.PutUint16LE(buf[42:44], uint16(len(info)))
	encoding.PutUint32LE(buf[44:48], 56)
	return append(buf, info...)
}

func reply(cmd types.Command, status types.NTStatus, sessionID uint64, treeID uint32, body []byte) []byte {
	h := &types.Header{
		ProtocolID:    types.SMB2ProtocolID,
		StructureSize: types.SMB2HeaderSize,
		Status:        status,
		Command:       cmd,
		Flags:         types.FlagsServerToRedir,
		SessionID:     sessionID,
		TreeID:        treeID,
	}
	return types.Frame(append(h.Marshal(), body...))
}

func sessionSetupBody(token []byte) []byte {
	body := make([]byte, 8)
	encoding.PutUint16LE(body[0:2], 9)
	encoding.PutUint16LE(body[4:6], 0x48)
	encoding.PutUint16LE(body[6:8], uint16(len(token)))
	return append(body, token...)
}

var testFileID = types.FileID{
	Persistent: [8]byte{1, 2, 3, 4, 5, 6, 7, 8},
	Volatile:   [8]byte{0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17, 0x18},
}

func createBody() []byte {
	body := make([]byte, 88)
	encoding.PutUint16LE(body[0:2], 89)
	copy(body[64:80], testFileID.Marshal())
	return body
}

// fakeServer answers every request from a scripted handler
type fakeServer struct {
	requests  []*types.Header
	bodies    [][]byte
	pending   []byte
	writeErr  error
	closed    bool
	challenge []byte
}

func newFakeServer() *fakeServer {
	return &fakeServer{challenge: challengeToken()}
}

func (s *fakeServer) WriteFrame(frame []byte) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	h, body, err := types.SplitFrame(frame)
	if err != nil {
		return err
	}
	s.requests = append(s.requests, h)
	s.bodies = append(s.bodies, body)

	switch h.Command {
	case types.CommandNegotiate:
		s.pending = reply(types.CommandNegotiate, types.StatusSuccess, 0, 0, make([]byte, 64))
	case types.CommandSessionSetup:
		if h.SessionID == 0 {
			s.pending = reply(h.Command, types.StatusMoreProcessingReq, 0x1122, 0, sessionSetupBody(s.challenge))
		} else {
			s.pending = reply(h.Command, types.StatusSuccess, h.SessionID, 0, sessionSetupBody(nil))
		}
	case types.CommandTreeConnect:
		s.pending = reply(h.Command, types.StatusSuccess, h.SessionID, 5, make([]byte, 16))
	case types.CommandCreate:
		s.pending = reply(h.Command, types.StatusSuccess, h.SessionID, h.TreeID, createBody())
	default:
		s.pending = reply(h.Command, types.StatusSuccess, h.SessionID, h.TreeID, make([]byte, 4))
	}
	return nil
}

func (s *fakeServer) ReadResponse() ([]byte, error) {
	if s.pending == nil {
		return nil, errors.New("read timed out")
	}
	resp := s.pending
	s.pending = nil
	return resp, nil
}

func (s *fakeServer) Close() error {
	s.closed = true
	return nil
}

func (s *fakeServer) dial(ctx context.Context) (Conn, error) {
	return s, nil
}

var testOptions = Options{Host: "192.168.0.171", Share: "share", File: "read_test.txt"}

func TestReachCreate(t *testing.T) {
	srv := newFakeServer()

	conn, c, err := Reach(context.Background(), srv.dial, Create, testOptions)
	require.NoError(t, err)
	require.NotNil(t, conn)

	assert.Equal(t, uint64(0x1122), c.SessionID)
	assert.Equal(t, uint32(5), c.TreeID)
	assert.Equal(t, testFileID, c.FileID)
	require.NotNil(t, c.Challenge)
	assert.Equal(t, [8]byte{1, 2, 3, 4, 5, 6, 7, 8}, c.Challenge.ServerChallenge)

	var commands []types.Command
	var ids []uint64
	for _, h := range srv.requests {
		commands = append(commands, h.Command)
		ids = append(ids, h.MessageID)
	}
	assert.Equal(t, []types.Command{
		types.CommandNegotiate, types.CommandSessionSetup, types.CommandSessionSetup,
		types.CommandTreeConnect, types.CommandCreate,
	}, commands)
	assert.Equal(t, []uint64{0, 1, 2, 3, 4}, ids)

	// Identifiers flow into later headers
	assert.Equal(t, uint64(0), srv.requests[1].SessionID)
	assert.Equal(t, uint64(0x1122), srv.requests[2].SessionID)
	assert.Equal(t, uint32(0), srv.requests[3].TreeID)
	assert.Equal(t, uint32(5), srv.requests[4].TreeID)
	assert.False(t, srv.closed)
}

func TestReachClose(t *testing.T) {
	srv := newFakeServer()

	_, c, err := Reach(context.Background(), srv.dial, Close, testOptions)
	require.NoError(t, err)
	require.Len(t, srv.requests, 6)
	assert.Equal(t, types.CommandClose, srv.requests[5].Command)

	var req types.CloseRequest
	require.NoError(t, req.Unmarshal(srv.bodies[5]))
	assert.Equal(t, c.FileID, req.FileID)
}

func TestReachInitialSendsNothing(t *testing.T) {
	srv := newFakeServer()

	conn, c, err := Reach(context.Background(), srv.dial, Initial, testOptions)
	require.NoError(t, err)
	assert.NotNil(t, conn)
	assert.Empty(t, srv.requests)
	assert.Equal(t, Carried{}, c)
}

func TestReachMissingChallenge(t *testing.T) {
	srv := newFakeServer()
	srv.challenge = []byte("no token here")

	_, _, err := Reach(context.Background(), srv.dial, SessionSetupAuthenticate, testOptions)
	assert.ErrorIs(t, err, ErrNoChallenge)
	assert.True(t, srv.closed)
}

func TestWriteFailureDoesNotAbortStep(t *testing.T) {
	srv := newFakeServer()
	srv.writeErr = errors.New("connection reset by peer")

	_, _, err := Reach(context.Background(), srv.dial, Negotiate, testOptions)
	assert.NoError(t, err)

	// The next step needs the missing reply
	_, _, err = Reach(context.Background(), srv.dial, SessionSetupNegotiate, testOptions)
	assert.ErrorIs(t, err, ErrNoChallenge)
}

func TestReachDialError(t *testing.T) {
	dialErr := errors.New("connection refused")
	dial := func(ctx context.Context) (Conn, error) { return nil, dialErr }

	_, _, err := Reach(context.Background(), dial, Create, testOptions)
	assert.ErrorIs(t, err, dialErr)
}

func TestReachCancelled(t *testing.T) {
	srv := newFakeServer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Reach(ctx, srv.dial, TreeConnect, testOptions)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, srv.closed)
}

func TestIsLegal(t *testing.T) {
	want := map[State][]Message{
		Initial:                  {MessageNegotiate, MessageEcho},
		Negotiate:                {MessageSessionSetupNegotiate, MessageEcho},
		SessionSetupNegotiate:    {MessageSessionSetupAuthenticate, MessageEcho},
		SessionSetupAuthenticate: {MessageTreeConnect, MessageEcho},
		TreeConnect:              {MessageCreate, MessageEcho},
		Create:                   {MessageQueryInfo, MessageClose, MessageEcho},
		Close:                    {MessageCreate, MessageEcho},
	}

	for _, s := range States {
		for _, m := range Messages {
			expected := false
			for _, w := range want[s] {
				if w == m {
					expected = true
				}
			}
			assert.Equal(t, expected, IsLegal(m, s), "%s in %s", m, s)
		}
		assert.ElementsMatch(t, want[s], LegalMessages(s))
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(MessageQueryInfo, Create))

	err := Validate(MessageQueryInfo, Initial)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrIllegalMessage)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, MessageQueryInfo, verr.Message)
	assert.Equal(t, Initial, verr.State)
}

func TestParseTokens(t *testing.T) {
	tests := []struct {
		token string
		want  Message
	}{
		{"-n", MessageNegotiate},
		{"--session_setup_neg", MessageSessionSetupNegotiate},
		{"-sa", MessageSessionSetupAuthenticate},
		{"--tree_connect", MessageTreeConnect},
		{"-cr", MessageCreate},
		{"-q", MessageQueryInfo},
		{"--close", MessageClose},
		{"-e", MessageEcho},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			m, err := ParseMessage(tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.want, m)
		})
	}

	s, err := ParseState("-session_setup_auth_state")
	require.NoError(t, err)
	assert.Equal(t, SessionSetupAuthenticate, s)

	_, err = ParseMessage("-x")
	assert.ErrorIs(t, err, ErrUnknownToken)
	_, err = ParseState("-create")
	assert.ErrorIs(t, err, ErrUnknownToken)
}

func TestMessageHeader(t *testing.T) {
	h := MessageCreate.Header(Carried{SessionID: 0x0706050403020100, TreeID: 0x03020100})

	assert.Equal(t, types.CommandCreate, h.Command)
	assert.Equal(t, uint16(1), h.CreditCharge)
	assert.Equal(t, uint16(7968), h.CreditRequest)
	assert.Equal(t, uint64(4), h.MessageID)
	assert.Equal(t, types.FlagsDFSOperations, h.Flags)
	assert.Equal(t, uint32(0x03020100), h.TreeID)
	assert.Equal(t, uint64(0x0706050403020100), h.SessionID)

	neg := MessageNegotiate.Header(Carried{})
	assert.Equal(t, uint16(0), neg.CreditCharge)
	assert.Equal(t, uint16(0), neg.CreditRequest)
}
