package fuzz

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mellowCS/SMB-Fuzzer/internal/encoding"
	"github.com/mellowCS/SMB-Fuzzer/pkg/auth"
	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
	"github.com/mellowCS/SMB-Fuzzer/pkg/state"
)

func testChallenge(t *testing.T) *auth.ChallengeMessage {
	t.Helper()
	info := auth.MarshalAvPairs([]auth.AvPair{
		{ID: auth.MsvAvNbDomainName, Value: encoding.ToUTF16LE("WORKGROUP")},
		{ID: auth.MsvAvTimestamp, Value: []byte{0x9e, 0xfb, 0x27, 0x7c, 0x52, 0x1e, 0xd7, 0x01}},
	})
	buf := make([]byte, 56)
	copy(buf[0:8], "NTLMSSP\x00")
	encoding.PutUint32LE(buf[8:12], auth.NtLmChallenge)
	encoding.PutUint32LE(buf[16:20], 56)
	copy(buf[24:32], []byte{8, 7, 6, 5, 4, 3, 2, 1})
	encoding.PutUint16LE(buf[40:42], uint16(len(info)))
	encoding.PutUint16LE(buf[42:44], uint16(len(info)))
	encoding.PutUint32LE(buf[44:48], 56)

	ch, err := auth.ParseChallengeMessage(append(buf, info...))
	require.NoError(t, err)
	return ch
}

var testFileID = types.FileID{
	Persistent: [8]byte{1, 1, 1, 1, 2, 2, 2, 2},
	Volatile:   [8]byte{3, 3, 3, 3, 4, 4, 4, 4},
}

func testCarried(t *testing.T) state.Carried {
	return state.Carried{SessionID: 0x1122, TreeID: 7, FileID: testFileID, Challenge: testChallenge(t)}
}

func testEngine(seed int64) *Engine {
	return &Engine{
		Src:        rand.New(rand.NewSource(seed)),
		RandomCap:  64,
		MaxSamples: 20,
		Host:       "192.168.0.171",
		Share:      "share",
		File:       "read_test.txt",
	}
}

func TestParseStrategy(t *testing.T) {
	tests := map[string]Strategy{
		"-pre": Predefined, "--predefined": Predefined,
		"-rf": RandomFields, "--random_fields": RandomFields,
		"-cran": CompletelyRandom, "--completely_random": CompletelyRandom,
	}
	for token, want := range tests {
		got, err := ParseStrategy(token)
		require.NoError(t, err, token)
		assert.Equal(t, want, got, token)
	}

	_, err := ParseStrategy("-random")
	assert.ErrorIs(t, err, state.ErrUnknownToken)
}

func TestNewDirective(t *testing.T) {
	d, err := NewDirective("-cr", "-pre", "-tree_state", 5)
	require.NoError(t, err)
	assert.Equal(t, Directive{Message: state.MessageCreate, State: state.TreeConnect, Strategy: Predefined, Iterations: 5}, d)

	d, err = NewDirective("--echo", "-cran", "-close_state", 1)
	require.NoError(t, err)
	assert.Equal(t, state.MessageEcho, d.Message)

	_, err = NewDirective("-q", "-rf", "-init_state", 1)
	assert.ErrorIs(t, err, state.ErrIllegalMessage)

	_, err = NewDirective("-q", "", "-create_state", 1)
	assert.ErrorIs(t, err, ErrIncompleteDirective)

	_, err = NewDirective("-zz", "-rf", "-create_state", 1)
	assert.ErrorIs(t, err, state.ErrUnknownToken)

	_, err = NewDirective("-q", "-rf", "-create_state", -1)
	assert.Error(t, err)
}

func TestRandomFieldsKeepWidths(t *testing.T) {
	e := testEngine(1)
	c := testCarried(t)

	for _, msg := range state.Messages {
		t.Run(msg.String(), func(t *testing.T) {
			skeleton, err := e.Skeleton(msg, c)
			require.NoError(t, err)

			body, err := e.Build(msg, RandomFields, c)
			require.NoError(t, err)
			assert.Equal(t, msg.Command(), body.Command())

			fields := body.Fields()
			require.Len(t, fields, len(skeleton.Fields()))
			for _, f := range fields {
				if f.Fixed() {
					assert.Len(t, f.Value, f.Width, f.Name)
				} else {
					assert.Less(t, len(f.Value), e.RandomCap, f.Name)
				}
			}
			assert.Equal(t, types.MarshalFields(fields), body.Marshal())
		})
	}
}

func TestCompletelyRandomIgnoresWidths(t *testing.T) {
	e := testEngine(2)
	e.RandomCap = 10000

	body, err := e.Build(state.MessageCreate, CompletelyRandom, state.Carried{})
	require.NoError(t, err)

	mismatched := 0
	for _, f := range body.Fields() {
		assert.Less(t, len(f.Value), e.RandomCap)
		if f.Fixed() && len(f.Value) != f.Width {
			mismatched++
		}
	}
	assert.Positive(t, mismatched)
}

func TestScrambleFieldsZeroLength(t *testing.T) {
	fields := []types.Field{{Name: "StructureSize", Width: 2, Value: []byte{4, 0}}}
	out := ScrambleFields(rand.New(rand.NewSource(3)), fields, 1)
	require.Len(t, out, 1)
	assert.Empty(t, out[0].Value)
	assert.Equal(t, "StructureSize", out[0].Name)
}

// Predefined output must describe itself correctly: every count, length
// and offset matches the serialized buffer.
func TestPredefinedIsConsistent(t *testing.T) {
	c := testCarried(t)

	for seed := int64(1); seed <= 50; seed++ {
		e := testEngine(seed)

		body, err := e.Build(state.MessageNegotiate, Predefined, c)
		require.NoError(t, err)
		var neg types.NegotiateRequest
		require.NoError(t, neg.Unmarshal(body.Marshal()), "seed %d", seed)
		assert.Equal(t, int(neg.DialectCount), len(neg.Dialects))
		orig := body.(*types.NegotiateRequest)
		require.Len(t, neg.NegotiateContexts, len(orig.NegotiateContexts))
		for i := range orig.NegotiateContexts {
			assert.Equal(t, orig.NegotiateContexts[i].Data(), neg.NegotiateContexts[i].Data())
		}
		if neg.NegotiateContextCount > 0 {
			assert.Zero(t, neg.NegotiateContextOffset%8)
			assert.Equal(t, uint32(64+36+2*len(neg.Dialects)+len(neg.Padding)), neg.NegotiateContextOffset)
		}

		for _, msg := range []state.Message{state.MessageSessionSetupNegotiate, state.MessageSessionSetupAuthenticate} {
			body, err = e.Build(msg, Predefined, c)
			require.NoError(t, err)
			var ss types.SessionSetupRequest
			require.NoError(t, ss.Unmarshal(body.Marshal()))
			assert.Equal(t, uint16(0x58), ss.SecurityBufferOffset)
			assert.Equal(t, int(ss.SecurityBufferLength), len(ss.SecurityBuffer))
		}

		body, err = e.Build(state.MessageTreeConnect, Predefined, c)
		require.NoError(t, err)
		var tree types.TreeConnectRequest
		require.NoError(t, tree.Unmarshal(body.Marshal()))
		assert.Equal(t, uint16(0x48), tree.PathOffset)
		assert.Equal(t, int(tree.PathLength), len(tree.Path))

		body, err = e.Build(state.MessageCreate, Predefined, c)
		require.NoError(t, err)
		var create types.CreateRequest
		require.NoError(t, create.Unmarshal(body.Marshal()))
		assert.Equal(t, uint16(0x78), create.NameOffset)
		assert.Equal(t, int(create.NameLength)+2, len(create.Buffer))

		body, err = e.Build(state.MessageQueryInfo, Predefined, c)
		require.NoError(t, err)
		var query types.QueryInfoRequest
		require.NoError(t, query.Unmarshal(body.Marshal()))
		assert.Equal(t, testFileID, query.FileID)
		assert.Contains(t, types.InfoClasses[query.InfoType], query.FileInfoClass)

		body, err = e.Build(state.MessageClose, Predefined, c)
		require.NoError(t, err)
		var cl types.CloseRequest
		require.NoError(t, cl.Unmarshal(body.Marshal()))
		assert.Equal(t, testFileID, cl.FileID)
	}
}

func TestPredefinedIsReproducible(t *testing.T) {
	c := testCarried(t)
	a, err := testEngine(9).Build(state.MessageCreate, Predefined, c)
	require.NoError(t, err)
	b, err := testEngine(9).Build(state.MessageCreate, Predefined, c)
	require.NoError(t, err)
	assert.Equal(t, a.Marshal(), b.Marshal())
}

func TestSessionSetupAuthenticateNeedsChallenge(t *testing.T) {
	e := testEngine(4)
	for _, s := range []Strategy{Predefined, RandomFields, CompletelyRandom} {
		_, err := e.Build(state.MessageSessionSetupAuthenticate, s, state.Carried{})
		assert.ErrorIs(t, err, state.ErrNoChallenge, s.String())
	}
}

func TestEchoPredefinedIsDefault(t *testing.T) {
	body, err := testEngine(5).Build(state.MessageEcho, Predefined, state.Carried{})
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 0, 0, 0}, body.Marshal())
}
