// Package state drives a server through the SMB2 handshake up to the state
// a fuzzed message is sent in. Every attempt replays the handshake on a
// fresh connection; nothing survives between connections.
package state

import (
	"fmt"

	"github.com/mellowCS/SMB-Fuzzer/pkg/smb/types"
)

// State is a position in the handshake
type State int

const (
	Initial State = iota
	Negotiate
	SessionSetupNegotiate
	SessionSetupAuthenticate
	TreeConnect
	Create
	Close
)

// States lists every state in handshake order
var States = []State{
	Initial, Negotiate, SessionSetupNegotiate, SessionSetupAuthenticate, TreeConnect, Create, Close,
}

func (s State) String() string {
	switch s {
	case Initial:
		return "Initial"
	case Negotiate:
		return "Negotiate"
	case SessionSetupNegotiate:
		return "SessionSetupNegotiate"
	case SessionSetupAuthenticate:
		return "SessionSetupAuthenticate"
	case TreeConnect:
		return "TreeConnect"
	case Create:
		return "Create"
	case Close:
		return "Close"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Message is a request type the fuzzer can send
type Message int

const (
	MessageNegotiate Message = iota
	MessageSessionSetupNegotiate
	MessageSessionSetupAuthenticate
	MessageTreeConnect
	MessageCreate
	MessageQueryInfo
	MessageClose
	MessageEcho
)

// Messages lists every message type
var Messages = []Message{
	MessageNegotiate, MessageSessionSetupNegotiate, MessageSessionSetupAuthenticate,
	MessageTreeConnect, MessageCreate, MessageQueryInfo, MessageClose, MessageEcho,
}

func (m Message) String() string {
	switch m {
	case MessageNegotiate:
		return "Negotiate"
	case MessageSessionSetupNegotiate:
		return "SessionSetupNegotiate"
	case MessageSessionSetupAuthenticate:
		return "SessionSetupAuthenticate"
	case MessageTreeConnect:
		return "TreeConnect"
	case MessageCreate:
		return "Create"
	case MessageQueryInfo:
		return "QueryInfo"
	case MessageClose:
		return "Close"
	case MessageEcho:
		return "Echo"
	default:
		return fmt.Sprintf("Message(%d)", int(m))
	}
}

// Command returns the SMB2 command the message is sent as
func (m Message) Command() types.Command {
	switch m {
	case MessageNegotiate:
		return types.CommandNegotiate
	case MessageSessionSetupNegotiate, MessageSessionSetupAuthenticate:
		return types.CommandSessionSetup
	case MessageTreeConnect:
		return types.CommandTreeConnect
	case MessageCreate:
		return types.CommandCreate
	case MessageQueryInfo:
		return types.CommandQueryInfo
	case MessageClose:
		return types.CommandClose
	default:
		return types.CommandEcho
	}
}

var headerDefaults = map[Message]types.HeaderDefaults{
	MessageNegotiate:                {CreditCharge: 0, CreditRequest: 0, MessageID: 0},
	MessageSessionSetupNegotiate:    {CreditCharge: 1, CreditRequest: 8192, MessageID: 1},
	MessageSessionSetupAuthenticate: {CreditCharge: 1, CreditRequest: 8192, MessageID: 2},
	MessageTreeConnect:              {CreditCharge: 1, CreditRequest: 8064, MessageID: 3},
	MessageCreate:                   {CreditCharge: 1, CreditRequest: 7968, MessageID: 4},
	MessageQueryInfo:                {CreditCharge: 1, CreditRequest: 7936, MessageID: 5},
	MessageEcho:                     {CreditCharge: 1, CreditRequest: 7968, MessageID: 6},
	MessageClose:                    {CreditCharge: 1, CreditRequest: 7872, MessageID: 7},
}

// Header builds the request header for m with the carried identifiers
func (m Message) Header(c Carried) *types.Header {
	return types.NewRequestHeader(m.Command(), headerDefaults[m], c.TreeID, c.SessionID)
}
