package state

import "fmt"

var messageTokens = map[string]Message{
	"-n": MessageNegotiate, "--negotiate": MessageNegotiate,
	"-sn": MessageSessionSetupNegotiate, "--session_setup_neg": MessageSessionSetupNegotiate,
	"-sa": MessageSessionSetupAuthenticate, "--session_setup_auth": MessageSessionSetupAuthenticate,
	"-t": MessageTreeConnect, "--tree_connect": MessageTreeConnect,
	"-cr": MessageCreate, "--create": MessageCreate,
	"-q": MessageQueryInfo, "--query_info": MessageQueryInfo,
	"-cl": MessageClose, "--close": MessageClose,
	"-e": MessageEcho, "--echo": MessageEcho,
}

var stateTokens = map[string]State{
	"-init_state":               Initial,
	"-neg_state":                Negotiate,
	"-session_setup_neg_state":  SessionSetupNegotiate,
	"-session_setup_auth_state": SessionSetupAuthenticate,
	"-tree_state":               TreeConnect,
	"-create_state":             Create,
	"-close_state":              Close,
}

// ParseMessage maps a message selector such as -cr or --create
func ParseMessage(token string) (Message, error) {
	if m, ok := messageTokens[token]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("%w: message %q", ErrUnknownToken, token)
}

// ParseState maps a state selector such as -create_state
func ParseState(token string) (State, error) {
	if s, ok := stateTokens[token]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("%w: state %q", ErrUnknownToken, token)
}
