package state

// legal maps each state to the requests that may be fuzzed there. Echo is
// legal everywhere and is not listed.
var legal = map[State][]Message{
	Initial:                  {MessageNegotiate},
	Negotiate:                {MessageSessionSetupNegotiate},
	SessionSetupNegotiate:    {MessageSessionSetupAuthenticate},
	SessionSetupAuthenticate: {MessageTreeConnect},
	TreeConnect:              {MessageCreate},
	Create:                   {MessageQueryInfo, MessageClose},
	Close:                    {MessageCreate},
}

// IsLegal reports whether msg may be fuzzed in state s
func IsLegal(msg Message, s State) bool {
	if msg == MessageEcho {
		_, known := legal[s]
		return known
	}
	for _, m := range legal[s] {
		if m == msg {
			return true
		}
	}
	return false
}

// LegalMessages returns the messages that may be fuzzed in state s
func LegalMessages(s State) []Message {
	if _, ok := legal[s]; !ok {
		return nil
	}
	return append(append([]Message(nil), legal[s]...), MessageEcho)
}

// Validate returns a *ValidationError for an illegal pair
func Validate(msg Message, s State) error {
	if !IsLegal(msg, s) {
		return &ValidationError{Message: msg, State: s}
	}
	return nil
}
