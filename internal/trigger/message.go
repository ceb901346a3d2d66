package trigger

// Message is one incoming chat message.
type Message struct {
	// Text is the message content.
	Text string
	// Author identifies the sender, if known.
	Author string
	// Source names where the message came from, e.g. "stdin" or "webhook".
	Source string
}

// ReplyKind says how a message was acknowledged.
type ReplyKind uint8

const (
	// ReplyNone means the message was ignored.
	ReplyNone ReplyKind = iota
	// ReplyOK means the command or playback succeeded.
	ReplyOK
	// ReplyFailed means the command or playback failed.
	ReplyFailed
)

// String returns the kind name.
func (k ReplyKind) String() string {
	switch k {
	case ReplyOK:
		return "ok"
	case ReplyFailed:
		return "failed"
	default:
		return "none"
	}
}

// Reply is the acknowledgement of a Message.
type Reply struct {
	Kind ReplyKind
	// Text is a human-readable response, possibly empty.
	Text string
	// Action is the macro played, if any.
	Action string
	// RunID identifies the playback, if any.
	RunID string
}

func ok(text string) Reply {
	return Reply{Kind: ReplyOK, Text: text}
}

func failed(text string) Reply {
	return Reply{Kind: ReplyFailed, Text: text}
}
