package mcpclient

// ErrorKind classifies a client failure so callers can branch on the cause
// without matching message text.
type ErrorKind int

const (
	// KindTransport covers DNS, connect, timeout, and non-2xx HTTP failures.
	KindTransport ErrorKind = iota
	// KindParse covers malformed SSE framing and invalid JSON at the
	// envelope or nested-content layer.
	KindParse
	// KindProtocolViolation covers well-formed JSON that breaks the JSON-RPC
	// contract (neither result nor error, or a discovery response without a
	// tools list).
	KindProtocolViolation
	// KindApplication covers JSON-RPC error objects returned intentionally
	// by the remote tool.
	KindApplication
)

// String returns the kind name for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindParse:
		return "parse"
	case KindProtocolViolation:
		return "protocol_violation"
	case KindApplication:
		return "application"
	default:
		return "unknown"
	}
}

// Error is the single failure type returned by the client. Every transport,
// parse, protocol, and application failure is converted to an *Error at the
// client boundary; nothing else escapes to callers.
type Error struct {
	Kind     ErrorKind
	Message  string
	Stage    string // parse stage: "sse", "direct", or "nested"
	Fragment string // offending raw input, kept for diagnosis
	Err      error  // underlying cause, if any
}

func (e *Error) Error() string { return e.Message }

// Unwrap exposes the underlying cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a client *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == kind
}
