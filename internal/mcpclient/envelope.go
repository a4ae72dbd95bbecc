// Package mcpclient implements a generic MCP client over JSON-RPC 2.0 HTTP:
// response envelope parsing (plain JSON or single-line SSE framing), result
// unwrapping, a TTL-cached tool registry, and a tool invoker.
package mcpclient

import (
	"encoding/json"
	"fmt"
	"strings"
)

// sseEventPrefix marks an SSE-framed response body. The upstream server emits
// single-event, single-line payloads only, so no multi-line reassembly is
// attempted.
const sseEventPrefix = "event: message"

// Envelope is a parsed JSON-RPC 2.0 response envelope. Exactly one of Result
// or Error is populated on a conforming response; Unwrap treats the absence
// of both as a protocol violation.
type Envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error member of a JSON-RPC envelope.
type RPCError struct {
	Code    int             `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ParseEnvelope extracts the JSON-RPC envelope from a raw HTTP response body.
// SSE-framed bodies are detected by the literal "event: message" prefix; the
// payload is everything after the first "data:" marker. Any JSON syntax
// failure returns a *Error of KindParse carrying the offending fragment.
func ParseEnvelope(body []byte) (*Envelope, error) {
	raw := string(body)

	if strings.HasPrefix(raw, sseEventPrefix) {
		_, data, found := strings.Cut(raw, "data:")
		if !found {
			return nil, &Error{
				Kind:     KindParse,
				Stage:    "sse",
				Fragment: raw,
				Message:  fmt.Sprintf("SSE response has no 'data:' line. Raw data: '%s'", raw),
			}
		}
		fragment := strings.TrimSpace(data)
		var env Envelope
		if err := json.Unmarshal([]byte(fragment), &env); err != nil {
			return nil, &Error{
				Kind:     KindParse,
				Stage:    "sse",
				Fragment: fragment,
				Err:      err,
				Message:  fmt.Sprintf("JSON decoding error of SSE data payload: %v. Raw data: '%s'", err, fragment),
			}
		}
		return &env, nil
	}

	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &Error{
			Kind:     KindParse,
			Stage:    "direct",
			Fragment: raw,
			Err:      err,
			Message:  fmt.Sprintf("JSON decoding error of direct response: %v. Raw response: '%s'", err, raw),
		}
	}
	return &env, nil
}
