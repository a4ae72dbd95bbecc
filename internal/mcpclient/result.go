package mcpclient

import (
	"encoding/json"
	"fmt"
)

// missingResultMsg is the exact protocol-violation message for an envelope
// carrying neither result nor error.
const missingResultMsg = "Unexpected JSON-RPC response format from MCP server (missing 'result' or 'error' key)."

// Unwrap converts a parsed envelope into the tool's logical result.
//
// A JSON-RPC error member becomes a KindApplication failure. A missing result
// becomes a KindProtocolViolation failure. When the result is a content block
// whose first element is typed "text", the text is treated as a JSON-encoded
// string and decoded one level — exactly one; deeper nesting is a documented
// contract boundary, not handled here. Any other result is returned as-is.
func Unwrap(env *Envelope) (any, error) {
	if env.Error != nil {
		msg := env.Error.Message
		if msg == "" {
			msg = "Unknown error"
		}
		return nil, &Error{
			Kind:    KindApplication,
			Message: fmt.Sprintf("MCP server JSON-RPC error: %s", msg),
		}
	}

	if len(env.Result) == 0 {
		return nil, &Error{
			Kind:    KindProtocolViolation,
			Message: missingResultMsg,
		}
	}

	var result any
	if err := json.Unmarshal(env.Result, &result); err != nil {
		// Result came from a decoded envelope, so this only fires on a raw
		// message injected by hand.
		return nil, &Error{
			Kind:     KindParse,
			Stage:    "direct",
			Fragment: string(env.Result),
			Err:      err,
			Message:  fmt.Sprintf("JSON decoding error of direct response: %v. Raw response: '%s'", err, string(env.Result)),
		}
	}

	if text, ok := nestedText(result); ok {
		var nested any
		if err := json.Unmarshal([]byte(text), &nested); err != nil {
			return nil, &Error{
				Kind:     KindParse,
				Stage:    "nested",
				Fragment: text,
				Err:      err,
				Message:  fmt.Sprintf("JSON decoding error of nested content: %v. Raw nested text: '%s'", err, text),
			}
		}
		return nested, nil
	}

	return result, nil
}

// nestedText returns the JSON-encoded string nested in result.content[0].text
// when the result follows the MCP text-content convention.
func nestedText(result any) (string, bool) {
	m, ok := result.(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := m["content"].([]any)
	if !ok || len(content) == 0 {
		return "", false
	}
	block, ok := content[0].(map[string]any)
	if !ok {
		return "", false
	}
	if t, _ := block["type"].(string); t != "text" {
		return "", false
	}
	text, ok := block["text"].(string)
	return text, ok
}
