package mcpclient

import (
	"strings"
	"testing"
)

func TestParseEnvelope_SSE(t *testing.T) {
	body := "event: message\ndata: {\"jsonrpc\":\"2.0\",\"id\":\"1\",\"result\":{}}"

	env, err := ParseEnvelope([]byte(body))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if env.JSONRPC != "2.0" {
		t.Errorf("Expected jsonrpc 2.0, got %q", env.JSONRPC)
	}
	if string(env.Result) != "{}" {
		t.Errorf("Expected result {}, got %q", string(env.Result))
	}
	if env.Error != nil {
		t.Errorf("Expected no error member, got %+v", env.Error)
	}
}

func TestParseEnvelope_DirectJSON(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":"1","result":{"ok":true}}`

	env, err := ParseEnvelope([]byte(body))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(env.Result) != `{"ok":true}` {
		t.Errorf("Unexpected result: %q", string(env.Result))
	}
}

func TestParseEnvelope_DirectError(t *testing.T) {
	body := `{"jsonrpc":"2.0","id":"1","error":{"message":"boom"}}`

	env, err := ParseEnvelope([]byte(body))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if env.Error == nil || env.Error.Message != "boom" {
		t.Fatalf("Expected error member with message boom, got %+v", env.Error)
	}
}

func TestParseEnvelope_MalformedSSEData(t *testing.T) {
	truncated := `{"jsonrpc":"2.0","id":"1","resu`
	body := "event: message\ndata: " + truncated

	_, err := ParseEnvelope([]byte(body))
	if err == nil {
		t.Fatal("Expected parse error for truncated SSE data")
	}
	ce, ok := err.(*Error)
	if !ok {
		t.Fatalf("Expected *Error, got %T", err)
	}
	if ce.Kind != KindParse {
		t.Errorf("Expected KindParse, got %v", ce.Kind)
	}
	if ce.Stage != "sse" {
		t.Errorf("Expected stage sse, got %q", ce.Stage)
	}
	if ce.Fragment != truncated {
		t.Errorf("Expected fragment %q, got %q", truncated, ce.Fragment)
	}
	if !strings.Contains(ce.Message, truncated) {
		t.Errorf("Message should embed the truncated fragment, got %q", ce.Message)
	}
}

func TestParseEnvelope_MalformedDirect(t *testing.T) {
	body := `{"not json`

	_, err := ParseEnvelope([]byte(body))
	if err == nil {
		t.Fatal("Expected parse error for malformed direct body")
	}
	ce := err.(*Error)
	if ce.Kind != KindParse || ce.Stage != "direct" {
		t.Errorf("Expected direct parse error, got kind=%v stage=%q", ce.Kind, ce.Stage)
	}
	if !strings.Contains(ce.Message, body) {
		t.Errorf("Message should embed the raw body, got %q", ce.Message)
	}
}

func TestParseEnvelope_SSEMissingDataLine(t *testing.T) {
	body := "event: message\nid: 42"

	_, err := ParseEnvelope([]byte(body))
	if err == nil {
		t.Fatal("Expected parse error for SSE body without data line")
	}
	ce := err.(*Error)
	if ce.Kind != KindParse || ce.Stage != "sse" {
		t.Errorf("Expected sse parse error, got kind=%v stage=%q", ce.Kind, ce.Stage)
	}
}

func TestParseEnvelope_SSETrailingNewlines(t *testing.T) {
	// SSE events terminate with a blank line; the fragment is trimmed.
	body := "event: message\ndata: {\"jsonrpc\":\"2.0\",\"id\":\"1\",\"result\":{\"a\":1}}\n\n"

	env, err := ParseEnvelope([]byte(body))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if string(env.Result) != `{"a":1}` {
		t.Errorf("Unexpected result: %q", string(env.Result))
	}
}
