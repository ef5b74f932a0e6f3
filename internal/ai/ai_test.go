package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIComplete_RequestShape(t *testing.T) {
	var gotAuth string
	var gotBody openAIChatReq

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "hi there"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL)
	reply, err := c.Complete(context.Background(), Request{
		APIKey: "sk-test",
		Model:  "gpt-4o",
		System: "be brief",
		Messages: []Message{
			{Role: "user", Content: "hello"},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "hi there" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if gotAuth != "Bearer sk-test" {
		t.Fatalf("unexpected auth header: %q", gotAuth)
	}
	if gotBody.Model != "gpt-4o" {
		t.Fatalf("unexpected model: %q", gotBody.Model)
	}
	if gotBody.Temperature != 0.7 || gotBody.MaxTokens != 1000 {
		t.Fatalf("unexpected sampling params: temp=%v max=%d", gotBody.Temperature, gotBody.MaxTokens)
	}
	if len(gotBody.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(gotBody.Messages))
	}
	if gotBody.Messages[0].Role != "system" || gotBody.Messages[0].Content != "be brief" {
		t.Fatalf("expected system message first, got %+v", gotBody.Messages[0])
	}
	if gotBody.Messages[1].Role != "user" || gotBody.Messages[1].Content != "hello" {
		t.Fatalf("unexpected user message: %+v", gotBody.Messages[1])
	}
}

func TestOpenAIComplete_ToolTurns(t *testing.T) {
	var gotBody openAIChatReq

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": "done"}},
			},
		})
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL)
	_, err := c.Complete(context.Background(), Request{
		APIKey: "sk-test",
		Model:  "gpt-4o",
		Messages: []Message{
			{Role: "user", Content: "read my mail"},
			{
				Role:       "assistant",
				ToolCallID: "call_1",
				ToolName:   "gmail_search",
				ToolInput:  json.RawMessage(`{"query":"unread"}`),
			},
			{
				Role:       "tool",
				ToolCallID: "call_1",
				ToolOutput: json.RawMessage(`{"count":3}`),
			},
		},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if len(gotBody.Messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(gotBody.Messages))
	}
	asst := gotBody.Messages[1]
	if len(asst.ToolCalls) != 1 {
		t.Fatalf("expected 1 tool call, got %d", len(asst.ToolCalls))
	}
	if asst.ToolCalls[0].ID != "call_1" || asst.ToolCalls[0].Function.Name != "gmail_search" {
		t.Fatalf("unexpected tool call: %+v", asst.ToolCalls[0])
	}
	if asst.ToolCalls[0].Function.Arguments != `{"query":"unread"}` {
		t.Fatalf("unexpected arguments: %q", asst.ToolCalls[0].Function.Arguments)
	}
	tool := gotBody.Messages[2]
	if tool.Role != "tool" || tool.ToolCallID != "call_1" || tool.Content != `{"count":3}` {
		t.Fatalf("unexpected tool message: %+v", tool)
	}
}

func TestOpenAIComplete_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid api key"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewOpenAIClient(srv.URL)
	_, err := c.Complete(context.Background(), Request{APIKey: "bad", Model: "gpt-4o"})
	if err == nil {
		t.Fatalf("expected error for 401 response")
	}
}

func TestAnthropicComplete_RequestShape(t *testing.T) {
	var gotKey, gotVersion string
	var gotBody anthropicChatReq

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotVersion = r.Header.Get("anthropic-version")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"content": []map[string]any{
				{"type": "text", "text": "hello "},
				{"type": "text", "text": "back"},
			},
		})
	}))
	defer srv.Close()

	c := NewAnthropicClient(srv.URL)
	reply, err := c.Complete(context.Background(), Request{
		APIKey: "sk-ant-test",
		Model:  "claude-3-opus",
		System: "be helpful",
		Messages: []Message{
			{Role: "user", Content: "hi"},
			{Role: "assistant", ToolCallID: "call_1", ToolName: "web_search", ToolInput: json.RawMessage(`{}`)},
			{Role: "tool", ToolCallID: "call_1", ToolOutput: json.RawMessage(`{}`)},
			{Role: "assistant", Content: "hello"},
		},
		Temperature: 0.7,
		MaxTokens:   1000,
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if reply != "hello back" {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if gotKey != "sk-ant-test" {
		t.Fatalf("unexpected api key header: %q", gotKey)
	}
	if gotVersion != anthropicVersion {
		t.Fatalf("unexpected version header: %q", gotVersion)
	}
	if gotBody.System != "be helpful" {
		t.Fatalf("expected top-level system, got %q", gotBody.System)
	}
	// Tool turns are not sent to the messages API.
	if len(gotBody.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d: %+v", len(gotBody.Messages), gotBody.Messages)
	}
	if gotBody.Messages[0].Role != "user" || gotBody.Messages[1].Role != "assistant" {
		t.Fatalf("unexpected roles: %+v", gotBody.Messages)
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		kind Kind
		ok   bool
	}{
		{"openai", KindOpenAI, true},
		{"OpenAI", KindOpenAI, true},
		{" anthropic ", KindAnthropic, true},
		{"cohere", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		kind, ok := ParseKind(c.in)
		if ok != c.ok || (ok && kind != c.kind) {
			t.Fatalf("ParseKind(%q) = %v, %v", c.in, kind, ok)
		}
	}
}

func TestRegistryReusesClients(t *testing.T) {
	reg := NewRegistry()
	a := reg.Client(KindOpenAI)
	b := reg.Client(KindOpenAI)
	if a == nil || a != b {
		t.Fatalf("expected the same client handle on repeat lookups")
	}
	if reg.Client(Kind(99)) != nil {
		t.Fatalf("expected nil for unknown kind")
	}
}
