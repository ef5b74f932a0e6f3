package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type OpenAIClient struct {
	BaseURL string
	Client  *http.Client
}

type openAIMsg struct {
	Role       string           `json:"role"`
	Content    string           `json:"content,omitempty"`
	ToolCalls  []openAIToolCall `json:"tool_calls,omitempty"`
	ToolCallID string           `json:"tool_call_id,omitempty"`
}

type openAIToolCall struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Function openAIFunc `json:"function"`
}

type openAIFunc struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type openAIChatReq struct {
	Model       string      `json:"model"`
	Messages    []openAIMsg `json:"messages"`
	Temperature float64     `json:"temperature"`
	MaxTokens   int         `json:"max_tokens"`
}

type openAIChatResp struct {
	Choices []struct {
		Message openAIMsg `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func NewOpenAIClient(baseURL string) *OpenAIClient {
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	return &OpenAIClient{
		BaseURL: baseURL,
		Client:  &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, r Request) (string, error) {
	if c.Client == nil {
		return "", errors.New("openai: http client is nil")
	}
	if strings.TrimSpace(r.APIKey) == "" {
		return "", errors.New("openai: api key is required")
	}
	model := strings.TrimSpace(r.Model)
	if model == "" {
		return "", errors.New("openai: model is required")
	}

	msgs := make([]openAIMsg, 0, len(r.Messages)+1)
	if r.System != "" {
		msgs = append(msgs, openAIMsg{Role: "system", Content: r.System})
	}
	for _, m := range r.Messages {
		msgs = append(msgs, shapeOpenAIMsg(m))
	}

	b, err := json.Marshal(openAIChatReq{
		Model:       model,
		Messages:    msgs,
		Temperature: r.Temperature,
		MaxTokens:   r.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/chat/completions", strings.TrimRight(c.BaseURL, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.APIKey)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = fmt.Sprintf("status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("openai: %s", msg)
	}

	var decoded openAIChatResp
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if decoded.Error != nil && decoded.Error.Message != "" {
		return "", errors.New(decoded.Error.Message)
	}
	if len(decoded.Choices) == 0 {
		return "", errors.New("openai: empty response")
	}
	return decoded.Choices[0].Message.Content, nil
}

// shapeOpenAIMsg maps a stored turn to the chat-completions wire format.
// Assistant turns that requested a tool become tool_calls entries; tool
// turns carry the result under tool_call_id.
func shapeOpenAIMsg(m Message) openAIMsg {
	switch {
	case m.Role == "assistant" && m.ToolName != "":
		args := "{}"
		if len(m.ToolInput) > 0 {
			args = string(m.ToolInput)
		}
		return openAIMsg{
			Role:    "assistant",
			Content: m.Content,
			ToolCalls: []openAIToolCall{{
				ID:   m.ToolCallID,
				Type: "function",
				Function: openAIFunc{
					Name:      m.ToolName,
					Arguments: args,
				},
			}},
		}
	case m.Role == "tool":
		return openAIMsg{
			Role:       "tool",
			Content:    string(m.ToolOutput),
			ToolCallID: m.ToolCallID,
		}
	default:
		return openAIMsg{Role: m.Role, Content: m.Content}
	}
}
