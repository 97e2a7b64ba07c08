package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Message is a single chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature"`
	Stream         bool            `json:"stream"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type chatDefaults struct {
	baseURL string
	model   string
	envKeys []string
}

var chatVendors = map[string]chatDefaults{
	ProviderDeepSeek: {"https://api.deepseek.com", "deepseek-chat", []string{"DEEPSEEK_API_KEY"}},
	ProviderOpenAI:   {"https://api.openai.com/v1", "gpt-4o-mini", []string{"OPENAI_API_KEY"}},
	ProviderKimi:     {"https://api.moonshot.cn/v1", "moonshot-v1-8k", []string{"MOONSHOT_API_KEY", "KIMI_API_KEY"}},
	ProviderDoubao:   {"https://ark.cn-beijing.volces.com/api/v3", "doubao-pro-32k", []string{"ARK_API_KEY", "DOUBAO_API_KEY"}},
}

// ChatProvider speaks the OpenAI-compatible chat/completions protocol shared by
// DeepSeek, OpenAI, Moonshot (Kimi) and Volcengine Ark (Doubao).
type ChatProvider struct {
	Name    string
	Model   string
	APIKey  string
	BaseURL string
	EnvKeys []string
	Client  *http.Client
}

var _ Provider = (*ChatProvider)(nil)

// NewChatProvider fills vendor defaults for name, then applies cfg.
func NewChatProvider(name string, cfg ProviderConfig) *ChatProvider {
	d := chatVendors[name]
	return &ChatProvider{
		Name:    name,
		Model:   firstNonEmpty(cfg.Model, d.model),
		APIKey:  cfg.APIKey,
		BaseURL: firstNonEmpty(cfg.BaseURL, d.baseURL),
		EnvKeys: d.envKeys,
	}
}

func (p *ChatProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := firstNonEmpty(p.APIKey, envKey(p.EnvKeys...))
	if apiKey == "" {
		return "", fmt.Errorf("%s: api key not configured", p.Name)
	}
	if p.BaseURL == "" {
		return "", fmt.Errorf("%s: base url not configured", p.Name)
	}

	model := p.Model
	if val, ok := options["model"].(string); ok && val != "" {
		model = val
	}

	reqBody := chatRequest{
		Model:       model,
		MaxTokens:   4096,
		Temperature: 0.2,
	}
	if systemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, Message{Role: "system", Content: systemPrompt})
	}
	reqBody.Messages = append(reqBody.Messages, Message{Role: "user", Content: prompt})
	if wantsJSON(options) {
		reqBody.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%s: marshal request: %w", p.Name, err)
	}

	url := strings.TrimRight(p.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("%s: create request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := p.Client
	if client == nil {
		client = defaultHTTPClient
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: api call: %w", p.Name, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", p.Name, err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: status=%d body=%s", p.Name, res.StatusCode, string(body))
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%s: unmarshal response: %w", p.Name, err)
	}
	if response.Error != nil {
		return "", fmt.Errorf("%s: %s", p.Name, response.Error.Message)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", p.Name)
	}
	return response.Choices[0].Message.Content, nil
}

func (p *ChatProvider) AdaptInstructions(raw string) string {
	return raw
}
