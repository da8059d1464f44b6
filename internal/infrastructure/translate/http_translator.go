// Package translate turns natural-language input into candidate shell
// commands via an HTTP text-generation service.
package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/llmsh/llmsh/internal/domain"
	"github.com/llmsh/llmsh/internal/ports"
)

// HTTPTranslator speaks to one provider endpoint. The adapter carries the
// per-provider wire differences; everything else is shared.
type HTTPTranslator struct {
	settings   domain.TranslatorSettings
	httpClient *http.Client
	adapter    providerAdapter
}

type providerAdapter struct {
	buildRequest  func(domain.TranslatorSettings, string, string) ([]byte, error)
	parseResponse func([]byte) (string, error)
	setHeaders    func(*http.Request, domain.TranslatorSettings) error
}

// New builds a translator for the configured provider. Unknown providers
// fall back to the openai-compatible chat wire format.
func New(settings domain.TranslatorSettings, client *http.Client) *HTTPTranslator {
	if client == nil {
		client = http.DefaultClient
	}
	var adapter providerAdapter
	switch strings.ToLower(settings.Provider) {
	case "anthropic":
		adapter = anthropicAdapter()
	case "ollama":
		adapter = ollamaAdapter()
	default:
		adapter = openaiAdapter()
	}
	return &HTTPTranslator{settings: settings, httpClient: client, adapter: adapter}
}

// Name implements ports.Translator.
func (t *HTTPTranslator) Name() string { return t.settings.Provider }

// Translate implements ports.Translator. Every failure mode is reported as
// *domain.TranslationError so callers need one errors.As branch.
func (t *HTTPTranslator) Translate(ctx context.Context, input string, snapshot domain.ContextSnapshot) (string, error) {
	system := renderSystemPrompt(snapshot)
	user := renderUserPrompt(input, snapshot)

	body, err := t.adapter.buildRequest(t.settings, system, user)
	if err != nil {
		return "", t.fail(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.settings.Endpoint, bytes.NewReader(body))
	if err != nil {
		return "", t.fail(err)
	}
	req.Header.Set("content-type", "application/json")
	if err := t.adapter.setHeaders(req, t.settings); err != nil {
		return "", t.fail(err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", t.fail(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", t.fail(fmt.Errorf("unexpected status %s", resp.Status))
	}

	var responseBody bytes.Buffer
	if _, err := responseBody.ReadFrom(resp.Body); err != nil {
		return "", t.fail(err)
	}
	content, err := t.adapter.parseResponse(responseBody.Bytes())
	if err != nil {
		return "", t.fail(err)
	}

	command := ExtractCommand(content)
	if command == "" {
		return "", t.fail(fmt.Errorf("empty reply"))
	}
	return command, nil
}

func (t *HTTPTranslator) fail(err error) error {
	return &domain.TranslationError{Provider: t.settings.Provider, Err: err}
}

func anthropicAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildAnthropicRequest,
		parseResponse: parseAnthropicResponse,
		setHeaders:    setAnthropicHeaders,
	}
}

func openaiAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    setOpenAIHeaders,
	}
}

func ollamaAdapter() providerAdapter {
	return providerAdapter{
		buildRequest:  buildChatCompletionRequest,
		parseResponse: parseChatCompletionResponse,
		setHeaders:    func(*http.Request, domain.TranslatorSettings) error { return nil },
	}
}

func buildAnthropicRequest(settings domain.TranslatorSettings, system, user string) ([]byte, error) {
	request := map[string]interface{}{
		"model":      settings.ModelID,
		"max_tokens": defaultInt(settings.MaxTokens, 512),
		"system":     system,
		"messages": []map[string]interface{}{
			{
				"role": "user",
				"content": []map[string]string{
					{"type": "text", "text": user},
				},
			},
		},
	}
	return json.Marshal(request)
}

func parseAnthropicResponse(body []byte) (string, error) {
	var response struct {
		Content []struct {
			Text string `json:"text"`
		} `json:"content"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Content) == 0 {
		return "", nil
	}
	return response.Content[0].Text, nil
}

func setAnthropicHeaders(req *http.Request, settings domain.TranslatorSettings) error {
	apiKey := getEnv(settings.AuthEnvVar, "ANTHROPIC_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s or ANTHROPIC_API_KEY", settings.AuthEnvVar)
	}
	req.Header.Set("x-api-key", apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	return nil
}

func buildChatCompletionRequest(settings domain.TranslatorSettings, system, user string) ([]byte, error) {
	request := map[string]interface{}{
		"model": settings.ModelID,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}
	if settings.MaxTokens > 0 {
		request["max_tokens"] = settings.MaxTokens
	}
	return json.Marshal(request)
}

func parseChatCompletionResponse(body []byte) (string, error) {
	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		return "", err
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func setOpenAIHeaders(req *http.Request, settings domain.TranslatorSettings) error {
	apiKey := getEnv(settings.AuthEnvVar, "OPENAI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("missing API key: set %s or OPENAI_API_KEY", settings.AuthEnvVar)
	}
	req.Header.Set("authorization", "Bearer "+apiKey)
	return nil
}

// ExtractCommand pulls the shell command out of a model reply: a fenced code
// block wins, then a "command:" line, then the trimmed reply itself.
func ExtractCommand(content string) string {
	if code := extractCodeBlock(content); code != "" {
		return code
	}
	if cmd := extractCommandLine(content); cmd != "" {
		return cmd
	}
	return strings.TrimSpace(content)
}

func extractCodeBlock(content string) string {
	start := strings.Index(content, "```")
	if start == -1 {
		return ""
	}
	suffix := content[start+3:]
	end := strings.Index(suffix, "```")
	if end == -1 {
		return ""
	}
	block := suffix[:end]
	lines := strings.Split(block, "\n")
	if len(lines) > 0 && isLanguageTag(lines[0]) {
		lines = lines[1:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

func isLanguageTag(line string) bool {
	switch strings.TrimSpace(line) {
	case "sh", "shell", "bash", "zsh":
		return true
	}
	return false
}

func extractCommandLine(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(line), "command:") {
			return strings.TrimSpace(line[len("command:"):])
		}
	}
	return ""
}

func getEnv(primary, fallback string) string {
	if primary != "" {
		if value := os.Getenv(primary); value != "" {
			return value
		}
	}
	if fallback != "" {
		return os.Getenv(fallback)
	}
	return ""
}

func defaultInt(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

var _ ports.Translator = (*HTTPTranslator)(nil)
