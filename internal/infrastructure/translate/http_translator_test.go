package translate

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/llmsh/llmsh/internal/domain"
)

func chatReply(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func TestTranslateParsesChatCompletionReply(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(chatReply("```sh\nls -la\n```"))
	}))
	defer server.Close()

	translator := New(domain.TranslatorSettings{
		Provider: "ollama",
		Endpoint: server.URL,
		ModelID:  "llama3",
	}, server.Client())

	command, err := translator.Translate(context.Background(), "list files", domain.ContextSnapshot{
		WorkingDir: "/work",
		Tags:       []string{"go"},
	})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if command != "ls -la" {
		t.Fatalf("unexpected command: %q", command)
	}
	if gotBody["model"] != "llama3" {
		t.Fatalf("model not forwarded: %v", gotBody)
	}
}

func TestTranslateAnthropicWireFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{{"type": "text", "text": "command: git status"}},
		})
	}))
	defer server.Close()

	t.Setenv("LLMSH_TEST_KEY", "test-key")
	translator := New(domain.TranslatorSettings{
		Provider:   "anthropic",
		Endpoint:   server.URL,
		ModelID:    "claude-3-5-sonnet-20240620",
		AuthEnvVar: "LLMSH_TEST_KEY",
	}, server.Client())

	command, err := translator.Translate(context.Background(), "show git state", domain.ContextSnapshot{})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if command != "git status" {
		t.Fatalf("unexpected command: %q", command)
	}
}

func TestTranslateServerErrorIsTranslationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	translator := New(domain.TranslatorSettings{Provider: "ollama", Endpoint: server.URL}, server.Client())

	_, err := translator.Translate(context.Background(), "anything", domain.ContextSnapshot{})
	var terr *domain.TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *domain.TranslationError, got %T", err)
	}
	if terr.Provider != "ollama" {
		t.Fatalf("provider not recorded: %+v", terr)
	}
}

func TestTranslateEmptyReplyIsTranslationError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(chatReply("   "))
	}))
	defer server.Close()

	translator := New(domain.TranslatorSettings{Provider: "ollama", Endpoint: server.URL}, server.Client())

	_, err := translator.Translate(context.Background(), "anything", domain.ContextSnapshot{})
	var terr *domain.TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *domain.TranslationError, got %v", err)
	}
}

func TestTranslateHonorsContextDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	translator := New(domain.TranslatorSettings{Provider: "ollama", Endpoint: server.URL}, server.Client())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := translator.Translate(ctx, "anything", domain.ContextSnapshot{})
	var terr *domain.TranslationError
	if !errors.As(err, &terr) {
		t.Fatalf("expected *domain.TranslationError, got %v", err)
	}
}

func TestExtractCommand(t *testing.T) {
	cases := []struct {
		name    string
		content string
		want    string
	}{
		{"fenced block", "Here you go:\n```sh\ndu -sh *\n```", "du -sh *"},
		{"fenced block without language", "```\ndf -h\n```", "df -h"},
		{"command line", "command: uptime", "uptime"},
		{"bare reply", "  whoami  ", "whoami"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractCommand(tc.content); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}
