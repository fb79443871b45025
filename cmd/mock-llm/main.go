// Package main implements a mock LLM server for local and e2e testing.
// It serves OpenAI-compatible /v1/chat/completions responses so the full
// pipeline can run fast, deterministically and offline.
//
// Usage:
//
//	mock-llm -port 11434 [-fixtures /path/to/dir]
//
// Without fixtures every call returns a built-in, well-formed slide-content
// JSON object. With -fixtures, JSON files named by model (e.g.
// "slide-writer.json") are returned verbatim for that model instead.
//
// Failure simulation is selected by model name so tests can exercise every
// gateway outcome:
//
//	mock-429     → HTTP 429 on every call
//	mock-500     → HTTP 500 on every call
//	mock-slow    → sleeps 60s before answering (forces client timeouts)
//	mock-garbage → returns prose that defeats both parse attempts
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"
)

const defaultSlideContent = `{
  "bullets": [
    "Summarize the core message",
    "Highlight the supporting evidence",
    "Quantify the expected impact",
    "Name the immediate next step"
  ],
  "key_message": "Mock content for offline pipeline runs",
  "subtitle": "Generated by mock-llm"
}`

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature *float64      `json:"temperature,omitempty"`
	MaxTokens   *int          `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Created int64        `json:"created"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type mockServer struct {
	fixtures map[string]string // model name → response content
	calls    atomic.Int64
}

func main() {
	fixtureDir := flag.String("fixtures", "", "optional directory of per-model JSON fixture files")
	port := flag.Int("port", 11434, "port to listen on")
	flag.Parse()

	if envDir := os.Getenv("MOCK_LLM_FIXTURES"); envDir != "" && *fixtureDir == "" {
		*fixtureDir = envDir
	}

	fixtures := map[string]string{}
	if *fixtureDir != "" {
		var err error
		fixtures, err = loadFixtures(*fixtureDir)
		if err != nil {
			log.Fatalf("Failed to load fixtures from %s: %v", *fixtureDir, err)
		}
		log.Printf("Loaded %d fixture model(s) from %s", len(fixtures), *fixtureDir)
	}

	s := &mockServer{fixtures: fixtures}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/v1/chat/completions", s.handleChatCompletions)
	mux.HandleFunc("/stats", s.handleStats)

	addr := fmt.Sprintf(":%d", *port)
	log.Printf("Mock LLM server listening on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func (s *mockServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *mockServer) handleChatCompletions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("invalid request body: %v", err), http.StatusBadRequest)
		return
	}

	callNum := s.calls.Add(1)
	log.Printf("[call %d] model=%s messages=%d", callNum, req.Model, len(req.Messages))

	if done := s.simulateFailure(w, req.Model, r); done {
		return
	}

	content := s.contentFor(req.Model)

	resp := chatResponse{
		ID:      fmt.Sprintf("mock-%d", time.Now().UnixNano()),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   req.Model,
		Choices: []chatChoice{
			{
				Index:        0,
				Message:      chatMessage{Role: "assistant", Content: content},
				FinishReason: "stop",
			},
		},
		Usage: chatUsage{
			PromptTokens:     len(content) / 4,
			CompletionTokens: len(content) / 4,
			TotalTokens:      len(content) / 2,
		},
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// simulateFailure handles the failure-injection model names. Returns true
// when it already wrote the response.
func (s *mockServer) simulateFailure(w http.ResponseWriter, model string, r *http.Request) bool {
	switch model {
	case "mock-429":
		http.Error(w, `{"error": "rate limit exceeded"}`, http.StatusTooManyRequests)
		return true
	case "mock-500":
		http.Error(w, `{"error": "internal error"}`, http.StatusInternalServerError)
		return true
	case "mock-slow":
		select {
		case <-time.After(60 * time.Second):
		case <-r.Context().Done():
		}
		http.Error(w, `{"error": "too slow"}`, http.StatusGatewayTimeout)
		return true
	}
	return false
}

func (s *mockServer) contentFor(model string) string {
	if model == "mock-garbage" {
		return "I am sorry, I cannot help with that request."
	}
	if content, ok := s.fixtures[model]; ok {
		return content
	}
	return defaultSlideContent
}

func (s *mockServer) handleStats(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"total_calls": s.calls.Load(),
	})
}

// loadFixtures reads *.json files from dir, keyed by base name without the
// extension.
func loadFixtures(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	fixtures := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON in %s", path)
		}
		model := strings.TrimSuffix(entry.Name(), ".json")
		fixtures[model] = string(data)
	}

	if len(fixtures) == 0 {
		return nil, fmt.Errorf("no fixture files found in %s", dir)
	}
	return fixtures, nil
}
