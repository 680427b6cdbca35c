package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tailored-agentic-units/converse/core/protocol"
)

// serverLoader speaks the OpenAI-compatible HTTP API exposed by local
// inference servers (llama.cpp server, ollama, vllm). Load verifies the
// server is up and serving the requested model; the returned Ref streams
// chat completions over SSE.
type serverLoader struct {
	cfg    Config
	client *http.Client
}

// NewServerLoader creates a Loader for an OpenAI-compatible local server.
func NewServerLoader(cfg Config) Loader {
	defaults := DefaultConfig()
	defaults.Merge(&cfg)

	return &serverLoader{
		cfg: defaults,
		// No overall timeout: streamed generations run until completion
		// or context cancellation.
		client: &http.Client{},
	}
}

func (l *serverLoader) Load(ctx context.Context, modelID string, _ Options) (Ref, error) {
	probeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, l.cfg.BaseURL+"/models", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	l.setHeaders(req)

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("engine unreachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("model listing failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var listing struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to parse model listing: %w", err)
	}

	// Servers that load a single fixed model return only that model; an
	// empty listing is left to the server to reject at generation time.
	if len(listing.Data) > 0 {
		found := false
		for _, m := range listing.Data {
			if m.ID == modelID {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("model %q not served at %s", modelID, l.cfg.BaseURL)
		}
	}

	return &serverRef{loader: l, model: modelID}, nil
}

func (l *serverLoader) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if l.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.cfg.APIKey)
	}
}

type serverRef struct {
	loader *serverLoader
	model  string
}

func (r *serverRef) Model() string {
	return r.model
}

type chatRequest struct {
	Model       string             `json:"model"`
	Messages    []protocol.Message `json:"messages"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
	Stream      bool               `json:"stream"`
}

type chatChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason string `json:"finish_reason,omitempty"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// StreamChat issues a streaming chat completion and feeds the SSE deltas
// into the returned Stream. The producer goroutine owns the response body
// and closes the stream on completion, error, or context cancellation.
func (r *serverRef) StreamChat(ctx context.Context, messages []protocol.Message, params Params) (*Stream, error) {
	body, err := json.Marshal(chatRequest{
		Model:       r.model,
		Messages:    messages,
		Temperature: params.Temperature,
		MaxTokens:   params.MaxTokens,
		Stream:      true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.loader.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	r.loader.setHeaders(req)
	req.Header.Set("Accept", "text/event-stream")

	resp, err := r.loader.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("generation request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	stream := NewStream(r.loader.cfg.StreamBuffer)

	go func() {
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		for scanner.Scan() {
			line := scanner.Text()
			if !strings.HasPrefix(line, "data:") {
				continue
			}
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "" {
				continue
			}
			if data == "[DONE]" {
				stream.Close()
				return
			}

			var chunk chatChunk
			if err := json.Unmarshal([]byte(data), &chunk); err != nil {
				continue
			}
			if chunk.Error != nil {
				stream.CloseWithError(fmt.Errorf("engine error: %s", chunk.Error.Message))
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}

			if err := stream.Send(ctx, Chunk{Delta: chunk.Choices[0].Delta.Content}); err != nil {
				stream.CloseWithError(err)
				return
			}
		}

		if err := scanner.Err(); err != nil {
			if ctx.Err() != nil {
				stream.CloseWithError(ctx.Err())
				return
			}
			stream.CloseWithError(fmt.Errorf("stream error: %w", err))
			return
		}

		stream.Close()
	}()

	return stream, nil
}
