package service

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mansoorceksport/fitcoach/internal/config"
)

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// ChatMessage is one entry of a chat-completions conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatClient generates text from a conversation
type ChatClient interface {
	// Complete returns the full reply and the tokens the provider billed
	Complete(ctx context.Context, messages []ChatMessage) (string, int64, error)
	// Stream calls onChunk for each content delta until the reply ends
	Stream(ctx context.Context, messages []ChatMessage, onChunk func(string) error) error
}

// OpenRouterClient talks to the OpenRouter chat-completions API
type OpenRouterClient struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewOpenRouterClient creates a client. An empty BaseURL uses the public endpoint.
func NewOpenRouterClient(cfg config.OpenRouterConfig) *OpenRouterClient {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	return &OpenRouterClient{
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		baseURL: baseURL,
		// Streams can run long; per-request deadlines come from ctx
		httpClient: &http.Client{Timeout: 3 * time.Minute},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type apiError struct {
	Message  string                 `json:"message"`
	Code     int                    `json:"code"`
	Metadata map[string]interface{} `json:"metadata"`
}

func (e *apiError) err() error {
	msg := fmt.Sprintf("openrouter error: %s (code: %d)", e.Message, e.Code)
	if providerErr, ok := e.Metadata["provider_error"].(string); ok {
		msg += fmt.Sprintf(" - Provider error: %s", providerErr)
	}
	return errors.New(msg)
}

func (c *OpenRouterClient) do(ctx context.Context, messages []ChatMessage, stream bool) (*http.Response, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: 0.7,
		Stream:      stream,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Title", "FitCoach")
	if stream {
		req.Header.Set("Accept", "text/event-stream")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("openrouter api error (status %d): %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

func (c *OpenRouterClient) Complete(ctx context.Context, messages []ChatMessage) (string, int64, error) {
	resp, err := c.do(ctx, messages, false)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	var apiResponse struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Usage struct {
			TotalTokens int64 `json:"total_tokens"`
		} `json:"usage"`
		Error *apiError `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", 0, fmt.Errorf("failed to parse response: %w", err)
	}
	if apiResponse.Error != nil {
		return "", 0, apiResponse.Error.err()
	}
	if len(apiResponse.Choices) == 0 {
		return "", 0, fmt.Errorf("no response from AI model")
	}

	return apiResponse.Choices[0].Message.Content, apiResponse.Usage.TotalTokens, nil
}

func (c *OpenRouterClient) Stream(ctx context.Context, messages []ChatMessage, onChunk func(string) error) error {
	resp, err := c.do(ctx, messages, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		// Blank separators and ": keep-alive" comments carry no data
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "[DONE]" {
			return nil
		}

		var event struct {
			Choices []struct {
				Delta struct {
					Content string `json:"content"`
				} `json:"delta"`
			} `json:"choices"`
			Error *apiError `json:"error"`
		}
		if err := json.Unmarshal([]byte(data), &event); err != nil {
			return fmt.Errorf("failed to parse stream event: %w", err)
		}
		if event.Error != nil {
			return event.Error.err()
		}
		if len(event.Choices) == 0 || event.Choices[0].Delta.Content == "" {
			continue
		}
		if err := onChunk(event.Choices[0].Delta.Content); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stream: %w", err)
	}
	return nil
}

// DetectImageType sniffs JPEG, PNG, GIF and WebP headers. Unknown data returns "".
func DetectImageType(data []byte) string {
	if len(data) < 12 {
		return ""
	}
	if data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF {
		return "image/jpeg"
	}
	if data[0] == 0x89 && data[1] == 0x50 && data[2] == 0x4E && data[3] == 0x47 {
		return "image/png"
	}
	if data[0] == 0x47 && data[1] == 0x49 && data[2] == 0x46 {
		return "image/gif"
	}
	if data[0] == 0x52 && data[1] == 0x49 && data[2] == 0x46 && data[3] == 0x46 &&
		data[8] == 0x57 && data[9] == 0x45 && data[10] == 0x42 && data[11] == 0x50 {
		return "image/webp"
	}
	return ""
}
