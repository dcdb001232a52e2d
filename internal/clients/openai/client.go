package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/myaralbdany4-glitch/MoodLens/internal/logger"
)

// ImageInput is a multimodal image input for chat completions.
// ImageURL can be https://... or data:image/...;base64,...
type ImageInput struct {
	ImageURL string
}

// Client is the inference provider boundary: prompt in, raw model content
// out. Parsing the content into a domain structure is the caller's job.
type Client interface {
	// ChatCompletionJSON sends a system + user prompt (optionally with
	// images) and returns the assistant message content verbatim.
	ChatCompletionJSON(ctx context.Context, system string, user string, images []ImageInput) (string, error)

	// Transcribe runs speech-to-text over the audio payload with a language
	// hint and returns the transcript text.
	Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error)
}

// ErrNoContent is returned when the provider responds without any assistant
// content to parse.
var ErrNoContent = errors.New("no analysis content received")

type client struct {
	log          *logger.Logger
	baseURL      string
	apiKey       string
	model        string
	whisperModel string
	httpClient   *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENAI_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENAI_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if model == "" {
		model = "gpt-4o"
	}

	whisperModel := strings.TrimSpace(os.Getenv("OPENAI_WHISPER_MODEL"))
	if whisperModel == "" {
		whisperModel = "whisper-1"
	}

	timeoutSec := 60
	if v := os.Getenv("OPENAI_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:          log.With("client", "OpenAIClient"),
		baseURL:      baseURL,
		apiKey:       apiKey,
		model:        model,
		whisperModel: whisperModel,
		httpClient:   &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type openAIHTTPError struct {
	StatusCode int
	Body       string
}

func (e *openAIHTTPError) Error() string {
	return fmt.Sprintf("openai http %d: %s", e.StatusCode, e.Body)
}

// do performs exactly one attempt. Transient provider failures surface
// directly to the caller; the request path has no retry budget.
func (c *client) do(ctx context.Context, method, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &openAIHTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	if out == nil {
		return nil
	}
	if uErr := json.Unmarshal(raw, out); uErr != nil {
		return fmt.Errorf("openai decode error: %w; raw=%s", uErr, string(raw))
	}
	return nil
}

// ---- Chat completions ----

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *client) ChatCompletionJSON(ctx context.Context, system string, user string, images []ImageInput) (string, error) {
	var userContent any = user
	if len(images) > 0 {
		parts := []map[string]any{
			{"type": "text", "text": user},
		}
		for _, img := range images {
			parts = append(parts, map[string]any{
				"type":      "image_url",
				"image_url": map[string]any{"url": img.ImageURL},
			})
		}
		userContent = parts
	}

	reqBody := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: userContent},
		},
		MaxTokens:   1000,
		Temperature: 0.3,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", err
	}

	var resp chatCompletionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/chat/completions", "application/json", &buf, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrNoContent
	}
	return resp.Choices[0].Message.Content, nil
}

// ---- Audio transcription ----

type transcriptionResponse struct {
	Text string `json:"text"`
}

func (c *client) Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error) {
	if filename == "" {
		filename = "audio.webm"
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("model", c.whisperModel); err != nil {
		return "", err
	}
	if language != "" {
		if err := mw.WriteField("language", language); err != nil {
			return "", err
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := fw.Write(audio); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	var resp transcriptionResponse
	if err := c.do(ctx, http.MethodPost, "/v1/audio/transcriptions", mw.FormDataContentType(), &buf, &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}
