package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Meesho/BharatMLStack/pmo-agent/internal/data/models"
	agenterrors "github.com/Meesho/BharatMLStack/pmo-agent/internal/errors"
	"github.com/Meesho/BharatMLStack/pmo-agent/internal/prompt"
	"github.com/Meesho/BharatMLStack/pmo-agent/pkg/metric"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash-lite"

	defaultTimeout = 30 * time.Second
	defaultMaxRPS  = 4

	maxTranscriptChars = 20_000
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
	MaxRPS  int
}

// Client calls the Gemini generateContent REST API.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	maxRPS := cfg.MaxRPS
	if maxRPS <= 0 {
		maxRPS = defaultMaxRPS
	}

	return &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(maxRPS), maxRPS),
	}
}

type generateContentRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []part `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (c *Client) Generate(ctx context.Context, finalPrompt string) (string, error) {
	if strings.TrimSpace(finalPrompt) == "" {
		return "", agenterrors.ErrEmptyPrompt
	}
	if c.apiKey == "" {
		return "", agenterrors.ErrMissingAPIKey
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: finalPrompt}}}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal generate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	log.Debug().Str("model", c.model).Int("prompt_len", len(finalPrompt)).Msg("calling gemini generateContent")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metric.ObserveExternalAPIRequest("gemini", "generateContent", http.StatusBadGateway, time.Since(start))
		return "", fmt.Errorf("%w: %v", agenterrors.ErrUpstreamLLM, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", agenterrors.ErrUpstreamLLM, err)
	}
	metric.ObserveExternalAPIRequest("gemini", "generateContent", resp.StatusCode, time.Since(start))

	var parsed generateContentResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("%w: invalid response payload", agenterrors.ErrUpstreamLLM)
	}
	if resp.StatusCode != http.StatusOK {
		message := strings.TrimSpace(string(body))
		if parsed.Error != nil {
			message = parsed.Error.Message
		}
		log.Error().Int("status", resp.StatusCode).Str("message", message).Msg("gemini request failed")
		return "", fmt.Errorf("%w: %s", agenterrors.ErrUpstreamLLM, message)
	}

	text := extractText(parsed)
	if text == "" {
		return "", agenterrors.ErrEmptyCompletion
	}
	return text, nil
}

// ChatComplete runs a completion over a flattened conversation
// transcript, keeping the system line when the history overflows.
func (c *Client) ChatComplete(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (string, error) {
	if strings.TrimSpace(systemPrompt) == "" {
		return "", agenterrors.ErrEmptyPrompt
	}
	transcript := prompt.BuildChatTranscript(systemPrompt, messages, maxTranscriptChars)
	return c.Generate(ctx, transcript)
}

func extractText(parsed generateContentResponse) string {
	var builder strings.Builder
	for _, candidate := range parsed.Candidates {
		for _, p := range candidate.Content.Parts {
			builder.WriteString(p.Text)
		}
		break
	}
	return strings.TrimSpace(builder.String())
}
