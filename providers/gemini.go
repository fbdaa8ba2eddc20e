package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	generationAPI  = "https://generativelanguage.googleapis.com/v1beta/models/gemini-3-pro-preview:generateContent"
	visionAPI      = "https://generativelanguage.googleapis.com/v1beta/models/gemini-3-flash-preview:generateContent"
	maxRetries     = 3
	initialBackoff = time.Second
)

// GeminiClient wraps access to the Gemini API. The SDK client is kept for
// connection validation at boot; generation calls go through the HTTP API
// directly so request shape and error decoding stay under our control.
type GeminiClient struct {
	apiKey string
	sdk    *genai.Client
	http   *http.Client
}

// NewGeminiClient initializes a Gemini client
func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		log.Println("Warning: GEMINI_API_KEY not set")
	}

	sdk, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GeminiClient{
		apiKey: apiKey,
		sdk:    sdk,
		http:   &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// part is one element of a generateContent request's content parts
type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"` // base64
}

func textPart(text string) part {
	return part{Text: text}
}

func filePart(mimeType string, data []byte) part {
	return part{InlineData: &inlineData{
		MimeType: mimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}
}

// generate calls the text generation endpoint with retry and backoff
func (c *GeminiClient) generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	return c.generateParts(ctx, generationAPI, []part{textPart(prompt)}, temperature)
}

// generateVision calls the multimodal endpoint with retry and backoff
func (c *GeminiClient) generateVision(ctx context.Context, parts []part, temperature float64) (string, error) {
	return c.generateParts(ctx, visionAPI, parts, temperature)
}

func (c *GeminiClient) generateParts(ctx context.Context, endpoint string, parts []part, temperature float64) (string, error) {
	var content string
	var err error
	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(backoff)
			backoff *= 2
		}

		content, err = c.callAPI(ctx, endpoint, parts, temperature)
		if err != nil {
			if ctx.Err() != nil {
				return "", ctx.Err()
			}
			if attempt == maxRetries-1 {
				return "", fmt.Errorf("generation failed after %d attempts: %w", maxRetries, err)
			}
			continue
		}
		if content != "" {
			return content, nil
		}
	}

	if err != nil {
		return "", err
	}
	return "", fmt.Errorf("API returned empty content after %d attempts", maxRetries)
}

// callAPI performs a single generateContent request
func (c *GeminiClient) callAPI(ctx context.Context, endpoint string, parts []part, temperature float64) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	reqBody := map[string]interface{}{
		"contents": []map[string]interface{}{
			{"parts": parts},
		},
		"generationConfig": map[string]interface{}{
			"temperature": temperature,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("Gemini API error: Status %d, Body: %s", resp.StatusCode, truncateForLog(bodyBytes))
		return "", fmt.Errorf("API error: %d", resp.StatusCode)
	}

	var apiResp struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			FinishReason string `json:"finishReason,omitempty"`
		} `json:"candidates"`
		PromptFeedback struct {
			BlockReason string `json:"blockReason,omitempty"`
		} `json:"promptFeedback,omitempty"`
		Error struct {
			Code    int    `json:"code,omitempty"`
			Message string `json:"message,omitempty"`
		} `json:"error,omitempty"`
	}

	if err := json.Unmarshal(bodyBytes, &apiResp); err != nil {
		log.Printf("Failed to decode Gemini response. Body: %s", truncateForLog(bodyBytes))
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if apiResp.Error.Message != "" {
		return "", fmt.Errorf("API error: %s (code: %d)", apiResp.Error.Message, apiResp.Error.Code)
	}

	if apiResp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("API blocked prompt: %s", apiResp.PromptFeedback.BlockReason)
	}

	if len(apiResp.Candidates) == 0 {
		log.Printf("Gemini API returned no candidates. Body: %s", truncateForLog(bodyBytes))
		return "", fmt.Errorf("API returned no candidates")
	}

	var responseText strings.Builder
	for i, candidate := range apiResp.Candidates {
		if candidate.FinishReason != "" && candidate.FinishReason != "STOP" {
			log.Printf("Warning: Candidate %d finished with reason: %s", i, candidate.FinishReason)
		}
		for _, p := range candidate.Content.Parts {
			responseText.WriteString(p.Text)
		}
	}

	result := responseText.String()
	if result == "" {
		return "", fmt.Errorf("API returned empty content")
	}

	return result, nil
}

// decodeJSONResponse strips markdown code fences the model sometimes wraps
// structured output in, then unmarshals into out.
func decodeJSONResponse(raw string, out interface{}) error {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
		trimmed = strings.TrimSpace(trimmed)
	}

	if err := json.Unmarshal([]byte(trimmed), out); err != nil {
		return fmt.Errorf("failed to decode provider JSON: %w", err)
	}
	return nil
}

func truncateForLog(body []byte) string {
	const limit = 1000
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
