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

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat-completions endpoint.
type Client struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewClient(apiURL, apiKey, model string, timeout time.Duration) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

var infrastructureCategories = map[string]bool{
	"roads": true, "bridges": true, "public_buildings": true, "water_supply": true,
	"electricity": true, "drainage": true, "parks": true, "transportation": true,
}

var misconductCategories = map[string]bool{
	"bribery": true, "negligence": true, "abuse_of_power": true, "fraud": true,
	"harassment": true, "other": true,
}

var validSentiments = map[string]bool{
	"positive": true, "negative": true, "neutral": true, "urgent": true,
}

const suggestSystemPrompt = `You are an AI assistant analyzing citizen reports. Analyze the report and return JSON with:
- category: suggested category (for infrastructure: roads, bridges, public_buildings, water_supply, electricity, drainage, parks, transportation; for misconduct: bribery, negligence, abuse_of_power, fraud, harassment, other)
- sentiment: overall sentiment (positive, negative, neutral, urgent)
Return ONLY valid JSON, no markdown.`

func (c *Client) SuggestCategory(ctx context.Context, reportType, description string) (*Suggestion, error) {
	content, err := c.chat(ctx, suggestSystemPrompt,
		fmt.Sprintf("Report Type: %s\nDescription: %s", reportType, description))
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Category  string `json:"category"`
		Sentiment string `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(cleanJSONContent(content)), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion: %w", err)
	}

	validCategories := infrastructureCategories
	if reportType == "misconduct" {
		validCategories = misconductCategories
	}

	s := &Suggestion{}
	if validCategories[parsed.Category] {
		s.Category = &parsed.Category
	}
	if validSentiments[parsed.Sentiment] {
		s.Sentiment = &parsed.Sentiment
	}
	return s, nil
}

const querySystemPrompt = `You are an AI assistant that converts natural language queries about government projects into structured filters.
Parse the query and return a JSON object with these optional fields:
- department: string (department name to filter)
- status: "planned" | "ongoing" | "completed" | "on_hold"
- min_budget: number (minimum budget amount)
- max_budget: number (maximum budget amount)
- location: string (location to search)
- date_from: string (YYYY-MM-DD format)
- date_to: string (YYYY-MM-DD format)
- sort_by: "budget" | "date" | "name"
- sort_order: "asc" | "desc"

Return ONLY valid JSON, no markdown or explanation.
If a filter is not mentioned, omit it from the response.`

func (c *Client) ParseProjectQuery(ctx context.Context, query string) (*ProjectFilters, error) {
	content, err := c.chat(ctx, querySystemPrompt, query)
	if err != nil {
		return nil, err
	}

	var filters ProjectFilters
	if err := json.Unmarshal([]byte(cleanJSONContent(content)), &filters); err != nil {
		return nil, fmt.Errorf("failed to parse filters: %w", err)
	}
	return &filters, nil
}

func (c *Client) chat(ctx context.Context, system, user string) (string, error) {
	if c.apiKey == "" {
		return "", ErrNotConfigured
	}

	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.2,
		MaxTokens:   500,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("AI request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("AI request failed (status %d): %s", resp.StatusCode, string(msg))
	}

	var chatResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("failed to decode AI response: %w", err)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.New("empty AI response")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// cleanJSONContent strips markdown code fences some models wrap around JSON.
func cleanJSONContent(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
