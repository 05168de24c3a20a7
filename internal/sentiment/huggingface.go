package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultModelURL is the hosted inference endpoint for the three-label
// twitter-roberta sentiment model.
const DefaultModelURL = "https://api-inference.huggingface.co/models/cardiffnlp/twitter-roberta-base-sentiment-latest"

const userAgent = "moodify/1.0"

// maxResponseBytes caps how much of a classifier response is read.
const maxResponseBytes = 64 << 10

var (
	// ErrEmptyResult is returned when the model answers with no labels.
	ErrEmptyResult = errors.New("classifier returned no labels")

	// ErrResponseTooLarge is returned when the response exceeds maxResponseBytes.
	ErrResponseTooLarge = errors.New("classifier response too large")
)

// Config holds HuggingFace inference configuration.
type Config struct {
	APIKey   string
	ModelURL string
	Timeout  time.Duration
}

// LabelScore is one label probability returned by the classifier.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classifier performs remote text classification.
type Classifier interface {
	Classify(ctx context.Context, text string) ([]LabelScore, error)
}

// HuggingFace is a client for the HuggingFace inference API.
type HuggingFace struct {
	apiKey     string
	modelURL   string
	httpClient *http.Client
}

// NewHuggingFace creates a client from the provided configuration.
func NewHuggingFace(cfg *Config) *HuggingFace {
	modelURL := cfg.ModelURL
	if modelURL == "" {
		modelURL = DefaultModelURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HuggingFace{
		apiKey:   cfg.APIKey,
		modelURL: modelURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type inferenceRequest struct {
	Inputs string `json:"inputs"`
}

type inferenceError struct {
	Error string `json:"error"`
}

// Classify posts text to the model and returns its label probabilities.
func (c *HuggingFace) Classify(ctx context.Context, text string) ([]LabelScore, error) {
	payload, err := json.Marshal(inferenceRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.modelURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, ErrResponseTooLarge
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr inferenceError
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, apiErr.Error)
		}
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return decodeLabels(body)
}

// decodeLabels accepts both the batched shape [[{label,score}]] and the
// flat shape [{label,score}].
func decodeLabels(body []byte) ([]LabelScore, error) {
	var nested [][]LabelScore
	if err := json.Unmarshal(body, &nested); err == nil {
		if len(nested) == 0 || len(nested[0]) == 0 {
			return nil, ErrEmptyResult
		}
		return nested[0], nil
	}

	var flat []LabelScore
	if err := json.Unmarshal(body, &flat); err != nil {
		return nil, fmt.Errorf("parsing classifier response: %w", err)
	}
	if len(flat) == 0 {
		return nil, ErrEmptyResult
	}
	return flat, nil
}
