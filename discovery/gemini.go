package discovery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Client is a lightweight generative-language API client for site discovery.
// It uses net/http directly — no third-party SDK needed.
type Client struct {
	httpClient *http.Client
	baseURL    string
	model      string
}

// NewClient creates a generative-language client. Pass a nil httpClient to use
// a default one; baseURL and model fall back to the production endpoint and
// gemini-1.5-flash when empty.
func NewClient(httpClient *http.Client, baseURL, model string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com"
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}
	return &Client{httpClient: httpClient, baseURL: baseURL, model: model}
}

// genRequest is the generateContent request body.
type genRequest struct {
	Contents []genContent `json:"contents"`
}

type genContent struct {
	Parts []genPart `json:"parts"`
}

type genPart struct {
	Text string `json:"text"`
}

// genResponse is the minimal generateContent response we need.
type genResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// genErrorResponse captures an API error from the backend.
type genErrorResponse struct {
	Error struct {
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// backendError is a non-2xx response from the generative backend. The status
// code decides whether the caller falls over to the next credential.
type backendError struct {
	StatusCode int
	Message    string
}

func (e *backendError) Error() string {
	return fmt.Sprintf("generative backend returned %d: %s", e.StatusCode, e.Message)
}

// Transient reports whether the failure is a capacity problem worth retrying
// with a different credential, as opposed to a rejected credential.
func (e *backendError) Transient() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode == http.StatusServiceUnavailable
}

// Generate sends the prompt with the given credential and returns the first
// candidate's text.
func (c *Client) Generate(ctx context.Context, prompt, apiKey string) (string, error) {
	reqBody := genRequest{
		Contents: []genContent{{Parts: []genPart{{Text: prompt}}}},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/models/%s:generateContent?key=%s",
		strings.TrimRight(c.baseURL, "/"), c.model, url.QueryEscape(apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generative request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read generative response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "generative API error"
		var errResp genErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			msg = errResp.Error.Message
		}
		return "", &backendError{StatusCode: resp.StatusCode, Message: msg}
	}

	var genResp genResponse
	if err := json.Unmarshal(respBody, &genResp); err != nil {
		return "", fmt.Errorf("parse generative response: %w", err)
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return "", nil
	}
	return genResp.Candidates[0].Content.Parts[0].Text, nil
}
