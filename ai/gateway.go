package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"finsight/api/logger"
)

// FallbackText is returned whenever the analysis service cannot be reached.
// Callers always receive a well-formed response, never a transport error.
const FallbackText = "I'm sorry, the analysis service is currently unavailable. Please try again in a few minutes."

// ChatRequest is the outbound contract of the external analysis service.
type ChatRequest struct {
	Message        string `json:"message"`
	SessionID      string `json:"sessionId,omitempty"`
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId,omitempty"`
	Context        string `json:"context,omitempty"`
}

type ChatResponse struct {
	Response         string   `json:"response"`
	SessionID        string   `json:"sessionId"`
	Citations        []string `json:"citations,omitempty"`
	Confidence       float64  `json:"confidence"`
	ProcessingTimeMs int64    `json:"processingTimeMs"`
}

// Gateway is the HTTP client for the external analysis service.
type Gateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewGateway(baseURL, apiKey string, timeout time.Duration) *Gateway {
	return &Gateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// Chat calls the analysis service synchronously. On any failure it returns
// the deterministic fallback payload with confidence zero; there are no
// retries, one failed call is one fallback.
func (g *Gateway) Chat(ctx context.Context, req *ChatRequest) *ChatResponse {
	resp, err := g.post(ctx, "/v1/chat", req)
	if err != nil {
		logger.Get().Warn("analysis service chat failed, serving fallback",
			zap.String("user_id", req.UserID),
			zap.Error(err))
		return g.fallback(req.SessionID)
	}

	var out ChatResponse
	if err := json.Unmarshal(resp, &out); err != nil {
		logger.Get().Warn("analysis service returned malformed payload, serving fallback",
			zap.Error(err))
		return g.fallback(req.SessionID)
	}
	if out.SessionID == "" {
		out.SessionID = req.SessionID
	}
	return &out
}

// Tips asks the service for dashboard tips. Failure degrades to a canned set.
func (g *Gateway) Tips(ctx context.Context, userID string, creditScore int) []string {
	req := map[string]any{"userId": userID, "creditScore": creditScore}
	resp, err := g.post(ctx, "/v1/tips", req)
	if err != nil {
		logger.Get().Debug("tip generation failed, serving canned tips", zap.Error(err))
		return fallbackTips
	}
	var out struct {
		Tips []string `json:"tips"`
	}
	if err := json.Unmarshal(resp, &out); err != nil || len(out.Tips) == 0 {
		return fallbackTips
	}
	return out.Tips
}

func (g *Gateway) post(ctx context.Context, path string, body any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling analysis service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("analysis service returned status %d", resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Gateway) fallback(sessionID string) *ChatResponse {
	return &ChatResponse{
		Response:   FallbackText,
		SessionID:  sessionID,
		Confidence: 0,
	}
}

var fallbackTips = []string{
	"Keep credit utilization below 30% of your total limits.",
	"Pay every account on time; payment history is the largest score factor.",
	"Avoid opening several new credit lines in a short window.",
}
