package allocation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Gateway calls an OpenAI-compatible chat completion endpoint and asks it to
// plan quantities toward the target fill volume. The model is instructed to
// answer with bare JSON; anything else is treated as a soft failure.
type Gateway struct {
	logger  *slog.Logger
	client  *http.Client
	baseURL string
	token   string
	model   string
	timeout time.Duration
}

// NewGateway builds a Gateway. timeout bounds the whole call including body
// read; zero defaults to 25 seconds.
func NewGateway(logger *slog.Logger, baseURL, token, model string, timeout time.Duration) *Gateway {
	if timeout <= 0 {
		timeout = 25 * time.Second
	}
	if model == "" {
		model = "main"
	}
	return &Gateway{
		logger:  logger,
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		model:   model,
		timeout: timeout,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	Stream    bool          `json:"stream"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type allocationsEnvelope struct {
	Allocations []Allocation `json:"allocations"`
}

const systemPrompt = `You respond only with valid JSON. No markdown, no code fences, no explanation. ` +
	`Output format: {"allocations":[{"branch_id":number,"product_id":number,"suggested_qty":number},...]}`

// Suggest implements Suggester. Every failure mode (unreachable gateway,
// timeout, non-200, unparseable content) is returned as an error for the
// engine to absorb; it never panics or blocks past the timeout.
func (g *Gateway) Suggest(ctx context.Context, req SuggestionRequest) ([]Allocation, error) {
	if g.token == "" {
		return nil, fmt.Errorf("allocation gateway: no token configured")
	}
	if len(req.Products) == 0 {
		return nil, fmt.Errorf("allocation gateway: no products to plan")
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: g.userPrompt(req)},
		},
		Stream:    false,
		MaxTokens: 2000,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.token)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("allocation gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("allocation gateway: status %d", resp.StatusCode)
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("allocation gateway: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("allocation gateway: empty response")
	}

	return parseAllocations(chat.Choices[0].Message.Content)
}

func (g *Gateway) userPrompt(req SuggestionRequest) string {
	branchIDs := make([]string, len(req.BranchIDs))
	for i, id := range req.BranchIDs {
		branchIDs[i] = fmt.Sprintf("%d", id)
	}
	products, _ := json.Marshal(req.Products)

	return fmt.Sprintf(`You are an allocation planner for a bread logistics company. Fill each branch's delivery to about 70%% of the vehicle capacity.

Branch IDs: %s
Products (with volume per unit in m³): %s
TARGET volume per branch: %.2f m³.

For each branch_id and each product_id, suggest suggested_qty (non-negative integer) so that for each branch the total volume (sum of qty * volume_m3) is approximately %.2f m³. Prefer spreading across 3-6 products per branch. Return every combination of branch_id and product_id that you assign a non-zero quantity.

Return ONLY this JSON: {"allocations":[{"branch_id":<number>,"product_id":<number>,"suggested_qty":<number>},...]}`,
		strings.Join(branchIDs, ", "), products,
		req.TargetVolumePerBranchM3, req.TargetVolumePerBranchM3)
}

// parseAllocations extracts the first JSON object from a possibly chatty
// completion and unmarshals the allocations array.
func parseAllocations(content string) ([]Allocation, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("allocation gateway: no JSON object in response")
	}

	var envelope allocationsEnvelope
	if err := json.Unmarshal([]byte(content[start:end+1]), &envelope); err != nil {
		return nil, fmt.Errorf("allocation gateway: %w", err)
	}
	if len(envelope.Allocations) == 0 {
		return nil, fmt.Errorf("allocation gateway: empty allocation list")
	}
	return envelope.Allocations, nil
}
