// Package assistant composes compact dashboard context for the analysis
// assistant and provides the client used to query it. The assistant itself
// is a black box behind an HTTP endpoint; this package only shapes the
// request and transports it.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pipewatch/pipewatch/internal/insight"
	"github.com/pipewatch/pipewatch/internal/telemetry"
)

// maxContextAgents bounds how many agents are included in the context
// payload so the request stays small under large pipelines.
const maxContextAgents = 6

// AgentContext is the per-agent slice of the context payload.
type AgentContext struct {
	Name       string  `json:"name"`
	Status     string  `json:"status"`
	AvgSeconds float64 `json:"avg_time_seconds"`
	Executions int     `json:"executions"`
	Failures   int     `json:"failures"`
}

// QualityContext carries the current metric values and any
// validation-layer failures.
type QualityContext struct {
	Metrics       map[string]*float64 `json:"metrics"`
	LayerFailures []string            `json:"layer_failures,omitempty"`
}

// Context is the structured dashboard state sent alongside a question.
type Context struct {
	Document string         `json:"document"`
	Progress float64        `json:"progress"`
	Errors   int            `json:"errors"`
	Warnings int            `json:"warnings"`
	Quality  QualityContext `json:"quality"`
	Agents   []AgentContext `json:"agents"`
	Insights []string       `json:"insights"`
}

// ComposeContext flattens current dashboard state into the payload the
// assistant expects. At most six agents are included, in pipeline order.
func ComposeContext(summary telemetry.Summary, agents []telemetry.Agent, quality telemetry.Quality, insights []insight.Insight) Context {
	top := agents
	if len(top) > maxContextAgents {
		top = top[:maxContextAgents]
	}
	agentCtx := make([]AgentContext, 0, len(top))
	for _, a := range top {
		agentCtx = append(agentCtx, AgentContext{
			Name:       a.Name,
			Status:     string(a.Status),
			AvgSeconds: a.AvgTime,
			Executions: a.Executions,
			Failures:   a.Failures,
		})
	}

	metrics := make(map[string]*float64, len(quality.Metrics))
	for _, m := range quality.Metrics {
		metrics[m.ID] = m.Value
	}

	messages := make([]string, 0, len(insights))
	for _, ins := range insights {
		messages = append(messages, ins.Message)
	}

	return Context{
		Document: summary.CurrentDocument,
		Progress: summary.Progress,
		Errors:   summary.Errors,
		Warnings: summary.Warnings,
		Quality: QualityContext{
			Metrics:       metrics,
			LayerFailures: quality.LayerFailures,
		},
		Agents:   agentCtx,
		Insights: messages,
	}
}

// Client asks the assistant a question about the current dashboard state.
type Client interface {
	// Ask sends a question with its context and returns the assistant's
	// answer text.
	Ask(ctx context.Context, question string, dashCtx Context) (string, error)
}

// HTTPClient talks to the assistant over a JSON POST endpoint.
type HTTPClient struct {
	url    string
	client *http.Client
}

// NewHTTPClient creates a client for the given endpoint. A zero timeout
// means no client-side deadline beyond the request context.
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type askRequest struct {
	Question string  `json:"question"`
	Context  Context `json:"context"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

// Ask implements Client.
func (c *HTTPClient) Ask(ctx context.Context, question string, dashCtx Context) (string, error) {
	body, err := json.Marshal(askRequest{Question: question, Context: dashCtx})
	if err != nil {
		return "", fmt.Errorf("encoding assistant request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building assistant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("assistant request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("assistant returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading assistant response: %w", err)
	}

	var out askResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("decoding assistant response: %w", err)
	}
	return out.Answer, nil
}
