package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/mkrish/PartnerDocsAPI/internal/adapter"
	"github.com/mkrish/PartnerDocsAPI/internal/config"
	"github.com/mkrish/PartnerDocsAPI/internal/customHttpClient"
	"github.com/mkrish/PartnerDocsAPI/internal/rag/llm"
	"github.com/mkrish/PartnerDocsAPI/pkg/logger_i"
)

type client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	logger     *logger_i.Logger
}

type runRequest struct {
	InputValue string `json:"input_value"`
	OutputType string `json:"output_type"`
	InputType  string `json:"input_type"`
}

// NewClient builds the workflow-service provider. Returns nil when no
// endpoint is configured, which main treats like any other missing
// collaborator.
func NewClient(url string, apiKey string) llm.Provider {
	if url == "" {
		return nil
	}
	return &client{
		httpClient: customHttpClient.New(config.WorkflowTimeout),
		url:        url,
		apiKey:     apiKey,
		logger:     logger_i.NewLogger("workflow_llm"),
	}
}

func (c *client) Generate(ctx context.Context, query string) (string, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	body, err := json.Marshal(runRequest{
		InputValue: query,
		OutputType: "chat",
		InputType:  "chat",
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Error("Workflow call failed", "error", err)
		return "", fmt.Errorf("workflow request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading workflow response: %w", err)
	}
	if resp.StatusCode >= 300 {
		log.Error("Workflow returned non-success", "status", resp.Status)
		return "", fmt.Errorf("workflow returned %s", resp.Status)
	}

	answer, err := adapter.ParseWorkflowAnswer(raw)
	if err != nil {
		log.Error("Could not parse workflow response", "error", err)
		return "", err
	}
	return answer, nil
}
