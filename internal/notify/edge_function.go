package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// EdgeFunctionNotifier invokes a Supabase Edge Function with the id of the
// new report. The function looks the report up and sends the email.
type EdgeFunctionNotifier struct {
	baseURL      string
	apiKey       string
	functionName string
	httpClient   *http.Client
}

func NewEdgeFunctionNotifier(baseURL, apiKey, functionName string, timeout time.Duration) *EdgeFunctionNotifier {
	return &EdgeFunctionNotifier{
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiKey:       apiKey,
		functionName: functionName,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

type reportCreatedPayload struct {
	ReportID string `json:"reportId"`
}

func (n *EdgeFunctionNotifier) NotifyReportCreated(ctx context.Context, reportID string) error {
	payload, err := json.Marshal(reportCreatedPayload{ReportID: reportID})
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	url := fmt.Sprintf("%s/functions/v1/%s", n.baseURL, n.functionName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", n.apiKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to invoke %s: %w", n.functionName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s failed with status %d: %s", n.functionName, resp.StatusCode, string(body))
	}

	return nil
}
