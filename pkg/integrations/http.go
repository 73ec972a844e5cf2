package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultRequestTimeout = 15 * time.Second

// HTTPSIEM talks to a SIEM over a JSON HTTP API.
type HTTPSIEM struct {
	baseURL string
	client  *http.Client
}

func NewHTTPSIEM(baseURL string) *HTTPSIEM {
	return &HTTPSIEM{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}
}

func (s *HTTPSIEM) SendAlert(ctx context.Context, alert Alert) (string, error) {
	return postForReference(ctx, s.client, s.baseURL+"/alerts", alert)
}

func (s *HTTPSIEM) Enrich(ctx context.Context, req EnrichmentRequest) (string, error) {
	return postForReference(ctx, s.client, s.baseURL+"/enrichments", req)
}

// HTTPTicketing talks to a ticketing system over a JSON HTTP API.
type HTTPTicketing struct {
	baseURL string
	client  *http.Client
}

func NewHTTPTicketing(baseURL string) *HTTPTicketing {
	return &HTTPTicketing{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}
}

func (t *HTTPTicketing) CreateTicket(ctx context.Context, ticket Ticket) (string, error) {
	return postForReference(ctx, t.client, t.baseURL+"/tickets", ticket)
}

func (t *HTTPTicketing) UpdateTicket(ctx context.Context, ref string, fields map[string]any) error {
	_, err := postForReference(ctx, t.client, t.baseURL+"/tickets/"+ref, fields)

	return err
}

// HTTPNotifier posts channel messages to a notification gateway.
type HTTPNotifier struct {
	baseURL string
	client  *http.Client
}

func NewHTTPNotifier(baseURL string) *HTTPNotifier {
	return &HTTPNotifier{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultRequestTimeout},
	}
}

func (n *HTTPNotifier) Send(ctx context.Context, channel string, message map[string]any) error {
	payload := map[string]any{
		"channel": channel,
		"message": message,
	}

	_, err := postForReference(ctx, n.client, n.baseURL+"/notify", payload)

	return err
}

type referenceResponse struct {
	Reference string `json:"reference"`
}

func postForReference(ctx context.Context, client *http.Client, url string, payload any) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("integration returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var ref referenceResponse
	if err := json.Unmarshal(data, &ref); err != nil {
		// Some gateways answer with an empty body; the call still succeeded.
		return "", nil
	}

	return ref.Reference, nil
}
