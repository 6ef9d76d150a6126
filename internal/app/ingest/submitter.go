package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"overlay/pkg/event"
	"overlay/pkg/tools"
)

// HTTPSubmitter posts raw events to the overlay service's event endpoint.
type HTTPSubmitter struct {
	client *http.Client
	url    string
}

func NewHTTPSubmitter(client *http.Client, appURL string) *HTTPSubmitter {
	return &HTTPSubmitter{
		client: client,
		url:    appURL + "/api/events",
	}
}

func (s *HTTPSubmitter) Submit(ctx context.Context, raw *event.Raw) error {
	payload, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("failed to marshal raw event: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post event: %w", err)
	}
	defer tools.DrainAndClose(resp.Body)

	if resp.StatusCode > 299 {
		return fmt.Errorf("event endpoint returned status %d", resp.StatusCode)
	}

	return nil
}
